package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/kubetour"
	"github.com/kode4food/kubetour/pkg/api"
)

const statusHealthy = "healthy"

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Service:  kubetour.Name,
		Version:  kubetour.Version,
		Status:   statusHealthy,
		Sessions: s.sessions.Len(),
	})
}
