package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/kubetour/pkg/api"
)

func (s *Server) listTours(c *gin.Context) {
	tours := s.catalog.Tours()
	res := make([]*api.TourDigest, 0, len(tours))
	for _, t := range tours {
		res = append(res, t.Digest())
	}
	c.JSON(http.StatusOK, api.ToursListResponse{
		Tours: res,
		Count: len(res),
	})
}

func (s *Server) getTour(c *gin.Context) {
	tourID := api.TourID(c.Param("tourID"))

	t, err := s.catalog.Tour(tourID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

func (s *Server) createSession(c *gin.Context) {
	tourID := api.TourID(c.Param("tourID"))

	sess, err := s.sessions.Create(tourID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.SessionCreatedResponse{
		Message: "Session created",
		Session: sess.State(),
	})
}
