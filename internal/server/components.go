package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/kubetour/pkg/api"
)

func (s *Server) listComponents(c *gin.Context) {
	comps := s.catalog.Components()
	c.JSON(http.StatusOK, api.ComponentsListResponse{
		Components: comps,
		Count:      len(comps),
	})
}

func (s *Server) getComponent(c *gin.Context) {
	componentID := api.ComponentID(c.Param("componentID"))

	comp, err := s.catalog.Component(componentID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, comp)
}

func (s *Server) explainComponent(c *gin.Context) {
	componentID := api.ComponentID(c.Param("componentID"))

	res, err := s.explainer.ExplainComponent(c.Request.Context(), componentID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (s *Server) handleExplain(c *gin.Context) {
	var req api.ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, fmt.Errorf("%w: %v", ErrInvalidJSON, err))
		return
	}

	ctx := c.Request.Context()
	var res *api.ExplainResponse
	var err error
	if req.Field != "" {
		res, err = s.explainer.ExplainField(ctx, req.Field)
	} else {
		res, err = s.explainer.Ask(ctx, req.Prompt)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
