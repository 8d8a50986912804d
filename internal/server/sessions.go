package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/kubetour/pkg/api"
)

func (s *Server) getSession(c *gin.Context) {
	sessionID := api.SessionID(c.Param("sessionID"))

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sess.State())
}

func (s *Server) deleteSession(c *gin.Context) {
	sessionID := api.SessionID(c.Param("sessionID"))

	if err := s.sessions.Delete(sessionID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "Session deleted",
	})
}

func (s *Server) applySession(c *gin.Context) {
	action := api.ActionType(c.Param("action"))
	if action == api.ActionJump {
		writeBadRequest(c, fmt.Errorf("%w: missing", ErrInvalidIndex))
		return
	}
	s.dispatch(c, api.SessionCommand{Type: action})
}

func (s *Server) jumpSession(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		writeBadRequest(c,
			fmt.Errorf("%w: %q", ErrInvalidIndex, c.Param("index")),
		)
		return
	}
	s.dispatch(c, api.SessionCommand{Type: api.ActionJump, Index: index})
}

func (s *Server) dispatch(c *gin.Context, cmd api.SessionCommand) {
	sessionID := api.SessionID(c.Param("sessionID"))

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	st, err := sess.Apply(cmd)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, st)
}
