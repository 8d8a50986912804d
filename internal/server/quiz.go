package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/kubetour/pkg/api"
)

func (s *Server) getQuiz(c *gin.Context) {
	d := api.Difficulty(c.Param("difficulty"))

	questions, err := s.catalog.Questions(d)
	if err != nil {
		writeError(c, err)
		return
	}

	res := make([]*api.PublicQuestion, 0, len(questions))
	for _, q := range questions {
		res = append(res, q.Public())
	}
	c.JSON(http.StatusOK, api.QuizResponse{
		Difficulty: d,
		Questions:  res,
		Count:      len(res),
	})
}

func (s *Server) submitQuiz(c *gin.Context) {
	d := api.Difficulty(c.Param("difficulty"))

	var sub api.QuizSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		writeBadRequest(c, fmt.Errorf("%w: %v", ErrInvalidJSON, err))
		return
	}

	questions, err := s.catalog.Questions(d)
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := s.history.Submit(c.Request.Context(), d, questions, sub.Answers)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.QuizResultResponse{
		Attempt: res.Attempt,
		History: res.History,
	})
}

func (s *Server) getQuizHistory(c *gin.Context) {
	history, err := s.history.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	if history == nil {
		history = []api.QuizAttempt{}
	}
	c.JSON(http.StatusOK, api.QuizHistoryResponse{
		History: history,
		Count:   len(history),
	})
}

func (s *Server) clearQuizHistory(c *gin.Context) {
	if err := s.history.Clear(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "Quiz history cleared",
	})
}
