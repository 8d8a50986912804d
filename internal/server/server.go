package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	"github.com/kode4food/kubetour/internal/catalog"
	"github.com/kode4food/kubetour/internal/explain"
	"github.com/kode4food/kubetour/internal/genai"
	"github.com/kode4food/kubetour/internal/manifest"
	"github.com/kode4food/kubetour/internal/quiz"
	"github.com/kode4food/kubetour/internal/sequencer"
	"github.com/kode4food/kubetour/internal/session"
	"github.com/kode4food/kubetour/pkg/api"
	"github.com/kode4food/kubetour/pkg/util"
)

// Server implements the HTTP API server for the tour backend
type Server struct {
	catalog   *catalog.Catalog
	sessions  *session.Registry
	explainer *explain.Service
	annotator *manifest.Annotator
	history   *quiz.History
	sockets   util.Set[*Client]
	mu        sync.Mutex
}

var (
	ErrInvalidJSON  = errors.New("invalid JSON request")
	ErrInvalidIndex = errors.New("invalid step index")
)

var kindStatus = map[api.ErrorKind]int{
	api.ErrorKindMissingCredential: http.StatusServiceUnavailable,
	api.ErrorKindRateLimited:       http.StatusTooManyRequests,
	api.ErrorKindRequestRejected:   http.StatusBadGateway,
	api.ErrorKindEmptyResponse:     http.StatusBadGateway,
	api.ErrorKindExhausted:         http.StatusGatewayTimeout,
}

var statusErrors = []struct {
	err    error
	status int
}{
	{catalog.ErrTourNotFound, http.StatusNotFound},
	{catalog.ErrComponentNotFound, http.StatusNotFound},
	{session.ErrSessionNotFound, http.StatusNotFound},
	{sequencer.ErrSequencerClosed, http.StatusGone},
	{session.ErrRegistryClosed, http.StatusServiceUnavailable},
	{sequencer.ErrIndexOutOfRange, http.StatusBadRequest},
	{session.ErrUnknownCommand, http.StatusBadRequest},
	{api.ErrDifficultyInvalid, http.StatusBadRequest},
	{explain.ErrPromptEmpty, http.StatusBadRequest},
	{explain.ErrPromptTooLong, http.StatusBadRequest},
	{explain.ErrFieldNotMapped, http.StatusNotFound},
	{manifest.ErrManifestEmpty, http.StatusBadRequest},
	{manifest.ErrManifestInvalid, http.StatusBadRequest},
	{quiz.ErrNoQuestions, http.StatusNotFound},
	{context.DeadlineExceeded, http.StatusGatewayTimeout},
}

// NewServer creates a new HTTP API server
func NewServer(
	c *catalog.Catalog, reg *session.Registry, ex *explain.Service,
	hist *quiz.History,
) *Server {
	return &Server{
		catalog:   c,
		sessions:  reg,
		explainer: ex,
		annotator: manifest.NewAnnotator(c),
		history:   hist,
		sockets:   util.Set[*Client]{},
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", s.handleHealth)

	// Tour endpoints
	tours := router.Group("/tours")
	{
		tours.GET("", s.listTours)
		tours.GET("/:tourID", s.getTour)
		tours.POST("/:tourID/sessions", s.createSession)
	}

	// Session endpoints
	sessions := router.Group("/sessions")
	{
		sessions.GET("/:sessionID", s.getSession)
		sessions.DELETE("/:sessionID", s.deleteSession)
		sessions.POST("/:sessionID/jump/:index", s.jumpSession)
		sessions.POST("/:sessionID/:action", s.applySession)
	}

	// Component endpoints
	components := router.Group("/components")
	{
		components.GET("", s.listComponents)
		components.GET("/:componentID", s.getComponent)
		components.POST("/:componentID/explain", s.explainComponent)
	}
	router.POST("/explain", s.handleExplain)

	// Manifest endpoints
	router.POST("/manifests/annotate", s.annotateManifest)

	// Quiz endpoints
	router.GET("/quiz/:difficulty", s.getQuiz)
	router.POST("/quiz/:difficulty", s.submitQuiz)
	router.GET("/quiz-history", s.getQuizHistory)
	router.DELETE("/quiz-history", s.clearQuizHistory)

	// WebSocket
	router.GET("/ws", s.handleWebSocket)

	return router
}

// ErrorStatus maps an error returned by the domain packages to the HTTP
// status reported for it
func ErrorStatus(err error) int {
	if st, ok := kindStatus[genai.KindOf(err)]; ok {
		return st
	}
	for _, se := range statusErrors {
		if errors.Is(err, se.err) {
			return se.status
		}
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := ErrorStatus(err)
	c.JSON(status, errorBody(err, status))
}

func writeBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorBody(err, http.StatusBadRequest))
}

func errorBody(err error, status int) api.ErrorResponse {
	res := api.ErrorResponse{
		Error:  err.Error(),
		Status: status,
	}
	if kind := genai.KindOf(err); kind != api.ErrorKindUnknown {
		res.Kind = kind
	}
	return res
}

func (s *Server) registerWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Add(c)
}

func (s *Server) unregisterWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Remove(c)
}

// CloseWebSockets closes all active WebSocket connections
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := make([]*Client, 0, len(s.sockets))
	for c := range s.sockets {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
