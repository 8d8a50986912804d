package helpers

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/kubetour/internal/catalog"
	"github.com/kode4food/kubetour/internal/config"
	"github.com/kode4food/kubetour/internal/explain"
	"github.com/kode4food/kubetour/internal/quiz"
	"github.com/kode4food/kubetour/internal/server"
	"github.com/kode4food/kubetour/internal/session"
)

type (
	// TestServerEnv holds all the components needed for server testing
	TestServerEnv struct {
		Server    *server.Server
		Catalog   *catalog.Catalog
		Sessions  *session.Registry
		Timers    *FakeTimers
		Generator *MockGenerator
		Explainer *explain.Service
		History   *quiz.History
		Redis     *miniredis.Miniredis
		Config    *config.Config
		Cleanup   func()
	}

	// EnvOption customizes a TestServerEnv before it is assembled
	EnvOption func(*envSettings)

	envSettings struct {
		redis bool
	}
)

// DefaultAnswer is returned by the mock generator for unscripted prompts
const DefaultAnswer = "generated explanation"

// NewTestConfig creates a default configuration with debug logging enabled
func NewTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.LogLevel = "debug"
	return cfg
}

// WithRedisHistory backs the quiz history with an in-memory Redis server
func WithRedisHistory() EnvOption {
	return func(s *envSettings) {
		s.redis = true
	}
}

// NewTestServer creates a fully wired server with fake timers, a mock
// generator and an in-memory quiz history
func NewTestServer(t *testing.T, opts ...EnvOption) *TestServerEnv {
	t.Helper()

	var settings envSettings
	for _, opt := range opts {
		opt(&settings)
	}

	cfg := NewTestConfig()
	cat := catalog.Default()
	timers := NewFakeTimers()
	gen := NewMockGenerator(DefaultAnswer)

	var mr *miniredis.Miniredis
	var store quiz.Store = quiz.NewMemoryStore()
	if settings.redis {
		var err error
		mr, err = miniredis.Run()
		require.NoError(t, err)
		cfg.History.Store = config.HistoryStoreRedis
		cfg.History.RedisAddr = mr.Addr()
		store = quiz.NewRedisStore(&redis.Options{Addr: mr.Addr()})
	}

	reg := session.NewRegistry(cat, session.WithTimers(timers.NewTimer))
	ex := explain.NewService(gen, cat, cfg.ExplainCacheSize)
	hist := quiz.NewHistory(store)
	srv := server.NewServer(cat, reg, ex, hist)

	cleanup := func() {
		srv.CloseWebSockets()
		reg.Close()
		_ = hist.Close()
		if mr != nil {
			mr.Close()
		}
	}

	return &TestServerEnv{
		Server:    srv,
		Catalog:   cat,
		Sessions:  reg,
		Timers:    timers,
		Generator: gen,
		Explainer: ex,
		History:   hist,
		Redis:     mr,
		Config:    cfg,
		Cleanup:   cleanup,
	}
}
