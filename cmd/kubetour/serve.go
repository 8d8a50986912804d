package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kode4food/kubetour"
	"github.com/kode4food/kubetour/internal/catalog"
	"github.com/kode4food/kubetour/internal/config"
	"github.com/kode4food/kubetour/internal/explain"
	"github.com/kode4food/kubetour/internal/genai"
	"github.com/kode4food/kubetour/internal/quiz"
	"github.com/kode4food/kubetour/internal/server"
	"github.com/kode4food/kubetour/internal/session"
	"github.com/kode4food/kubetour/pkg/log"
)

type app struct {
	cfg        *config.Config
	sessions   *session.Registry
	history    *quiz.History
	apiServer  *server.Server
	httpServer *http.Server
	quit       chan os.Signal
}

var ErrOpenHistory = errors.New("failed to open quiz history store")

func serveCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cfg, os.Stdout)
			a := &app{
				cfg:  cfg,
				quit: make(chan os.Signal, 1),
			}
			return a.run(cmd.Context())
		},
	}
}

func (a *app) run(ctx context.Context) error {
	slog.Info("Kubetour server starting",
		slog.String("log_level", a.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("api_host", a.cfg.APIHost),
		slog.Int("api_port", a.cfg.APIPort),
		slog.String("history_store", a.cfg.History.Store),
		slog.Bool("genai_configured", a.cfg.GenAI.APIKey != ""),
		slog.Int("genai_max_retries", a.cfg.GenAI.MaxRetries))

	if err := a.initialize(ctx); err != nil {
		return err
	}
	errs := a.startServer()

	signal.Notify(a.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.quit)

	var err error
	select {
	case <-a.quit:
	case err = <-errs:
	}

	a.shutdown()
	return err
}

func (a *app) initialize(ctx context.Context) error {
	store, err := a.cfg.History.OpenStore(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenHistory, err)
	}
	a.history = quiz.NewHistory(store)

	cat := catalog.Default()
	gen := genai.NewClient(a.cfg.GenAI.ClientConfig())
	ex := explain.NewService(gen, cat, a.cfg.ExplainCacheSize)
	a.sessions = session.NewRegistry(cat)
	a.apiServer = server.NewServer(cat, a.sessions, ex, a.history)
	return nil
}

func (a *app) startServer() <-chan error {
	a.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.cfg.APIHost, a.cfg.APIPort),
		Handler: a.apiServer.SetupRoutes(),
	}

	errs := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", a.httpServer.Addr),
			slog.String("version", kubetour.Version))
		err := a.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
			errs <- err
		}
	}()
	return errs
}

func (a *app) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), a.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	a.apiServer.CloseWebSockets()
	a.sessions.Close()

	if err := a.history.Close(); err != nil {
		slog.Error("History store close failed", log.Error(err))
	}

	slog.Info("Server exited")
}
