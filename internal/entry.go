// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/stallerud/ansuz/internal/api"
	"github.com/stallerud/ansuz/internal/bridge"
	"github.com/stallerud/ansuz/internal/index"
	"github.com/stallerud/ansuz/internal/notestore"
	"github.com/stallerud/ansuz/internal/sse"
	"github.com/stallerud/ansuz/internal/storage"
)

// Runtime bundles the vault store, the note engine, and the graph index
// behind a single initialization path shared by serve mode and the
// one-shot commands.
type Runtime struct {
	Config *Config
	Logger *slog.Logger
	Store  *storage.FS
	Engine *notestore.Engine
	DB     *index.DB
}

// NewRuntime initializes the vault, the note engine, and the SQLite index
// from configuration. Logs go to logw as structured JSON.
func NewRuntime(cfg *Config, logw io.Writer) (*Runtime, error) {
	logger := slog.New(slog.NewJSONHandler(logw, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	engine := notestore.New(store, notestore.Options{
		Format:           cfg.Store.Format,
		ExcludedTag:      cfg.Store.ExcludedTag,
		IdentifyExcluded: cfg.Store.IdentifyExcluded,
	})

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	return &Runtime{Config: cfg, Logger: logger, Store: store, Engine: engine, DB: db}, nil
}

// Close releases the index connection.
func (rt *Runtime) Close() error {
	return rt.DB.Close()
}

// Bridge builds a reconciliation service over the runtime with the given
// prompter.
func (rt *Runtime) Bridge(p bridge.Prompter) *bridge.Service {
	return bridge.NewService(rt.Store, rt.Engine, rt.DB, p, rt.Logger)
}

// Sync runs a full vault-to-index reconciliation pass.
func (rt *Runtime) Sync() error {
	return index.Sync(rt.DB, rt.Store, rt.Engine, rt.Logger)
}

// Run starts the application server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	rt, err := NewRuntime(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer rt.Close()

	logger := rt.Logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("store_format", cfg.Store.Format),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Run initial sync.
	if err := rt.Sync(); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build API service and router. The server never prompts, so the
	// bridge runs without a prompter; only its non-interactive operations
	// are reachable through the API.
	svc := api.NewService(rt.Store, rt.Engine, rt.DB, rt.Bridge(nil))
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		return index.Watch(gCtx, rt.DB, rt.Store, rt.Engine, cfg.Vault.Path, logger, func(kind, path string) {
			broker.PublishIndexEvent(kind, path)
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
