package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/dagaz/internal/api"
	"github.com/starford/dagaz/internal/cache"
	"github.com/starford/dagaz/internal/docservice"
	"github.com/starford/dagaz/internal/engine"
	"github.com/starford/dagaz/internal/graph"
	"github.com/starford/dagaz/internal/health"
	"github.com/starford/dagaz/internal/scanner"
	"github.com/starford/dagaz/internal/sse"
	"github.com/starford/dagaz/internal/storage"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("docs_root", cfg.Docs.Root),
		slog.String("cache_path", cfg.Cache.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure the docs directory exists.
	if err := os.MkdirAll(cfg.Docs.Root, 0o755); err != nil {
		return fmt.Errorf("create docs dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Docs.Root, ".md")
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	eng, err := NewEngine(store, cfg, logger)
	if err != nil {
		return err
	}

	if cfg.Cache.Path != "" {
		db, cerr := cache.Open(cfg.Cache.Path)
		if cerr != nil {
			return fmt.Errorf("init cache: %w", cerr)
		}
		defer db.Close()
		eng.UseCache(db)
	}

	// Initial build. A failure here is not fatal: the watcher and the
	// rescan endpoint can recover once the root becomes readable.
	if _, err := eng.Rebuild(ctx); err != nil {
		logger.Warn("initial build failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	// Build API router.
	docsvc := docservice.NewService(store)
	apiRouter := api.NewRouter(eng, docsvc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the docs tree and announce rebuilds over SSE.
	g.Go(func() error {
		err := eng.Watch(gCtx, cfg.Docs.Root, func(snap *engine.Snapshot) {
			errs, warns, _ := snap.Report.Counts()
			broker.PublishRebuild(sse.RebuildData{
				Docs:     snap.Collection.Len(),
				Failures: len(snap.Failures),
				Errors:   errs,
				Warnings: warns,
				BuiltAt:  snap.BuiltAt.Format(time.RFC3339),
			})
		})
		if err != nil {
			logger.Error("watcher failed", slog.String("error", err.Error()))
		}
		return nil
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

// NewEngine builds an engine from the application configuration.
func NewEngine(store storage.Provider, cfg *Config, logger *slog.Logger) (*engine.Engine, error) {
	cadence, err := cfg.Docs.Cadence()
	if err != nil {
		return nil, fmt.Errorf("parse default cadence: %w", err)
	}
	return engine.New(store, engine.Config{
		Scan: scanner.Config{
			Ignore: cfg.Docs.Ignore,
			Rules:  cfg.Docs.Rules(),
		},
		Graph: graph.Options{
			ResolveIdentifiers: cfg.Docs.ResolveIdentifiers,
		},
		Health: health.Config{
			Roots:          cfg.Docs.Roots,
			DefaultCadence: cadence,
		},
	}, logger), nil
}
