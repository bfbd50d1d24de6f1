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

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/harvest/internal/api"
	"github.com/starford/harvest/internal/catalog"
	"github.com/starford/harvest/internal/loader"
	"github.com/starford/harvest/internal/mcpserver"
	"github.com/starford/harvest/internal/metrics"
	"github.com/starford/harvest/internal/sessions"
	"github.com/starford/harvest/internal/sessionservice"
	"github.com/starford/harvest/internal/sse"
	"github.com/starford/harvest/internal/storage"
	"github.com/starford/harvest/internal/tui"
)

func setup(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// openSource builds the catalog source. Without a catalog directory the
// built-in seed catalog is served.
func openSource(cfg CatalogConfig, logger *slog.Logger) (*loader.Source, error) {
	if cfg.Dir == "" {
		logger.Info("no catalog directory configured, serving seed catalog")
		return loader.NewStaticSource(catalog.SeedCatalog()), nil
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	src, err := loader.NewSource(store, logger, cfg.SeedOnEmpty)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return src, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.newLogger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("catalog_dir", cfg.Catalog.Dir),
		slog.String("sessions_path", cfg.Sessions.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	src, err := openSource(cfg.Catalog, logger)
	if err != nil {
		return err
	}
	metrics.SetCatalogSize(src.Catalog().Len())

	db, err := sessions.Open(cfg.Sessions.Path)
	if err != nil {
		return fmt.Errorf("init sessions: %w", err)
	}
	defer db.Close()

	// SSE broker.
	broker := sse.NewBroker(cfg.Catalog.Throttle)
	defer broker.Close()

	svc := sessionservice.NewService(src, db, broker.PublishSessionEvent)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := db.Count(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	// Reload the catalog on file changes and notify subscribers.
	g.Go(func() error {
		return loader.Watch(gCtx, src, logger, func(version string) {
			metrics.CatalogReloaded()
			metrics.SetCatalogSize(src.Catalog().Len())
			broker.PublishCatalogEvent(version)
		})
	})

	// End idle sessions.
	g.Go(func() error {
		svc.RunSweeper(gCtx, cfg.Sessions.SweepInterval, cfg.Sessions.TTL, logger)
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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		cancel()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped")
	return nil
}

// RunMCP serves the catalog tools over stdio. Logs go to stderr since stdout
// carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := setup(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.newLogger()

	src, err := openSource(app.config.Catalog, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := loader.Watch(ctx, src, logger, nil); err != nil {
			logger.Warn("watcher stopped", slog.String("error", err.Error()))
		}
	}()

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(src).ServeStdio()
}

// RunBrowse opens the terminal browser. Logs are discarded unless
// WithLogOutput is given, since they would corrupt the screen.
func RunBrowse(ctx context.Context, opts ...Option) error {
	app, err := setup(append([]Option{WithLogOutput(io.Discard)}, opts...))
	if err != nil {
		return err
	}
	logger := app.newLogger()

	src, err := openSource(app.config.Catalog, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.New(src), tea.WithAltScreen(), tea.WithContext(ctx))
	go func() {
		if err := loader.Watch(ctx, src, logger, func(version string) {
			p.Send(tui.CatalogReloadedMsg{Version: version})
		}); err != nil {
			logger.Warn("watcher stopped", slog.String("error", err.Error()))
		}
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}
