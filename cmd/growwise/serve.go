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
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/growwise/growwise-client/internal/api"
	"github.com/growwise/growwise-client/internal/live"
	"github.com/growwise/growwise-client/internal/middleware"
)

func newServeCmd() *cobra.Command {
	var syncOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local view API and live state stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), syncOnStart)
		},
	}
	cmd.Flags().BoolVar(&syncOnStart, "sync", true, "sync threads from the backend at startup when signed in")
	return cmd
}

func serve(parent context.Context, syncOnStart bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "backend", cfg.APIBaseURL,
		"persist_mode", cfg.Session.PersistMode, "thread_sync", cfg.Session.ThreadSync)

	if syncOnStart && a.sessions.Snapshot().User != nil {
		if err := a.sessions.SyncThreads(ctx); err != nil {
			slog.Warn("Initial thread sync failed, continuing with cached sessions", "error", err)
		}
	}

	// Initialize handlers.
	hub := live.NewHub(a.sessions.Snapshot, cfg.FrontendURL, cfg.IsDevelopment())
	unsubscribe := a.sessions.Subscribe(hub.Publish)
	defer unsubscribe()
	defer hub.Close()

	baseHandler := api.NewHandler(a.sessions)
	healthHandler := api.NewHealthHandlerWithConfig(a.repo, cfg)
	sessionHandler := api.NewSessionHandler(baseHandler)
	catalogHandler := api.NewCatalogHandler(baseHandler, a.client)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins()))

	healthHandler.RegisterHealth(r)
	sessionHandler.RegisterRoutes(r)
	catalogHandler.RegisterRoutes(r)

	// WebSocket endpoint.
	r.Get("/ws/state", hub.ServeHTTP)

	// No WriteTimeout: /ws/state connections are long lived.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server stopped successfully")
	return nil
}
