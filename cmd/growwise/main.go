// GrowWise client: session store, view API and command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/growwise/growwise-client/internal/backend"
	"github.com/growwise/growwise-client/internal/config"
	"github.com/growwise/growwise-client/internal/session"
	"github.com/growwise/growwise-client/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "growwise",
		Short:        "GrowWise career coaching client",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			}))
			slog.SetDefault(logger)

			if err := godotenv.Load(); err != nil {
				slog.Debug("No .env file found, using environment variables")
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(),
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newThreadsCmd(),
		newSendCmd(),
		newRecommendationsCmd(),
		newProfessionsCmd(),
		newCertificationsCmd(),
	)
	return root
}

// app bundles the dependencies shared by every command.
type app struct {
	cfg      *config.Config
	repo     *store.SQLiteStore
	client   *backend.Client
	sessions *session.Store
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	if err := repo.Ping(ctx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("database health check: %w", err)
	}

	client := backend.New(cfg.APIBaseURL,
		backend.WithTokenSource(repo),
		backend.WithTimeout(cfg.HTTP.Timeout),
		backend.WithRateLimit(cfg.HTTP.RateLimit, cfg.HTTP.Burst),
	)
	sessions := session.New(ctx, repo, client, session.OptionsFromConfig(cfg.Session, slog.Default()))
	sessions.RestoreSession(ctx)

	return &app{cfg: cfg, repo: repo, client: client, sessions: sessions}, nil
}

func (a *app) Close() {
	a.sessions.Close()
	if err := a.repo.Close(); err != nil {
		slog.Error("Failed to close repository", "error", err)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
