package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/MikeSquared-Agency/chatview/internal/api"
	"github.com/MikeSquared-Agency/chatview/internal/config"
	"github.com/MikeSquared-Agency/chatview/internal/hermes"
	"github.com/MikeSquared-Agency/chatview/internal/ingest"
	"github.com/MikeSquared-Agency/chatview/internal/store"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API and the NATS submission listener",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the API server (overrides CHATVIEW_PORT)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			if c.IsSet("port") {
				cfg.Port = c.Int("port")
			}
			setupLogging(os.Stdout, cfg.LogLevel)
			return serve(c.Context, cfg)
		},
	}
}

func serve(parent context.Context, cfg config.Config) error {
	slog.Info("chatview starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	// NATS is optional; without it uploads still work over HTTP.
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
		hermesClient, err = hermes.NewClient(connectCtx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		connectCancel()
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer hermesClient.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set, running without submission listener")
	}

	var pub ingest.Publisher
	if hermesClient != nil {
		pub = hermesClient
	}
	svc := ingest.New(repo, pub, cfg.MaxUploadBytes, slog.Default())

	if hermesClient != nil {
		if err := hermesClient.Subscribe(hermes.SubjectSubmitted, svc.HandleSubmitted); err != nil {
			return fmt.Errorf("subscribe %s: %w", hermes.SubjectSubmitted, err)
		}
	}

	srv := api.NewServer(api.Config{
		Port:           cfg.Port,
		APIToken:       cfg.APIToken,
		PageSize:       cfg.PageSize,
		SelfName:       cfg.SelfName,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, repo, svc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	slog.Info("chatview ready", "port", cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		slog.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", "error", err)
	}
	slog.Info("chatview stopped")
	return nil
}

// openRepository returns the Postgres store when DATABASE_URL is set and the
// in-memory store otherwise.
func openRepository(ctx context.Context, cfg config.Config) (store.Repository, func(), error) {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, transcripts are kept in memory")
		return store.NewMemory(), func() {}, nil
	}

	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	slog.Info("database connected")
	return db, db.Close, nil
}
