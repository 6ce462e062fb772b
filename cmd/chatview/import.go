package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/MikeSquared-Agency/chatview/internal/config"
	"github.com/MikeSquared-Agency/chatview/internal/hermes"
	"github.com/MikeSquared-Agency/chatview/internal/ingest"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import exported chats from a file or directory into the store",
		ArgsUsage: "DIR|FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Usage: "Origin label stored with each transcript", Value: "cli"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one DIR or FILE argument")
			}
			cfg := config.Load()
			setupLogging(os.Stdout, cfg.LogLevel)
			return runImport(c.Context, cfg, c.Args().First(), c.String("source"))
		},
	}
}

func runImport(ctx context.Context, cfg config.Config, root, source string) error {
	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	var pub ingest.Publisher
	if cfg.NatsURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		client, err := hermes.NewClient(connectCtx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		cancel()
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer client.Close()
		pub = client
	}

	svc := ingest.New(repo, pub, cfg.MaxUploadBytes, slog.Default())
	sum, err := svc.ImportDir(ctx, root, source)
	if err != nil {
		return err
	}

	slog.Info("import complete",
		"imported", len(sum.Imported),
		"messages", sum.Messages,
		"errors", len(sum.Errors),
	)
	for _, id := range sum.Imported {
		fmt.Println(id)
	}
	if len(sum.Errors) > 0 {
		return fmt.Errorf("%d file(s) failed to import", len(sum.Errors))
	}
	return nil
}
