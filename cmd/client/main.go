package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/locallibrarian/librarian/internal/client/cli"
	"github.com/locallibrarian/librarian/internal/client/config"
	"github.com/locallibrarian/librarian/internal/logging"
)

func main() {
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("init error: %v", err)
	}

	app.Run(context.Background())
}
