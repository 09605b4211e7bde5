package main

import (
	"context"
	"log"

	"github.com/locallibrarian/librarian/internal/server"
	"github.com/locallibrarian/librarian/internal/server/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("init error: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
