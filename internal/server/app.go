// Package server initializes and runs the sync server: database, migrations,
// HTTP API, metrics, the tombstone purge job and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cronv3 "github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/locallibrarian/librarian/internal/logging"
	"github.com/locallibrarian/librarian/internal/server/config"
	"github.com/locallibrarian/librarian/internal/server/handlers"
	"github.com/locallibrarian/librarian/internal/server/repositories/repomanager"
	"github.com/locallibrarian/librarian/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	purge  *services.PurgeService
	h      *handlers.Handlers
}

func NewApp(cfg *config.Config) (*App, error) {
	zl, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	logger := logging.NewZapLogger(zl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	ctx := context.Background()
	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	syncService := services.NewSyncService(db, repos, logger)
	sessionService := services.NewSessionService(cfg, logger)
	screenshotService := services.NewScreenshotService(cfg, logger)
	purgeService := services.NewPurgeService(db, repos, cfg.TombstoneRetention, logger)

	h := handlers.New(syncService, sessionService, screenshotService, logger)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		purge:  purgeService,
		h:      h,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startPurgeJob(ctx context.Context) (*cronv3.Cron, error) {
	c := cronv3.New()
	_, err := c.AddFunc(app.config.TombstonePurgeSchedule, func() {
		if err := app.purge.Purge(ctx); err != nil {
			app.logger.Error(ctx, "tombstone purge failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", app.config.TombstonePurgeSchedule, err)
	}
	c.Start()
	return c, nil
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	cron, err := app.startPurgeJob(ctx)
	if err != nil {
		return err
	}
	defer cron.Stop()

	srv := &http.Server{
		Addr:    app.config.ListenAddr,
		Handler: app.h.Router([]byte(app.config.SecretKey)),
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting server", "addr", app.config.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "shutdown error", "error", err)
	}

	return app.db.Close()
}
