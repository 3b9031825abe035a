// Package server initializes and runs the notehub application server.
// It selects a storage backend, runs migrations, wires the domain services
// into both protocol adapters, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/dmitrijs2005/notehub/internal/server/config"
	"github.com/dmitrijs2005/notehub/internal/server/graphapi"
	"github.com/dmitrijs2005/notehub/internal/server/httpapi"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notehub/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	noteService *services.NoteService
}

func newLogger(format string) logging.Logger {
	if format == "pretty" {
		zl := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
		return logging.NewZerologLogger(zl)
	}
	return logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := newLogger(cfg.LogFormat)

	var db *sql.DB
	var m repomanager.RepositoryManager

	if cfg.DatabaseDSN != "" {
		var err error
		db, err = repomanager.OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		m = repomanager.NewPostgresRepositoryManager()
		if err := m.RunMigrations(ctx, db); err != nil {
			return nil, fmt.Errorf("migration error: %w", err)
		}
	} else {
		logger.Warn(ctx, "no database DSN configured, using in-memory storage")
		m = repomanager.NewMemoryRepositoryManager()
	}

	us := services.NewUserService(db, m, cfg)
	ns := services.NewNoteService(db, m, cfg)

	return &App{config: cfg, logger: logger, db: db, userService: us, noteService: ns}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	graph, err := graphapi.NewHandler(app.userService, app.noteService, app.logger)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	s := httpapi.NewServer(app.config.EndpointAddr, app.logger, app.userService, app.noteService,
		app.config.SecretKey, graph)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err.Error())
		}
	}
}
