// Package server wires the journal server together: configuration,
// PostgreSQL, migrations, services and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/server/config"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophjournal/internal/server/services"

	gs "github.com/dmitrijs2005/gophjournal/internal/server/grpc"
)

// Seams for tests.
var (
	openDB               = sql.Open
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
	migrationsTimeout    = 30 * time.Second
)

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	identityService *services.IdentityService
	entryService    *services.EntryService
	exportService   *services.ExportService
}

func newLogger(level string) logging.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return logging.NewJSONLogger(os.Stdout, l)
}

// NewApp connects to PostgreSQL, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := newLogger(c.LogLevel)

	db, err := openDB("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := newRepositoryManager()

	mctx, cancel := context.WithTimeout(ctx, migrationsTimeout)
	defer cancel()
	if err := rm.RunMigrations(mctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	notifier := services.LogNotifier{Logger: logger.With("module", "notifier")}
	es := services.NewEntryService(db, rm)

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		identityService: services.NewIdentityService(db, rm, notifier, c),
		entryService:    es,
		exportService:   services.NewExportService(es, c),
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

// Run serves gRPC until ctx is cancelled or a termination signal arrives,
// then closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger,
		app.identityService, app.entryService, app.exportService, app.config.SecretKey)

	runErr := s.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, "gRPC server stopped", "error", runErr)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	return runErr
}
