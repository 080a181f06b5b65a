// Package server wires configuration, storage, services and transports into
// the running nutritracker API and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/nutritracker/internal/logging"
	"github.com/dmitrijs2005/nutritracker/internal/server/archive"
	"github.com/dmitrijs2005/nutritracker/internal/server/auth"
	"github.com/dmitrijs2005/nutritracker/internal/server/config"
	"github.com/dmitrijs2005/nutritracker/internal/server/nutrients"
	"github.com/dmitrijs2005/nutritracker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/nutritracker/internal/server/rest"
	"github.com/dmitrijs2005/nutritracker/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/nutritracker/internal/server/grpc"
)

// Seams for tests.
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *rest.Server
	grpcServer *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	archiver, err := archive.New(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("archive init error: %w", err)
	}
	if c.ArchiveEnabled() {
		logger.Info(ctx, "Archiving snapshots", "bucket", c.S3Bucket)
	}

	issuer := auth.NewIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)
	lookup := nutrients.NewClient(c.USDABaseURL, c.USDAAPIKey, c.USDARequestTimeout, c.USDARateLimit, logger)

	us := services.NewUserService(db, rm, issuer, c)
	ts := services.NewTrackerService(db, rm, archiver, logger)
	fs := services.NewFoodService(db, rm, lookup, ts, archiver, logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		httpServer: rest.NewServer(c, us, fs, ts, logger),
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db),
	}, nil
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

// serve runs one listener; a failure stops the whole app.
func (app *App) serve(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run serves HTTP and gRPC until ctx is cancelled, a signal arrives or one
// of the listeners fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.serve(ctx, cancelFunc, "http", app.httpServer.Run)
	}()
	go func() {
		defer wg.Done()
		app.serve(ctx, cancelFunc, "grpc", app.grpcServer.Run)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
