// Package server initializes and runs the back-office server: it opens the
// database, applies migrations, connects object storage and starts the HTTP
// API and the gRPC health endpoint until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/siteadmin/internal/dbx"
	"github.com/dmitrijs2005/siteadmin/internal/logging"
	"github.com/dmitrijs2005/siteadmin/internal/querycache"
	"github.com/dmitrijs2005/siteadmin/internal/server/catalog"
	"github.com/dmitrijs2005/siteadmin/internal/server/config"
	"github.com/dmitrijs2005/siteadmin/internal/server/httpapi"
	"github.com/dmitrijs2005/siteadmin/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/siteadmin/internal/server/services"
	"github.com/dmitrijs2005/siteadmin/internal/server/storage"
	"github.com/dmitrijs2005/siteadmin/internal/server/uploads"

	gs "github.com/dmitrijs2005/siteadmin/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *httpapi.Server
	grpc   *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := dbx.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	s3Client, err := storage.NewS3Client(ctx, storage.S3Config{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	blobs := storage.NewS3Storage(s3Client, c.S3BucketPrefix, c.AssetPublicBaseURL)

	cat := catalog.New(rm.Content(db), catalog.Options{
		Blobs:  blobs,
		Cache:  querycache.New(c.ListCacheTTL),
		Logger: logger,
	})

	users := services.NewUserService(db, rm, c, logger)

	api := httpapi.NewServer(c.EndpointAddrHTTP, httpapi.Deps{
		Users:          users,
		Catalog:        cat,
		Uploads:        uploads.NewService(blobs, logger),
		DB:             db,
		Logger:         logger,
		AllowedOrigins: c.CORSAllowedOrigins,
	})

	return &App{
		config: c,
		logger: logger,
		db:     db,
		http:   api,
		grpc:   gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db),
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpc.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a signal arrives or either server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
