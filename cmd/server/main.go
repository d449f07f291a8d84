package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/akobyansamvel/sweet/internal/config"
	"github.com/akobyansamvel/sweet/internal/db"
	"github.com/akobyansamvel/sweet/internal/db/mock"
	applog "github.com/akobyansamvel/sweet/internal/log"
	"github.com/akobyansamvel/sweet/internal/seed"
	"github.com/akobyansamvel/sweet/internal/server"
)

type serverLifecycle interface {
	Start() error
	Stop() error
}

// Indirection points so run can be exercised without sockets or a real
// database.
var (
	loadConfigFunc      = config.Load
	setLogLevelFunc     = applog.SetLevel
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
	seedDefaultsFunc    = seed.Defaults
	newServerFunc       = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

func main() {
	// Missing .env files are fine; real deployments set the environment.
	_ = godotenv.Load()
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}

	if err := setLogLevelFunc(cfg.Logging.Level); err != nil {
		applog.Error(ctx, "invalid log level", "error", err, "level", cfg.Logging.Level)
		return 1
	}

	var database *gorm.DB
	if cfg.Database.UseMock || cfg.Database.URL == "" {
		applog.Info(ctx, "no database url configured, using in-memory demo database")
		database, err = newMockDatabaseFunc(ctx)
	} else {
		database, err = configureDatabase(cfg.Database)
	}
	if err != nil {
		applog.Error(ctx, "failed to configure database", "error", err)
		return 1
	}

	if stats, err := seedDefaultsFunc(ctx, database); err != nil {
		applog.Error(ctx, "failed to seed default settings", "error", err)
		return 1
	} else if stats.Inserts > 0 {
		applog.Info(ctx, "seeded default settings", "inserted", stats.Inserts, "skipped", stats.Skipped)
	}

	srv, err := newServerFunc(server.Config{
		Addr:     cfg.Server.Addr,
		BasePath: cfg.Server.BasePath,
		Database: database,
	})
	if err != nil {
		applog.Error(ctx, "failed to initialize server", "error", err)
		return 1
	}

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr, "basePath", cfg.Server.BasePath)
		errCh <- srv.Start()
	}()

	shutdownCh, unsubscribe := subscribeShutdownSig()
	defer unsubscribe()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
	case <-shutdownCh:
		applog.Info(ctx, "shutting down http server")
		if err := srv.Stop(); err != nil {
			applog.Error(ctx, "graceful shutdown failed", "error", err)
			return 1
		}
	}

	return 0
}
