// Package server parses engine server flags and launches the HTTP API.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/duskhollow/engine/internal/game"
	"github.com/duskhollow/engine/internal/platform/config"
	"github.com/duskhollow/engine/internal/platform/logger"
	"github.com/duskhollow/engine/internal/platform/otel"
	apiserver "github.com/duskhollow/engine/internal/server"
	"github.com/duskhollow/engine/internal/storage"
	"github.com/duskhollow/engine/internal/storage/memory"
	"github.com/duskhollow/engine/internal/storage/sqlite"
)

// Config holds server command configuration.
type Config struct {
	Port        int    `env:"DUSKHOLLOW_PORT" envDefault:"8080"`
	DBPath      string `env:"DUSKHOLLOW_DB_PATH" envDefault:"duskhollow.db"`
	Environment string `env:"DUSKHOLLOW_ENV" envDefault:"development"`
	// StrictReplay aborts state queries on the first malformed event
	// instead of skipping it.
	StrictReplay bool `env:"DUSKHOLLOW_STRICT_REPLAY" envDefault:"false"`
	// SnapshotInterval is the number of events between state snapshots.
	SnapshotInterval int64 `env:"DUSKHOLLOW_SNAPSHOT_INTERVAL" envDefault:"100"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path, or :memory: for a non-persistent store")
	fs.BoolVar(&cfg.StrictReplay, "strict-replay", cfg.StrictReplay, "Abort state queries on malformed events")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the engine HTTP API and blocks until ctx is cancelled or
// the server fails.
func Run(ctx context.Context, cfg Config) error {
	log, err := logger.New(cfg.Environment)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	shutdownOtel, err := otel.Setup(ctx, "duskhollow-engine")
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOtel(shutdownCtx)
	}()

	var store storage.Store
	if cfg.DBPath == ":memory:" {
		store = memory.New()
		log.Info("using in-memory store")
	} else {
		db, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		store = db
		log.Info("using sqlite store", zap.String("path", cfg.DBPath))
	}

	hub := apiserver.NewHub(log)
	svc := game.NewService(store, log,
		game.WithStrictReplay(cfg.StrictReplay),
		game.WithSnapshotInterval(cfg.SnapshotInterval),
		game.WithBroadcaster(hub.Broadcast),
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           apiserver.New(svc, hub, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("server listening", zap.Int("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
