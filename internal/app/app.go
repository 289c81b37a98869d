package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/httpserver"
	"github.com/vidtube/backend/internal/logging"
)

// Run bootstraps the vidtube backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: vidtube serve | migrate [up|status] | seed [name]")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "migrate":
		return runMigrations(ctx, args[1:])
	case "seed":
		return runSeed(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	var pool *pgxpool.Pool
	if cfg.Store != "memory" {
		pool, err = db.Connect(ctx, cfg.DatabaseURL, db.Options{
			MaxConns:       cfg.DBMaxConns,
			ConnectTimeout: cfg.DBConnTimeout,
		})
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var dbPool db.Pool
	if pool != nil {
		dbPool = pool
	}
	deps, cleanup, err := buildDependencies(ctx, dbPool, cfg, logger)
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg.AppPort, handlers.NewRouter(deps), cfg.RequestTimeout+time.Minute)

	logger.Info("starting http server", "port", cfg.AppPort, "store", cfg.Store, "env", cfg.Environment)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case runErr = <-srvErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	return errors.Join(runErr, srv.Shutdown(shutdownCtx), cleanup(shutdownCtx))
}
