package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/queuectl/internal/config"
	"github.com/joshu-sajeev/queuectl/internal/job"
	"github.com/joshu-sajeev/queuectl/internal/pool"
	"github.com/joshu-sajeev/queuectl/internal/queue"
	"github.com/joshu-sajeev/queuectl/internal/storage"
	"github.com/joshu-sajeev/queuectl/internal/storage/postgres"
	"github.com/joshu-sajeev/queuectl/internal/storage/sqlite"
	"github.com/joshu-sajeev/queuectl/internal/worker"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadServerConfig(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.ServerConfig, logger *slog.Logger) error {
	db, err := openDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	defer sqlDB.Close()

	dialect, err := storage.DialectFor(cfg.DBDriver)
	if err != nil {
		return err
	}
	if _, err := storage.Migrate(ctx, sqlDB, dialect, logger); err != nil {
		return err
	}

	jobRepo := storage.NewJobRepository(db)
	settings := config.NewStore(storage.NewSettingRepository(db))
	if err := settings.Load(ctx); err != nil {
		return err
	}

	q := queue.New()
	executor := worker.NewExecutor(jobRepo, worker.NewShellRunner(), logger,
		worker.WithBackoffUnit(cfg.BackoffUnit))
	dispatcher := pool.NewDispatcher(q, jobRepo, executor, logger,
		pool.WithDefaultSlots(cfg.WorkerCount),
		pool.WithStopTimeout(cfg.StopTimeout),
	)

	jobService := job.NewJobService(jobRepo, q, settings, logger)

	// The queue must hold every unfinished job before anything can dispatch.
	if _, err := jobService.Recover(ctx); err != nil {
		return fmt.Errorf("recover jobs: %w", err)
	}

	if cfg.WorkerAutostart {
		if _, err := dispatcher.Start(cfg.WorkerCount); err != nil {
			return err
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := job.NewRouter(
		job.NewJobHandler(jobService),
		job.NewControlHandler(job.NewControlService(dispatcher, settings)),
		logger,
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server started", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", slog.String("error", err.Error()))
		}
		if err := dispatcher.Shutdown(shutdownCtx); err != nil {
			logger.Warn("worker pool did not drain", slog.String("error", err.Error()))
		}
		return nil
	})

	return g.Wait()
}

func openDB(ctx context.Context, cfg *config.ServerConfig, logger *slog.Logger) (*gorm.DB, error) {
	level := storage.ParseLogLevel(cfg.DBLogLevel)

	switch cfg.DBDriver {
	case "postgres":
		pgCfg, err := postgres.LoadConfigFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		return postgres.ConnectDB(ctx, pgCfg, level, logger)
	default:
		return sqlite.ConnectDB(cfg.SQLitePath, level, logger)
	}
}
