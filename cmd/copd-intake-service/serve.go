package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"copd-intake-service/internal/adapters"
	"copd-intake-service/internal/api/handlers"
	"copd-intake-service/internal/config"
	"copd-intake-service/internal/database"
	"copd-intake-service/internal/domain/repositories"
	applog "copd-intake-service/internal/logger"
	"copd-intake-service/internal/services"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the intake HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := applog.NewLogger(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	queue, closeQueue, err := openReviewQueue(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeQueue()

	intakeService := services.NewIntakeService(repo, queue, logger)
	if _, err := intakeService.RestorePendingReviews(ctx); err != nil {
		logger.Warn("could not restore pending reviews", zap.Error(err))
	}
	reportService := services.NewReportService(repo, cfg.FHIR.Version, logger)

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		DisableStartupMessage: true,
	})
	handlers.RegisterIntakeRoutes(app, handlers.NewIntakeHandler(intakeService, logger))
	handlers.RegisterReportRoutes(app, handlers.NewReportHandler(reportService, logger))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("store", cfg.Store.Backend),
			zap.Bool("redis_queue", cfg.Redis.Addr != ""),
		)
		errCh <- app.Listen(cfg.HTTP.Addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server stopped: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

// openStore returns the configured intake store and a func that releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.IntakeRecordRepositoryContract, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		gdb, err := database.NewGorm(db, logger)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		repo := repositories.NewGormIntakeRecordRepository(gdb, logger)
		if err := repo.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("using postgres intake store", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Database))
		return repo, func() { _ = db.Close() }, nil
	default:
		store, err := adapters.NewWorkbookIntakeStore(cfg.Store.WorkbookPath, cfg.Store.WorkbookSheet, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using workbook intake store", zap.String("path", cfg.Store.WorkbookPath))
		return store, func() {}, nil
	}
}

// openReviewQueue connects to Redis when configured, otherwise keeps the queue in memory.
func openReviewQueue(ctx context.Context, cfg *config.Config, logger *zap.Logger) (adapters.ReviewQueue, func(), error) {
	if cfg.Redis.Addr == "" {
		return adapters.NewInMemoryReviewQueue(logger), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	return adapters.NewRedisReviewQueue(client, logger), func() { _ = client.Close() }, nil
}
