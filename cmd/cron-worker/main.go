package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openlocus/locuspoint-backend/internal/backups"
	"github.com/openlocus/locuspoint-backend/internal/cron"
	"github.com/openlocus/locuspoint-backend/internal/history"
	"github.com/openlocus/locuspoint-backend/internal/locations"
	"github.com/openlocus/locuspoint-backend/pkg/config"
	"github.com/openlocus/locuspoint-backend/pkg/db"
	"github.com/openlocus/locuspoint-backend/pkg/logger"
	"github.com/openlocus/locuspoint-backend/pkg/metrics"
	"github.com/openlocus/locuspoint-backend/pkg/migrate"
	"github.com/openlocus/locuspoint-backend/pkg/redis"
)

const lockKeyFormat = "lp:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	locationRepo := locations.NewRepository(dbClient.DB())

	backupService, err := backups.NewService(backups.ServiceParams{
		Repo:        backups.NewRepository(dbClient.DB()),
		Source:      locations.NewRecordSource(locationRepo),
		Tx:          dbClient,
		OnWriteKeep: cfg.Backups.OnWriteKeep,
		WeeklyKeep:  cfg.Backups.WeeklyKeep,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create backup service", err)
		os.Exit(1)
	}

	historyService, err := history.NewService(history.ServiceParams{
		Repo:    history.NewRepository(dbClient.DB()),
		Store:   locations.NewRecordStore(locationRepo),
		Backups: backupService,
		Tx:      dbClient,
		Logger:  logg,
		Retain:  cfg.History.RetainPerField,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create history service", err)
		os.Exit(1)
	}


	weeklyBackupJob, err := cron.NewWeeklyBackupJob(backupService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create weekly backup job", err)
		os.Exit(1)
	}
	historyRetentionJob, err := cron.NewHistoryRetentionJob(historyService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create history retention job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(weeklyBackupJob, historyRetentionJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
