package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/openlocus/locuspoint-backend/api/routes"
	"github.com/openlocus/locuspoint-backend/internal/backups"
	"github.com/openlocus/locuspoint-backend/internal/history"
	"github.com/openlocus/locuspoint-backend/internal/locations"
	"github.com/openlocus/locuspoint-backend/pkg/config"
	"github.com/openlocus/locuspoint-backend/pkg/db"
	"github.com/openlocus/locuspoint-backend/pkg/logger"
	"github.com/openlocus/locuspoint-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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


	locationService, err := locations.NewService(locations.ServiceParams{
		Repo:            locationRepo,
		History:         historyService,
		Backups:         backupService,
		Tx:              dbClient,
		Logger:          logg,
		NewRecordWindow: cfg.Lifecycle.NewRecordWindow,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create location service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, locationService, historyService, backupService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
