// Command sweep deletes alerts older than the configured retention window.
// It is meant to run from cron.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"ledgerbook/internal/alerts"
	"ledgerbook/internal/config"
	"ledgerbook/internal/database"
	"ledgerbook/internal/events"
	"ledgerbook/internal/logger"
	"ledgerbook/internal/services"
	"ledgerbook/internal/store"
)

func main() {
	logger.Init(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Sweep error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	log := logger.Get()
	th := alerts.Thresholds{
		LargeExpense: cfg.Alerts.LargeExpense,
		LowBalance:   cfg.Alerts.LowBalance,
		OverrunRatio: cfg.Alerts.OverrunRatio,
	}
	svc := services.NewAlertService(
		store.NewGormStore(dbManager.DB()),
		alerts.NewDefaultEngine(th, log),
		events.Nop{},
		services.SystemClock(cfg.Location),
		cfg.Alerts.Retention,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := svc.Purge(ctx)
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	log.Infof("Purged %d alert(s) older than %s", n, cfg.Alerts.Retention)
	return nil
}
