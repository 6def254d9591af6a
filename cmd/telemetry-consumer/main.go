// Command telemetry-consumer drains the error telemetry queue into MySQL.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/restaurant-dashboard/internal/config"
	"github.com/iliyamo/restaurant-dashboard/internal/database"
	"github.com/iliyamo/restaurant-dashboard/internal/logging"
	"github.com/iliyamo/restaurant-dashboard/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("telemetry consumer stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadArchiveConfig()
	tc := config.LoadTelemetryConfig()

	log, closeLog, err := logging.Setup(cfg.LogFile, cfg.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Settings{
		User: cfg.User,
		Pass: cfg.Password,
		Host: cfg.Host,
		Port: cfg.Port,
		Name: cfg.Name,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	archive := &telemetry.SQLArchive{DB: db}
	if err := archive.EnsureSchema(ctx); err != nil {
		return err
	}

	c := &telemetry.Consumer{URL: tc.URL, Queue: tc.Queue, Prefetch: cfg.Prefetch, Archive: archive, Log: log}
	log.Info("consuming", "queue", tc.Queue, "database", cfg.Name)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consume %s: %w", tc.Queue, err)
	}
	log.Info("shutting down")
	return nil
}
