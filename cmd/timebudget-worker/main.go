package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"timebudget/internal/amqp"
	"timebudget/internal/config"
	"timebudget/internal/export"
	applog "timebudget/internal/log"
	"timebudget/internal/services"
	"timebudget/internal/storage"
	"timebudget/internal/worker"
)

func main() {
	// .env is for local development only; production runs on real env vars.
	_ = godotenv.Load()

	logger := applog.New(slog.LevelInfo, "timebudget-worker")
	applog.SetDefault(logger)

	logger.Info("Starting timebudget-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, time.Local)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Report export is optional. Reminders still run without it.
	var exporter worker.ReportExporter
	if cfg.SheetsExportEnabled() {
		sheets, err := export.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName,
			cfg.GoogleCredentialsJSON, cfg.GoogleCredentialsFile)
		if err != nil {
			logger.Error("Failed to initialize Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = sheets
		logger.Info("Sheets exporter initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Report export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	ledger := services.NewLedgerService(repo, nil)
	reminders := worker.NewReminderWorker(repo, ledger, exporter, cfg.ReminderInterval, cfg.ReminderLookahead)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return reminders.Run(gctx)
	})

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.ConsumeEvents(gctx, func(ev amqp.Event) error {
				return reminders.HandleEvent(gctx, ev)
			})
		})
		logger.Info("Consuming events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - running reminders only")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
