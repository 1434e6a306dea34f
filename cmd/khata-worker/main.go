package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"khata/internal/amqp"
	"khata/internal/config"
	"khata/internal/export"
	gsheet "khata/internal/export/google"
	applog "khata/internal/log"
	"khata/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	// The Sheets sink is optional: without a spreadsheet the worker still
	// drains the queue so events do not pile up in the broker.
	var appender export.EntryAppender
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender = client
		logger.Info("Google Sheets export enabled",
			"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Google Sheets export disabled, no GOOGLE_SPREADSHEET_ID provided")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	logger.Info("Starting khata-worker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	w := worker.NewExportWorker(client, appender, cfg.ConsumeTimeout)
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped")
}
