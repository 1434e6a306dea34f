package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"khata/internal/amqp"
	"khata/internal/config"
	apphttp "khata/internal/http"
	applog "khata/internal/log"
	"khata/internal/services"
	"khata/internal/storage"
)

func main() {
	// Load .env for local development, ignore errors in production.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// The event bus is optional: without AMQP_URL ledger writes still
	// commit, they just emit no events.
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", "error", err)
			os.Exit(1)
		}
		defer events.Close()
		logger.Info("Connected to AMQP broker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, ledger events will not be published")
	}

	svc := apphttp.Services{
		Organizations: services.NewOrganizationService(repo),
		Contacts:      services.NewContactService(repo),
		Categories:    services.NewCategoryService(repo),
		Ledger:        services.NewLedgerService(repo, events),
		Reports:       services.NewReportService(repo),
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, cfg.ReportCacheSize, cfg.ReportCacheTTL)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting khata server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped")
}
