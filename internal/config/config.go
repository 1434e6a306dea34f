package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP event bus (optional; empty URL disables event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets audit export (optional; empty ID disables export)
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Worker
	ConsumeTimeout time.Duration

	// Report cache
	ReportCacheTTL  time.Duration
	ReportCacheSize int

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/khata.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "khata"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Ledger"),

		ConsumeTimeout: getEnvDuration("CONSUME_TIMEOUT", 30*time.Second),

		ReportCacheTTL:  getEnvDuration("REPORT_CACHE_TTL", 30*time.Second),
		ReportCacheSize: getEnvInt("REPORT_CACHE_SIZE", 128),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the configuration and returns every problem in one error.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		errs = append(errs, "Google sheet name cannot be empty when a spreadsheet ID is provided")
	}

	if c.ReportCacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid report cache TTL %v: must be at least 1 second", c.ReportCacheTTL))
	}
	if c.ReportCacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid report cache size %d: must be at least 1", c.ReportCacheSize))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
