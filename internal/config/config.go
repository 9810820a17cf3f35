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
	// Spreadsheet backend selection
	DataBackend   string
	SpreadsheetID string

	// Exchange rates
	RatesBaseURL  string
	RateCacheSize int
	RateCacheTTL  time.Duration

	// AMQP (optional; empty URL disables archiving)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	SQLiteDBPath   string
	ReportInterval time.Duration
}

func Load() *Config {
	return &Config{
		DataBackend:   getEnv("DATA_BACKEND", "sheets"),
		SpreadsheetID: getEnv("TAGTRACK_SPREADSHEET_ID", ""),

		RatesBaseURL:  getEnv("RATES_BASE_URL", ""),
		RateCacheSize: getEnvInt("RATE_CACHE_SIZE", 64),
		RateCacheTTL:  getEnvDuration("RATE_CACHE_TTL", 30*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "tagtrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "session_archive"),

		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/tagtrack.db"),
		ReportInterval: getEnvDuration("REPORT_INTERVAL", 5*time.Minute),
	}
}

// Validate checks the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	var errs []string

	switch c.DataBackend {
	case "memory":
	case "sheets":
		if c.SpreadsheetID == "" {
			errs = append(errs, "TAGTRACK_SPREADSHEET_ID is required when using the sheets backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be 'sheets' or 'memory'", c.DataBackend))
	}

	if c.RatesBaseURL != "" {
		if u, err := url.Parse(c.RatesBaseURL); err != nil || u.Scheme == "" {
			errs = append(errs, fmt.Sprintf("invalid rates base URL '%s'", c.RatesBaseURL))
		}
	}
	if c.RateCacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid rate cache size %d: must be at least 1", c.RateCacheSize))
	}
	if c.RateCacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid rate cache TTL %v: must be at least 1 second", c.RateCacheTTL))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	}

	if c.ReportInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid report interval %v: must be at least 1 second", c.ReportInterval))
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
