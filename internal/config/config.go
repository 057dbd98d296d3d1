package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Config struct {
	// HTTP Server
	Port            string
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	// Backend selection
	DataBackend string

	// Storage
	SQLiteDBPath string
	SeedDir      string

	// Logging
	LogLevel string

	// AMQP, disabled when URL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Worker
	ExportSchedule string
}

var (
	validBackends  = []string{"memory", "sqlite"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8081"),
		CORSOrigins:     getEnvList("CORS_ORIGINS"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DataBackend: getEnv("DATA_BACKEND", "sqlite"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/enoteca.db"),
		SeedDir:      getEnv("SEED_DIR", "data"),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "enoteca"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_submitted"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Registro"),

		ExportSchedule: getEnv("EXPORT_SCHEDULE", "30 23 * * *"),
	}
}

// AMQPEnabled reports whether a broker is configured.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.LogLevel != "" && !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && strings.TrimSpace(c.GoogleSheetName) == "" {
		errors = append(errors, "Google Sheet name is required when a spreadsheet ID is provided")
	}

	if c.ExportSchedule != "" {
		if _, err := cron.ParseStandard(c.ExportSchedule); err != nil {
			errors = append(errors, fmt.Sprintf("invalid export schedule '%s': %v", c.ExportSchedule, err))
		}
	}

	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			continue
		}
		if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid CORS origin '%s': must be an absolute URL or *", origin))
		}
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
