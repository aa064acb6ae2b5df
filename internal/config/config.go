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
	// HTTP server
	Port string

	// Table store backend: sheets, sqlite or memory
	Backend string

	// Google Sheets
	SpreadsheetID      string
	ServiceAccountJSON string
	ServiceAccountFile string

	// SQLite
	SQLitePath string

	// Read cache window for remote tables
	CacheTTL time.Duration

	// AMQP notification sink
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		Port:    getEnv("PORT", "8082"),
		Backend: getEnv("DATA_BACKEND", "memory"),

		SpreadsheetID:      getEnv("SPREADSHEET_ID", ""),
		ServiceAccountJSON: getEnv("SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountFile: getEnv("SERVICE_ACCOUNT_FILE", ""),

		SQLitePath: getEnv("SQLITE_DB_PATH", "./data/balcao.db"),

		CacheTTL: getEnvDuration("READ_CACHE_TTL", 20*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "balcao"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "checkout_notifications"),
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.Backend {
	case "sheets":
		if c.SpreadsheetID == "" {
			problems = append(problems, "SPREADSHEET_ID is required when using the sheets backend")
		}
		hasJSON := c.ServiceAccountJSON != ""
		hasFile := c.ServiceAccountFile != "" || os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != ""
		if !hasJSON && !hasFile {
			problems = append(problems, "either SERVICE_ACCOUNT_JSON or SERVICE_ACCOUNT_FILE must be provided for the sheets backend")
		}
		if c.ServiceAccountFile != "" {
			if _, err := os.Stat(c.ServiceAccountFile); os.IsNotExist(err) {
				problems = append(problems, fmt.Sprintf("service account file does not exist: %s", c.ServiceAccountFile))
			}
		}
	case "sqlite":
		if c.SQLitePath == "" {
			problems = append(problems, "SQLITE_DB_PATH cannot be empty when using the sqlite backend")
		} else if dir := filepath.Dir(c.SQLitePath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					problems = append(problems, fmt.Sprintf("cannot create sqlite database directory '%s': %v", dir, err))
				}
			}
		}
	case "memory":
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [sheets sqlite memory]", c.Backend))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.CacheTTL < time.Second {
		problems = append(problems, fmt.Sprintf("invalid read cache TTL %v: must be at least 1 second", c.CacheTTL))
	} else if c.CacheTTL > time.Hour {
		problems = append(problems, fmt.Sprintf("invalid read cache TTL %v: must be at most 1 hour", c.CacheTTL))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
