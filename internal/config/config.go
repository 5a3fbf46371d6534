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

	"github.com/joho/godotenv"
)

type Config struct {
	// Backend selection
	Backend    string
	Python     string
	BackendDir string
	Timeout    time.Duration

	// Listing cache
	CacheTTL  time.Duration
	CacheSize int

	// Submission journal; empty disables it
	JournalPath string

	// AMQP refresh events; empty URL disables them
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Logging
	LogLevel string
	Debug    bool
}

var validBackends = []string{"cli", "memory"}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	return &Config{
		Backend:    getEnv("FLIPTRACK_BACKEND", "cli"),
		Python:     getEnv("FLIPTRACK_PYTHON", "python3"),
		BackendDir: getEnv("FLIPTRACK_BACKEND_DIR", "../backend"),
		Timeout:    getEnvDuration("FLIPTRACK_TIMEOUT", 30*time.Second),

		CacheTTL:  getEnvDuration("FLIPTRACK_CACHE_TTL", 30*time.Second),
		CacheSize: getEnvInt("FLIPTRACK_CACHE_SIZE", 64),

		JournalPath: getEnv("FLIPTRACK_JOURNAL_PATH", ""),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "fliptrack"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "expense.added"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		Debug:    getEnvBool("DEBUG", false),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(validBackends, c.Backend) {
		errors = append(errors, fmt.Sprintf("invalid backend '%s': must be one of %v", c.Backend, validBackends))
	}

	if c.Backend == "cli" {
		if c.Python == "" {
			errors = append(errors, "python executable cannot be empty when using cli backend")
		}
		if c.BackendDir == "" {
			errors = append(errors, "backend directory cannot be empty when using cli backend")
		} else if info, err := os.Stat(c.BackendDir); err != nil {
			errors = append(errors, fmt.Sprintf("backend directory '%s' is not accessible: %v", c.BackendDir, err))
		} else if !info.IsDir() {
			errors = append(errors, fmt.Sprintf("backend directory '%s' is not a directory", c.BackendDir))
		}
	}

	if c.Timeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid timeout %v: must be at least 1 second", c.Timeout))
	} else if c.Timeout > 10*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid timeout %v: must be at most 10 minutes", c.Timeout))
	}

	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}
	if c.CacheTTL > 0 && (c.CacheSize < 1 || c.CacheSize > 10000) {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be between 1 and 10000", c.CacheSize))
	}

	if c.JournalPath != "" {
		dir := filepath.Dir(c.JournalPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create journal directory '%s': %v", dir, err))
				}
			}
		}
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
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
