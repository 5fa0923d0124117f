package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers understood by db.Open.
const (
	DriverDynamoDB = "dynamodb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the core runtime configuration for the service.
// Values are sourced from environment variables, with defaults where
// appropriate. See .env.example.
type Config struct {
	// EventTable and KeyTable name the event record store and the API key
	// record store. Both are required.
	EventTable string
	KeyTable   string

	ListenAddr string

	StoreDriver string

	// DatabaseURL is the PostgreSQL URL used by the postgres driver.
	DatabaseURL string
	SQLitePath  string

	AWSRegion        string
	DynamoDBEndpoint string

	// RedisAddr enables the API key cache when set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyCacheTTL   time.Duration

	// BootstrapAPIKey and BootstrapSrc seed one key record on SQL stores,
	// for local development.
	BootstrapAPIKey string
	BootstrapSrc    string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{
		EventTable:       strings.TrimSpace(os.Getenv("EVENT_TABLE_NAME")),
		KeyTable:         strings.TrimSpace(os.Getenv("KEY_TABLE_NAME")),
		ListenAddr:       getenv("APP_LISTEN_ADDR", ":8080"),
		StoreDriver:      strings.ToLower(getenv("APP_STORE_DRIVER", DriverDynamoDB)),
		DatabaseURL:      os.Getenv("APP_DATABASE_URL"),
		SQLitePath:       getenv("APP_SQLITE_PATH", "eventsink.db"),
		AWSRegion:        os.Getenv("APP_AWS_REGION"),
		DynamoDBEndpoint: os.Getenv("APP_DYNAMODB_ENDPOINT"),
		RedisAddr:        os.Getenv("APP_REDIS_ADDR"),
		RedisPassword:    os.Getenv("APP_REDIS_PASSWORD"),
		KeyCacheTTL:      time.Minute,
		BootstrapAPIKey:  os.Getenv("APP_BOOTSTRAP_API_KEY"),
		BootstrapSrc:     os.Getenv("APP_BOOTSTRAP_SRC"),
		LogLevel:         getenv("APP_LOG_LEVEL", "info"),
		LogFormat:        getenv("APP_LOG_FORMAT", "text"),
	}

	if v := os.Getenv("APP_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RedisDB = n
		}
	}
	if v := os.Getenv("APP_KEY_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.KeyCacheTTL = d
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.EventTable == "" {
		errs = append(errs, errors.New("EVENT_TABLE_NAME is required"))
	}
	if c.KeyTable == "" {
		errs = append(errs, errors.New("KEY_TABLE_NAME is required"))
	}
	switch c.StoreDriver {
	case DriverDynamoDB, DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("APP_STORE_DRIVER %q is not one of %s, %s, %s", c.StoreDriver, DriverDynamoDB, DriverPostgres, DriverSQLite))
	}
	return errors.Join(errs...)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
