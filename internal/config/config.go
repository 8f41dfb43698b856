package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "DB_HOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "DB_PORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "DB_USER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "DB_PASS"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "DB_NAME"

	// DBSSLModeEnv is the environment variable for the PostgreSQL sslmode.
	DBSSLModeEnv = "DB_SSL_MODE"

	// MigrationsPathEnv is the environment variable for the migrations directory.
	MigrationsPathEnv = "MIGRATIONS_PATH"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// CatalogBaseURLEnv is the environment variable for the external catalog base URL.
	CatalogBaseURLEnv = "CATALOG_BASE_URL"

	// CatalogTimeoutEnv is the environment variable for the per-request external catalog timeout.
	CatalogTimeoutEnv = "CATALOG_TIMEOUT"

	// AllocatorStrictEnv makes product creation fail when the external id bound is unknown.
	AllocatorStrictEnv = "ALLOCATOR_STRICT"

	// OutboxIntervalEnv is the environment variable for the outbox polling interval.
	OutboxIntervalEnv = "OUTBOX_INTERVAL"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL.
	SQSQueueURLEnv = "SQS_QUEUE_URL"
)

const (
	defaultCatalogTimeout = 5 * time.Second
	defaultOutboxInterval = 2 * time.Second
	defaultMigrationsPath = "migrations"
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")

	// ErrInvalidConfig is returned when a configuration value cannot be used.
	ErrInvalidConfig = errors.New("invalid config data")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	Database      DB
	HTTPServer    Server
	MetricsServer Server
	Catalog       Catalog
	Allocator     Allocator
	Outbox        Outbox
	AWS           AWSConfig
}

// Catalog represents the external product catalog client settings.
type Catalog struct {
	BaseURL string
	Timeout time.Duration
}

// Allocator represents identifier allocation settings.
type Allocator struct {
	Strict bool
}

// Outbox represents the product event outbox settings.
type Outbox struct {
	Interval time.Duration
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region      string
	Endpoint    string
	SQSQueueURL string
}

// PublishEnabled reports whether product events should be published to SQS.
func (a AWSConfig) PublishEnabled() bool {
	return a.SQSQueueURL != ""
}

// DB represents database configuration settings.
type DB struct {
	Host           string
	User           string
	Password       string
	Name           string
	Port           string
	SSLMode        string
	MigrationsPath string
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

// allBools accepts empty values and anything strconv.ParseBool understands.
func allBools(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			continue
		}
		if _, err := strconv.ParseBool(value); err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("%w: invalid boolean for key %s", ErrInvalidConfig, key)
		}
	}
	return nil
}

func absoluteURL(key, value string) error {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value))
		return fmt.Errorf("%w: %s must be an absolute URL", ErrInvalidConfig, key)
	}
	return nil
}

func (c *Config) validate() error {
	// Validate database configuration
	if err := allNonEmpty(map[string]string{
		DBHostEnv: c.Database.Host,
		DBUserEnv: c.Database.User,
		DBNameEnv: c.Database.Name,
	}); err != nil {
		return fmt.Errorf("database configuration incomplete: %w", err)
	}

	// Validate server ports
	if err := allNonEmpty(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("server port configuration incomplete: %w", err)
	}

	// Validate port numbers
	if err := allNumbers(map[string]string{
		DBPortEnv:            c.Database.Port,
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	// Validate external catalog configuration
	if err := allNonEmpty(map[string]string{
		CatalogBaseURLEnv: c.Catalog.BaseURL,
	}); err != nil {
		return fmt.Errorf("catalog configuration incomplete: %w", err)
	}
	if err := absoluteURL(CatalogBaseURLEnv, c.Catalog.BaseURL); err != nil {
		return err
	}
	if c.Catalog.Timeout <= 0 || c.Outbox.Interval <= 0 {
		return fmt.Errorf("%w: durations must be positive", ErrInvalidConfig)
	}

	return nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("invalid boolean, using default", slog.String("key", name), slog.String("value", raw), slog.Bool("default", defaultValue))
		return defaultValue
	}
	return val
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration, using default", slog.String("key", name), slog.String("value", raw), slog.Duration("default", defaultValue))
		return defaultValue
	}
	return val
}

func getEnv(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		Database: DB{
			Host:           os.Getenv(DBHostEnv),
			User:           os.Getenv(DBUserEnv),
			Password:       os.Getenv(DBPassEnv),
			Name:           os.Getenv(DBNameEnv),
			Port:           os.Getenv(DBPortEnv),
			SSLMode:        getEnv(DBSSLModeEnv, "disable"),
			MigrationsPath: getEnv(MigrationsPathEnv, defaultMigrationsPath),
		},
		HTTPServer: Server{
			Port: os.Getenv(HTTPServerPortEnv),
		},
		MetricsServer: Server{
			Port: os.Getenv(MetricsServerPortEnv),
		},
		Catalog: Catalog{
			BaseURL: os.Getenv(CatalogBaseURLEnv),
			Timeout: getEnvAsDuration(CatalogTimeoutEnv, defaultCatalogTimeout),
		},
		Allocator: Allocator{
			Strict: getEnvAsBool(AllocatorStrictEnv, false),
		},
		Outbox: Outbox{
			Interval: getEnvAsDuration(OutboxIntervalEnv, defaultOutboxInterval),
		},
		AWS: AWSConfig{
			Region:      os.Getenv(AWSRegionEnv),
			Endpoint:    os.Getenv(AWSEndpointEnv),
			SQSQueueURL: os.Getenv(SQSQueueURLEnv),
		},
	}

	if err := allBools(map[string]string{
		AllocatorStrictEnv: os.Getenv(AllocatorStrictEnv),
	}); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}

// LoadConsumerFromEnv loads the subset of configuration the notification service needs.
func LoadConsumerFromEnv() (*Config, error) {
	envPath := getEnv(EnvFilePath, DefaultEnvFilePath)
	if err := ApplyEnvFile(envPath); err != nil {
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		AWS: AWSConfig{
			Region:      os.Getenv(AWSRegionEnv),
			Endpoint:    os.Getenv(AWSEndpointEnv),
			SQSQueueURL: os.Getenv(SQSQueueURLEnv),
		},
	}

	if err := allNonEmpty(map[string]string{
		AWSRegionEnv:   conf.AWS.Region,
		SQSQueueURLEnv: conf.AWS.SQSQueueURL,
	}); err != nil {
		return nil, fmt.Errorf("AWS configuration incomplete: %w", err)
	}
	return conf, nil
}
