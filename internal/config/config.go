package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	PostgresAddress  string
	PostgresPort     string
	PostgresDB       string
	PostgresUsername string
	PostgresPassword string

	HTTPPort        string
	StorageBackend  string
	LogLevel        string
	OperatorWorkers int

	RecurringEnabled     bool
	RecurringInterval    time.Duration
	RecurringConcurrency int

	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

// In all cases the default behavior should be for the docker compose setup
var defaults = map[string]any{
	"postgres_address":      "localhost",
	"postgres_port":         "5433",
	"postgres_db":           "postgres",
	"postgres_username":     "postgres",
	"postgres_password":     "testpassword",
	"http_port":             "8080",
	"storage_backend":       BackendPostgres,
	"log_level":             "info",
	"operator_workers":      4,
	"recurring_enabled":     true,
	"recurring_interval":    "1h",
	"recurring_concurrency": 4,
	"amqp_url":              "",
	"amqp_exchange":         "ledger",
	"amqp_routing_key":      "ledger.events",
}

// ProcessEnvironmentVariables layers defaults, an optional YAML file named by CONFIG_FILE,
// and environment variables (a local .env file included), in increasing precedence.
func ProcessEnvironmentVariables() (*Config, error) {
	_ = godotenv.Load()
	return Load(os.Getenv("CONFIG_FILE"))
}

// Load builds a Config from defaults, the YAML file at path (skipped when empty) and the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider("", ".", func(name string) string {
		key := strings.ToLower(name)
		if _, known := defaults[key]; !known {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	return &Config{
		PostgresAddress:      k.String("postgres_address"),
		PostgresPort:         k.String("postgres_port"),
		PostgresDB:           k.String("postgres_db"),
		PostgresUsername:     k.String("postgres_username"),
		PostgresPassword:     k.String("postgres_password"),
		HTTPPort:             k.String("http_port"),
		StorageBackend:       strings.ToLower(k.String("storage_backend")),
		LogLevel:             k.String("log_level"),
		OperatorWorkers:      k.Int("operator_workers"),
		RecurringEnabled:     k.Bool("recurring_enabled"),
		RecurringInterval:    k.Duration("recurring_interval"),
		RecurringConcurrency: k.Int("recurring_concurrency"),
		AMQPURL:              k.String("amqp_url"),
		AMQPExchange:         k.String("amqp_exchange"),
		AMQPRoutingKey:       k.String("amqp_routing_key"),
	}, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.HTTPPort); err != nil {
		problems = append(problems, fmt.Sprintf("invalid HTTP port '%s': must be a number", c.HTTPPort))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid HTTP port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{BackendPostgres, BackendMemory}
	if !slices.Contains(validBackends, c.StorageBackend) {
		problems = append(problems, fmt.Sprintf("invalid storage backend '%s': must be one of %v", c.StorageBackend, validBackends))
	}

	if c.OperatorWorkers < 1 {
		problems = append(problems, fmt.Sprintf("invalid operator workers %d: must be at least 1", c.OperatorWorkers))
	}

	if c.RecurringEnabled && c.RecurringInterval <= 0 {
		problems = append(problems, fmt.Sprintf("invalid recurring interval %s: must be positive", c.RecurringInterval))
	}
	if c.RecurringConcurrency < 1 {
		problems = append(problems, fmt.Sprintf("invalid recurring concurrency %d: must be at least 1", c.RecurringConcurrency))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange cannot be empty when AMQP is enabled")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
