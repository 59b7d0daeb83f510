// Package config loads application configuration from environment
// variables (and an optional .env file loaded by the caller).
package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration values.
type Config struct {
	Env          string `envconfig:"APP_ENV" default:"dev"`
	Port         string `envconfig:"APP_PORT" default:"8080"`
	Storage      string `envconfig:"STORAGE" default:"memory"`       // memory | mysql
	QueueBackend string `envconfig:"QUEUE_BACKEND" default:"memory"` // memory | redis
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"json"` // json | text

	// OperatorJWTSecret enables operator attribution from bearer tokens.
	// Empty disables the middleware.
	OperatorJWTSecret string `envconfig:"OPERATOR_JWT_SECRET"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`

	DB        DBConfig        `ignored:"true"`
	Redis     RedisConfig     `ignored:"true"`
	Events    EventsConfig    `ignored:"true"`
	Cache     CacheConfig     `ignored:"true"`
	RateLimit RateLimitConfig `ignored:"true"`
}

// DBConfig locates the MySQL database used when Storage is "mysql".
type DBConfig struct {
	User string `envconfig:"DB_USER" default:"root"`
	Pass string `envconfig:"DB_PASS"`
	Host string `envconfig:"DB_HOST" default:"localhost"`
	Port string `envconfig:"DB_PORT" default:"3306"`
	Name string `envconfig:"DB_NAME" default:"seating"`
	// Migrate creates missing tables at startup.
	Migrate bool `envconfig:"DB_MIGRATE" default:"true"`
}

// EventsConfig configures the RabbitMQ event publisher and the audit
// consumer.  An empty URL disables both.
type EventsConfig struct {
	URL          string `envconfig:"RABBITMQ_URL"`
	Exchange     string `envconfig:"EVENTS_EXCHANGE" default:"seating.events"`
	AuditQueue   string `envconfig:"AUDIT_QUEUE" default:"seating.audit"`
	AuditLogPath string `envconfig:"AUDIT_LOG_PATH" default:"logs/seating-audit.log"`
}

// Load processes the environment into a Config and validates the
// backend selectors.
func Load() (Config, error) {
	var c Config
	for _, target := range []any{&c, &c.DB, &c.Redis, &c.Events, &c.Cache, &c.RateLimit} {
		if err := envconfig.Process("", target); err != nil {
			return Config{}, err
		}
	}
	c.Storage = strings.ToLower(c.Storage)
	c.QueueBackend = strings.ToLower(c.QueueBackend)
	switch c.Storage {
	case "memory", "mysql":
	default:
		return Config{}, fmt.Errorf("STORAGE must be memory or mysql, got %q", c.Storage)
	}
	switch c.QueueBackend {
	case "memory", "redis":
	default:
		return Config{}, fmt.Errorf("QUEUE_BACKEND must be memory or redis, got %q", c.QueueBackend)
	}
	c.Cache.normalize()
	c.RateLimit.normalize()
	return c, nil
}
