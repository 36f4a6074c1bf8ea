package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const DefaultPath = "config.json"

type AppConfig struct {
	Name        string `json:"name" env:"APP_NAME" env-default:"product-api"`
	Environment string `json:"environment" env:"APP_ENV" env-default:"local"`
	Debug       bool   `json:"debug" env:"APP_DEBUG"`
}

type ServerConfig struct {
	Host                string     `json:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port                int        `json:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeoutSeconds  int        `json:"read_timeout_seconds" env:"SERVER_READ_TIMEOUT" env-default:"10"`
	WriteTimeoutSeconds int        `json:"write_timeout_seconds" env:"SERVER_WRITE_TIMEOUT" env-default:"10"`
	ShutdownTimeoutSecs int        `json:"shutdown_timeout_seconds" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"5"`
	MaxRequestBodyBytes int64      `json:"max_request_body_bytes" env:"SERVER_MAX_BODY_BYTES" env-default:"1048576"`
	Cors                CorsConfig `json:"cors,omitempty"`
}

type CorsConfig struct {
	AllowedOrigins []string `json:"allowed_origins,omitempty" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
	AllowedMethods []string `json:"allowed_methods,omitempty" env:"CORS_ALLOWED_METHODS" env-separator:","`
	AllowedHeaders []string `json:"allowed_headers,omitempty" env:"CORS_ALLOWED_HEADERS" env-separator:","`
}

type DatabaseConfig struct {
	Type                   string `json:"type" env:"DB_TYPE" env-default:"postgres"`
	Host                   string `json:"host" env:"DB_HOST" env-default:"localhost"`
	Port                   int    `json:"port" env:"DB_PORT" env-default:"5432"`
	User                   string `json:"user" env:"DB_USER" env-default:"postgres"`
	Password               string `json:"password" env:"DB_PASSWORD"`
	DBName                 string `json:"dbname" env:"DB_NAME" env-default:"products"`
	SSLMode                string `json:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	MaxOpenConns           int    `json:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns           int    `json:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"25"`
	ConnMaxLifetimeMinutes int    `json:"conn_max_lifetime_minutes" env:"DB_CONN_MAX_LIFETIME" env-default:"30"`

	// SkipMigrations disables the embedded migrations run at startup.
	SkipMigrations bool `json:"skip_migrations" env:"DB_SKIP_MIGRATIONS"`
}

type LogConfig struct {
	Level  string `json:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `json:"format" env:"LOG_FORMAT" env-default:"console"`
}

type Config struct {
	App      AppConfig      `json:"app"`
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Log      LogConfig      `json:"log"`
}

// ConfigVar holds the configuration loaded by the last successful LoadConfig call.
var ConfigVar Config

// LoadConfig reads .env (if present), then the JSON file at path, then applies
// environment overrides. A missing file falls back to environment and defaults.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if p := os.Getenv("CONFIG_PATH"); p != "" {
		path = p
	}

	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("reading config from environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ConfigVar = cfg
	return &cfg, nil
}

// Validate checks values cleanenv cannot express as tags.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Log.Format)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
