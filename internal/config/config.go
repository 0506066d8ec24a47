// Package config provides configuration management for showbook using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jmylchreest/showbook/internal/urlutil"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort      = 8080
	defaultServerTimeout   = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxIdleTime = 30 * time.Minute
	defaultFilterLimit     = 20
	defaultFilterMaxLimit  = 100
)

var (
	validDrivers    = []string{"sqlite", "postgres", "mysql"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "text"}
	validDBLevels   = []string{"silent", "error", "warn", "info"}
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Filters  FiltersConfig  `mapstructure:"filters"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// BaseURL prefixes preset deep links. Empty yields relative links.
	BaseURL string `mapstructure:"base_url"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`

	// Redact lists additional attribute names whose values are masked.
	Redact []string `mapstructure:"redact"`
}

// FiltersConfig holds list query limits.
type FiltersConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with SHOWBOOK_ and use underscores for
// nesting, e.g. SHOWBOOK_SERVER_PORT=8080.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/showbook")
		v.AddConfigPath("$HOME/.showbook")
	}

	v.SetEnvPrefix("SHOWBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("server.base_url", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "showbook.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", defaultConnMaxIdleTime)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)
	v.SetDefault("logging.redact", []string{})

	v.SetDefault("filters.default_limit", defaultFilterLimit)
	v.SetDefault("filters.max_limit", defaultFilterMaxLimit)
}

// Validate checks the configuration for errors. Every violation is reported.
func (c *Config) Validate() error {
	var errs []error

	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and %d", maxPort))
	}
	if err := urlutil.ValidateBaseURL(c.Server.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("server.base_url: %w", err))
	}

	if !slices.Contains(validDrivers, c.Database.Driver) {
		errs = append(errs, fmt.Errorf("database.driver must be one of: %s", strings.Join(validDrivers, ", ")))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.Database.LogLevel != "" && !slices.Contains(validDBLevels, c.Database.LogLevel) {
		errs = append(errs, fmt.Errorf("database.log_level must be one of: %s", strings.Join(validDBLevels, ", ")))
	}

	if !slices.Contains(validLogLevels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: %s", strings.Join(validLogLevels, ", ")))
	}
	if !slices.Contains(validLogFormats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if c.Filters.DefaultLimit < 1 {
		errs = append(errs, errors.New("filters.default_limit must be at least 1"))
	}
	if c.Filters.MaxLimit < c.Filters.DefaultLimit {
		errs = append(errs, errors.New("filters.max_limit must not be below filters.default_limit"))
	}

	return errors.Join(errs...)
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
