// Package config provides Viper-based configuration loading for the rooms helper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends for exported rooms.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// CatalogConfig locates the room manifest and the exported room files.
type CatalogConfig struct {
	// Manifest is the path to the static room manifest (JSON or YAML).
	Manifest string `mapstructure:"manifest"`
	// ExportDir is the directory holding one exported file per room instance.
	ExportDir string `mapstructure:"export_dir"`
	// Compress writes exports as zstd-compressed JSON.
	Compress bool `mapstructure:"compress"`
	// ValidateSchema checks cached exports against the room schema before use.
	ValidateSchema bool `mapstructure:"validate_schema"`
}

// StorageConfig selects where exported rooms are persisted.
type StorageConfig struct {
	// Backend is "file" or "postgres".
	Backend string `mapstructure:"backend"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// SessionConfig describes the connection context the locator requires.
type SessionConfig struct {
	// Host is the address of the server the client is connected to.
	Host string `mapstructure:"host"`
	// TrackedHost is the only host on which rooms are tracked.
	TrackedHost string `mapstructure:"tracked_host"`
}

// LoopConfig holds event loop settings.
type LoopConfig struct {
	// TickInterval is the world simulation tick period.
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

// ScanConfig bounds the vertical column scans used to size rooms.
type ScanConfig struct {
	// Floor is the lowest Y scanned.
	Floor int `mapstructure:"floor"`
	// Ceiling is the highest Y scanned.
	Ceiling int `mapstructure:"ceiling"`
	// IgnoredTopBlock is a block id skipped when searching for the room top.
	IgnoredTopBlock uint16 `mapstructure:"ignored_top_block"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	// Addr is the "host:port" to serve /metrics on. Empty disables the endpoint.
	Addr string `mapstructure:"addr"`
}

// Config is the top-level application configuration.
type Config struct {
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Loop     LoopConfig     `mapstructure:"loop"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateCatalog(c.Catalog); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Backend == BackendPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateSession(c.Session); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Loop.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("loop.tick_interval must be > 0, got %s", c.Loop.TickInterval))
	}
	if err := validateScan(c.Scan); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCatalog(c CatalogConfig) error {
	var errs []string
	if c.Manifest == "" {
		errs = append(errs, "catalog.manifest must not be empty")
	}
	if c.ExportDir == "" {
		errs = append(errs, "catalog.export_dir must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Backend {
	case BackendFile, BackendPostgres:
		return nil
	default:
		return fmt.Errorf("storage.backend must be one of [file, postgres], got %q", s.Backend)
	}
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSession(s SessionConfig) error {
	if s.TrackedHost == "" {
		return errors.New("session.tracked_host must not be empty")
	}
	return nil
}

func validateScan(s ScanConfig) error {
	if s.Floor < 0 {
		return fmt.Errorf("scan.floor must be >= 0, got %d", s.Floor)
	}
	if s.Ceiling <= s.Floor {
		return fmt.Errorf("scan.ceiling (%d) must exceed scan.floor (%d)", s.Ceiling, s.Floor)
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ROOMSHELPER_ prefix
	v.SetEnvPrefix("ROOMSHELPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("catalog.manifest", "data/rooms.json")
	v.SetDefault("catalog.export_dir", "output")
	v.SetDefault("catalog.compress", false)
	v.SetDefault("catalog.validate_schema", true)

	v.SetDefault("storage.backend", BackendFile)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "rooms")
	v.SetDefault("database.password", "rooms")
	v.SetDefault("database.name", "rooms")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("session.host", "localhost")
	v.SetDefault("session.tracked_host", "localhost")

	v.SetDefault("loop.tick_interval", "50ms")

	v.SetDefault("scan.floor", 0)
	v.SetDefault("scan.ceiling", 255)
	v.SetDefault("scan.ignored_top_block", 4)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.addr", "")
}
