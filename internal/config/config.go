package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces environment overrides. EVENTBOOK_DATABASE__URI sets database.uri.
const EnvPrefix = "EVENTBOOK_"

// Config represents the top-level configuration for eventbook.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Seed     SeedConfig     `koanf:"seed"`
}

// ServerConfig holds the health server configuration.
type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
	// ShutdownTimeout bounds the drain of in-flight health checks on stop.
	ShutdownTimeout string `koanf:"shutdown_timeout"`
}

// Addr returns host:port for the HTTP listener.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ShutdownGrace returns the parsed shutdown timeout, or 5s if it is unset or invalid.
func (c ServerConfig) ShutdownGrace() time.Duration {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// DatabaseConfig holds the record store connection settings.
type DatabaseConfig struct {
	// URI selects the backend by scheme: postgres://, mongodb:// or memory://.
	URI string `koanf:"uri"`
	// Name overrides the mongo database named in the URI path.
	Name           string `koanf:"name"`
	MaxOpenConns   int    `koanf:"max_open_conns"`
	MaxIdleConns   int    `koanf:"max_idle_conns"`
	AutoMigrate    bool   `koanf:"auto_migrate"`
	ConnectTimeout string `koanf:"connect_timeout"` // parsed as time.Duration
}

// Timeout returns the parsed connect timeout, or 5s if it is unset or invalid.
func (c DatabaseConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(c.ConnectTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// SeedConfig points at an optional YAML file of events loaded at startup.
type SeedConfig struct {
	Path string `koanf:"path"`
}

// Validate checks the settings that have no safe fallback. database.uri is
// not checked here; the connection cache reports it when first used.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be > 0")
	}
	if c.Database.MaxIdleConns <= 0 {
		return fmt.Errorf("database.max_idle_conns must be > 0")
	}
	timeout, err := time.ParseDuration(c.Database.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("invalid database.connect_timeout %q: %w", c.Database.ConnectTimeout, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("database.connect_timeout must be > 0")
	}

	return nil
}

// Load layers defaults, the optional YAML file at configPath and EVENTBOOK_
// environment variables, then validates the result.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":              8080,
		"server.host":              "0.0.0.0",
		"server.mode":              "release",
		"server.shutdown_timeout":  "5s",
		"database.uri":             "",
		"database.name":            "",
		"database.max_open_conns":  25,
		"database.max_idle_conns":  25,
		"database.auto_migrate":    true,
		"database.connect_timeout": "5s",
		"seed.path":                "",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// EVENTBOOK_SERVER__PORT=9090 overrides server.port
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
