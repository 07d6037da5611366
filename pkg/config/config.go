package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultPath is the config file looked up when no explicit path is given.
const DefaultPath = "config.yaml"

// Config holds all configuration for the console.
// Configuration can come from a YAML file or environment variables.
// Environment variables always override YAML values.
type Config struct {
	Env     string `yaml:"env" env:"BIFROST_ENV" env-default:"local"`
	Version string `yaml:"-"` // Set at load time, not from config

	Gateway GatewayConfig `yaml:"gateway"`
	Console ConsoleConfig `yaml:"console"`
	Log     LogConfig     `yaml:"log"`
}

// GatewayConfig describes how to reach the HTTP gateway.
type GatewayConfig struct {
	BaseURL string        `yaml:"base_url" env:"BIFROST_API_BASE_URL" env-default:"http://localhost:8080"`
	Timeout time.Duration `yaml:"timeout" env:"BIFROST_API_TIMEOUT" env-default:"30s"`
	// FetchRetries applies to idempotent list requests only. Mutations and
	// query execution are never retried.
	FetchRetries int `yaml:"fetch_retries" env:"BIFROST_FETCH_RETRIES" env-default:"2"`
}

// ConsoleConfig holds client-side workflow settings.
// The boolean defaults are seeded by Load: cleanenv would apply an
// env-default over an explicit false from YAML.
type ConsoleConfig struct {
	ProbeEnabled     bool          `yaml:"probe_enabled" env:"BIFROST_PROBE_ENABLED"`
	ProbeInterval    time.Duration `yaml:"probe_interval" env:"BIFROST_PROBE_INTERVAL" env-default:"10s"`
	SuccessTTL       time.Duration `yaml:"success_ttl" env:"BIFROST_SUCCESS_TTL" env-default:"3s"`
	RequireConnected bool          `yaml:"require_connected" env:"BIFROST_REQUIRE_CONNECTED"`
	DefaultQuery     string        `yaml:"default_query" env:"BIFROST_DEFAULT_QUERY" env-default:"SELECT * FROM users;"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"BIFROST_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"BIFROST_LOG_FORMAT" env-default:"console"` // "console" or "json"
	Output string `yaml:"output" env:"BIFROST_LOG_OUTPUT" env-default:"stderr"`  // "stderr" or a file path
}

// Load reads configuration from path (or config.yaml when path is empty) with
// environment variable overrides. A .env file in the working directory is
// loaded first if present. A missing config file is not an error unless the
// path was given explicitly.
func Load(path, version string) (*Config, error) {
	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	cfg := &Config{
		Console: ConsoleConfig{ProbeEnabled: true, RequireConnected: true},
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	case errors.Is(statErr, os.ErrNotExist) && !explicit:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to open %s: %w", path, statErr)
	}

	cfg.Version = version
	cfg.Gateway.BaseURL = ResolveBaseURLForDocker(cfg.Gateway.BaseURL)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks values cleanenv cannot check on its own.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Gateway.BaseURL)
	if err != nil {
		return fmt.Errorf("gateway.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("gateway.base_url must use http or https, got %q", c.Gateway.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("gateway.base_url is missing a host")
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway.timeout must be positive")
	}
	if c.Gateway.FetchRetries < 0 {
		return fmt.Errorf("gateway.fetch_retries must not be negative")
	}
	if c.Console.ProbeInterval <= 0 {
		return fmt.Errorf("console.probe_interval must be positive")
	}
	if c.Console.SuccessTTL <= 0 {
		return fmt.Errorf("console.success_ttl must be positive")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}
