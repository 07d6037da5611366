package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves into a fresh directory so config.yaml / .env lookups are isolated.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() {
		_ = os.Chdir(originalDir)
	})
	return tmpDir
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("", "test-version")
	require.NoError(t, err)

	assert.Equal(t, "test-version", cfg.Version)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 30*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, 2, cfg.Gateway.FetchRetries)
	assert.True(t, cfg.Console.ProbeEnabled)
	assert.Equal(t, 10*time.Second, cfg.Console.ProbeInterval)
	assert.Equal(t, 3*time.Second, cfg.Console.SuccessTTL)
	assert.True(t, cfg.Console.RequireConnected)
	assert.Equal(t, "SELECT * FROM users;", cfg.Console.DefaultQuery)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	tmpDir := chdirTemp(t)

	yamlContent := `
env: "test"
gateway:
  base_url: "http://gateway.example.com:8080"
  timeout: 5s
console:
  probe_interval: 20s
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(yamlContent), 0644))

	t.Setenv("BIFROST_ENV", "production")
	t.Setenv("BIFROST_SUCCESS_TTL", "1500ms")

	cfg, err := Load("", "v1")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env, "env var should override yaml")
	assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, 20*time.Second, cfg.Console.ProbeInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.Console.SuccessTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	if !IsRunningInDocker() {
		assert.Equal(t, "http://gateway.example.com:8080", cfg.Gateway.BaseURL)
	}
}

func TestLoad_ExplicitFalseFromYAML(t *testing.T) {
	tmpDir := chdirTemp(t)

	yamlContent := `
console:
  probe_enabled: false
  require_connected: false
`
	path := filepath.Join(tmpDir, "bifrost.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0644))

	cfg, err := Load(path, "v1")
	require.NoError(t, err)

	assert.False(t, cfg.Console.ProbeEnabled)
	assert.False(t, cfg.Console.RequireConnected)
}

func TestLoad_BoolFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("BIFROST_PROBE_ENABLED", "false")

	cfg, err := Load("", "v1")
	require.NoError(t, err)

	assert.False(t, cfg.Console.ProbeEnabled)
	assert.True(t, cfg.Console.RequireConnected)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	chdirTemp(t)

	_, err := Load("does-not-exist.yaml", "v1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist.yaml")
}

func TestLoad_DotEnv(t *testing.T) {
	tmpDir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("BIFROST_LOG_FORMAT=json\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("BIFROST_LOG_FORMAT") })

	cfg, err := Load("", "v1")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Gateway: GatewayConfig{BaseURL: "http://localhost:8080", Timeout: time.Second},
			Console: ConsoleConfig{ProbeInterval: time.Second, SuccessTTL: time.Second},
			Log:     LogConfig{Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad scheme", mutate: func(c *Config) { c.Gateway.BaseURL = "ftp://host" }, wantErr: "http or https"},
		{name: "missing host", mutate: func(c *Config) { c.Gateway.BaseURL = "http://" }, wantErr: "missing a host"},
		{name: "zero timeout", mutate: func(c *Config) { c.Gateway.Timeout = 0 }, wantErr: "gateway.timeout"},
		{name: "negative retries", mutate: func(c *Config) { c.Gateway.FetchRetries = -1 }, wantErr: "fetch_retries"},
		{name: "zero probe interval", mutate: func(c *Config) { c.Console.ProbeInterval = 0 }, wantErr: "probe_interval"},
		{name: "zero success ttl", mutate: func(c *Config) { c.Console.SuccessTTL = 0 }, wantErr: "success_ttl"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
