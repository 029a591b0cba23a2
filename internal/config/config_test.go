package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "radar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://radar.Giftologygroup.com/RRService", cfg.Service.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Service.Timeout)
	assert.Equal(t, "EN", cfg.Service.Language)
	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, 720*time.Hour, cfg.Store.SessionTTL)
	assert.Empty(t, cfg.Service.AuthErrorNumbers)
}

func TestLoadFileWithExpansion(t *testing.T) {
	t.Setenv("TEST_RADAR_REDIS", "redis://cache:6379/1")
	path := writeConfig(t, `
service:
  base_url: http://localhost:9000/RRService
  timeout: 5s
  auth_error_numbers: [401, 403]
store:
  driver: redis
  redis_url: ${TEST_RADAR_REDIS}
logger:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/RRService", cfg.Service.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Service.Timeout)
	assert.Equal(t, []int{401, 403}, cfg.Service.AuthErrorNumbers)
	assert.Equal(t, "redis://cache:6379/1", cfg.Store.RedisURL)
	assert.Equal(t, "debug", cfg.Logger.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, "1", cfg.Service.MobileVersion)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "service:\n  base_url: http://from-file\n")
	t.Setenv("RADAR_API_BASE", "http://from-env")
	t.Setenv("RADAR_TIMEOUT", "12s")
	t.Setenv("RADAR_DEBUG", "true")
	t.Setenv("RADAR_STORE_DRIVER", "memory")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env", cfg.Service.BaseURL)
	assert.Equal(t, 12*time.Second, cfg.Service.Timeout)
	assert.True(t, cfg.Debug)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "service: [not a map"))
	assert.Error(t, err)

	t.Setenv("RADAR_TIMEOUT", "soon")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"memory", func(c *Config) { c.Store.Driver = DriverMemory }, true},
		{"unknown driver", func(c *Config) { c.Store.Driver = "etcd" }, false},
		{"redis without url", func(c *Config) { c.Store.Driver = DriverRedis }, false},
		{"zero timeout", func(c *Config) { c.Service.Timeout = 0 }, false},
		{"blank base url", func(c *Config) { c.Service.BaseURL = " " }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("RADAR_CONFIG", "/etc/radar.yaml")
	assert.Equal(t, "/tmp/x.yaml", Path("/tmp/x.yaml"))
	assert.Equal(t, "/etc/radar.yaml", Path(""))
}
