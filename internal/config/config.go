// Package config loads radar settings from an optional YAML file and the
// environment. Precedence: defaults, then the file, then RADAR_* variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverFile   = "file"
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

type Config struct {
	Service ServiceConfig `yaml:"service"`
	Store   StoreConfig   `yaml:"store"`
	Logger  LoggerConfig  `yaml:"logger"`
	HTTP    HTTPConfig    `yaml:"http"`
	Debug   bool          `yaml:"debug"`
}

type ServiceConfig struct {
	BaseURL          string        `yaml:"base_url"`
	SetupURL         string        `yaml:"setup_url"`
	Timeout          time.Duration `yaml:"timeout"`
	Language         string        `yaml:"language"`
	MobileVersion    string        `yaml:"mobile_version"`
	DeviceType       string        `yaml:"device_type"`
	DeviceModel      string        `yaml:"device_model"`
	DeviceVersion    string        `yaml:"device_version"`
	AuthErrorNumbers []int         `yaml:"auth_error_numbers"`
}

type StoreConfig struct {
	Driver     string        `yaml:"driver"`
	Dir        string        `yaml:"dir"`
	RedisURL   string        `yaml:"redis_url"`
	Secret     string        `yaml:"secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	PendingTTL time.Duration `yaml:"pending_ttl"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL:       "https://radar.Giftologygroup.com/RRService",
			SetupURL:      "https://radar.giftologygroup.com/api/KEAP/giftology_setup.php",
			Timeout:       30 * time.Second,
			Language:      "EN",
			MobileVersion: "1",
			DeviceType:    "Web",
			DeviceModel:   "Go",
			DeviceVersion: "1.0",
		},
		Store: StoreConfig{
			Driver:     DriverFile,
			Dir:        defaultDataDir(),
			SessionTTL: 30 * 24 * time.Hour,
			PendingTTL: 30 * time.Minute,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "console",
		},
		HTTP: HTTPConfig{
			Addr:            ":7002",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".radar"
	}
	return filepath.Join(home, ".radar")
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path resolves the config file location from an explicit flag value or
// RADAR_CONFIG.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("RADAR_CONFIG")
}

func (c *Config) applyEnv() error {
	c.Service.BaseURL = getEnv("RADAR_API_BASE", c.Service.BaseURL)
	c.Service.SetupURL = getEnv("RADAR_SETUP_URL", c.Service.SetupURL)
	c.Store.Driver = getEnv("RADAR_STORE_DRIVER", c.Store.Driver)
	c.Store.Dir = getEnv("RADAR_DATA_DIR", c.Store.Dir)
	c.Store.RedisURL = getEnv("RADAR_REDIS_URL", c.Store.RedisURL)
	c.Store.Secret = getEnv("RADAR_STORE_SECRET", c.Store.Secret)
	c.Logger.Level = getEnv("RADAR_LOG_LEVEL", c.Logger.Level)
	c.Logger.Format = getEnv("RADAR_LOG_FORMAT", c.Logger.Format)
	c.HTTP.Addr = getEnv("RADAR_HTTP_ADDR", c.HTTP.Addr)

	if v := os.Getenv("RADAR_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RADAR_TIMEOUT: %w", err)
		}
		c.Service.Timeout = d
	}
	if v := os.Getenv("RADAR_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RADAR_DEBUG: %w", err)
		}
		c.Debug = b
	}
	return nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Service.BaseURL) == "" {
		return fmt.Errorf("service.base_url is required")
	}
	if c.Service.Timeout <= 0 {
		return fmt.Errorf("service.timeout must be positive, got %s", c.Service.Timeout)
	}
	switch c.Store.Driver {
	case DriverFile:
		if c.Store.Dir == "" {
			return fmt.Errorf("store.dir is required for the file driver")
		}
	case DriverMemory:
	case DriverRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("store.redis_url is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
