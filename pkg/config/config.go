// Package config loads demo server configuration from an optional YAML
// file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	OpenAM        OpenAMConfig        `yaml:"openam"`
	Session       SessionConfig       `yaml:"session"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Health/metrics server (separate port for k8s probes)
	HealthPort string `yaml:"health_port"`
}

// OpenAMConfig holds the identity provider settings
type OpenAMConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Realm       string        `yaml:"realm"`
	CookieName  string        `yaml:"cookie_name"`
	CallbackURL string        `yaml:"callback_url"`
	SkipProfile bool          `yaml:"skip_profile"`
	Timeout     time.Duration `yaml:"timeout"`
}

// SessionConfig holds the application session store settings
type SessionConfig struct {
	Store      string        `yaml:"store"` // "memory" or "redis"
	RedisURL   string        `yaml:"redis_url"`
	RedisDB    int           `yaml:"redis_db"`
	TTL        time.Duration `yaml:"ttl"`
	CookieName string        `yaml:"cookie_name"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then environment variables, each layer overriding the previous.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			HealthPort:      "9090",
		},
		OpenAM: OpenAMConfig{
			Realm:      "/",
			CookieName: "iPlanetDirectoryPro",
			Timeout:    10 * time.Second,
		},
		Session: SessionConfig{
			Store:      "memory",
			TTL:        24 * time.Hour,
			CookieName: "openam_app_session",
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			MetricsEnabled: true,
		},
	}
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("OPENAM_HOST", c.Server.Host)
	c.Server.Port = getEnv("OPENAM_PORT", c.Server.Port)
	c.Server.HealthPort = getEnv("OPENAM_HEALTH_PORT", c.Server.HealthPort)
	c.Server.ReadTimeout = getEnvDuration("OPENAM_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("OPENAM_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("OPENAM_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("OPENAM_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.OpenAM.BaseURL = getEnv("OPENAM_BASE_URL", c.OpenAM.BaseURL)
	c.OpenAM.Realm = getEnv("OPENAM_REALM", c.OpenAM.Realm)
	c.OpenAM.CookieName = getEnv("OPENAM_COOKIE_NAME", c.OpenAM.CookieName)
	c.OpenAM.CallbackURL = getEnv("OPENAM_CALLBACK_URL", c.OpenAM.CallbackURL)
	c.OpenAM.SkipProfile = getEnvBool("OPENAM_SKIP_PROFILE", c.OpenAM.SkipProfile)
	c.OpenAM.Timeout = getEnvDuration("OPENAM_TIMEOUT", c.OpenAM.Timeout)

	c.Session.Store = getEnv("OPENAM_SESSION_STORE", c.Session.Store)
	c.Session.RedisURL = getEnv("OPENAM_REDIS_URL", c.Session.RedisURL)
	c.Session.RedisDB = getEnvInt("OPENAM_REDIS_DB", c.Session.RedisDB)
	c.Session.TTL = getEnvDuration("OPENAM_SESSION_TTL", c.Session.TTL)
	c.Session.CookieName = getEnv("OPENAM_SESSION_COOKIE", c.Session.CookieName)

	c.Observability.LogLevel = getEnv("OPENAM_LOG_LEVEL", c.Observability.LogLevel)
	c.Observability.MetricsEnabled = getEnvBool("OPENAM_METRICS_ENABLED", c.Observability.MetricsEnabled)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.OpenAM.BaseURL == "" {
		return fmt.Errorf("openam base URL is required")
	}
	if c.OpenAM.CallbackURL == "" {
		return fmt.Errorf("openam callback URL is required")
	}

	switch c.Session.Store {
	case "memory":
	case "redis":
		if c.Session.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis session store")
		}
	default:
		return fmt.Errorf("invalid session store: %s (must be memory or redis)", c.Session.Store)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
