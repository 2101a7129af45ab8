package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/dynasty-draft/go/internal/dbconfig"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/outbox"
)

// Config is read from draft.yaml, then overridden by the environment.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Gateway struct {
		Port int `yaml:"port"`
		// EngineURL is where a standalone gateway reaches the engine.
		EngineURL string `yaml:"engine_url"`
	} `yaml:"gateway"`

	Database dbconfig.Config `yaml:"database"`

	NATS struct {
		URL    string `yaml:"url"`
		Stream string `yaml:"stream"`
	} `yaml:"nats"`

	Redis struct {
		// Addr empty disables the snapshot cache.
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`

	Ranking struct {
		// URL empty leaves autopick on the rank fallback.
		URL     string        `yaml:"url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"ranking"`

	Engine struct {
		AutopickTimeout time.Duration `yaml:"autopick_timeout"`
		InboxSize       int           `yaml:"inbox_size"`
	} `yaml:"engine"`

	Outbox struct {
		Channel          string        `yaml:"channel"`
		FallbackInterval time.Duration `yaml:"fallback_interval"`
		BatchSize        int32         `yaml:"batch_size"`
		MaxRetries       int           `yaml:"max_retries"`
		HealthThreshold  time.Duration `yaml:"health_threshold"`
		HealthPort       int           `yaml:"health_port"`
	} `yaml:"outbox"`
}

func defaultConfig() *Config {
	cfg := &Config{LogLevel: "info"}
	cfg.Server.Port = 8080
	cfg.Gateway.Port = 8081
	cfg.Gateway.EngineURL = "http://localhost:8080"
	cfg.Database = dbconfig.Default()
	cfg.NATS.URL = nats.DefaultURL
	cfg.NATS.Stream = "DRAFT_EVENTS"
	cfg.Redis.TTL = 24 * time.Hour
	cfg.Ranking.Timeout = 2 * time.Second
	cfg.Engine.AutopickTimeout = 2 * time.Second
	cfg.Engine.InboxSize = 64

	lc := outbox.DefaultListenerConfig()
	cfg.Outbox.Channel = lc.NotifyChannel
	cfg.Outbox.FallbackInterval = lc.FallbackInterval
	cfg.Outbox.BatchSize = lc.BatchSize
	cfg.Outbox.MaxRetries = lc.MaxRetries
	cfg.Outbox.HealthThreshold = 5 * time.Minute
	cfg.Outbox.HealthPort = 8082
	return cfg
}

// loadConfig reads path if it exists and applies environment overrides.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Server.Port = getEnvAsInt("PORT", c.Server.Port)
	c.Gateway.Port = getEnvAsInt("GATEWAY_PORT", c.Gateway.Port)
	c.Gateway.EngineURL = getEnv("DRAFT_SERVICE_URL", c.Gateway.EngineURL)
	c.Database.ApplyEnv()
	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Ranking.URL = getEnv("RANKING_SERVICE_URL", c.Ranking.URL)
	c.Ranking.APIKey = getEnv("RANKING_API_KEY", c.Ranking.APIKey)
	c.Engine.AutopickTimeout = getEnvAsDuration("AUTOPICK_TIMEOUT", c.Engine.AutopickTimeout)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func (c *Config) listenerConfig() outbox.ListenerConfig {
	lc := outbox.DefaultListenerConfig()
	lc.DatabaseURL = c.Database.DSN()
	lc.NotifyChannel = c.Outbox.Channel
	lc.FallbackInterval = c.Outbox.FallbackInterval
	lc.BatchSize = c.Outbox.BatchSize
	lc.MaxRetries = c.Outbox.MaxRetries
	return lc
}
