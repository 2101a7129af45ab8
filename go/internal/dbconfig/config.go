package dbconfig

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds Postgres connection settings.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// Default returns settings for a local Postgres.
func Default() Config {
	return Config{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "dynasty_draft",
		SSLMode:  "disable",
	}
}

// NewConfigFromEnv reads DB_* environment variables (with defaults).
func NewConfigFromEnv() Config {
	cfg := Default()
	cfg.ApplyEnv()
	return cfg
}

// ApplyEnv overrides fields with any DB_* variables that are set.
func (c *Config) ApplyEnv() {
	c.Host = getEnv("DB_HOST", c.Host)
	if port, err := strconv.Atoi(os.Getenv("DB_PORT")); err == nil {
		c.Port = port
	}
	c.User = getEnv("DB_USER", c.User)
	c.Password = getEnv("DB_PASSWORD", c.Password)
	c.Database = getEnv("DB_NAME", c.Database)
	c.SSLMode = getEnv("DB_SSLMODE", c.SSLMode)
}

// DSN returns the Postgres connection URL.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
