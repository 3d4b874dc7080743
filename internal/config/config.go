// Package config loads service configuration from a YAML file with
// environment variable overrides for deployment targets.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server          ServerConfig          `yaml:"server"`
	Database        DatabaseConfig        `yaml:"database"`
	Redis           RedisConfig           `yaml:"redis"`
	Personalization PersonalizationConfig `yaml:"personalization"`
	Revenue         RevenueConfig         `yaml:"revenue"`
	Salesforce      SalesforceConfig      `yaml:"salesforce"`
	Demo            DemoConfig            `yaml:"demo"`
	LogLevel        string                `yaml:"log_level"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with ECS detection.
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// Addr returns the host:port pair the server listens on.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.GetHost(), c.Port)
}

// DatabaseConfig holds PostgreSQL configuration. An empty URL runs the
// service on the in-memory store.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds the profile cache configuration.
type RedisConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Addr              string `yaml:"addr"`
	Password          string `yaml:"password"`
	DB                int    `yaml:"db"`
	ProfileTTLSeconds int    `yaml:"profile_ttl_seconds"`
}

// ProfileTTL returns the configured cache TTL as a duration.
func (c RedisConfig) ProfileTTL() time.Duration {
	return time.Duration(c.ProfileTTLSeconds) * time.Second
}

// PersonalizationConfig holds scoring parameters.
type PersonalizationConfig struct {
	ScoringWindowDays int `yaml:"scoring_window_days"`
}

// RevenueConfig holds the baseline metrics used for revenue impact
// projections when the caller does not supply its own.
type RevenueConfig struct {
	AvgOpenRate          float64 `yaml:"avg_open_rate"`
	AvgClickRate         float64 `yaml:"avg_click_rate"`
	MonthlyChurnRate     float64 `yaml:"monthly_churn_rate"`
	RevenuePerSubscriber float64 `yaml:"revenue_per_subscriber"`
}

// SalesforceConfig holds CRM integration settings. The client runs in demo
// mode when no instance URL is configured.
type SalesforceConfig struct {
	InstanceURL string `yaml:"instance_url"`
}

// DemoConfig controls demo data seeding on startup.
type DemoConfig struct {
	Seed bool `yaml:"seed"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied, for running
// without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.ProfileTTLSeconds == 0 {
		cfg.Redis.ProfileTTLSeconds = 300
	}
	if cfg.Personalization.ScoringWindowDays == 0 {
		cfg.Personalization.ScoringWindowDays = 30
	}
	if cfg.Revenue.AvgOpenRate == 0 {
		cfg.Revenue.AvgOpenRate = 22.0
	}
	if cfg.Revenue.AvgClickRate == 0 {
		cfg.Revenue.AvgClickRate = 3.5
	}
	if cfg.Revenue.MonthlyChurnRate == 0 {
		cfg.Revenue.MonthlyChurnRate = 25.0
	}
	if cfg.Revenue.RevenuePerSubscriber == 0 {
		cfg.Revenue.RevenuePerSubscriber = 1200.0
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS. A
// missing config file is not an error; defaults apply.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if os.IsNotExist(err) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Server.Port = p
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if url := os.Getenv("SALESFORCE_INSTANCE_URL"); url != "" {
		cfg.Salesforce.InstanceURL = url
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if v := os.Getenv("SEED_DEMO_DATA"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED_DEMO_DATA %q: %w", v, err)
		}
		cfg.Demo.Seed = seed
	}

	return cfg, nil
}
