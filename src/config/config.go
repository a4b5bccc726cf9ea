package config

import (
	"fmt"
	"os"
	"strconv"

	"stock-screener/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override secrets and deployment-specific values.
const (
	EnvDBConnectionString = "SCREENER_DB_CONNECTION_STRING"
	EnvDBPath             = "SCREENER_DB_PATH"
	EnvRedisAddr          = "SCREENER_REDIS_ADDR"
	EnvRedisPassword      = "SCREENER_REDIS_PASSWORD"
	EnvPort               = "SCREENER_PORT"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config from a YAML file. A .env file next to the
// working directory is loaded first when present.
func NewConfig(configPath string) (*Config, error) {
	// 1. Load .env (optional)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// 2. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse builds a Config from YAML bytes, applies defaults and environment
// overrides, and validates the result.
func Parse(data []byte) (*Config, error) {
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()
	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.ConnectRetries == 0 {
		c.Storage.ConnectRetries = 3
	}
	if c.Screener.ChartLimit == 0 {
		c.Screener.ChartLimit = 8
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 300
	}
}

// -----------------------------------------------------------------------------

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDBConnectionString); v != "" {
		c.Storage.DBConnectionString = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		c.Cache.Password = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Port = port
	}
	return nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d (must be between 1025 and 65535)", c.GrpcPort)
	}
	if c.GrpcPort != 0 && c.GrpcPort == c.Port {
		return fmt.Errorf("grpc port %d collides with the http port", c.GrpcPort)
	}

	// Storage
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type %q", c.Storage.DBType)
	}
	if c.Storage.MaxConnections < 0 {
		return fmt.Errorf("max connections cannot be negative")
	}

	// Cache
	if c.Cache.Enabled && c.Cache.RedisAddr == "" {
		return fmt.Errorf("redis address cannot be empty when the cache is enabled")
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache ttl cannot be negative")
	}

	// Screener
	if c.Screener.ChartLimit < 0 {
		return fmt.Errorf("chart limit cannot be negative")
	}
	if c.Screener.RequestTimeout < 0 {
		return fmt.Errorf("request timeout cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Default returns a configuration that runs locally on SQLite without a cache.
func Default() *Config {
	c := &Config{MConfig: &models.MConfig{
		Name:     "stock-screener",
		Port:     8000,
		GrpcPort: 50051,
		Storage: models.MStorageConfig{
			DBType: "sqlite",
			DBPath: "screener.db",
		},
		Screener: models.MScreenerConfig{RequestTimeout: 30},
	}}
	c.applyDefaults()
	return c
}
