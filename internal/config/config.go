// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sms-cost/adapters/storage/redisstore"
	"sms-cost/adapters/storage/sqlstore"
	"sms-cost/core/types"
	apperrors "sms-cost/internal/errors"
	"sms-cost/internal/logging"
)

// Source names a backend for bands or usage
type Source string

const (
	SourceMemory Source = "memory"
	SourceFile   Source = "file"
	SourceSQL    Source = "sql"
	SourceRedis  Source = "redis"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version"`

	// Billing contains cost computation settings
	Billing BillingConfig `json:"billing" yaml:"billing"`

	// Bands selects where price bands come from
	Bands BandsConfig `json:"bands" yaml:"bands"`

	// Usage selects where usage quantities come from
	Usage UsageConfig `json:"usage" yaml:"usage"`

	// Database configures the SQL store
	Database sqlstore.Config `json:"database" yaml:"database"`

	// Redis configures the Redis usage counter
	Redis redisstore.Config `json:"redis" yaml:"redis"`

	// Server contains HTTP server settings
	Server ServerConfig `json:"server" yaml:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// BillingConfig contains cost computation settings
type BillingConfig struct {
	// Currency is attached to statements
	Currency types.Currency `json:"currency" yaml:"currency"`

	// Strict rejects malformed band sets instead of pricing them
	Strict bool `json:"strict" yaml:"strict"`
}

// BandsConfig selects the price band source
type BandsConfig struct {
	// Source is file, sql or memory
	Source Source `json:"source" yaml:"source"`

	// File is the band file for the file source
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// UsageConfig selects the usage source
type UsageConfig struct {
	// Source is memory, redis or sql
	Source Source `json:"source" yaml:"source"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	bandFile := filepath.Join(homeDir, ".sms-cost", "bands.hcl")

	return &Config{
		Version: "1.0",
		Billing: BillingConfig{
			Currency: types.CurrencyGBP,
			Strict:   true,
		},
		Bands: BandsConfig{
			Source: SourceFile,
			File:   bandFile,
		},
		Usage: UsageConfig{
			Source: SourceMemory,
		},
		Database: sqlstore.DefaultConfig(),
		Redis:    redisstore.DefaultConfig(),
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logging: logging.DefaultConfig(),
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load loads configuration from a JSON or YAML file.
// A missing file yields the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			config.ApplyEnv()
			return config, nil
		}
		return nil, apperrors.Config("failed to read config", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, apperrors.Config("failed to parse config "+path, err)
	}

	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides settings from the environment
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Address = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}
	if v := os.Getenv("SMS_COST_BANDS_FILE"); v != "" {
		c.Bands.File = v
	}
	if v := os.Getenv("SMS_COST_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks that the selected sources are supported
func (c *Config) Validate() error {
	switch c.Bands.Source {
	case SourceFile:
		if c.Bands.File == "" {
			return apperrors.New(apperrors.TypeConfig, "bands.file is required for the file source")
		}
	case SourceSQL, SourceMemory:
	default:
		return apperrors.Newf(apperrors.TypeConfig, "unsupported bands.source %q (use file, sql or memory)", c.Bands.Source)
	}

	switch c.Usage.Source {
	case SourceMemory, SourceRedis, SourceSQL:
	default:
		return apperrors.Newf(apperrors.TypeConfig, "unsupported usage.source %q (use memory, redis or sql)", c.Usage.Source)
	}

	return nil
}

// Save saves configuration to a file, YAML or JSON by extension
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
