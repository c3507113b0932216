// Package config loads process configuration from defaults, an optional file
// and RECIPEBOX_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"recipebox/internal/quantity"
	"recipebox/internal/scraper"
)

// EnvPrefix is prepended to every environment override, e.g. RECIPEBOX_DATABASE_URL.
const EnvPrefix = "RECIPEBOX"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	Quantity QuantityConfig `mapstructure:"quantity"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// DatabaseConfig contains the PostgreSQL connection string.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// ScraperConfig controls page fetching during ingestion.
type ScraperConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	MaxBodyBytes int           `mapstructure:"max_body_bytes"`
}

// QuantityConfig holds the tolerances used when formatting amounts.
type QuantityConfig struct {
	Tolerance      float64 `mapstructure:"tolerance"`
	ZeroThreshold  float64 `mapstructure:"zero_threshold"`
	MaxDenominator int     `mapstructure:"max_denominator"`
}

// LogConfig contains logger configuration.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Development bool   `mapstructure:"development"`
}

// Load reads configuration. An empty configPath looks for config.{yaml,json}
// in the working directory and ./config; a missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:8081"})
	v.SetDefault("server.request_timeout", 30*time.Second)

	v.SetDefault("database.url", "")

	v.SetDefault("scraper.timeout", scraper.DefaultTimeout)
	v.SetDefault("scraper.user_agent", scraper.DefaultUserAgent)
	v.SetDefault("scraper.max_body_bytes", scraper.DefaultMaxBodyBytes)

	v.SetDefault("quantity.tolerance", quantity.DefaultTolerance)
	v.SetDefault("quantity.zero_threshold", quantity.DefaultZeroThreshold)
	v.SetDefault("quantity.max_denominator", quantity.DefaultMaxDenominator)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.development", false)
}

// Validate checks ranges. The database URL is checked by the commands that
// need it, since the CLI runs without one.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("server.allowed_origins must not be empty")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive")
	}
	if c.Scraper.Timeout <= 0 {
		return fmt.Errorf("scraper.timeout must be positive")
	}
	if c.Scraper.MaxBodyBytes <= 0 {
		return fmt.Errorf("scraper.max_body_bytes must be positive")
	}
	if c.Quantity.Tolerance <= 0 || c.Quantity.Tolerance >= 0.5 {
		return fmt.Errorf("quantity.tolerance must be in (0, 0.5)")
	}
	if c.Quantity.ZeroThreshold < 0 {
		return fmt.Errorf("quantity.zero_threshold must not be negative")
	}
	if c.Quantity.MaxDenominator < 2 {
		return fmt.Errorf("quantity.max_denominator must be at least 2")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// ScraperOptions converts the scraper section.
func (c *Config) ScraperOptions() scraper.Options {
	return scraper.Options{
		Timeout:      c.Scraper.Timeout,
		UserAgent:    c.Scraper.UserAgent,
		MaxBodyBytes: c.Scraper.MaxBodyBytes,
	}
}

// Formatter converts the quantity section.
func (c *Config) Formatter() quantity.Formatter {
	return quantity.Formatter{
		Tolerance:      c.Quantity.Tolerance,
		ZeroThreshold:  c.Quantity.ZeroThreshold,
		MaxDenominator: c.Quantity.MaxDenominator,
	}
}
