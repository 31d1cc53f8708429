// Package config provides the typed application configuration: the
// store path template, upstream request tuning, display timezone, and
// logging setup. Configuration is read from a YAML file, overlaid with
// environment overrides, and validated eagerly before any I/O happens.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Manu2954/MarketSummariser-2.0/internal/errors"
)

// DefaultConfigPath is where the CLI looks for configuration when no
// --config flag is given.
const DefaultConfigPath = "config.yml"

// Environment variable names recognized as overrides.
const (
	EnvBaseURL    = "BINANCE_BASE_URL"
	EnvKlinesPath = "BINANCE_KLINES_PATH"
	EnvConfigPath = "MARKETSUM_CONFIG"
)

// AppConfig is the root configuration object.
type AppConfig struct {
	CSV     CSVConfig     `yaml:"csv"`
	Request RequestConfig `yaml:"request"`
	Logging LoggingConfig `yaml:"logging"`

	// Timezone is the display timezone name (IANA). Candle timestamps
	// are stored in this zone; empty means UTC.
	Timezone string `yaml:"timezone"`
}

// CSVConfig controls the persisted store location and merge behavior.
type CSVConfig struct {
	// Path is a template with {symbol} and {interval} placeholders.
	Path string `yaml:"path"`

	// Append selects merge-with-disk (true) or plain overwrite (false)
	// when persisting.
	Append bool `yaml:"append"`
}

// RequestConfig tunes the upstream klines client.
type RequestConfig struct {
	BaseURL    string `yaml:"base_url"`
	KlinesPath string `yaml:"klines_path"`

	// Limit is the page size requested per call.
	Limit int `yaml:"limit"`

	// RateLimitSleep is the blocking delay between pages, in seconds.
	RateLimitSleep float64 `yaml:"rate_limit_sleep"`

	// Timeout is the per-request HTTP timeout, in seconds.
	Timeout int `yaml:"timeout"`

	// MaxAttempts is the number of tries per request; 1 disables
	// retrying entirely.
	MaxAttempts int `yaml:"max_attempts"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json

	// File enables rotated file output when non-empty; logs always go
	// to stderr as well.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig returns the configuration used when no file or key is
// present.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		CSV: CSVConfig{
			Path:   "data/{symbol}_{interval}.csv",
			Append: true,
		},
		Request: RequestConfig{
			BaseURL:        "https://api.binance.com",
			KlinesPath:     "/api/v3/klines",
			Limit:          1000,
			RateLimitSleep: 0.2,
			Timeout:        30,
			MaxAttempts:    1,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		Timezone: "",
	}
}

// Load reads the YAML file at path over the defaults, applies
// environment overrides, and validates the result.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInvalidConfig,
			fmt.Sprintf("cannot read config file %s", path))
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInvalidConfig,
			fmt.Sprintf("cannot parse config file %s", path))
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load, but a missing file at the default
// path falls back to defaults instead of failing. A missing file at an
// explicitly chosen path is still an error.
func LoadOrDefault(path string) (*AppConfig, error) {
	if path == DefaultConfigPath {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
	}
	return Load(path)
}

func (c *AppConfig) applyEnvOverrides() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Request.BaseURL = v
	}
	if v := os.Getenv(EnvKlinesPath); v != "" {
		c.Request.KlinesPath = v
	}
}

// Validate checks every recognized option and reports all problems at
// once.
func (c *AppConfig) Validate() error {
	var problems []string

	if strings.TrimSpace(c.CSV.Path) == "" {
		problems = append(problems, "csv.path is required")
	}
	if c.Request.BaseURL == "" {
		problems = append(problems, "request.base_url is required")
	}
	if c.Request.Limit <= 0 {
		problems = append(problems, fmt.Sprintf("request.limit must be positive, got %d", c.Request.Limit))
	}
	if c.Request.RateLimitSleep < 0 {
		problems = append(problems, fmt.Sprintf("request.rate_limit_sleep must not be negative, got %g", c.Request.RateLimitSleep))
	}
	if c.Request.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("request.timeout must be positive, got %d", c.Request.Timeout))
	}
	if c.Request.MaxAttempts < 1 {
		problems = append(problems, fmt.Sprintf("request.max_attempts must be at least 1, got %d", c.Request.MaxAttempts))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not one of text, json", c.Logging.Format))
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			problems = append(problems, fmt.Sprintf("timezone %q is not a valid IANA zone", c.Timezone))
		}
	}

	if len(problems) > 0 {
		return apperrors.NewInvalidConfig(strings.Join(problems, "; "))
	}
	return nil
}

// Location resolves the display timezone. Empty configuration means
// UTC.
func (c *AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInvalidConfig,
			fmt.Sprintf("unknown timezone %q", c.Timezone))
	}
	return loc, nil
}

// StorePath expands the path template for one (symbol, interval).
func (c *CSVConfig) StorePath(symbol, interval string) string {
	return strings.NewReplacer("{symbol}", symbol, "{interval}", interval).Replace(c.Path)
}

// SleepDuration returns the inter-page delay as a time.Duration.
func (r *RequestConfig) SleepDuration() time.Duration {
	return time.Duration(r.RateLimitSleep * float64(time.Second))
}

// TimeoutDuration returns the per-request timeout as a time.Duration.
func (r *RequestConfig) TimeoutDuration() time.Duration {
	return time.Duration(r.Timeout) * time.Second
}
