// Package config loads settings from .env, an optional YAML file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"domaincreates/internal/adapters/downloader"
)

// Config holds everything a run needs.
type Config struct {
	URLTemplate string        `yaml:"url_template"`
	OutputRoot  string        `yaml:"output_root"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	UserAgent   string        `yaml:"user_agent"`
	// Timezone decides what "today" is when no date is given. Empty means local.
	Timezone    string       `yaml:"timezone"`
	MetricsFile string       `yaml:"metrics_file"`
	Log         LogConfig    `yaml:"log"`
	Detect      DetectConfig `yaml:"detect"`
}

// LogConfig configures the console logger and the optional rotated log file.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// DetectConfig mirrors pdftable.DetectOptions.
type DetectConfig struct {
	LineTolerance float64 `yaml:"line_tolerance"`
	WordGap       float64 `yaml:"word_gap"`
	CellGap       float64 `yaml:"cell_gap"`
	MaxRowGap     float64 `yaml:"max_row_gap"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		URLTemplate: downloader.DefaultURLTemplate,
		OutputRoot:  ".",
		HTTPTimeout: downloader.DefaultTimeout,
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Detect: DetectConfig{
			LineTolerance: 0.3,
			WordGap:       0.15,
			CellGap:       1.5,
			MaxRowGap:     3.0,
		},
	}
}

// Load reads .env (if any), then the YAML file at path (if non-empty), then
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	// A missing .env is normal; variables may be set directly.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.URLTemplate = getEnv("DOMAINS_URL_TEMPLATE", c.URLTemplate)
	c.OutputRoot = getEnv("DOMAINS_OUTPUT_ROOT", c.OutputRoot)
	c.HTTPTimeout = getEnvDuration("DOMAINS_HTTP_TIMEOUT", c.HTTPTimeout)
	c.UserAgent = getEnv("DOMAINS_USER_AGENT", c.UserAgent)
	c.Timezone = getEnv("DOMAINS_TIMEZONE", c.Timezone)
	c.MetricsFile = getEnv("DOMAINS_METRICS_FILE", c.MetricsFile)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Log.FilePath = getEnv("LOG_FILE_PATH", c.Log.FilePath)
	c.Log.MaxSizeMB = getEnvInt("LOG_MAX_SIZE", c.Log.MaxSizeMB)
	c.Log.MaxBackups = getEnvInt("LOG_MAX_BACKUPS", c.Log.MaxBackups)
	c.Log.MaxAgeDays = getEnvInt("LOG_MAX_AGE", c.Log.MaxAgeDays)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !strings.Contains(c.URLTemplate, "{date}") {
		return fmt.Errorf("url_template must contain {date}: %q", c.URLTemplate)
	}
	if c.OutputRoot == "" {
		return fmt.Errorf("output_root is required")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log format must be console or json, got %q", c.Log.Format)
	}
	if c.Detect.CellGap <= c.Detect.WordGap {
		return fmt.Errorf("detect.cell_gap (%v) must exceed detect.word_gap (%v)", c.Detect.CellGap, c.Detect.WordGap)
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
