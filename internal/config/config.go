package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Collector modes.
const (
	ModeHTTP = "http"
	ModeMock = "mock"
)

// DefaultCatalogURL is the CMS provider-data metastore listing.
const DefaultCatalogURL = "https://data.cms.gov/provider-data/api/1/metastore/schemas/dataset/items"

// Config defines configuration for a sync run.
type Config struct {
	CatalogURL    string     `yaml:"catalog_url"`
	Theme         string     `yaml:"theme"`
	OutputDir     string     `yaml:"output_dir"`
	OutputURL     string     `yaml:"output_url"`
	WatermarkPath string     `yaml:"watermark_path"`
	HistoryPath   string     `yaml:"history_path"`
	ReportPath    string     `yaml:"report_path"`
	Workers       int        `yaml:"workers"`
	CollectorMode string     `yaml:"collector_mode"`
	UserAgent     string     `yaml:"user_agent"`
	HTTP          HTTPConfig `yaml:"http"`
}

// HTTPConfig bounds outbound requests.
type HTTPConfig struct {
	CatalogTimeout time.Duration `yaml:"catalog_timeout"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	// FetchInterval is the minimum spacing between dataset downloads
	// across all workers. Zero disables pacing.
	FetchInterval time.Duration `yaml:"fetch_interval"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		CatalogURL:    DefaultCatalogURL,
		Theme:         "Hospitals",
		OutputDir:     "hospital_datasets",
		WatermarkPath: "last_run.json",
		Workers:       5,
		CollectorMode: ModeHTTP,
		UserAgent:     "hospital-sync/1.0",
		HTTP: HTTPConfig{
			CatalogTimeout: time.Minute,
			FetchTimeout:   5 * time.Minute,
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	CatalogURL    string         `yaml:"catalog_url"`
	Theme         string         `yaml:"theme"`
	OutputDir     string         `yaml:"output_dir"`
	OutputURL     string         `yaml:"output_url"`
	WatermarkPath string         `yaml:"watermark_path"`
	HistoryPath   string         `yaml:"history_path"`
	ReportPath    string         `yaml:"report_path"`
	Workers       int            `yaml:"workers"`
	CollectorMode string         `yaml:"collector_mode"`
	UserAgent     string         `yaml:"user_agent"`
	HTTP          yamlHTTPConfig `yaml:"http"`
}

type yamlHTTPConfig struct {
	CatalogTimeout string `yaml:"catalog_timeout"`
	FetchTimeout   string `yaml:"fetch_timeout"`
	FetchInterval  string `yaml:"fetch_interval"`
}

// LoadFromFile loads configuration from a YAML file on top of Default().
func LoadFromFile(path string) (Config, error) {
	// #nosec G304 -- path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	override := Config{
		CatalogURL:    yc.CatalogURL,
		Theme:         yc.Theme,
		OutputDir:     yc.OutputDir,
		OutputURL:     yc.OutputURL,
		WatermarkPath: yc.WatermarkPath,
		HistoryPath:   yc.HistoryPath,
		ReportPath:    yc.ReportPath,
		Workers:       yc.Workers,
		CollectorMode: yc.CollectorMode,
		UserAgent:     yc.UserAgent,
	}
	durations := []struct {
		key   string
		value string
		dst   *time.Duration
	}{
		{"http.catalog_timeout", yc.HTTP.CatalogTimeout, &override.HTTP.CatalogTimeout},
		{"http.fetch_timeout", yc.HTTP.FetchTimeout, &override.HTTP.FetchTimeout},
		{"http.fetch_interval", yc.HTTP.FetchInterval, &override.HTTP.FetchInterval},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	return Default().Merge(override), nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the HSYNC_ prefix, except COLLECTOR_MODE.
func (c *Config) LoadFromEnv() error {
	stringVars := []struct {
		key string
		dst *string
	}{
		{"HSYNC_CATALOG_URL", &c.CatalogURL},
		{"HSYNC_THEME", &c.Theme},
		{"HSYNC_OUTPUT_DIR", &c.OutputDir},
		{"HSYNC_OUTPUT_URL", &c.OutputURL},
		{"HSYNC_WATERMARK_PATH", &c.WatermarkPath},
		{"HSYNC_HISTORY_PATH", &c.HistoryPath},
		{"HSYNC_REPORT_PATH", &c.ReportPath},
		{"HSYNC_USER_AGENT", &c.UserAgent},
		{"COLLECTOR_MODE", &c.CollectorMode},
	}
	for _, s := range stringVars {
		if v := os.Getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	if v := os.Getenv("HSYNC_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse HSYNC_WORKERS: %w", err)
		}
		c.Workers = n
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"HSYNC_CATALOG_TIMEOUT", &c.HTTP.CatalogTimeout},
		{"HSYNC_FETCH_TIMEOUT", &c.HTTP.FetchTimeout},
		{"HSYNC_FETCH_INTERVAL", &c.HTTP.FetchInterval},
	}
	for _, d := range durations {
		if v := os.Getenv(d.key); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("parse %s: %w", d.key, err)
			}
			*d.dst = parsed
		}
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.CatalogURL == "" && c.CollectorMode != ModeMock {
		return errors.New("config: catalog_url is required")
	}
	if c.Theme == "" {
		return errors.New("config: theme is required")
	}
	if c.OutputDir == "" && c.OutputURL == "" {
		return errors.New("config: output_dir or output_url is required")
	}
	if c.WatermarkPath == "" {
		return errors.New("config: watermark_path is required")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.HTTP.CatalogTimeout < 0 || c.HTTP.FetchTimeout < 0 || c.HTTP.FetchInterval < 0 {
		return errors.New("config: http durations must not be negative")
	}
	switch c.CollectorMode {
	case ModeHTTP, ModeMock:
	default:
		return fmt.Errorf("config: unknown collector_mode %q", c.CollectorMode)
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.CatalogURL != "" {
		c.CatalogURL = override.CatalogURL
	}
	if override.Theme != "" {
		c.Theme = override.Theme
	}
	if override.OutputDir != "" {
		c.OutputDir = override.OutputDir
	}
	if override.OutputURL != "" {
		c.OutputURL = override.OutputURL
	}
	if override.WatermarkPath != "" {
		c.WatermarkPath = override.WatermarkPath
	}
	if override.HistoryPath != "" {
		c.HistoryPath = override.HistoryPath
	}
	if override.ReportPath != "" {
		c.ReportPath = override.ReportPath
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.CollectorMode != "" {
		c.CollectorMode = override.CollectorMode
	}
	if override.UserAgent != "" {
		c.UserAgent = override.UserAgent
	}
	if override.HTTP.CatalogTimeout != 0 {
		c.HTTP.CatalogTimeout = override.HTTP.CatalogTimeout
	}
	if override.HTTP.FetchTimeout != 0 {
		c.HTTP.FetchTimeout = override.HTTP.FetchTimeout
	}
	if override.HTTP.FetchInterval != 0 {
		c.HTTP.FetchInterval = override.HTTP.FetchInterval
	}
	return c
}
