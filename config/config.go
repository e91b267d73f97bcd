// Package config manages application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileName is the config file looked up in the working directory and in
// ~/.config/ytharvest/.
const FileName = "ytharvest.json"

// Config holds all application configuration for a harvesting run.
type Config struct {
	// APIKey is the YouTube Data API key. Resolved once at startup and
	// passed down explicitly.
	APIKey string `json:"api_key"`
	// Endpoint overrides the Data API base URL (empty = public endpoint)
	Endpoint string `json:"endpoint"`

	// Channels is the default channel list for non-interactive runs
	Channels []string `json:"channels"`
	// StartDate is the default first publication date (YYYY-MM-DD)
	StartDate string `json:"start_date"`
	// EndDate is the default last publication date (YYYY-MM-DD)
	EndDate string `json:"end_date"`

	// OutputDir is where the CLI writes workbooks when no -out is given
	OutputDir string `json:"output_dir"`

	// RequestsPerSecond paces Data API calls (0 = no pacing)
	RequestsPerSecond float64 `json:"requests_per_second"`
	// QuotaBudget is the estimated daily quota; a warning is logged past it
	QuotaBudget int `json:"quota_budget"`

	// ListenAddr is the address of the interactive form server
	ListenAddr string `json:"listen_addr"`
	// RecentRuns is how many finished runs the form server keeps for download
	RecentRuns int `json:"recent_runs"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `json:"log_level"`
	// LogFormat is text or json
	LogFormat string `json:"log_format"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:         ".",
		RequestsPerSecond: 0,
		QuotaBudget:       10000,
		ListenAddr:        ":8501",
		RecentRuns:        16,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// Load loads configuration from environment variables, config file, and applies defaults.
// Priority: env vars > config file > defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(searchPaths()); err != nil {
		// Config file is optional
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func searchPaths() []string {
	paths := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "ytharvest", FileName))
	}
	return paths
}

// loadFromFile reads the first config file found in paths.
func (c *Config) loadFromFile(paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("YTHARVEST_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("YTHARVEST_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("YTHARVEST_CHANNELS"); v != "" {
		c.Channels = splitList(v)
	}
	if v := os.Getenv("YTHARVEST_START_DATE"); v != "" {
		c.StartDate = v
	}
	if v := os.Getenv("YTHARVEST_END_DATE"); v != "" {
		c.EndDate = v
	}
	if v := os.Getenv("YTHARVEST_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("YTHARVEST_REQUESTS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("YTHARVEST_QUOTA_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.QuotaBudget = n
		}
	}
	if v := os.Getenv("YTHARVEST_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("YTHARVEST_RECENT_RUNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RecentRuns = n
		}
	}
	if v := os.Getenv("YTHARVEST_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("YTHARVEST_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that configuration values are valid and consistent.
// A missing API key is not an error here; commands that query the API check it.
func (c *Config) Validate() error {
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be non-negative")
	}
	if c.QuotaBudget < 0 {
		return fmt.Errorf("quota_budget must be non-negative")
	}
	if c.RecentRuns <= 0 {
		return fmt.Errorf("recent_runs must be positive")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// NewLogger builds the process logger writing to stderr.
func (c *Config) NewLogger() *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
