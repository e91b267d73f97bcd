package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"negative rps", func(c *Config) { c.RequestsPerSecond = -1 }, true},
		{"negative budget", func(c *Config) { c.QuotaBudget = -5 }, true},
		{"zero recent runs", func(c *Config) { c.RecentRuns = 0 }, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"upper level", func(c *Config) { c.LogLevel = "DEBUG" }, false},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"json format", func(c *Config) { c.LogFormat = "json" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	content := `{
  "api_key": "file-key",
  "channels": ["UC1", "UC2"],
  "start_date": "2025-09-16",
  "end_date": "2025-09-28",
  "requests_per_second": 2.5
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg := DefaultConfig()
	if err := cfg.loadFromFile([]string{filepath.Join(dir, "missing.json"), path}); err != nil {
		t.Fatalf("loadFromFile() error = %v", err)
	}

	if cfg.APIKey != "file-key" {
		t.Errorf("APIKey = %q, want file-key", cfg.APIKey)
	}
	if !reflect.DeepEqual(cfg.Channels, []string{"UC1", "UC2"}) {
		t.Errorf("Channels = %v", cfg.Channels)
	}
	if cfg.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v, want 2.5", cfg.RequestsPerSecond)
	}
	if cfg.ListenAddr != ":8501" {
		t.Errorf("ListenAddr = %q, default should survive", cfg.ListenAddr)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.loadFromFile([]string{filepath.Join(t.TempDir(), "nope.json")})
	if !os.IsNotExist(err) {
		t.Errorf("loadFromFile() error = %v, want not-exist", err)
	}
}

func TestLoadFromFileInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	cfg := DefaultConfig()
	if err := cfg.loadFromFile([]string{path}); err == nil || os.IsNotExist(err) {
		t.Errorf("loadFromFile() error = %v, want parse error", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "env-key")
	t.Setenv("YTHARVEST_CHANNELS", "UC1, UC2,,UC3")
	t.Setenv("YTHARVEST_START_DATE", "2025-09-16")
	t.Setenv("YTHARVEST_END_DATE", "2025-09-28")
	t.Setenv("YTHARVEST_REQUESTS_PER_SECOND", "1.5")
	t.Setenv("YTHARVEST_QUOTA_BUDGET", "500")
	t.Setenv("YTHARVEST_RECENT_RUNS", "not-a-number")
	t.Setenv("YTHARVEST_LOG_FORMAT", "json")

	cfg := DefaultConfig()
	cfg.loadFromEnv()

	if cfg.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env-key", cfg.APIKey)
	}
	if !reflect.DeepEqual(cfg.Channels, []string{"UC1", "UC2", "UC3"}) {
		t.Errorf("Channels = %v", cfg.Channels)
	}
	if cfg.StartDate != "2025-09-16" || cfg.EndDate != "2025-09-28" {
		t.Errorf("dates = %s..%s", cfg.StartDate, cfg.EndDate)
	}
	if cfg.RequestsPerSecond != 1.5 {
		t.Errorf("RequestsPerSecond = %v, want 1.5", cfg.RequestsPerSecond)
	}
	if cfg.QuotaBudget != 500 {
		t.Errorf("QuotaBudget = %d, want 500", cfg.QuotaBudget)
	}
	if cfg.RecentRuns != 16 {
		t.Errorf("RecentRuns = %d, unparseable value should keep default", cfg.RecentRuns)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
}

func TestAPIKeyPrecedence(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "generic")
	t.Setenv("YTHARVEST_API_KEY", "specific")

	cfg := DefaultConfig()
	cfg.loadFromEnv()
	if cfg.APIKey != "specific" {
		t.Errorf("APIKey = %q, want YTHARVEST_API_KEY to win", cfg.APIKey)
	}
}

func TestLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	level, err := cfg.Level()
	if err != nil {
		t.Fatalf("Level() error = %v", err)
	}
	if level != slog.LevelWarn {
		t.Errorf("Level() = %v, want WARN", level)
	}
	if cfg.NewLogger() == nil {
		t.Error("NewLogger() returned nil")
	}
}
