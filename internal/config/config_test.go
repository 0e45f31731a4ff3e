package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"plutoiptv/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PLUTOIPTV_OUTPUT_DIR", filepath.Join(tempHome, "out"))
	t.Setenv("CHANNEL_START_NUMBER", "")
	t.Setenv("PORT", "")
	t.Setenv("DEBUG", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantOutput := filepath.Join(tempHome, "out")
	if cfg.Output.Dir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Output.Dir, wantOutput)
	}
	if cfg.Cache.Path != filepath.Join(wantOutput, "cache.json") {
		t.Fatalf("unexpected cache path: %q", cfg.Cache.Path)
	}
	if cfg.PlaylistPath() != filepath.Join(wantOutput, "playlist.m3u") {
		t.Fatalf("unexpected playlist path: %q", cfg.PlaylistPath())
	}
	if cfg.GuidePath() != filepath.Join(wantOutput, "epg.xml") {
		t.Fatalf("unexpected guide path: %q", cfg.GuidePath())
	}
	if cfg.Channels.StartNumber != 1000 {
		t.Fatalf("unexpected start number: %d", cfg.Channels.StartNumber)
	}
	if cfg.Channels.ZeroNumberStart != 9000 {
		t.Fatalf("unexpected zero number start: %d", cfg.Channels.ZeroNumberStart)
	}
	if len(cfg.Channels.Conflicting) != 5 || cfg.Channels.Conflicting[0] != "cnn" {
		t.Fatalf("unexpected conflicting slugs: %v", cfg.Channels.Conflicting)
	}
	if cfg.CacheTTL().Minutes() != 30 {
		t.Fatalf("unexpected cache ttl: %v", cfg.CacheTTL())
	}
	if cfg.WindowLength().Hours() != 6 || cfg.Feed.WindowCount != 4 {
		t.Fatalf("unexpected window layout: %d x %v", cfg.Feed.WindowCount, cfg.WindowLength())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	info, err := os.Stat(cfg.Output.Dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected output directory to exist: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "plutoiptv.toml")
	t.Setenv("PLUTOIPTV_OUTPUT_DIR", "")
	t.Setenv("CHANNEL_START_NUMBER", "")
	t.Setenv("PORT", "")

	type payload struct {
		Feed struct {
			BaseURL     string `toml:"base_url"`
			WindowCount int    `toml:"window_count"`
		} `toml:"feed"`
		Cache struct {
			Backend string `toml:"backend"`
		} `toml:"cache"`
		Output struct {
			Dir string `toml:"dir"`
		} `toml:"output"`
		Channels struct {
			Conflicting []string `toml:"conflicting"`
		} `toml:"channels"`
	}
	custom := payload{}
	custom.Feed.BaseURL = "https://example.com/v2/channels"
	custom.Feed.WindowCount = 2
	custom.Cache.Backend = "SQLite"
	custom.Output.Dir = filepath.Join(tempDir, "published")
	custom.Channels.Conflicting = []string{" CNN ", "cnn", "", "bbc"}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Feed.BaseURL != "https://example.com/v2/channels" {
		t.Fatalf("expected base url override, got %q", cfg.Feed.BaseURL)
	}
	if cfg.Feed.WindowCount != 2 {
		t.Fatalf("expected window count 2, got %d", cfg.Feed.WindowCount)
	}
	if cfg.Cache.Backend != config.CacheBackendSQLite {
		t.Fatalf("expected sqlite backend, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.Path != filepath.Join(tempDir, "published", "cache.db") {
		t.Fatalf("unexpected cache path: %q", cfg.Cache.Path)
	}
	if strings.Join(cfg.Channels.Conflicting, ",") != "cnn,bbc" {
		t.Fatalf("expected normalized conflicting slugs, got %v", cfg.Channels.Conflicting)
	}
}

func TestEnvOverrides(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("PLUTOIPTV_OUTPUT_DIR", filepath.Join(tempDir, "env-out"))
	t.Setenv("CHANNEL_START_NUMBER", "10000")
	t.Setenv("PORT", "9999")
	t.Setenv("DEBUG", "true")

	cfg, _, _, err := config.Load(filepath.Join(tempDir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Channels.StartNumber != 10000 {
		t.Errorf("expected start number from env, got %d", cfg.Channels.StartNumber)
	}
	if cfg.Server.Bind != "0.0.0.0:9999" {
		t.Errorf("expected bind port from env, got %q", cfg.Server.Bind)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level from env, got %q", cfg.Logging.Level)
	}
	if cfg.Output.Dir != filepath.Join(tempDir, "env-out") {
		t.Errorf("expected output dir from env, got %q", cfg.Output.Dir)
	}
}

func TestInvalidStartNumberEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CHANNEL_START_NUMBER", "lots")
	if _, _, _, err := config.Load(""); err == nil {
		t.Fatal("expected error for non-numeric CHANNEL_START_NUMBER")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	for _, section := range []string{"[feed]", "[cache]", "[channels]", "[output]", "[server]", "[notifications]", "[logging]"} {
		if !strings.Contains(string(contents), section) {
			t.Fatalf("sample config missing %s section", section)
		}
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"relative base url", func(c *config.Config) { c.Feed.BaseURL = "/v2/channels" }},
		{"zero windows", func(c *config.Config) { c.Feed.WindowCount = 0 }},
		{"zero window hours", func(c *config.Config) { c.Feed.WindowHours = 0 }},
		{"zero response cap", func(c *config.Config) { c.Feed.MaxResponseMB = 0 }},
		{"negative retries", func(c *config.Config) { c.Feed.MaxRetries = -1 }},
		{"unknown backend", func(c *config.Config) { c.Cache.Backend = "redis" }},
		{"zero reserved block", func(c *config.Config) { c.Channels.ZeroNumberStart = 0 }},
		{"bad slug pattern", func(c *config.Config) { c.Channels.ExcludedSlugPattern = "(" }},
		{"refresh without interval", func(c *config.Config) { c.Server.RefreshIntervalMinutes = 0 }},
		{"relative ntfy topic", func(c *config.Config) { c.Notifications.NtfyTopic = "my-topic" }},
		{"unknown log format", func(c *config.Config) { c.Logging.Format = "xml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
