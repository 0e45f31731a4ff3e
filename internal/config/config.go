package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Feed contains settings for the upstream channel/schedule API.
type Feed struct {
	BaseURL           string `toml:"base_url"`
	UserAgent         string `toml:"user_agent"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	MaxRetries        int    `toml:"max_retries"`
	RetryDelaySeconds int    `toml:"retry_delay_seconds"`
	WindowCount       int    `toml:"window_count"`
	WindowHours       int    `toml:"window_hours"`
	Concurrency       int    `toml:"concurrency"`
	MaxResponseMB     int    `toml:"max_response_mb"`
}

// Cache contains settings for the merged schedule snapshot.
type Cache struct {
	TTLMinutes int    `toml:"ttl_minutes"`
	Backend    string `toml:"backend"` // "file" or "sqlite"
	Path       string `toml:"path"`    // Default: <output.dir>/cache.json or cache.db
}

// Channels contains channel numbering and filtering settings.
type Channels struct {
	StartNumber         int      `toml:"start_number"`
	ZeroNumberStart     int      `toml:"zero_number_start"`
	Conflicting         []string `toml:"conflicting"`
	ExcludedSlugPattern string   `toml:"excluded_slug_pattern"`
}

// Output contains the published artifact locations.
type Output struct {
	Dir              string `toml:"dir"`
	PlaylistFilename string `toml:"playlist_filename"`
	GuideFilename    string `toml:"guide_filename"`
}

// Categories points at an optional canonical category table override.
type Categories struct {
	TablePath string `toml:"table_path"`
}

// Server contains settings for the HTTP daemon.
type Server struct {
	Bind                   string `toml:"bind"`
	AutoRefresh            bool   `toml:"auto_refresh"`
	RefreshIntervalMinutes int    `toml:"refresh_interval_minutes"`
}

// Notifications contains optional ntfy settings for refresh alerts.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for plutoiptv.
//
// Configuration sections by subsystem:
//   - Feed: upstream API location, retry policy, and time windows
//   - Cache: snapshot TTL and persistence backend
//   - Channels: display numbering, conflict renames, excluded entries
//   - Output: playlist and guide file locations
//   - Categories: canonical category table override
//   - Server: daemon bind address and auto refresh
//   - Notifications: ntfy topic for refresh failures
//   - Logging: log format, level, and optional file output
type Config struct {
	Feed          Feed          `toml:"feed"`
	Cache         Cache         `toml:"cache"`
	Channels      Channels      `toml:"channels"`
	Output        Output        `toml:"output"`
	Categories    Categories    `toml:"categories"`
	Server        Server        `toml:"server"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("plutoiptv.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output, cache, and log directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Output.Dir, filepath.Dir(c.Cache.Path)}
	if c.Logging.Dir != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PlaylistPath returns the absolute path of the published playlist.
func (c *Config) PlaylistPath() string {
	return filepath.Join(c.Output.Dir, c.Output.PlaylistFilename)
}

// GuidePath returns the absolute path of the published guide.
func (c *Config) GuidePath() string {
	return filepath.Join(c.Output.Dir, c.Output.GuideFilename)
}

// CacheTTL returns the snapshot freshness window.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

// FeedTimeout returns the per-request timeout for window fetches.
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.Feed.TimeoutSeconds) * time.Second
}

// MaxResponseBytes returns the feed response size cap in bytes.
func (c *Config) MaxResponseBytes() int64 {
	return int64(c.Feed.MaxResponseMB) << 20
}

// RetryDelay returns the fixed delay between transient fetch retries.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Feed.RetryDelaySeconds) * time.Second
}

// WindowLength returns the duration covered by a single fetch window.
func (c *Config) WindowLength() time.Duration {
	return time.Duration(c.Feed.WindowHours) * time.Hour
}

// RefreshInterval returns the daemon auto refresh period.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Server.RefreshIntervalMinutes) * time.Minute
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
