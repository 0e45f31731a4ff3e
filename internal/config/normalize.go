package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeFeed()
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	if err := c.normalizeCache(); err != nil {
		return err
	}
	if err := c.normalizeChannels(); err != nil {
		return err
	}
	if err := c.normalizeCategories(); err != nil {
		return err
	}
	c.normalizeServer()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	return c.normalizeLogging()
}

func (c *Config) normalizeFeed() {
	c.Feed.BaseURL = strings.TrimSpace(c.Feed.BaseURL)
	if c.Feed.BaseURL == "" {
		c.Feed.BaseURL = defaultFeedBaseURL
	}
	c.Feed.UserAgent = strings.TrimSpace(c.Feed.UserAgent)
	if c.Feed.UserAgent == "" {
		c.Feed.UserAgent = defaultFeedUserAgent
	}
	if c.Feed.Concurrency <= 0 {
		c.Feed.Concurrency = c.Feed.WindowCount
	}
}

func (c *Config) normalizeOutput() error {
	if value, ok := os.LookupEnv("PLUTOIPTV_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Output.Dir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		c.Output.Dir = defaultOutputDir
	}
	var err error
	if c.Output.Dir, err = expandPath(c.Output.Dir); err != nil {
		return fmt.Errorf("output.dir: %w", err)
	}
	c.Output.PlaylistFilename = strings.TrimSpace(c.Output.PlaylistFilename)
	if c.Output.PlaylistFilename == "" {
		c.Output.PlaylistFilename = defaultPlaylistFilename
	}
	c.Output.GuideFilename = strings.TrimSpace(c.Output.GuideFilename)
	if c.Output.GuideFilename == "" {
		c.Output.GuideFilename = defaultGuideFilename
	}
	return nil
}

func (c *Config) normalizeCache() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		name := "cache.json"
		if c.Cache.Backend == CacheBackendSQLite {
			name = "cache.db"
		}
		c.Cache.Path = filepath.Join(c.Output.Dir, name)
	}
	var err error
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeChannels() error {
	if value, ok := os.LookupEnv("CHANNEL_START_NUMBER"); ok && strings.TrimSpace(value) != "" {
		start, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("CHANNEL_START_NUMBER: %w", err)
		}
		c.Channels.StartNumber = start
	}
	if c.Channels.Conflicting == nil {
		c.Channels.Conflicting = DefaultConflictingSlugs()
	}
	slugs := make([]string, 0, len(c.Channels.Conflicting))
	seen := make(map[string]struct{}, len(c.Channels.Conflicting))
	for _, slug := range c.Channels.Conflicting {
		normalized := strings.ToLower(strings.TrimSpace(slug))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		slugs = append(slugs, normalized)
	}
	c.Channels.Conflicting = slugs
	c.Channels.ExcludedSlugPattern = strings.TrimSpace(c.Channels.ExcludedSlugPattern)
	if c.Channels.ExcludedSlugPattern == "" {
		c.Channels.ExcludedSlugPattern = defaultExcludedSlugPattern
	}
	return nil
}

func (c *Config) normalizeCategories() error {
	c.Categories.TablePath = strings.TrimSpace(c.Categories.TablePath)
	if c.Categories.TablePath == "" {
		return nil
	}
	var err error
	if c.Categories.TablePath, err = expandPath(c.Categories.TablePath); err != nil {
		return fmt.Errorf("categories.table_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	if port, ok := os.LookupEnv("PORT"); ok && strings.TrimSpace(port) != "" {
		host, _, err := net.SplitHostPort(c.Server.Bind)
		if err != nil {
			host = "0.0.0.0"
		}
		c.Server.Bind = net.JoinHostPort(host, strings.TrimSpace(port))
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if os.Getenv("DEBUG") == "true" {
		c.Logging.Level = "debug"
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = ""
		return nil
	}
	var err error
	if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
