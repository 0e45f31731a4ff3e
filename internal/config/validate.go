package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFeed(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateChannels(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateFeed() error {
	parsed, err := url.Parse(c.Feed.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("feed.base_url must be an absolute URL, got %q", c.Feed.BaseURL)
	}
	positive := map[string]int{
		"feed.timeout_seconds": c.Feed.TimeoutSeconds,
		"feed.window_count":    c.Feed.WindowCount,
		"feed.window_hours":    c.Feed.WindowHours,
		"feed.concurrency":     c.Feed.Concurrency,
		"feed.max_response_mb": c.Feed.MaxResponseMB,
	}
	for key, value := range positive {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	if c.Feed.MaxRetries < 0 {
		return errors.New("feed.max_retries must be >= 0")
	}
	if c.Feed.RetryDelaySeconds < 0 {
		return errors.New("feed.retry_delay_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.TTLMinutes < 0 {
		return errors.New("cache.ttl_minutes must be >= 0")
	}
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendSQLite:
		return nil
	default:
		return fmt.Errorf("cache.backend: unsupported value %q (want %q or %q)", c.Cache.Backend, CacheBackendFile, CacheBackendSQLite)
	}
}

func (c *Config) validateChannels() error {
	if c.Channels.ZeroNumberStart <= 0 {
		return errors.New("channels.zero_number_start must be positive")
	}
	if _, err := regexp.Compile(c.Channels.ExcludedSlugPattern); err != nil {
		return fmt.Errorf("channels.excluded_slug_pattern: %w", err)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.AutoRefresh && c.Server.RefreshIntervalMinutes <= 0 {
		return errors.New("server.refresh_interval_minutes must be positive when server.auto_refresh is true")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	parsed, err := url.Parse(c.Notifications.NtfyTopic)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be an absolute URL, got %q", c.Notifications.NtfyTopic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
