package config

const (
	defaultConfigPath             = "~/.config/plutoiptv/config.toml"
	defaultFeedBaseURL            = "https://api.pluto.tv/v2/channels"
	defaultFeedUserAgent          = "pluto-iptv/2.0.0"
	defaultFeedTimeoutSeconds     = 30
	defaultFeedMaxRetries         = 3
	defaultFeedRetryDelaySeconds  = 60
	defaultFeedWindowCount        = 4
	defaultFeedWindowHours        = 6
	defaultFeedConcurrency        = 4
	defaultFeedMaxResponseMB      = 64
	defaultCacheTTLMinutes        = 30
	defaultCacheBackend           = "file"
	defaultChannelStartNumber     = 1000
	defaultZeroNumberStart        = 9000
	defaultExcludedSlugPattern    = `^(announcement|privacy-policy)`
	defaultOutputDir              = "./output"
	defaultPlaylistFilename       = "playlist.m3u"
	defaultGuideFilename          = "epg.xml"
	defaultServerBind             = "0.0.0.0:8080"
	defaultRefreshIntervalMinutes = 360
	defaultNtfyTimeoutSeconds     = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// CacheBackendFile stores the snapshot as a JSON document.
const CacheBackendFile = "file"

// CacheBackendSQLite stores the snapshot in a single-row SQLite table.
const CacheBackendSQLite = "sqlite"

// DefaultConflictingSlugs lists slugs that collide with well-known external
// channel identifiers and are published with a "pluto-" prefix.
func DefaultConflictingSlugs() []string {
	return []string{"cnn", "dabl", "heartland", "newsy", "buzzr"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Feed: Feed{
			BaseURL:           defaultFeedBaseURL,
			UserAgent:         defaultFeedUserAgent,
			TimeoutSeconds:    defaultFeedTimeoutSeconds,
			MaxRetries:        defaultFeedMaxRetries,
			RetryDelaySeconds: defaultFeedRetryDelaySeconds,
			WindowCount:       defaultFeedWindowCount,
			WindowHours:       defaultFeedWindowHours,
			Concurrency:       defaultFeedConcurrency,
			MaxResponseMB:     defaultFeedMaxResponseMB,
		},
		Cache: Cache{
			TTLMinutes: defaultCacheTTLMinutes,
			Backend:    defaultCacheBackend,
		},
		Channels: Channels{
			StartNumber:         defaultChannelStartNumber,
			ZeroNumberStart:     defaultZeroNumberStart,
			Conflicting:         DefaultConflictingSlugs(),
			ExcludedSlugPattern: defaultExcludedSlugPattern,
		},
		Output: Output{
			Dir:              defaultOutputDir,
			PlaylistFilename: defaultPlaylistFilename,
			GuideFilename:    defaultGuideFilename,
		},
		Server: Server{
			Bind:                   defaultServerBind,
			AutoRefresh:            true,
			RefreshIntervalMinutes: defaultRefreshIntervalMinutes,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
