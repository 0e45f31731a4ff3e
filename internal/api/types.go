package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Response status values.
const (
	StatusOK      = "ok"
	StatusSuccess = "success"
	StatusError   = "error"
)

// CacheHealth reports whether a snapshot is loaded and how old it is.
type CacheHealth struct {
	HasData bool   `json:"hasData"`
	AgeMS   *int64 `json:"age"`
}

// HealthResponse is served by /health.
type HealthResponse struct {
	Status    string      `json:"status"`
	Timestamp string      `json:"timestamp"`
	Cache     CacheHealth `json:"cache"`
}

// RefreshResponse is served by /refresh.
type RefreshResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Run     *RunSummary `json:"run,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RunSummary condenses the diagnostics of one pipeline run.
type RunSummary struct {
	CacheSource      string `json:"cacheSource"`
	CapturedAt       string `json:"capturedAt,omitempty"`
	CacheWriteError  string `json:"cacheWriteError,omitempty"`
	RawChannels      int    `json:"rawChannels"`
	Published        int    `json:"published"`
	NumberCollisions int    `json:"numberCollisions"`
	NameCollisions   int    `json:"nameCollisions"`
	SlugCollisions   int    `json:"slugCollisions"`
	Reassigned       int    `json:"reassigned"`
	PlaylistSkips    int    `json:"playlistSkips"`
	GuideSkips       int    `json:"guideSkips"`
}

// CacheStatus describes the persisted snapshot.
type CacheStatus struct {
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	HasData    bool   `json:"hasData"`
	Fresh      bool   `json:"fresh"`
	CapturedAt string `json:"capturedAt,omitempty"`
	AgeMS      int64  `json:"ageMs"`
	Channels   int    `json:"channels"`
}

// DaemonStatus aggregates daemon runtime information for /status.
type DaemonStatus struct {
	Running      bool        `json:"running"`
	PID          int         `json:"pid"`
	LockFilePath string      `json:"lockFilePath"`
	PlaylistPath string      `json:"playlistPath"`
	GuidePath    string      `json:"guidePath"`
	AutoRefresh  bool        `json:"autoRefresh"`
	LastRun      string      `json:"lastRun,omitempty"`
	LastError    string      `json:"lastError,omitempty"`
	LastSummary  *RunSummary `json:"lastSummary,omitempty"`
	Cache        CacheStatus `json:"cache"`
}
