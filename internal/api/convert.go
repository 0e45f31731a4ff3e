package api

import (
	"time"

	"plutoiptv/internal/feed"
	"plutoiptv/internal/pipeline"
	"plutoiptv/internal/render"
	"plutoiptv/internal/snapcache"
)

// FormatTime renders ts in the API timestamp format, or "" when zero.
func FormatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(dateTimeFormat)
}

// NewHealth builds the /health payload from the in-memory snapshot.
func NewHealth(now time.Time, snap *feed.Snapshot) HealthResponse {
	resp := HealthResponse{Status: StatusOK, Timestamp: FormatTime(now)}
	if snap != nil {
		age := now.Sub(snap.CapturedAt).Milliseconds()
		resp.Cache = CacheHealth{HasData: true, AgeMS: &age}
	}
	return resp
}

// FromDiagnostics converts pipeline diagnostics into a RunSummary.
func FromDiagnostics(d pipeline.Diagnostics) RunSummary {
	return RunSummary{
		CacheSource:      string(d.CacheSource),
		CapturedAt:       FormatTime(d.CapturedAt),
		CacheWriteError:  d.CacheWriteError,
		RawChannels:      d.RawChannels,
		Published:        d.Published,
		NumberCollisions: d.NumberCollisions,
		NameCollisions:   d.NameCollisions,
		SlugCollisions:   d.SlugCollisions,
		Reassigned:       d.Reassigned,
		PlaylistSkips:    d.SkipCount(render.RendererPlaylist),
		GuideSkips:       d.SkipCount(render.RendererGuide),
	}
}

// FromCacheStatus converts a snapcache status.
func FromCacheStatus(st snapcache.Status) CacheStatus {
	return CacheStatus{
		Backend:    st.Backend,
		Path:       st.Path,
		HasData:    st.HasData,
		Fresh:      st.Fresh,
		CapturedAt: FormatTime(st.CapturedAt),
		AgeMS:      st.Age.Milliseconds(),
		Channels:   st.Channels,
	}
}
