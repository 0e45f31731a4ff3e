package pipeline

import (
	"time"

	"plutoiptv/internal/dedup"
	"plutoiptv/internal/render"
	"plutoiptv/internal/snapcache"
)

// Diagnostics summarizes the decisions one run made. Nothing in it is an
// error; fatal problems are returned from Run instead.
type Diagnostics struct {
	CacheSource     snapcache.Source `json:"cacheSource"`
	CapturedAt      time.Time        `json:"capturedAt"`
	CacheWriteError string           `json:"cacheWriteError,omitempty"`

	// Merge counters are only known when this run fetched the feed.
	Windows             int `json:"windows,omitempty"`
	DuplicateProgrammes int `json:"duplicateProgrammes,omitempty"`
	InvalidProgrammes   int `json:"invalidProgrammes,omitempty"`

	RawChannels      int `json:"rawChannels"`
	Ineligible       int `json:"ineligible"`
	Published        int `json:"published"`
	NumberCollisions int `json:"numberCollisions"`
	NameCollisions   int `json:"nameCollisions"`
	SlugCollisions   int `json:"slugCollisions"`
	Reassigned       int `json:"reassigned"`

	PlaylistChannels int           `json:"playlistChannels"`
	GuideChannels    int           `json:"guideChannels"`
	Skips            []render.Skip `json:"skips,omitempty"`

	Dedup dedup.Report `json:"-"`
}

// SkipCount returns how many channels renderer left out.
func (d Diagnostics) SkipCount(renderer string) int {
	n := 0
	for _, skip := range d.Skips {
		if skip.Renderer == renderer {
			n++
		}
	}
	return n
}

// Collisions returns the total number of resolved collisions.
func (d Diagnostics) Collisions() int {
	return d.NumberCollisions + d.NameCollisions + d.SlugCollisions
}
