package feed

import (
	"fmt"
	"strings"
	"time"
)

// SeriesTypeFilm marks a series record that describes a single film.
const SeriesTypeFilm = "film"

// NoInformation is the placeholder upstream uses for empty text fields.
const NoInformation = "No information available"

type Image struct {
	Path string `json:"path"`
}

type StreamURL struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url"`
}

type Stitched struct {
	URLs []StreamURL `json:"urls"`
}

// Channel is one upstream channel record with its programmes.
type Channel struct {
	ID            string     `json:"_id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Number        Number     `json:"number"`
	Category      string     `json:"category,omitempty"`
	IsStitched    bool       `json:"isStitched"`
	Summary       string     `json:"summary,omitempty"`
	ColorLogoPNG  *Image     `json:"colorLogoPNG,omitempty"`
	FeaturedImage *Image     `json:"featuredImage,omitempty"`
	Logo          *Image     `json:"logo,omitempty"`
	Thumbnail     *Image     `json:"thumbnail,omitempty"`
	Stitched      *Stitched  `json:"stitched,omitempty"`
	Timelines     []Timeline `json:"timelines,omitempty"`
}

// Timeline is one scheduled programme on a channel.
type Timeline struct {
	ID      string    `json:"_id,omitempty"`
	Start   time.Time `json:"start"`
	Stop    time.Time `json:"stop"`
	Title   string    `json:"title"`
	Episode Episode   `json:"episode"`
}

type Episode struct {
	ID            string `json:"_id,omitempty"`
	Name          string `json:"name,omitempty"`
	Genre         string `json:"genre,omitempty"`
	SubGenre      string `json:"subGenre,omitempty"`
	Season        Number `json:"season"`
	Number        Number `json:"number"`
	Description   string `json:"description,omitempty"`
	LiveBroadcast bool   `json:"liveBroadcast,omitempty"`
	Poster        *Image `json:"poster,omitempty"`
	Series        Series `json:"series"`
	Clip          *Clip  `json:"clip,omitempty"`
}

type Series struct {
	ID   string `json:"_id,omitempty"`
	Type string `json:"type,omitempty"`
	Tile *Image `json:"tile,omitempty"`
}

type Clip struct {
	OriginalReleaseDate string `json:"originalReleaseDate,omitempty"`
}

// IsMovie reports whether the episode belongs to a film series.
func (e Episode) IsMovie() bool {
	return strings.EqualFold(strings.TrimSpace(e.Series.Type), SeriesTypeFilm)
}

// ReleaseDate parses the clip's original release date, if any.
func (e Episode) ReleaseDate() (time.Time, bool) {
	if e.Clip == nil {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(e.Clip.OriginalReleaseDate)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z0700", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ImagePath returns the path of img, or "" when absent.
func ImagePath(img *Image) string {
	if img == nil {
		return ""
	}
	return strings.TrimSpace(img.Path)
}

// StreamSource returns the first stitched stream URL, or "".
func (c Channel) StreamSource() string {
	if c.Stitched == nil {
		return ""
	}
	for _, u := range c.Stitched.URLs {
		if trimmed := strings.TrimSpace(u.URL); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// Clone returns a deep copy so callers can mutate channels without touching
// shared snapshots.
func (c Channel) Clone() Channel {
	out := c
	out.ColorLogoPNG = cloneImage(c.ColorLogoPNG)
	out.FeaturedImage = cloneImage(c.FeaturedImage)
	out.Logo = cloneImage(c.Logo)
	out.Thumbnail = cloneImage(c.Thumbnail)
	if c.Stitched != nil {
		s := Stitched{URLs: append([]StreamURL(nil), c.Stitched.URLs...)}
		out.Stitched = &s
	}
	if c.Timelines != nil {
		out.Timelines = make([]Timeline, len(c.Timelines))
		for i, tl := range c.Timelines {
			out.Timelines[i] = tl.clone()
		}
	}
	return out
}

func (t Timeline) clone() Timeline {
	out := t
	out.Episode.Poster = cloneImage(t.Episode.Poster)
	out.Episode.Series.Tile = cloneImage(t.Episode.Series.Tile)
	if t.Episode.Clip != nil {
		clip := *t.Episode.Clip
		out.Episode.Clip = &clip
	}
	return out
}

func cloneImage(img *Image) *Image {
	if img == nil {
		return nil
	}
	cp := *img
	return &cp
}

// CloneChannels deep-copies a channel slice.
func CloneChannels(channels []Channel) []Channel {
	if channels == nil {
		return nil
	}
	out := make([]Channel, len(channels))
	for i, ch := range channels {
		out[i] = ch.Clone()
	}
	return out
}

// Window is a half-open fetch interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.Start.UTC().Format(time.RFC3339), w.End.UTC().Format(time.RFC3339))
}

// Fragment is the raw channel list returned for one window.
type Fragment struct {
	Window   Window
	Channels []Channel
}

// Snapshot is a merged, pre-dedup channel set and the time it was captured.
type Snapshot struct {
	CapturedAt time.Time `json:"captured_at"`
	Channels   []Channel `json:"channels"`
}

// Fresh reports whether the snapshot is younger than ttl at now.
func (s *Snapshot) Fresh(now time.Time, ttl time.Duration) bool {
	if s == nil || s.CapturedAt.IsZero() {
		return false
	}
	return now.Sub(s.CapturedAt) < ttl
}
