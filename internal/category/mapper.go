package category

import (
	"strings"

	"plutoiptv/internal/feed"
)

const (
	KindMovie  = "Movie"
	KindSeries = "Series"
)

// Classification is the category output for one programme.
type Classification struct {
	Movie      bool
	Categories []string
}

// Kind returns "Movie" or "Series".
func (c Classification) Kind() string {
	if c.Movie {
		return KindMovie
	}
	return KindSeries
}

// Mapper classifies programmes against a table.
type Mapper struct {
	table *Table
}

func NewMapper(table *Table) *Mapper {
	return &Mapper{table: table}
}

// Classify returns the canonical categories implied by the episode genre,
// sub-genre and channel category, in table order and without repeats.
func (m *Mapper) Classify(episode feed.Episode, channelCategory string) Classification {
	result := Classification{Movie: episode.IsMovie()}
	if m == nil || m.table == nil {
		return result
	}

	working := make([]string, 0, 3)
	for _, raw := range []string{episode.Genre, episode.SubGenre, channelCategory} {
		if raw = strings.TrimSpace(raw); raw != "" {
			working = append(working, raw)
		}
	}
	if len(working) == 0 {
		return result
	}

	for _, entry := range m.table.entries {
		for _, raw := range working {
			if entry.Matches(raw) {
				result.Categories = append(result.Categories, entry.Name)
				break
			}
		}
	}
	return result
}
