package render

import (
	"fmt"
	"slices"
	"strings"

	"plutoiptv/internal/feed"
	"plutoiptv/internal/services"
)

// ConflictPrefix is prepended to slugs on the conflict list.
const ConflictPrefix = "pluto-"

// Renderer names used in skips.
const (
	RendererPlaylist = "playlist"
	RendererGuide    = "guide"
)

// Options holds the settings shared by both renderers.
type Options struct {
	// StartNumber is added to every channel number in the playlist.
	StartNumber int
	// Conflicting lists raw slugs that are published with ConflictPrefix.
	Conflicting []string
}

// DisplaySlug returns the slug a channel is published under.
func (o Options) DisplaySlug(slug string) string {
	slug = strings.TrimSpace(slug)
	if slices.Contains(o.Conflicting, strings.ToLower(slug)) {
		return ConflictPrefix + slug
	}
	return slug
}

// DisplayNumber returns the playlist channel number.
func (o Options) DisplayNumber(number feed.Number) int {
	return o.StartNumber + number.Int()
}

// Skip records a channel left out of one document.
type Skip struct {
	Renderer  string `json:"renderer"`
	ChannelID string `json:"channel_id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
}

// Err returns the skip as an ErrRenderSkip error.
func (s Skip) Err() error {
	return services.Wrap(services.ErrRenderSkip, s.Renderer, s.Slug, s.Reason, nil)
}

func (s Skip) String() string {
	return fmt.Sprintf("%s: %s (%s): %s", s.Renderer, s.Name, s.Slug, s.Reason)
}

// Document is a rendered artifact plus the channels it left out.
type Document struct {
	Body     []byte
	Channels int
	Skips    []Skip
}

func newSkip(renderer string, ch feed.Channel, reason string) Skip {
	return Skip{Renderer: renderer, ChannelID: ch.ID, Slug: ch.Slug, Name: ch.Name, Reason: reason}
}
