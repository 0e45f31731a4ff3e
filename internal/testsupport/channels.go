package testsupport

import (
	"fmt"
	"time"

	"plutoiptv/internal/feed"
)

// ChannelOption customizes a channel fixture.
type ChannelOption func(*feed.Channel)

// NewChannel returns a stitched channel with logo, artwork and a stream URL,
// ready to pass dedup and both renderers.
func NewChannel(id, name, slug string, number int, opts ...ChannelOption) feed.Channel {
	ch := feed.Channel{
		ID:            id,
		Name:          name,
		Slug:          slug,
		Number:        feed.NewNumber(number),
		Category:      "Entertainment",
		IsStitched:    true,
		Summary:       fmt.Sprintf("All about %s.", name),
		ColorLogoPNG:  &feed.Image{Path: fmt.Sprintf("https://images.example.com/%s/logo.png", id)},
		FeaturedImage: &feed.Image{Path: fmt.Sprintf("https://images.example.com/%s/featured.jpg?w=1600&h=900", id)},
		Stitched: &feed.Stitched{URLs: []feed.StreamURL{{
			Type: "hls",
			URL:  fmt.Sprintf("https://stitcher.example.com/stitch/hls/channel/%s/master.m3u8?deviceId=old&sid=old", id),
		}}},
	}
	for _, opt := range opts {
		opt(&ch)
	}
	return ch
}

// WithProgrammes attaches timelines to the channel.
func WithProgrammes(programmes ...feed.Timeline) ChannelOption {
	return func(ch *feed.Channel) {
		ch.Timelines = append(ch.Timelines, programmes...)
	}
}

// WithCategory sets the raw channel category.
func WithCategory(category string) ChannelOption {
	return func(ch *feed.Channel) {
		ch.Category = category
	}
}

// Unstitched marks the channel as not broadcastable.
func Unstitched() ChannelOption {
	return func(ch *feed.Channel) {
		ch.IsStitched = false
	}
}

// ProgrammeOption customizes a programme fixture.
type ProgrammeOption func(*feed.Timeline)

// NewProgramme returns a one-hour series episode starting at start.
func NewProgramme(start time.Time, title string, opts ...ProgrammeOption) feed.Timeline {
	tl := feed.Timeline{
		ID:    fmt.Sprintf("tl-%s-%d", title, start.Unix()),
		Start: start,
		Stop:  start.Add(time.Hour),
		Title: title,
		Episode: feed.Episode{
			ID:          fmt.Sprintf("ep-%s", title),
			Name:        title,
			Genre:       "Reality",
			Description: fmt.Sprintf("An episode of %s.", title),
			Series: feed.Series{
				ID:   fmt.Sprintf("series-%s", title),
				Type: "tv",
				Tile: &feed.Image{Path: "https://images.example.com/tile.jpg?w=660&h=660"},
			},
		},
	}
	for _, opt := range opts {
		opt(&tl)
	}
	return tl
}

// WithEpisode replaces the programme's episode fields via fn.
func WithEpisode(fn func(*feed.Episode)) ProgrammeOption {
	return func(tl *feed.Timeline) {
		fn(&tl.Episode)
	}
}

// NewFeedChannels returns n distinct channels numbered from 1.
func NewFeedChannels(n int) []feed.Channel {
	channels := make([]feed.Channel, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("ch%d", i)
		channels = append(channels, NewChannel(id, fmt.Sprintf("Channel %d", i), id, i))
	}
	return channels
}
