package render

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"plutoiptv/internal/feed"
)

const playlistHeader = "#EXTM3U\n\n"

// IDSource returns a device identifier and a session identifier.
type IDSource func() (deviceID, sessionID string)

// RandomIDs returns a time-based device UUID and a random session UUID.
func RandomIDs() (string, string) {
	device, err := uuid.NewUUID()
	if err != nil {
		device = uuid.New()
	}
	return device.String(), uuid.NewString()
}

var descriptionReplacer = strings.NewReplacer(
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
	`"`, "",
	"“", "",
	"”", "",
)

// attrReplacer keeps a value inside its key="value" pair on one line.
var attrReplacer = strings.NewReplacer(
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
	`"`, "",
)

var artReplacer = strings.NewReplacer("w=1600", "w=1000", "h=900", "h=562")

// PlaylistRenderer writes the M3U playlist.
type PlaylistRenderer struct {
	opts Options
	ids  IDSource
}

func NewPlaylistRenderer(opts Options, ids IDSource) *PlaylistRenderer {
	if ids == nil {
		ids = RandomIDs
	}
	return &PlaylistRenderer{opts: opts, ids: ids}
}

// Render emits one entry per channel. Every entry gets fresh device and
// session identifiers, so two renders of the same set differ only in those.
func (r *PlaylistRenderer) Render(channels []feed.Channel) Document {
	var buf bytes.Buffer
	buf.WriteString(playlistHeader)

	doc := Document{}
	for _, ch := range channels {
		logo := feed.ImagePath(ch.ColorLogoPNG)
		if logo == "" {
			doc.Skips = append(doc.Skips, newSkip(RendererPlaylist, ch, "missing logo"))
			continue
		}
		art := feed.ImagePath(ch.FeaturedImage)
		if art == "" {
			doc.Skips = append(doc.Skips, newSkip(RendererPlaylist, ch, "missing featured image"))
			continue
		}
		streamURL, err := r.StreamURL(ch)
		if err != nil {
			doc.Skips = append(doc.Skips, newSkip(RendererPlaylist, ch, err.Error()))
			continue
		}

		buf.WriteString("#EXTINF:0")
		writeAttr(&buf, "channel-id", r.opts.DisplaySlug(ch.Slug))
		writeAttr(&buf, "channel-number", strconv.Itoa(r.opts.DisplayNumber(ch.Number)))
		writeAttr(&buf, "tvg-logo", logo)
		writeAttr(&buf, "tvc-guide-art", artReplacer.Replace(art))
		writeAttr(&buf, "tvc-guide-title", ch.Name)
		writeAttr(&buf, "tvc-guide-description", Description(ch.Summary))
		writeAttr(&buf, "group-title", ch.Category)
		buf.WriteString(", ")
		buf.WriteString(ch.Name)
		buf.WriteByte('\n')
		buf.WriteString(streamURL)
		buf.WriteString("\n\n")
		doc.Channels++
	}
	doc.Body = buf.Bytes()
	return doc
}

// StreamURL returns the channel's first stream URL with its query replaced
// by the fixed device and session parameters.
func (r *PlaylistRenderer) StreamURL(ch feed.Channel) (string, error) {
	raw := ch.StreamSource()
	if raw == "" {
		return "", fmt.Errorf("missing stream url")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid stream url %q", raw)
	}
	deviceID, sessionID := r.ids()
	u.RawQuery = sessionParams(deviceID, sessionID).Encode()
	u.Fragment = ""
	return u.String(), nil
}

func sessionParams(deviceID, sessionID string) url.Values {
	return url.Values{
		"advertisingId":         {""},
		"appName":               {"web"},
		"appVersion":            {"unknown"},
		"appStoreUrl":           {""},
		"architecture":          {""},
		"buildVersion":          {""},
		"clientTime":            {"0"},
		"deviceDNT":             {"0"},
		"deviceId":              {deviceID},
		"deviceMake":            {"Chrome"},
		"deviceModel":           {"web"},
		"deviceType":            {"web"},
		"deviceVersion":         {"unknown"},
		"includeExtendedEvents": {"false"},
		"sid":                   {sessionID},
		"userId":                {""},
		"serverSideAds":         {"true"},
	}
}

func writeAttr(buf *bytes.Buffer, key, value string) {
	buf.WriteByte(' ')
	buf.WriteString(key)
	buf.WriteString(`="`)
	buf.WriteString(attrReplacer.Replace(value))
	buf.WriteByte('"')
}

// Description flattens a summary onto one line and strips double quotes.
func Description(summary string) string {
	return descriptionReplacer.Replace(summary)
}
