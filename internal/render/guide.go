package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
	"time"

	"plutoiptv/internal/category"
	"plutoiptv/internal/feed"
)

// GuideTimeLayout is the XMLTV timestamp format.
const GuideTimeLayout = "20060102150405 -0700"

const (
	guideDateLayout = "20060102"
	guideLang       = "en"
	guideDoctype    = `<!DOCTYPE tv SYSTEM "xmltv.dtd">` + "\n"
	generatorName   = "plutoiptv"
)

var tileReplacer = strings.NewReplacer("w=660", "w=900", "h=660", "h=900")

type xmlTV struct {
	XMLName       xml.Name       `xml:"tv"`
	GeneratorName string         `xml:"generator-info-name,attr"`
	Channels      []xmlChannel   `xml:"channel"`
	Programmes    []xmlProgramme `xml:"programme"`
}

type xmlChannel struct {
	ID           string   `xml:"id,attr"`
	DisplayNames []string `xml:"display-name"`
	Desc         string   `xml:"desc"`
	Icon         *xmlIcon `xml:"icon,omitempty"`
}

type xmlIcon struct {
	Src string `xml:"src,attr"`
}

type xmlText struct {
	Lang string `xml:"lang,attr,omitempty"`
	Text string `xml:",chardata"`
}

type xmlEpisodeNum struct {
	System string `xml:"system,attr"`
	Text   string `xml:",chardata"`
}

type xmlProgramme struct {
	Start       string          `xml:"start,attr"`
	Stop        string          `xml:"stop,attr"`
	Channel     string          `xml:"channel,attr"`
	Title       xmlText         `xml:"title"`
	Icon        *xmlIcon        `xml:"icon,omitempty"`
	Desc        *xmlText        `xml:"desc,omitempty"`
	Date        string          `xml:"date,omitempty"`
	Categories  []xmlText       `xml:"category"`
	EpisodeNums []xmlEpisodeNum `xml:"episode-num"`
	Live        *struct{}       `xml:"live,omitempty"`
	SubTitle    *xmlText        `xml:"sub-title,omitempty"`
}

// episodeStrategy derives an onscreen episode number, if it can.
type episodeStrategy func(feed.Episode) (string, bool)

var episodeInDescription = regexp.MustCompile(`\(([Ss](\d+)[Ee](\d+))\)`)

// onscreenStrategies are tried in order; the first result wins.
var onscreenStrategies = []episodeStrategy{
	func(ep feed.Episode) (string, bool) {
		m := episodeInDescription.FindStringSubmatch(ep.Description)
		if m == nil {
			return "", false
		}
		return m[1], true
	},
	func(ep feed.Episode) (string, bool) {
		if !ep.Season.Positive() || !ep.Number.Positive() {
			return "", false
		}
		return fmt.Sprintf("S%dE%d", ep.Season.Value, ep.Number.Value), true
	},
	func(ep feed.Episode) (string, bool) {
		if !ep.Number.Positive() {
			return "", false
		}
		return ep.Number.String(), true
	},
}

// OnscreenEpisode returns the episode label chosen by the first strategy
// that yields one.
func OnscreenEpisode(ep feed.Episode) (string, bool) {
	for _, strategy := range onscreenStrategies {
		if label, ok := strategy(ep); ok {
			return label, true
		}
	}
	return "", false
}

// GuideRenderer writes the XMLTV document.
type GuideRenderer struct {
	opts     Options
	mapper   *category.Mapper
	location *time.Location
}

// NewGuideRenderer builds a guide renderer. Timestamps are written in loc,
// or UTC when loc is nil.
func NewGuideRenderer(opts Options, mapper *category.Mapper, loc *time.Location) *GuideRenderer {
	if loc == nil {
		loc = time.UTC
	}
	return &GuideRenderer{opts: opts, mapper: mapper, location: loc}
}

// Render emits every channel element followed by every programme element.
func (r *GuideRenderer) Render(channels []feed.Channel) (Document, error) {
	doc := Document{}
	tv := xmlTV{GeneratorName: generatorName}

	for _, ch := range channels {
		slug := r.opts.DisplaySlug(ch.Slug)
		if slug == "" {
			doc.Skips = append(doc.Skips, newSkip(RendererGuide, ch, "missing slug"))
			continue
		}
		tv.Channels = append(tv.Channels, r.channelElement(ch, slug))
		for _, tl := range ch.Timelines {
			tv.Programmes = append(tv.Programmes, r.programmeElement(ch, slug, tl))
		}
		doc.Channels++
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(guideDoctype)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(tv); err != nil {
		return Document{}, fmt.Errorf("encode guide: %w", err)
	}
	if err := enc.Close(); err != nil {
		return Document{}, fmt.Errorf("encode guide: %w", err)
	}
	buf.WriteByte('\n')
	doc.Body = buf.Bytes()
	return doc, nil
}

func (r *GuideRenderer) channelElement(ch feed.Channel, slug string) xmlChannel {
	out := xmlChannel{
		ID:           slug,
		DisplayNames: []string{ch.Name, ch.Number.String()},
		Desc:         ch.Summary,
	}
	if logo := feed.ImagePath(ch.ColorLogoPNG); logo != "" {
		out.Icon = &xmlIcon{Src: logo}
	}
	return out
}

func (r *GuideRenderer) programmeElement(ch feed.Channel, slug string, tl feed.Timeline) xmlProgramme {
	ep := tl.Episode
	class := r.mapper.Classify(ep, ch.Category)

	p := xmlProgramme{
		Start:   r.timestamp(tl.Start),
		Stop:    r.timestamp(tl.Stop),
		Channel: slug,
		Title:   xmlText{Lang: guideLang, Text: tl.Title},
	}

	if icon := programmeIcon(ep, class.Movie); icon != "" {
		p.Icon = &xmlIcon{Src: icon}
	}
	if informative(ep.Description) {
		p.Desc = &xmlText{Lang: guideLang, Text: ep.Description}
	}
	release, hasRelease := ep.ReleaseDate()
	if hasRelease {
		p.Date = release.In(r.location).Format(guideDateLayout)
	}

	p.Categories = append(p.Categories, xmlText{Lang: guideLang, Text: class.Kind()})
	for _, raw := range []string{ep.Genre, ep.SubGenre} {
		if informative(raw) {
			p.Categories = append(p.Categories, xmlText{Lang: guideLang, Text: raw})
		}
	}
	for _, name := range class.Categories {
		p.Categories = append(p.Categories, xmlText{Lang: guideLang, Text: name})
	}

	if label, ok := OnscreenEpisode(ep); ok {
		p.EpisodeNums = append(p.EpisodeNums, xmlEpisodeNum{System: "onscreen", Text: label})
	}
	if !class.Movie && ep.ID != "" {
		p.EpisodeNums = append(p.EpisodeNums, xmlEpisodeNum{System: "pluto", Text: ep.ID})
	}
	switch {
	case ep.LiveBroadcast:
		p.EpisodeNums = append(p.EpisodeNums, xmlEpisodeNum{System: "original-air-date", Text: r.timestamp(tl.Start)})
		p.Live = &struct{}{}
	case hasRelease:
		p.EpisodeNums = append(p.EpisodeNums, xmlEpisodeNum{System: "original-air-date", Text: r.timestamp(release)})
	}

	if !class.Movie {
		if name := strings.TrimSpace(ep.Name); name != "" && name != tl.Title {
			p.SubTitle = &xmlText{Lang: guideLang, Text: name}
		}
	}
	return p
}

func (r *GuideRenderer) timestamp(ts time.Time) string {
	return ts.In(r.location).Format(GuideTimeLayout)
}

func programmeIcon(ep feed.Episode, movie bool) string {
	if movie {
		if poster := feed.ImagePath(ep.Poster); poster != "" {
			return poster
		}
	}
	if tile := feed.ImagePath(ep.Series.Tile); tile != "" {
		return tileReplacer.Replace(tile)
	}
	return ""
}

func informative(text string) bool {
	text = strings.TrimSpace(text)
	return text != "" && text != feed.NoInformation
}
