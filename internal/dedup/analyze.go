package dedup

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"plutoiptv/internal/feed"
)

// Pair is a duplicate found by Analyze.
type Pair struct {
	Current  Ref `json:"current"`
	Existing Ref `json:"existing"`
}

type Duplicates struct {
	ByNumber []Pair `json:"byNumber"`
	ByName   []Pair `json:"byName"`
	BySlug   []Pair `json:"bySlug"`
}

type Summary struct {
	TotalDuplicateNumbers int `json:"totalDuplicateNumbers"`
	TotalDuplicateNames   int `json:"totalDuplicateNames"`
	TotalDuplicateSlugs   int `json:"totalDuplicateSlugs"`
	TotalUniqueChannels   int `json:"totalUniqueChannels"`
}

// Analysis lists duplicates among eligible channels without resolving them.
type Analysis struct {
	TotalChannels int        `json:"totalChannels"`
	ValidChannels int        `json:"validChannels"`
	Duplicates    Duplicates `json:"duplicates"`
	Summary       Summary    `json:"summary"`
}

// Analyze checks every eligible channel against the first channel seen with
// the same number, folded name and slug. Unlike Filter, a channel can appear
// under several kinds and numbers are taken as published upstream.
func Analyze(channels []feed.Channel, excluded *regexp.Regexp) Analysis {
	analysis := Analysis{
		TotalChannels: len(channels),
		Duplicates:    Duplicates{ByNumber: []Pair{}, ByName: []Pair{}, BySlug: []Pair{}},
	}
	numbers := map[int]Ref{}
	names := map[string]Ref{}
	slugs := map[string]Ref{}
	fold := cases.Fold()

	for _, ch := range channels {
		if !Eligible(ch, excluded) {
			continue
		}
		analysis.ValidChannels++
		ref := refOf(ch)

		if existing, ok := numbers[ref.Number]; ok {
			analysis.Duplicates.ByNumber = append(analysis.Duplicates.ByNumber, Pair{Current: ref, Existing: existing})
		} else {
			numbers[ref.Number] = ref
		}

		name := fold.String(strings.TrimSpace(ch.Name))
		if existing, ok := names[name]; ok {
			analysis.Duplicates.ByName = append(analysis.Duplicates.ByName, Pair{Current: ref, Existing: existing})
		} else {
			names[name] = ref
		}

		slug := strings.TrimSpace(ch.Slug)
		if existing, ok := slugs[slug]; ok {
			analysis.Duplicates.BySlug = append(analysis.Duplicates.BySlug, Pair{Current: ref, Existing: existing})
		} else {
			slugs[slug] = ref
		}
	}

	s := &analysis.Summary
	s.TotalDuplicateNumbers = len(analysis.Duplicates.ByNumber)
	s.TotalDuplicateNames = len(analysis.Duplicates.ByName)
	s.TotalDuplicateSlugs = len(analysis.Duplicates.BySlug)
	s.TotalUniqueChannels = analysis.ValidChannels - max(s.TotalDuplicateNumbers, s.TotalDuplicateNames, s.TotalDuplicateSlugs)
	return analysis
}
