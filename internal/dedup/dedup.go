package dedup

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"plutoiptv/internal/feed"
)

// DefaultExcludedPattern matches administrative placeholder slugs.
const DefaultExcludedPattern = `^(announcement|privacy-policy)`

// DefaultZeroNumberStart is the first number handed to zero-numbered channels.
const DefaultZeroNumberStart = 9000

// Kind names the attribute two channels collided on.
type Kind string

const (
	KindNumber Kind = "number"
	KindSlug   Kind = "slug"
	KindName   Kind = "name"
)

// Decision is the outcome of a collision.
type Decision string

const (
	// DecisionDropped keeps the existing channel and drops the incoming one.
	DecisionDropped Decision = "dropped"
	// DecisionEvicted removes the existing channel in favour of the incoming one.
	DecisionEvicted Decision = "evicted_existing"
)

// Options configures Filter.
type Options struct {
	// Excluded matches slugs of channels that are never published. Nil
	// uses DefaultExcludedPattern.
	Excluded *regexp.Regexp
	// ZeroNumberStart is the first number assigned to zero-numbered
	// channels. Values <= 0 use DefaultZeroNumberStart.
	ZeroNumberStart int
}

// Ref identifies a channel in a report.
type Ref struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Number int    `json:"number"`
}

// Reassignment records a zero or missing number replaced from the reserved block.
type Reassignment struct {
	Channel Ref `json:"channel"`
	Number  int `json:"number"`
}

// Collision records one resolved conflict.
type Collision struct {
	Kind     Kind     `json:"kind"`
	Channel  Ref      `json:"channel"`
	Existing Ref      `json:"existing"`
	Decision Decision `json:"decision"`
}

// Report summarizes every decision Filter made.
type Report struct {
	Input         int            `json:"input"`
	Ineligible    int            `json:"ineligible"`
	Kept          int            `json:"kept"`
	Reassignments []Reassignment `json:"reassignments,omitempty"`
	Collisions    []Collision    `json:"collisions,omitempty"`
}

// Count returns the number of collisions of kind.
func (r Report) Count(kind Kind) int {
	n := 0
	for _, c := range r.Collisions {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Eligible reports whether ch may be published at all.
func Eligible(ch feed.Channel, excluded *regexp.Regexp) bool {
	if !ch.IsStitched {
		return false
	}
	if excluded == nil {
		excluded = defaultExcluded
	}
	return !excluded.MatchString(ch.Slug)
}

var defaultExcluded = regexp.MustCompile(DefaultExcludedPattern)

// Filter returns deep copies of the surviving channels in their original
// relative order together with a report. The input slice is not modified.
func Filter(channels []feed.Channel, opts Options) ([]feed.Channel, Report) {
	report := Report{Input: len(channels)}
	zeroNext := opts.ZeroNumberStart
	if zeroNext <= 0 {
		zeroNext = DefaultZeroNumberStart
	}

	eligible := make([]feed.Channel, 0, len(channels))
	for _, ch := range channels {
		if !Eligible(ch, opts.Excluded) {
			report.Ineligible++
			continue
		}
		cp := ch.Clone()
		if cp.Number.Int() == 0 {
			cp.Number = feed.NewNumber(zeroNext)
			report.Reassignments = append(report.Reassignments, Reassignment{Channel: refOf(ch), Number: zeroNext})
			zeroNext++
		}
		eligible = append(eligible, cp)
	}

	t := newTracker()
	for i := range eligible {
		ch := &eligible[i]
		number := ch.Number.Int()
		slug := strings.TrimSpace(ch.Slug)
		name := t.nameKey(ch.Name)

		if pos, ok := t.numbers[number]; ok {
			report.Collisions = append(report.Collisions, collision(KindNumber, ch, t.kept[pos], DecisionDropped))
			continue
		}
		if pos, ok := t.slugs[slug]; ok {
			report.Collisions = append(report.Collisions, collision(KindSlug, ch, t.kept[pos], DecisionDropped))
			continue
		}
		if pos, ok := t.names[name]; ok {
			existing := t.kept[pos]
			if number < existing.Number.Int() && number > 0 {
				report.Collisions = append(report.Collisions, collision(KindName, ch, existing, DecisionEvicted))
				t.evict(pos)
				t.add(ch, number, slug, name)
			} else {
				report.Collisions = append(report.Collisions, collision(KindName, ch, existing, DecisionDropped))
			}
			continue
		}
		t.add(ch, number, slug, name)
	}

	out := make([]feed.Channel, 0, len(t.kept))
	for i, ch := range t.kept {
		if !t.removed[i] {
			out = append(out, *ch)
		}
	}
	report.Kept = len(out)
	return out, report
}

type tracker struct {
	kept    []*feed.Channel
	removed []bool
	numbers map[int]int
	slugs   map[string]int
	names   map[string]int
	fold    cases.Caser
}

func newTracker() *tracker {
	return &tracker{
		numbers: make(map[int]int),
		slugs:   make(map[string]int),
		names:   make(map[string]int),
		fold:    cases.Fold(),
	}
}

func (t *tracker) nameKey(name string) string {
	return t.fold.String(strings.TrimSpace(name))
}

func (t *tracker) add(ch *feed.Channel, number int, slug, name string) {
	pos := len(t.kept)
	t.kept = append(t.kept, ch)
	t.removed = append(t.removed, false)
	t.numbers[number] = pos
	t.slugs[slug] = pos
	t.names[name] = pos
}

func (t *tracker) evict(pos int) {
	ch := t.kept[pos]
	t.removed[pos] = true
	delete(t.numbers, ch.Number.Int())
	delete(t.slugs, strings.TrimSpace(ch.Slug))
}

func collision(kind Kind, incoming, existing *feed.Channel, decision Decision) Collision {
	return Collision{Kind: kind, Channel: refOf(*incoming), Existing: refOf(*existing), Decision: decision}
}

func refOf(ch feed.Channel) Ref {
	return Ref{ID: ch.ID, Name: ch.Name, Slug: ch.Slug, Number: ch.Number.Int()}
}
