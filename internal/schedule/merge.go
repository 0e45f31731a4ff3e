package schedule

import (
	"encoding/binary"
	"sort"

	"github.com/zeebo/xxh3"

	"plutoiptv/internal/feed"
)

// Result is the merged channel set plus programme counters.
type Result struct {
	Channels            []feed.Channel
	DuplicateProgrammes int
	InvalidProgrammes   int
}

type entry struct {
	channel feed.Channel
	seen    map[xxh3.Uint128]struct{}
}

// Merge combines fragments into one channel set. Fragments are processed in
// window-start order, so any permutation of the same fragments produces the
// same result. Inputs are not modified.
func Merge(fragments []feed.Fragment) Result {
	ordered := make([]feed.Fragment, len(fragments))
	copy(ordered, fragments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Window.Start.Before(ordered[j].Window.Start)
	})

	var result Result
	index := make(map[string]int)
	entries := make([]*entry, 0)

	for _, fragment := range ordered {
		for _, raw := range fragment.Channels {
			key := identity(raw)
			pos, ok := index[key]
			if !ok {
				ch := raw
				ch.Timelines = nil
				index[key] = len(entries)
				entries = append(entries, &entry{channel: ch, seen: make(map[xxh3.Uint128]struct{})})
				pos = len(entries) - 1
			}
			e := entries[pos]
			for _, programme := range raw.Timelines {
				if !programme.Stop.After(programme.Start) {
					result.InvalidProgrammes++
					continue
				}
				k := programmeKey(programme)
				if _, dup := e.seen[k]; dup {
					result.DuplicateProgrammes++
					continue
				}
				e.seen[k] = struct{}{}
				e.channel.Timelines = append(e.channel.Timelines, programme)
			}
		}
	}

	result.Channels = make([]feed.Channel, len(entries))
	for i, e := range entries {
		result.Channels[i] = e.channel.Clone()
	}
	SortByNumber(result.Channels)
	return result
}

// SortByNumber sorts channels ascending by number. Ties keep their relative
// order and channels without a number go last.
func SortByNumber(channels []feed.Channel) {
	sort.SliceStable(channels, func(i, j int) bool {
		a, b := channels[i].Number, channels[j].Number
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Value < b.Value
	})
}

func identity(ch feed.Channel) string {
	if ch.ID != "" {
		return "id:" + ch.ID
	}
	return "slug:" + ch.Slug
}

// programmeKey hashes (start, stop, title).
func programmeKey(tl feed.Timeline) xxh3.Uint128 {
	buf := make([]byte, 16, 16+len(tl.Title))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(tl.Start.UnixNano()))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(tl.Stop.UnixNano()))
	buf = append(buf, tl.Title...)
	return xxh3.Hash128(buf)
}
