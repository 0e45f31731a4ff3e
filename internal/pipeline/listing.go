package pipeline

import (
	"context"
	"sort"

	"plutoiptv/internal/dedup"
)

// ListedChannel is one published channel as the playlist numbers it.
type ListedChannel struct {
	Number         int    `json:"number"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Category       string `json:"category"`
	OriginalNumber int    `json:"originalNumber"`
}

// Listing is the channel line-up after deduplication.
type Listing struct {
	TotalRaw      int             `json:"totalRaw"`
	TotalFiltered int             `json:"totalFiltered"`
	Channels      []ListedChannel `json:"channels"`
}

// Listing returns the surviving channels sorted by display number.
func (p *Pipeline) Listing(ctx context.Context) (Listing, error) {
	res, err := p.snapshot(ctx)
	if err != nil {
		return Listing{}, err
	}
	kept, _ := p.filter(ctx, res.Snapshot.Channels)

	out := Listing{
		TotalRaw:      len(res.Snapshot.Channels),
		TotalFiltered: len(kept),
		Channels:      make([]ListedChannel, 0, len(kept)),
	}
	for _, ch := range kept {
		out.Channels = append(out.Channels, ListedChannel{
			Number:         p.render.DisplayNumber(ch.Number),
			Name:           ch.Name,
			Slug:           p.render.DisplaySlug(ch.Slug),
			Category:       ch.Category,
			OriginalNumber: ch.Number.Int(),
		})
	}
	sort.SliceStable(out.Channels, func(i, j int) bool {
		return out.Channels[i].Number < out.Channels[j].Number
	})
	return out, nil
}

// AnalyzeDuplicates reports duplicate numbers, names and slugs among the
// eligible channels of the current snapshot without resolving them.
func (p *Pipeline) AnalyzeDuplicates(ctx context.Context) (dedup.Analysis, error) {
	res, err := p.snapshot(ctx)
	if err != nil {
		return dedup.Analysis{}, err
	}
	return dedup.Analyze(res.Snapshot.Channels, p.excluded), nil
}
