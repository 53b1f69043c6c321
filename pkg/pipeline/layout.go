package pipeline

import (
	"github.com/matzehuels/readstack/pkg/coverage"
	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/genome"
	"github.com/matzehuels/readstack/pkg/layout"
)

// =============================================================================
// Layout Data
// =============================================================================

// Layout is everything the renderer needs: one packing per track and the
// depth array of the coverage tracks. It is the unit cached between the
// layout and render stages.
type Layout struct {
	Region genome.Region    `json:"region"`
	Tracks []TrackLayout    `json:"tracks"`
	Depth  []int            `json:"depth,omitempty"` // nil when no track feeds coverage
	Stats  coverage.Summary `json:"coverage"`
}

// TrackLayout is one packed track.
type TrackLayout struct {
	Name     string         `json:"name"`
	Kind     string         `json:"kind"`
	Coverage bool           `json:"coverage,omitempty"`
	Packing  layout.Packing `json:"packing"`
}

// Track returns the track named name.
func (l Layout) Track(name string) (TrackLayout, bool) {
	for _, t := range l.Tracks {
		if t.Name == name {
			return t, true
		}
	}
	return TrackLayout{}, false
}

// FeatureCount is the number of features over all tracks.
func (l Layout) FeatureCount() int {
	n := 0
	for _, t := range l.Tracks {
		n += len(t.Packing.Placements)
	}
	return n
}

// RowCount is the number of rows over all tracks.
func (l Layout) RowCount() int {
	n := 0
	for _, t := range l.Tracks {
		n += t.Packing.RowCount
	}
	return n
}

// Features returns the track's features in input order.
func (t TrackLayout) Features() []genome.Feature {
	feats := make([]genome.Feature, len(t.Packing.Placements))
	for _, p := range t.Packing.Placements {
		feats[p.Index] = p.Feature
	}
	return feats
}

// TrackDepth computes the exon depth of a single track over the layout's
// region.
func (l Layout) TrackDepth(name string) ([]int, error) {
	t, ok := l.Track(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeTrackNotFound, "no track named %q", name)
	}
	return coverage.ForRegion(t.Features(), l.Region, genome.KindExon)
}

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeLayout packs every track and aggregates the exon depth of the
// tracks marked for coverage. Track specs must have passed ValidateTrack.
func ComputeLayout(tracks []LoadedTrack, region genome.Region, abutting bool) (Layout, error) {
	var packOpts []layout.Option
	if abutting {
		packOpts = append(packOpts, layout.WithAbutting())
	}

	l := Layout{Region: region, Tracks: make([]TrackLayout, 0, len(tracks))}
	var covered []genome.Feature
	hasCoverage := false
	for _, t := range tracks {
		order, err := layout.ParseOrder(t.Spec.Order)
		if err != nil {
			return Layout{}, err
		}
		l.Tracks = append(l.Tracks, TrackLayout{
			Name:     t.Spec.Name,
			Kind:     t.Spec.Kind,
			Coverage: t.Spec.Coverage,
			Packing:  layout.Pack(t.Features, order, packOpts...),
		})
		if t.Spec.Coverage {
			hasCoverage = true
			covered = append(covered, t.Features...)
		}
	}

	if hasCoverage {
		depth, err := coverage.ForRegion(covered, region, genome.KindExon)
		if err != nil {
			return Layout{}, err
		}
		l.Depth = depth
		l.Stats = coverage.Summarize(depth)
	}
	return l, nil
}
