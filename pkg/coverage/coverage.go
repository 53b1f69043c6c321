package coverage

import (
	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/genome"
)

// Compute returns the per-base depth of kind blocks over [start, end].
// It fails only when end < start.
func Compute(features []genome.Feature, start, end int, kind genome.BlockKind) ([]int, error) {
	if end < start {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "coverage window end %d is before start %d", end, start)
	}

	n := end - start + 1
	diff := make([]int, n+1)
	for _, f := range features {
		for _, b := range f.Blocks {
			if b.Kind != kind {
				continue
			}
			lo, hi := clip(b, start, end)
			if lo >= hi {
				continue
			}
			diff[lo-start]++
			diff[hi-start]--
		}
	}

	depth := make([]int, n)
	run := 0
	for i := range depth {
		run += diff[i]
		depth[i] = run
	}
	return depth, nil
}

// ComputeNaive is the position-by-position form of Compute.
func ComputeNaive(features []genome.Feature, start, end int, kind genome.BlockKind) ([]int, error) {
	if end < start {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "coverage window end %d is before start %d", end, start)
	}

	depth := make([]int, end-start+1)
	for _, f := range features {
		for _, b := range f.Blocks {
			if b.Kind != kind {
				continue
			}
			lo, hi := clip(b, start, end)
			for pos := lo; pos < hi; pos++ {
				depth[pos-start]++
			}
		}
	}
	return depth, nil
}

// ForRegion is Compute over the bounds of r.
func ForRegion(features []genome.Feature, r genome.Region, kind genome.BlockKind) ([]int, error) {
	return Compute(features, r.Start, r.End, kind)
}

func clip(b genome.Block, start, end int) (lo, hi int) {
	return max(b.Start, start), min(b.End(), end)
}
