package genome

import "slices"

// BlockKind labels a sub-block of a feature.
type BlockKind string

// Block kinds produced by the readers.
const (
	KindExon BlockKind = "exon"
	KindCDS  BlockKind = "CDS"
)

// Block is one sub-interval of a feature. Start is an absolute coordinate;
// the block covers [Start, Start+Width).
type Block struct {
	Start int       `json:"start"`
	Width int       `json:"width"`
	Kind  BlockKind `json:"kind"`
}

// End returns the exclusive end of the block.
func (b Block) End() int { return b.Start + b.Width }

// Feature is one read or transcript. For annotation transcripts Start and
// End equal the min and max block coordinates; for alignments they come
// from the record itself and may extend past the block union.
type Feature struct {
	Name   string  `json:"name,omitempty"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Blocks []Block `json:"blocks,omitempty"`
}

// Len returns End-Start.
func (f Feature) Len() int { return f.End - f.Start }

// Overlaps reports whether the [Start, End) ranges of f and g intersect.
// Features that only touch (f.End == g.Start) do not overlap.
func (f Feature) Overlaps(g Feature) bool {
	return f.Start < g.End && g.Start < f.End
}

// HasKind reports whether any block of f has the given kind.
func (f Feature) HasKind(k BlockKind) bool {
	return slices.ContainsFunc(f.Blocks, func(b Block) bool { return b.Kind == k })
}

// Clone returns a deep copy of f.
func (f Feature) Clone() Feature {
	f.Blocks = slices.Clone(f.Blocks)
	return f
}

// NewUniform builds a feature whose blocks all share one kind. starts and
// widths must have equal length; extra entries in the longer slice are
// ignored.
func NewUniform(name string, start, end int, starts, widths []int, kind BlockKind) Feature {
	n := min(len(starts), len(widths))
	blocks := make([]Block, n)
	for i := 0; i < n; i++ {
		blocks[i] = Block{Start: starts[i], Width: widths[i], Kind: kind}
	}
	return Feature{Name: name, Start: start, End: end, Blocks: blocks}
}

// Span returns the min block start and max block end of blocks. ok is false
// when blocks is empty.
func Span(blocks []Block) (start, end int, ok bool) {
	if len(blocks) == 0 {
		return 0, 0, false
	}
	start, end = blocks[0].Start, blocks[0].End()
	for _, b := range blocks[1:] {
		start = min(start, b.Start)
		end = max(end, b.End())
	}
	return start, end, true
}
