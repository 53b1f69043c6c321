package layout

import (
	"github.com/matzehuels/readstack/pkg/genome"
)

// Placement pairs a feature with the row it was assigned.
type Placement struct {
	Feature genome.Feature `json:"feature"`
	Row     int            `json:"row"`
	Index   int            `json:"index"` // position in the input slice
}

// Packing is the result of a Pack call.
type Packing struct {
	// Placements holds one entry per input feature, in processing order.
	Placements []Placement `json:"placements"`
	// RowCount is the number of rows opened.
	RowCount int `json:"row_count"`
	// Order is the processing order that produced this packing.
	Order Order `json:"order"`
}

// Option configures Pack.
type Option func(*packer)

type packer struct {
	abutting bool
}

// WithAbutting lets a feature share a row with one that ends exactly where
// it starts. By default the row's largest End must be strictly below the
// feature's Start.
func WithAbutting() Option {
	return func(p *packer) { p.abutting = true }
}

// Pack assigns every feature a row. Ties between eligible rows always go to
// the earliest-created row, so identical input yields identical output.
// Unknown orders are treated as OrderInput.
func Pack(features []genome.Feature, order Order, opts ...Option) Packing {
	var p packer
	for _, opt := range opts {
		opt(&p)
	}

	seq := sequence(features, order)
	out := Packing{
		Placements: make([]Placement, 0, len(features)),
		Order:      order,
	}

	var rowEnds []int
	for _, i := range seq {
		f := features[i]
		row := p.firstFit(rowEnds, f.Start)
		if row == len(rowEnds) {
			rowEnds = append(rowEnds, f.End)
		} else {
			rowEnds[row] = max(rowEnds[row], f.End)
		}
		out.Placements = append(out.Placements, Placement{Feature: f, Row: row, Index: i})
	}
	out.RowCount = len(rowEnds)
	return out
}

// firstFit returns the first row that can take a feature starting at start,
// or len(rowEnds) when a new row is needed.
func (p packer) firstFit(rowEnds []int, start int) int {
	for r, end := range rowEnds {
		if end < start || (p.abutting && end == start) {
			return r
		}
	}
	return len(rowEnds)
}

// Rows groups placements by row. Within a row, placements keep processing
// order.
func (p Packing) Rows() [][]Placement {
	rows := make([][]Placement, p.RowCount)
	for _, pl := range p.Placements {
		rows[pl.Row] = append(rows[pl.Row], pl)
	}
	return rows
}

// RowOf returns the row assigned to the input feature at index i.
func (p Packing) RowOf(i int) (int, bool) {
	for _, pl := range p.Placements {
		if pl.Index == i {
			return pl.Row, true
		}
	}
	return 0, false
}

// Assignments returns the rows indexed by input position.
func (p Packing) Assignments() []int {
	rows := make([]int, len(p.Placements))
	for _, pl := range p.Placements {
		rows[pl.Index] = pl.Row
	}
	return rows
}

// MaxRow returns the highest row index, or 0 for an empty packing.
func (p Packing) MaxRow() int {
	return max(p.RowCount-1, 0)
}
