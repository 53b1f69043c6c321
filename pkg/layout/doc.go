// Package layout assigns display rows to genomic features.
//
// # Row Packing
//
// [Pack] places features into rows so that no two features on the same row
// overlap along the genomic axis. It is a greedy first-fit: every row
// remembers the largest End placed on it so far, and each feature goes to
// the first row (in creation order) whose largest End is strictly less than
// the feature's Start. When no row fits, a new row is opened below the
// existing ones.
//
// First-fit does not minimize the row count; the result depends on the
// processing order. [Order] selects it:
//
//   - [OrderInput]: features are processed as given
//   - [OrderStart]: stable sort by Start first
//   - [OrderEnd]: stable sort by End first
//
// Each key yields a valid packing; callers pick the one that reads best for
// the track being drawn.
//
// # Results
//
// Packing never mutates its input. The result pairs each feature with its
// row:
//
//	p := layout.Pack(reads, layout.OrderEnd)
//	for _, pl := range p.Placements {
//	    fmt.Println(pl.Feature.Name, pl.Row, pl.Index)
//	}
//	rows := p.Rows() // features grouped by row, in placement order
package layout
