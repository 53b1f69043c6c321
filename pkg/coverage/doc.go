// Package coverage computes per-base read depth over a genomic window.
//
// [Compute] counts, for every position of an inclusive window [start, end],
// how many blocks of one kind cover it. Each block contributes over the
// clipped half-open range
//
//	[max(block.Start, start), min(block.End(), end))
//
// so blocks outside the window add nothing and the last window position is
// only reachable by blocks that extend past it. The result always has
// end-start+1 entries.
//
// Compute uses a difference array: one increment and one decrement per
// block, then a prefix sum, which is O(window + blocks). [ComputeNaive]
// keeps the position-by-position loop and is the reference the sweep is
// tested against.
package coverage
