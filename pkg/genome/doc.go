// Package genome defines the normalized feature model shared by the row
// packer, the coverage aggregator and the renderers.
//
// # Features
//
// A [Feature] is one aligned read or one assembled transcript: a span on a
// chromosome plus the ordered sub-blocks (exons, coding regions, aligned
// segments) that make it up. Every input format is reduced to this shape
// by the readers in pkg/formats before any layout work happens.
//
// # Regions
//
// A [Region] is the requested display window. It is always passed
// explicitly; nothing in this module reads the window from package state.
//
//	r, err := genome.ParseRegion("chr7:45,232,945-45,240,000")
//	if err != nil {
//	    return err
//	}
//	if r.Keeps(readStart, readEnd) {
//	    // record overlaps the window
//	}
//
// [Region.Keeps] uses strict inequalities: a record whose start or end lands
// exactly on a window boundary, without reaching inside it, is dropped.
package genome
