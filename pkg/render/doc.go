// Package render holds the resolution-independent figure model shared by
// the panel builders and the output sinks.
//
// # Overview
//
// A [Figure] is a canvas measured in inches holding framed [Panel] values.
// Each panel has its own data coordinate system (genomic position along x,
// row or depth along y) and a list of [Rect] values in those coordinates.
// The panel builders in [panels] fill the model; the encoders in [sink]
// turn it into SVG, PNG, PDF or JSON.
//
// [Frame] maps data coordinates to canvas units for a given resolution:
//
//	f := render.NewFrame(fig, 300) // 300 pixels per inch
//	for _, p := range fig.Panels {
//	    for _, r := range p.Rects {
//	        x, y, w, h := f.Project(p, r)
//	        ...
//	    }
//	}
//
// # Format Conversion
//
// [ToPDF] converts SVG to PDF using the external rsvg-convert tool (from
// librsvg).
//
// [panels]: github.com/matzehuels/readstack/pkg/render/panels
// [sink]: github.com/matzehuels/readstack/pkg/render/sink
package render
