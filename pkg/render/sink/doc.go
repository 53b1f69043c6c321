// Package sink encodes a [render.Figure] into output formats.
//
// # Overview
//
//   - SVG: vector output, one clipped group per panel ([RenderSVG])
//   - PNG: raster output drawn with gg ([RenderPNG])
//   - PDF: SVG converted with rsvg-convert ([RenderPDF])
//   - JSON: placements, depth arrays and panel geometry ([RenderJSON])
//
// Basic usage:
//
//	svg := sink.RenderSVG(fig)
//	png, err := sink.RenderPNG(fig, sink.WithDPI(600))
//	pdf, err := sink.RenderPDF(ctx, fig)
//	doc, err := sink.RenderJSON(fig, sink.WithJSONIndent())
//
// SVG and PDF are resolution independent: the canvas is sized in inches
// and one user unit is one point. PNG resolution comes from [WithDPI] or the
// figure's DPI. Rasters larger than [MaxPixels] are refused.
//
// PDF output requires librsvg to be installed:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [render.Figure]: github.com/matzehuels/readstack/pkg/render.Figure
package sink
