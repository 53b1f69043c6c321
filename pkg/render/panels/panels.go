// Package panels turns row packings and depth arrays into figure panels.
//
// Panel geometry follows a fixed vocabulary shared by every track:
//
//   - each row is one data unit tall; features in row r sit on y = r
//   - a thin backbone (0.05 tall) at y = r+0.2 spans the whole feature
//   - read blocks are 0.5 tall; annotation exons are 0.25 and CDS 0.5,
//     centered on the row
//   - coverage bars are one base wide and hang from the top of the panel
//
// [Compose] stacks the panels of several tracks into one figure.
package panels

import (
	"github.com/matzehuels/readstack/pkg/genome"
	"github.com/matzehuels/readstack/pkg/layout"
	"github.com/matzehuels/readstack/pkg/render"
)

// Row geometry in data units.
const (
	backboneOffset = 0.2
	backboneHeight = 0.05
	readHeight     = 0.5
	exonHeight     = 0.25
	cdsHeight      = 0.5
	rowSlot        = 0.5

	annotationFloor = -0.75
	readsFloor      = 0.25
	annotationPad   = 0.01
)

// Style is the paint used for one track.
type Style struct {
	Fill        render.Color
	Stroke      render.Color
	StrokeWidth float64 // points; zero disables the outline
}

// DefaultAnnotationStyle is grey blocks with a hairline black outline.
var DefaultAnnotationStyle = Style{Fill: render.Grey, Stroke: render.Black, StrokeWidth: 0.25}

// Annotation builds a transcript panel: blocks are drawn with kind-specific
// heights, and the x-axis is padded by 1% of the region on either side.
func Annotation(name string, p layout.Packing, region genome.Region, st Style) render.Panel {
	span := float64(region.End - region.Start)
	panel := render.Panel{
		Name:    name,
		Kind:    render.PanelAnnotation,
		X:       render.Range{Min: float64(region.Start) - span*annotationPad, Max: float64(region.End) + span*annotationPad},
		Y:       render.Range{Min: annotationFloor, Max: ceiling(p)},
		Packing: &p,
	}
	for _, pl := range p.Placements {
		row := float64(pl.Row)
		panel.Rects = append(panel.Rects, st.rect(
			float64(pl.Feature.Start), row+backboneOffset, float64(pl.Feature.Len()), backboneHeight))
		for _, b := range pl.Feature.Blocks {
			h := blockHeight(b.Kind)
			panel.Rects = append(panel.Rects, st.rect(
				float64(b.Start), row+(rowSlot-h)/2, float64(b.Width), h))
		}
	}
	return panel
}

// Reads builds an alignment panel: every block is a full-height bar and
// the x-axis spans exactly the region.
func Reads(name string, p layout.Packing, region genome.Region, st Style) render.Panel {
	panel := render.Panel{
		Name:    name,
		Kind:    render.PanelReads,
		X:       render.Range{Min: float64(region.Start), Max: float64(region.End)},
		Y:       render.Range{Min: readsFloor, Max: ceiling(p)},
		Packing: &p,
	}
	for _, pl := range p.Placements {
		row := float64(pl.Row)
		panel.Rects = append(panel.Rects, st.rect(
			float64(pl.Feature.Start), row+backboneOffset, float64(pl.Feature.Len()), backboneHeight))
		for _, b := range pl.Feature.Blocks {
			panel.Rects = append(panel.Rects, st.rect(float64(b.Start), row, float64(b.Width), readHeight))
		}
	}
	return panel
}

// Coverage builds a depth histogram. depth[i] is the depth at region.Start+i;
// one bar per position with non-zero depth, except the final position,
// which has no bin of its own. Bars hang down from the top of the panel.
// An all-zero array gets a y-range of [0, 1].
func Coverage(name string, depth []int, region genome.Region, fill render.Color) render.Panel {
	top := 0
	for _, d := range depth {
		top = max(top, d)
	}
	yMax := float64(max(top, 1))

	panel := render.Panel{
		Name:  name,
		Kind:  render.PanelCoverage,
		X:     render.Range{Min: float64(region.Start), Max: float64(region.End)},
		Y:     render.Range{Min: 0, Max: yMax},
		Depth: depth,
	}
	for i := 0; i < len(depth)-1; i++ {
		if depth[i] <= 0 {
			continue
		}
		h := float64(depth[i])
		panel.Rects = append(panel.Rects, render.Rect{
			X: float64(region.Start + i), Y: yMax - h, W: 1, H: h,
			Fill: fill,
		})
	}
	return panel
}

// ceiling is the y-axis maximum for a packed track: the top row plus
// headroom that grows by 10% of the row count. An empty packing is treated
// as a single row.
func ceiling(p layout.Packing) float64 {
	top := float64(p.MaxRow())
	return top + 1.25 + top*0.1
}

func blockHeight(k genome.BlockKind) float64 {
	if k == genome.KindExon {
		return exonHeight
	}
	return cdsHeight
}

func (st Style) rect(x, y, w, h float64) render.Rect {
	return render.Rect{X: x, Y: y, W: w, H: h, Fill: st.Fill, Stroke: st.Stroke, StrokeWidth: st.StrokeWidth}
}
