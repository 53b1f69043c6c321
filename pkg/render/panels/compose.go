package panels

import (
	"github.com/matzehuels/readstack/pkg/genome"
	"github.com/matzehuels/readstack/pkg/layout"
	"github.com/matzehuels/readstack/pkg/render"
)

// Geometry sets the panel placement in inches. Zero fields take the
// defaults of DefaultGeometry.
type Geometry struct {
	Width          float64 // canvas width
	Left           float64 // left edge of every panel
	PanelWidth     float64
	Margin         float64 // below the lowest panel
	CoverageHeight float64
	TrackHeight    float64
	Gap            float64 // between track panels
	TopMargin      float64 // above the highest panel
}

// DefaultGeometry is a 5in-wide canvas with 4in panels. With one coverage
// panel and three tracks it is 6in tall.
var DefaultGeometry = Geometry{
	Width:          5,
	Left:           0.1,
	PanelWidth:     4,
	Margin:         0.1,
	CoverageHeight: 0.4,
	TrackHeight:    1.5,
	Gap:            0.2,
	TopMargin:      0.6,
}

func (g Geometry) withDefaults() Geometry {
	d := DefaultGeometry
	orDefault := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	orDefault(&g.Width, d.Width)
	orDefault(&g.Left, d.Left)
	orDefault(&g.PanelWidth, d.PanelWidth)
	orDefault(&g.Margin, d.Margin)
	orDefault(&g.CoverageHeight, d.CoverageHeight)
	orDefault(&g.TrackHeight, d.TrackHeight)
	orDefault(&g.Gap, d.Gap)
	orDefault(&g.TopMargin, d.TopMargin)
	return g
}

// Track is one packed track to draw.
type Track struct {
	Name       string
	Annotation bool
	Packing    layout.Packing
	Style      Style
}

// Input collects everything Compose needs.
type Input struct {
	Region genome.Region
	// Tracks are listed top to bottom.
	Tracks []Track
	// Coverage, when non-nil, adds a depth panel under the lowest track.
	Coverage      []int
	CoverageName  string
	CoverageColor render.Color
	Geometry      Geometry
	DPI           float64
}

// Compose lays the panels out bottom-up: the coverage panel sits directly
// under the lowest track, and track panels are separated by Gap. The
// canvas height follows from the number of panels.
func Compose(in Input) render.Figure {
	g := in.Geometry.withDefaults()
	fig := render.Figure{Region: in.Region, Width: g.Width, DPI: in.DPI}

	y := g.Margin
	var cov *render.Panel
	if in.Coverage != nil {
		p := Coverage(in.CoverageName, in.Coverage, in.Region, in.CoverageColor)
		p.Box = render.Box{Left: g.Left, Bottom: y, Width: g.PanelWidth, Height: g.CoverageHeight}
		y += g.CoverageHeight
		cov = &p
	}

	boxes := make([]render.Box, len(in.Tracks))
	for i := len(in.Tracks) - 1; i >= 0; i-- {
		if i < len(in.Tracks)-1 {
			y += g.Gap
		}
		boxes[i] = render.Box{Left: g.Left, Bottom: y, Width: g.PanelWidth, Height: g.TrackHeight}
		y += g.TrackHeight
	}
	fig.Height = y + g.TopMargin

	for i, t := range in.Tracks {
		var p render.Panel
		if t.Annotation {
			p = Annotation(t.Name, t.Packing, in.Region, t.Style)
		} else {
			p = Reads(t.Name, t.Packing, in.Region, t.Style)
		}
		p.Box = boxes[i]
		fig.Panels = append(fig.Panels, p)
	}
	if cov != nil {
		fig.Panels = append(fig.Panels, *cov)
	}
	return fig
}
