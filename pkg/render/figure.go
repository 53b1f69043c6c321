package render

import (
	"math"

	"github.com/matzehuels/readstack/pkg/genome"
	"github.com/matzehuels/readstack/pkg/layout"
)

// PanelKind identifies what a panel draws.
type PanelKind string

// Panel kinds.
const (
	PanelAnnotation PanelKind = "annotation"
	PanelReads      PanelKind = "reads"
	PanelCoverage   PanelKind = "coverage"
)

// Box is a rectangle in figure inches, measured from the bottom-left corner
// of the canvas.
type Box struct {
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Top returns Bottom+Height.
func (b Box) Top() float64 { return b.Bottom + b.Height }

// Range is a closed data-coordinate interval along one axis.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max-Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Rect is a filled rectangle in data coordinates. StrokeWidth is in points;
// zero means no outline.
type Rect struct {
	X, Y, W, H  float64
	Fill        Color
	Stroke      Color
	StrokeWidth float64
}

// Panel is one framed plotting area. Rects are drawn in order and clipped
// to Box.
type Panel struct {
	Name  string    `json:"name"`
	Kind  PanelKind `json:"kind"`
	Box   Box       `json:"box"`
	X     Range     `json:"xlim"`
	Y     Range     `json:"ylim"`
	Rects []Rect    `json:"-"`

	// Source data, kept for data export.
	Packing *layout.Packing `json:"packing,omitempty"`
	Depth   []int           `json:"depth,omitempty"`
}

// Figure is a complete multi-panel drawing. Width and Height are inches.
type Figure struct {
	Region genome.Region `json:"region"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	DPI    float64       `json:"dpi"`
	Panels []Panel       `json:"panels"`
}

// Frame maps data coordinates to a top-left-origin canvas measured in
// units of scale per inch (pixels for rasters, CSS pixels for SVG).
type Frame struct {
	fig   Figure
	scale float64
}

// NewFrame returns a Frame for fig at scale units per inch.
func NewFrame(fig Figure, scale float64) Frame {
	return Frame{fig: fig, scale: scale}
}

// Size returns the canvas dimensions in units.
func (f Frame) Size() (w, h float64) {
	return f.fig.Width * f.scale, f.fig.Height * f.scale
}

// PanelBox returns the panel's box as top-left x, y, width and height.
func (f Frame) PanelBox(p Panel) (x, y, w, h float64) {
	x = p.Box.Left * f.scale
	y = (f.fig.Height - p.Box.Top()) * f.scale
	return x, y, p.Box.Width * f.scale, p.Box.Height * f.scale
}

// Project maps r into canvas units. The result always has non-negative
// width and height.
func (f Frame) Project(p Panel, r Rect) (x, y, w, h float64) {
	px, py, pw, ph := f.PanelBox(p)
	sx, sy := 0.0, 0.0
	if s := p.X.Span(); s != 0 {
		sx = pw / s
	}
	if s := p.Y.Span(); s != 0 {
		sy = ph / s
	}

	x0 := px + (r.X-p.X.Min)*sx
	x1 := px + (r.X+r.W-p.X.Min)*sx
	// Data y grows upward; canvas y grows downward.
	y0 := py + ph - (r.Y+r.H-p.Y.Min)*sy
	y1 := py + ph - (r.Y-p.Y.Min)*sy

	return min(x0, x1), min(y0, y1), math.Abs(x1 - x0), math.Abs(y1 - y0)
}

// Points converts a length in points to canvas units.
func (f Frame) Points(pt float64) float64 { return pt * f.scale / 72 }
