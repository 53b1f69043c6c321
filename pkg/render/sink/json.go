package sink

import (
	"encoding/json"

	"github.com/matzehuels/readstack/pkg/coverage"
	"github.com/matzehuels/readstack/pkg/genome"
	"github.com/matzehuels/readstack/pkg/render"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	rects  bool
	indent bool
}

// WithJSONRects includes every drawn rectangle in panel coordinates. Off by
// default since read-dense panels produce very large documents.
func WithJSONRects() JSONOption { return func(r *jsonRenderer) { r.rects = true } }

// WithJSONIndent pretty-prints the document.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

type jsonOutput struct {
	Region genome.Region `json:"region"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	DPI    float64       `json:"dpi,omitempty"`
	Panels []jsonPanel   `json:"panels"`
}

type jsonPanel struct {
	Name       string            `json:"name"`
	Kind       render.PanelKind  `json:"kind"`
	Box        render.Box        `json:"box"`
	XLim       render.Range      `json:"xlim"`
	YLim       render.Range      `json:"ylim"`
	Rows       int               `json:"rows,omitempty"`
	Order      string            `json:"order,omitempty"`
	Placements []jsonPlacement   `json:"placements,omitempty"`
	Depth      []int             `json:"depth,omitempty"`
	Summary    *coverage.Summary `json:"summary,omitempty"`
	Rects      []jsonRect        `json:"rects,omitempty"`
}

type jsonPlacement struct {
	Name   string         `json:"name,omitempty"`
	Start  int            `json:"start"`
	End    int            `json:"end"`
	Row    int            `json:"row"`
	Index  int            `json:"index"`
	Blocks []genome.Block `json:"blocks,omitempty"`
}

type jsonRect struct {
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Fill   render.Color `json:"fill"`
	Stroke *jsonStroke  `json:"stroke,omitempty"`
}

type jsonStroke struct {
	Color render.Color `json:"color"`
	Width float64      `json:"width"`
}

// RenderJSON exports the computed figure: panel geometry plus the row
// placements and depth array each panel was drawn from.
func RenderJSON(fig render.Figure, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Region: fig.Region,
		Width:  fig.Width,
		Height: fig.Height,
		DPI:    fig.DPI,
		Panels: make([]jsonPanel, 0, len(fig.Panels)),
	}
	for _, p := range fig.Panels {
		out.Panels = append(out.Panels, buildJSONPanel(p, r.rects))
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

func buildJSONPanel(p render.Panel, withRects bool) jsonPanel {
	jp := jsonPanel{
		Name: p.Name,
		Kind: p.Kind,
		Box:  p.Box,
		XLim: p.X,
		YLim: p.Y,
	}
	if p.Packing != nil {
		jp.Rows = p.Packing.RowCount
		jp.Order = string(p.Packing.Order)
		jp.Placements = make([]jsonPlacement, 0, len(p.Packing.Placements))
		for _, pl := range p.Packing.Placements {
			jp.Placements = append(jp.Placements, jsonPlacement{
				Name:   pl.Feature.Name,
				Start:  pl.Feature.Start,
				End:    pl.Feature.End,
				Row:    pl.Row,
				Index:  pl.Index,
				Blocks: pl.Feature.Blocks,
			})
		}
	}
	if p.Depth != nil {
		jp.Depth = p.Depth
		s := coverage.Summarize(p.Depth)
		jp.Summary = &s
	}
	if withRects {
		for _, rect := range p.Rects {
			jr := jsonRect{X: rect.X, Y: rect.Y, Width: rect.W, Height: rect.H, Fill: rect.Fill}
			if rect.StrokeWidth > 0 && !rect.Stroke.None {
				jr.Stroke = &jsonStroke{Color: rect.Stroke, Width: rect.StrokeWidth}
			}
			jp.Rects = append(jp.Rects, jr)
		}
	}
	return jp
}
