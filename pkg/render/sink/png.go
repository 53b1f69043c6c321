package sink

import (
	"bytes"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/render"
)

// DefaultDPI is the raster resolution used when neither the figure nor an
// option sets one.
const DefaultDPI = 300

// MaxPixels bounds the raster canvas. A 5x6in figure at 2400 dpi is about
// 173 million pixels.
const MaxPixels = 200_000_000

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	dpi        float64
	background render.Color
	frames     bool
}

// WithDPI overrides the figure's resolution.
func WithDPI(dpi float64) PNGOption { return func(r *pngRenderer) { r.dpi = dpi } }

// WithPNGBackground sets the canvas color (default white).
func WithPNGBackground(c render.Color) PNGOption { return func(r *pngRenderer) { r.background = c } }

// WithoutPNGFrames omits the black outline around each panel.
func WithoutPNGFrames() PNGOption { return func(r *pngRenderer) { r.frames = false } }

// RenderPNG rasterizes fig with gg. Resolution comes from WithDPI, then
// fig.DPI, then DefaultDPI.
func RenderPNG(fig render.Figure, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{dpi: fig.DPI, background: render.RGB(255, 255, 255), frames: true}
	for _, opt := range opts {
		opt(&r)
	}
	if r.dpi <= 0 {
		r.dpi = DefaultDPI
	}

	f := render.NewFrame(fig, r.dpi)
	fw, fh := f.Size()
	w, h := int(math.Round(fw)), int(math.Round(fh))
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "figure has no area at %g dpi", r.dpi)
	}
	if w*h > MaxPixels {
		return nil, errors.New(errors.ErrCodeInvalidArgument,
			"%dx%d pixels at %g dpi exceeds the raster limit; lower the dpi or use svg/pdf", w, h, r.dpi)
	}

	dc := gg.NewContext(w, h)
	if !r.background.None {
		setColor(dc, r.background)
		dc.Clear()
	}

	for _, p := range fig.Panels {
		drawPanel(dc, f, p)
		if r.frames {
			x, y, pw, ph := f.PanelBox(p)
			dc.DrawRectangle(x, y, pw, ph)
			dc.SetRGB(0, 0, 0)
			dc.SetLineWidth(f.Points(frameWidth))
			dc.Stroke()
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

func drawPanel(dc *gg.Context, f render.Frame, p render.Panel) {
	dc.Push()
	defer dc.Pop()

	x, y, w, h := f.PanelBox(p)
	dc.DrawRectangle(x, y, w, h)
	dc.Clip()

	for _, rect := range p.Rects {
		rx, ry, rw, rh := f.Project(p, rect)
		dc.DrawRectangle(rx, ry, rw, rh)
		stroke := rect.StrokeWidth > 0 && !rect.Stroke.None
		if !rect.Fill.None {
			setColor(dc, rect.Fill)
			if stroke {
				dc.FillPreserve()
			} else {
				dc.Fill()
			}
		}
		if stroke {
			setColor(dc, rect.Stroke)
			dc.SetLineWidth(f.Points(rect.StrokeWidth))
			dc.Stroke()
		} else if rect.Fill.None {
			dc.ClearPath()
		}
	}
	dc.ResetClip()
}

func setColor(dc *gg.Context, c render.Color) {
	dc.SetRGB255(int(c.R), int(c.G), int(c.B))
}
