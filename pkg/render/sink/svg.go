package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/readstack/pkg/render"
)

// svgUnitsPerInch makes one SVG user unit one point.
const svgUnitsPerInch = 72

// frameWidth is the panel outline width in points.
const frameWidth = 0.8

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background render.Color
	frames     bool
}

// WithBackground sets the canvas color (default white; render.None for a
// transparent canvas).
func WithBackground(c render.Color) SVGOption { return func(r *svgRenderer) { r.background = c } }

// WithoutFrames omits the black outline around each panel.
func WithoutFrames() SVGOption { return func(r *svgRenderer) { r.frames = false } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{background: render.RGB(255, 255, 255), frames: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG encodes fig as a standalone SVG document. The canvas is sized in
// inches; each panel's rectangles are clipped to the panel box.
func RenderSVG(fig render.Figure, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	f := render.NewFrame(fig, svgUnitsPerInch)
	w, h := f.Size()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%sin" height="%sin">`+"\n",
		num(w), num(h), num(fig.Width), num(fig.Height))
	if !r.background.None {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.background.Hex())
	}

	buf.WriteString("  <defs>\n")
	for i, p := range fig.Panels {
		x, y, pw, ph := f.PanelBox(p)
		fmt.Fprintf(&buf, `    <clipPath id="clip-%d"><rect x="%s" y="%s" width="%s" height="%s"/></clipPath>`+"\n",
			i, num(x), num(y), num(pw), num(ph))
	}
	buf.WriteString("  </defs>\n")

	for i, p := range fig.Panels {
		renderPanel(&buf, f, i, p)
		if r.frames {
			x, y, pw, ph := f.PanelBox(p)
			fmt.Fprintf(&buf, `  <rect class="frame" x="%s" y="%s" width="%s" height="%s" fill="none" stroke="#000000" stroke-width="%s"/>`+"\n",
				num(x), num(y), num(pw), num(ph), num(frameWidth))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderPanel(buf *bytes.Buffer, f render.Frame, i int, p render.Panel) {
	fmt.Fprintf(buf, `  <g id="panel-%d" class="%s" data-name="%s" clip-path="url(#clip-%d)">`+"\n",
		i, p.Kind, escapeXML(p.Name), i)
	for _, rect := range p.Rects {
		x, y, w, h := f.Project(p, rect)
		fmt.Fprintf(buf, `    <rect x="%s" y="%s" width="%s" height="%s" fill="%s"`,
			num(x), num(y), num(w), num(h), rect.Fill.Hex())
		if rect.StrokeWidth > 0 && !rect.Stroke.None {
			fmt.Fprintf(buf, ` stroke="%s" stroke-width="%s"`, rect.Stroke.Hex(), num(rect.StrokeWidth))
		}
		buf.WriteString("/>\n")
	}
	buf.WriteString("  </g>\n")
}

// num formats a coordinate with at most four decimals and no trailing zeros.
func num(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0 // drop the sign of negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
