package sink

import (
	"context"

	"github.com/matzehuels/readstack/pkg/render"
)

// RenderPDF renders fig as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, fig render.Figure, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(fig, opts...))
}
