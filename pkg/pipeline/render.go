package pipeline

import (
	"context"

	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/render"
	"github.com/matzehuels/readstack/pkg/render/panels"
	"github.com/matzehuels/readstack/pkg/render/sink"
)

// annotationOutline is the outline width of transcript blocks in points.
const annotationOutline = 0.25

// coveragePanelName names the depth panel in exports.
const coveragePanelName = "coverage"

// BuildFigure composes the panels for l. Tracks are drawn top to bottom in
// the order they were listed.
func BuildFigure(l Layout, opts Options) (render.Figure, error) {
	opts.SetRenderDefaults()

	outline, err := render.ParseColor(opts.Colors.Outline)
	if err != nil {
		return render.Figure{}, err
	}

	lastReads := -1
	for i, t := range l.Tracks {
		if t.Kind != KindAnnotation {
			lastReads = i
		}
	}

	in := panels.Input{
		Region:   l.Region,
		Tracks:   make([]panels.Track, 0, len(l.Tracks)),
		Geometry: opts.Geometry,
		DPI:      opts.DPI,
	}
	for i, t := range l.Tracks {
		color := trackColor(opts, t, i == lastReads)
		fill, err := render.ParseColor(color)
		if err != nil {
			return render.Figure{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "track %s", t.Name)
		}
		st := panels.Style{Fill: fill}
		if t.Kind == KindAnnotation {
			st.Stroke, st.StrokeWidth = outline, annotationOutline
		}
		in.Tracks = append(in.Tracks, panels.Track{
			Name:       t.Name,
			Annotation: t.Kind == KindAnnotation,
			Packing:    t.Packing,
			Style:      st,
		})
	}

	if l.Depth != nil {
		fill, err := render.ParseColor(opts.Colors.Coverage)
		if err != nil {
			return render.Figure{}, err
		}
		in.Coverage = l.Depth
		in.CoverageName = coveragePanelName
		in.CoverageColor = fill
	}
	return panels.Compose(in), nil
}

// trackColor picks the explicit track color, else the palette entry for the
// track's kind. The lowest reads track takes ReadsBottom, the others ReadsTop.
func trackColor(opts Options, t TrackLayout, bottom bool) string {
	if spec, ok := opts.Track(t.Name); ok && spec.Color != "" {
		return spec.Color
	}
	switch {
	case t.Kind == KindAnnotation:
		return opts.Colors.Annotation
	case bottom:
		return opts.Colors.ReadsBottom
	default:
		return opts.Colors.ReadsTop
	}
}

// RenderFromLayout generates output artifacts in the requested formats.
func RenderFromLayout(ctx context.Context, l Layout, opts Options) (map[string][]byte, error) {
	fig, err := BuildFigure(l, opts)
	if err != nil {
		return nil, err
	}
	return RenderFigure(ctx, fig, opts.Formats)
}

// RenderFigure encodes fig once per format.
func RenderFigure(ctx context.Context, fig render.Figure, formats []string) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))

	for _, format := range formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(fig)
		case FormatPNG:
			data, err = sink.RenderPNG(fig)
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, fig)
		case FormatJSON:
			data, err = sink.RenderJSON(fig, sink.WithJSONIndent())
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInternal), err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
