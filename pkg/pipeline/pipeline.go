// Package pipeline provides the figure pipeline for readstack.
//
// This package implements the complete load → layout → render pipeline that
// is used by both the CLI and the figure server. By centralizing this logic,
// both entry points validate, cache and render in exactly the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read every track file and keep the features inside the region
//  2. Layout: Pack each track into rows and aggregate coverage
//  3. Render: Compose the panels and encode them (SVG, PNG, PDF, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Region: "chr7:45232945-45240000",
//	    Tracks: []pipeline.TrackSpec{
//	        {Name: "gencode", Path: "gencode.gtf"},
//	        {Name: "p5", Path: "p5.psl", Order: "end"},
//	        {Name: "p6", Path: "p6.psl", Order: "start", Coverage: true},
//	    },
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Load and pack only
//	l, err := runner.Layout(ctx, opts)
//
//	// Render an existing layout
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/readstack/pkg/cache"
	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/formats"
	"github.com/matzehuels/readstack/pkg/genome"
	"github.com/matzehuels/readstack/pkg/layout"
	"github.com/matzehuels/readstack/pkg/render"
	"github.com/matzehuels/readstack/pkg/render/panels"
	"github.com/matzehuels/readstack/pkg/render/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultMaxRegionWidth caps the region width in bases. The depth array
	// and every raster scale with it.
	DefaultMaxRegionWidth = 5_000_000

	// DefaultDPI is the raster resolution used for PNG output.
	DefaultDPI = sink.DefaultDPI
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// DefaultColors are the colors of the original four-panel figure.
var DefaultColors = Colors{
	Annotation:  render.Grey.Hex(),
	ReadsTop:    render.Orange.Hex(),
	ReadsBottom: render.Blue.Hex(),
	Coverage:    render.Blue.Hex(),
	Outline:     render.Black.Hex(),
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// TrackSpec describes one input track.
type TrackSpec struct {
	Name string `json:"name"`
	Path string `json:"path"`
	// Format is detected from the extension when empty.
	Format string `json:"format,omitempty"`
	// Kind is "annotation" or "reads"; empty follows the format.
	Kind string `json:"kind,omitempty"`
	// Order is the packing order (input, start, end).
	Order string `json:"order,omitempty"`
	// Color overrides the palette color for this track.
	Color string `json:"color,omitempty"`
	// Coverage adds this track's exon blocks to the coverage panel.
	Coverage bool `json:"coverage,omitempty"`
}

// Track kinds.
const (
	KindAnnotation = "annotation"
	KindReads      = "reads"
)

// Colors is the figure palette. Values are anything render.ParseColor accepts.
type Colors struct {
	Annotation  string `json:"annotation"`
	ReadsTop    string `json:"reads_top"`
	ReadsBottom string `json:"reads_bottom"`
	Coverage    string `json:"coverage"`
	Outline     string `json:"outline"`
}

// Options contains all configuration for the figure pipeline.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Load options
	Region         string      `json:"region"`
	Tracks         []TrackSpec `json:"tracks"`
	MaxRegionWidth int         `json:"max_region_width,omitempty"`
	Refresh        bool        `json:"refresh,omitempty"`

	// Layout options
	Abutting bool `json:"abutting,omitempty"`

	// Render options
	Formats  []string        `json:"formats,omitempty"`
	DPI      float64         `json:"dpi,omitempty"`
	Colors   Colors          `json:"colors"`
	Geometry panels.Geometry `json:"geometry"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	region genome.Region
	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the packed figure data.
	Layout Layout

	// LayoutHash is the content hash of the layout.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	FeatureCount int
	RowCount     int
	MaxDepth     int
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache (no file was decoded)
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateColors checks every non-empty palette entry.
func ValidateColors(c Colors) error {
	for _, v := range []string{c.Annotation, c.ReadsTop, c.ReadsBottom, c.Coverage, c.Outline} {
		if v == "" {
			continue
		}
		if err := errors.ValidateColor(v); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTrack checks one track and fills in its format and kind.
func ValidateTrack(t *TrackSpec) error {
	if t.Name == "" {
		return errors.New(errors.ErrCodeInvalidArgument, "track name is required")
	}
	if err := errors.ValidatePath(t.Path); err != nil {
		return err
	}

	f, err := formats.ParseFormat(t.Format)
	if err != nil {
		return err
	}
	if f == "" {
		if f, err = formats.Detect(t.Path); err != nil {
			return err
		}
	}
	t.Format = string(f)

	switch t.Kind {
	case "":
		t.Kind = KindReads
		if f.IsAnnotation() {
			t.Kind = KindAnnotation
		}
	case KindAnnotation, KindReads:
	default:
		return errors.New(errors.ErrCodeInvalidArgument, "track %s: invalid kind %q (must be annotation or reads)", t.Name, t.Kind)
	}

	if _, err := layout.ParseOrder(t.Order); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, err, "track %s", t.Name)
	}
	if t.Color != "" {
		if err := errors.ValidateColor(t.Color); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "track %s", t.Name)
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLayout checks the region and tracks.
func (o *Options) ValidateForLayout() error {
	if o.MaxRegionWidth == 0 {
		o.MaxRegionWidth = DefaultMaxRegionWidth
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if err := errors.ValidateRegionText(o.Region); err != nil {
		return err
	}
	region, err := genome.ParseRegion(o.Region)
	if err != nil {
		return err
	}
	if w := region.Width(); w > o.MaxRegionWidth {
		return errors.New(errors.ErrCodeInvalidRegion, "region %s is %d bases wide (max %d)", region, w, o.MaxRegionWidth)
	}
	o.region = region

	if len(o.Tracks) == 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "at least one track is required")
	}
	seen := make(map[string]bool, len(o.Tracks))
	for i := range o.Tracks {
		if err := ValidateTrack(&o.Tracks[i]); err != nil {
			return err
		}
		if seen[o.Tracks[i].Name] {
			return errors.New(errors.ErrCodeInvalidArgument, "duplicate track name %q", o.Tracks[i].Name)
		}
		seen[o.Tracks[i].Name] = true
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.DPI == 0 {
		o.DPI = DefaultDPI
	}
	setDefault(&o.Colors.Annotation, DefaultColors.Annotation)
	setDefault(&o.Colors.ReadsTop, DefaultColors.ReadsTop)
	setDefault(&o.Colors.ReadsBottom, DefaultColors.ReadsBottom)
	setDefault(&o.Colors.Coverage, DefaultColors.Coverage)
	setDefault(&o.Colors.Outline, DefaultColors.Outline)
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.DPI < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "dpi must be positive, got %g", o.DPI)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateColors(o.Colors)
}

// ParsedRegion returns the region parsed by ValidateForLayout.
func (o *Options) ParsedRegion() genome.Region {
	return o.region
}

// Track returns the track named name.
func (o *Options) Track(name string) (TrackSpec, bool) {
	for _, t := range o.Tracks {
		if t.Name == name {
			return t, true
		}
	}
	return TrackSpec{}, false
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	tracks := make([]cache.TrackKeyOpts, len(o.Tracks))
	for i, t := range o.Tracks {
		tracks[i] = cache.TrackKeyOpts{
			Name:       t.Name,
			Annotation: t.Kind == KindAnnotation,
			Order:      t.Order,
			Coverage:   t.Coverage,
		}
	}
	return cache.LayoutKeyOpts{
		Region:   o.region,
		Tracks:   tracks,
		Abutting: o.Abutting,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	style, _ := cache.HashValue(struct {
		Colors   Colors
		Geometry panels.Geometry
		DPI      float64
		Tracks   []string
	}{o.Colors, o.Geometry, o.DPI, o.trackColors()})
	return cache.ArtifactKeyOpts{Format: format, Style: style}
}

func (o *Options) trackColors() []string {
	out := make([]string, len(o.Tracks))
	for i, t := range o.Tracks {
		out[i] = t.Color
	}
	return out
}

func setDefault(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

// describe renders a short label for logs and errors.
func (t TrackSpec) describe() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.Path)
}
