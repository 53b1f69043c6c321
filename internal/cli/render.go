package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/readstack/pkg/config"
	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/layout"
	"github.com/matzehuels/readstack/pkg/pipeline"
)

// Track names used for the flag-built figure.
const (
	trackAnnotation  = "annotation"
	trackReadsTop    = "reads-top"
	trackReadsBottom = "reads-bottom"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	annotation  string  // GTF annotation file
	readsTop    string  // reads drawn in the upper read panel
	readsBottom string  // reads drawn in the lower read panel; feeds coverage
	region      string  // chrom:start-end
	output      string  // output file (or base path for multiple formats)
	formats     string  // comma-separated output formats
	topOrder    string  // packing order of the upper read panel
	bottomOrder string  // packing order of the lower read panel
	abutting    bool    // let touching features share a row
	dpi         float64 // raster resolution
	noCache     bool
}

// tracks builds the track list from the file flags. The result is empty
// when no file flag was given.
func (o *renderOpts) tracks() []pipeline.TrackSpec {
	var tracks []pipeline.TrackSpec
	if o.annotation != "" {
		tracks = append(tracks, pipeline.TrackSpec{Name: trackAnnotation, Path: o.annotation})
	}
	if o.readsTop != "" {
		tracks = append(tracks, pipeline.TrackSpec{Name: trackReadsTop, Path: o.readsTop, Order: o.topOrder})
	}
	if o.readsBottom != "" {
		tracks = append(tracks, pipeline.TrackSpec{
			Name:     trackReadsBottom,
			Path:     o.readsBottom,
			Order:    o.bottomOrder,
			Coverage: true,
		})
	}
	return tracks
}

// renderCommand creates the render command for drawing a figure.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		output:      defaultOutput,
		topOrder:    string(layout.OrderEnd),
		bottomOrder: string(layout.OrderStart),
	}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the stacked read figure for a region",
		Long: `Render the stacked read figure for a region.

The figure has up to four panels: the gene annotation, the upper read track,
the lower read track and the coverage of the lower read track. Tracks come
from the file flags; when none is given the [[tracks]] of the config file are
drawn instead.

Alignments are read from PSL, SAM or BAM files and annotations from GTF.`,
		Example: `  readstack render -g gencode.gtf --p5 p5.psl --p6 p6.psl -c chr7:45232945-45240000
  readstack render -c chr7:45232945-45240000 -f svg,pdf -o figs/egfr`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, &opts)
		},
	}

	cmd.Flags().SetNormalizeFunc(readsAliases)
	cmd.Flags().StringVarP(&opts.annotation, "annotation", "g", "", "gene annotation (GTF)")
	cmd.Flags().StringVar(&opts.readsTop, "reads-top", "", "alignments for the upper read panel, alias --p5 (PSL, SAM, BAM)")
	cmd.Flags().StringVar(&opts.readsBottom, "reads-bottom", "", "alignments for the lower read panel and coverage, alias --p6")
	cmd.Flags().StringVarP(&opts.region, "region", "c", "", "region to draw (chrom:start-end, 1-based inclusive)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg, png, pdf, json (comma-separated; default from --output)")
	cmd.Flags().StringVar(&opts.topOrder, "top-order", opts.topOrder, "packing order of the upper panel: input, start, end")
	cmd.Flags().StringVar(&opts.bottomOrder, "bottom-order", opts.bottomOrder, "packing order of the lower panel: input, start, end")
	cmd.Flags().BoolVar(&opts.abutting, "abutting", false, "let features that only touch share a row")
	cmd.Flags().Float64Var(&opts.dpi, "dpi", pipeline.DefaultDPI, "raster resolution for png output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagRequired("region")
	_ = cmd.MarkFlagFilename("annotation", "gtf", "gff")
	_ = cmd.MarkFlagFilename("reads-top", "psl", "sam", "bam")
	_ = cmd.MarkFlagFilename("reads-bottom", "psl", "sam", "bam")
	registerCompletions(cmd, map[string]func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective){
		"format":       completeFormats,
		"top-order":    completeOrders,
		"bottom-order": completeOrders,
	})

	return cmd
}

// readsAliases maps the short --p5 and --p6 spellings onto the read track
// flags.
func readsAliases(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "p5":
		name = "reads-top"
	case "p6":
		name = "reads-bottom"
	}
	return pflag.NormalizedName(name)
}

// renderOptions merges the config file with the command-line flags. Flags
// win over config values only when they were set explicitly.
func (c *CLI) renderOptions(cmd *cobra.Command, cfg config.Config, ro *renderOpts) (pipeline.Options, error) {
	var err error
	opts := cfg.PipelineOptions(ro.region)
	if tracks := ro.tracks(); len(tracks) > 0 {
		opts.Tracks = tracks
	}
	if len(opts.Tracks) == 0 {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidArgument,
			"no tracks: pass --annotation, --reads-top or --reads-bottom, or list [[tracks]] in the config")
	}
	if cmd.Flags().Changed("abutting") {
		opts.Abutting = ro.abutting
	}
	if cmd.Flags().Changed("dpi") || opts.DPI == 0 {
		opts.DPI = ro.dpi
	}
	if opts.Formats, err = parseFormats(ro.formats, ro.output); err != nil {
		return pipeline.Options{}, err
	}
	opts.Logger = c.Logger
	return opts, nil
}

// runRender draws the figure and writes one file per requested format.
func (c *CLI) runRender(cmd *cobra.Command, ro *renderOpts) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := c.renderOptions(cmd, cfg, ro)
	if err != nil {
		return err
	}
	c.Logger.Debug("drawing tracks", "tracks", trackNames(opts.Tracks))

	runner, err := c.newRunner(ctx, cfg, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := c.execute(ctx, runner, opts)
	if err != nil {
		return err
	}

	paths := outputPaths(ro.output, opts.Formats)
	for _, format := range opts.Formats {
		if err := writeArtifact(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}

	printSuccess("Rendered %s", result.Layout.Region)
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	printStats(result.Stats.FeatureCount, result.Stats.RowCount, result.Stats.MaxDepth,
		result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	if result.Stats.FeatureCount == 0 {
		printWarning("No features fall inside %s", result.Layout.Region)
	}
	if ro.readsBottom != "" {
		printNewline()
		printNextStep("Inspect rows", fmt.Sprintf("%s layout %s -c %s --order %s",
			appName, ro.readsBottom, result.Layout.Region, ro.bottomOrder))
	}
	return nil
}

// execute runs the pipeline behind a spinner.
func (c *CLI) execute(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.Region))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return nil, err
	}
	spinner.Stop()

	if spinner.Cancelled() {
		return nil, ctx.Err()
	}
	return result, nil
}

// writeArtifact writes data to path, creating parent directories.
func writeArtifact(path string, data []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}

// trackNames lists the names of tracks for log lines.
func trackNames(tracks []pipeline.TrackSpec) []string {
	names := make([]string, len(tracks))
	for i, t := range tracks {
		names[i] = t.Name
	}
	return names
}
