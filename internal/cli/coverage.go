package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/readstack/pkg/coverage"
	"github.com/matzehuels/readstack/pkg/pipeline"
)

// coverageOpts holds the flags of the coverage command.
type coverageOpts struct {
	region  string
	dump    bool
	noCache bool
}

// coverageCommand creates the coverage command.
func (c *CLI) coverageCommand() *cobra.Command {
	var opts coverageOpts

	cmd := &cobra.Command{
		Use:   "coverage [file...]",
		Short: "Print the read depth over a region",
		Long: `Print the read depth over a region.

The exon blocks of every file are summed per position. By default a summary
is printed; --dump writes one "position<TAB>depth" line per position.`,
		Example: `  readstack coverage p6.psl -c chr7:45232945-45240000
  readstack coverage p5.psl p6.psl -c chr7:45232945-45240000 --dump > depth.tsv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCoverage(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.region, "region", "c", "", "region (chrom:start-end, 1-based inclusive)")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "print the depth at every position")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagRequired("region")

	return cmd
}

// coverageTracks turns files into coverage tracks with unique names.
func coverageTracks(paths []string) []pipeline.TrackSpec {
	tracks := make([]pipeline.TrackSpec, len(paths))
	seen := make(map[string]int, len(paths))
	for i, path := range paths {
		name := trackName(path)
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%s-%d", name, n+1)
		}
		seen[trackName(path)]++
		tracks[i] = pipeline.TrackSpec{Name: name, Path: path, Coverage: true}
	}
	return tracks
}

// runCoverage computes the summed depth of the files over the region.
func (c *CLI) runCoverage(ctx context.Context, paths []string, co coverageOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, co.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := startProgress(loggerFromContext(ctx), "computed coverage")
	l, err := runner.Layout(ctx, pipeline.Options{
		Region:         co.region,
		Tracks:         coverageTracks(paths),
		MaxRegionWidth: cfg.Server.MaxRegionWidth,
		Logger:         c.Logger,
	})
	if err != nil {
		return err
	}
	prog.done("tracks", len(paths), "max_depth", l.Stats.Max)

	if co.dump {
		return dumpDepth(stdout, l.Region.Start, l.Depth)
	}
	printCoverage(l.Region.String(), l.Region.Start, l.Stats)
	return nil
}

// dumpDepth writes one "position\tdepth" line per position, starting at start.
func dumpDepth(w io.Writer, start int, depth []int) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 32)
	for i, d := range depth {
		buf = strconv.AppendInt(buf[:0], int64(start+i), 10)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, int64(d), 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// printCoverage prints a depth summary.
func printCoverage(region string, start int, s coverage.Summary) {
	printSuccess("Coverage over %s", region)
	printKeyValue("Positions", StyleNumber.Render(strconv.Itoa(s.Positions)))
	printKeyValue("Covered", fmt.Sprintf("%s (%.1f%%)", StyleNumber.Render(strconv.Itoa(s.Covered)), percent(s.Covered, s.Positions)))
	printKeyValue("Max depth", fmt.Sprintf("%s at %d", StyleNumber.Render(strconv.Itoa(s.Max)), start+s.MaxAt))
	printKeyValue("Mean depth", StyleNumber.Render(strconv.FormatFloat(s.Mean, 'f', 2, 64)))
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
