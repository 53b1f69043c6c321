package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/readstack/pkg/genome"
	"github.com/matzehuels/readstack/pkg/layout"
	"github.com/matzehuels/readstack/pkg/pipeline"
)

// layoutOpts holds the flags of the layout command.
type layoutOpts struct {
	region   string
	order    string
	abutting bool
	asJSON   bool
	noCache  bool
}

// layoutCommand creates the layout command that prints the row packing of one file.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Print the row packing of one track",
		Long: `Print the row packing of one track.

Features of the file that fall inside the region are packed into rows by
first fit and listed with their row. Use --json for machine-readable output.`,
		Example: `  readstack layout p6.psl -c chr7:45232945-45240000 --order start`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.region, "region", "c", "", "region (chrom:start-end, 1-based inclusive)")
	cmd.Flags().StringVar(&opts.order, "order", string(layout.OrderInput), "packing order: input, start, end")
	cmd.Flags().BoolVar(&opts.abutting, "abutting", false, "let features that only touch share a row")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the packing as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	_ = cmd.RegisterFlagCompletionFunc("order", completeOrders)
	_ = cmd.MarkFlagRequired("region")

	return cmd
}

// runLayout packs a single file and prints its rows.
func (c *CLI) runLayout(ctx context.Context, path string, lo layoutOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, lo.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	name := trackName(path)
	opts := pipeline.Options{
		Region:         lo.region,
		Tracks:         []pipeline.TrackSpec{{Name: name, Path: path, Order: lo.order}},
		MaxRegionWidth: cfg.Server.MaxRegionWidth,
		Abutting:       lo.abutting,
		Logger:         c.Logger,
	}

	prog := startProgress(loggerFromContext(ctx), "packed "+name)
	l, hit, err := runner.LayoutWithCacheInfo(ctx, opts)
	if err != nil {
		return err
	}
	t, _ := l.Track(name)
	prog.done("rows", t.Packing.RowCount, "cached", hit)

	if lo.asJSON {
		return writeLayoutJSON(stdout, l, t)
	}

	printSuccess("%s in %s", name, l.Region)
	fmt.Fprintln(stdout, layoutTable(t.Packing))
	printStats(len(t.Packing.Placements), t.Packing.RowCount, 0, hit)
	return nil
}

// trackName derives a display name from a file path ("p6.psl" -> "p6").
func trackName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// writeLayoutJSON writes the region and the packing of one track.
func writeLayoutJSON(w io.Writer, l pipeline.Layout, t pipeline.TrackLayout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Region  genome.Region  `json:"region"`
		Track   string         `json:"track"`
		Packing layout.Packing `json:"packing"`
	}{l.Region, t.Name, t.Packing})
}

// layoutTable renders placements in input order as a lipgloss table.
func layoutTable(p layout.Packing) string {
	placements := slices.Clone(p.Placements)
	slices.SortFunc(placements, func(a, b layout.Placement) int { return a.Index - b.Index })

	rows := make([][]string, len(placements))
	for i, pl := range placements {
		name := pl.Feature.Name
		if name == "" {
			name = "—"
		}
		rows[i] = []string{
			name,
			strconv.Itoa(pl.Feature.Start),
			strconv.Itoa(pl.Feature.End),
			strconv.Itoa(pl.Row),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Start", "End", "Row").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return headerStyle.Padding(0, 1)
			}
			if col == 3 {
				return cellStyle.Foreground(colorCyan)
			}
			return cellStyle
		}).
		Render()
}
