package gtf

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/genome"
)

func gtfLine(chrom, typ string, start, end int, transcript string) string {
	attrs := `gene_id "G1";`
	if transcript != "" {
		attrs += ` transcript_id "` + transcript + `";`
	}
	return strings.Join([]string{
		chrom, "test", typ, strconv.Itoa(start), strconv.Itoa(end), ".", "+", ".", attrs,
	}, "\t")
}

func gtfText(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestReadTranscriptsGroupsByID(t *testing.T) {
	in := gtfText(
		"#!genome-build GRCh38",
		"##description: test",
		gtfLine("chr1", "gene", 100, 900, ""),
		gtfLine("chr1", "transcript", 100, 900, "T2"),
		gtfLine("chr1", "exon", 100, 200, "T2"),
		gtfLine("chr1", "exon", 300, 400, "T1"),
		gtfLine("chr1", "CDS", 150, 200, "T2"),
		gtfLine("chr1", "exon", 800, 900, "T2"),
		gtfLine("chr1", "start_codon", 150, 152, "T2"),
		gtfLine("chr1", "exon", 500, 600, "T1"),
	)

	ts, err := ReadTranscripts(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ts, 2)

	assert.Equal(t, "T2", ts[0].ID)
	assert.Equal(t, "chr1", ts[0].Chrom)
	assert.Equal(t, []genome.Block{
		{Start: 100, Width: 100, Kind: genome.KindExon},
		{Start: 150, Width: 50, Kind: genome.KindCDS},
		{Start: 800, Width: 100, Kind: genome.KindExon},
	}, ts[0].Blocks)

	assert.Equal(t, "T1", ts[1].ID)
	assert.Len(t, ts[1].Blocks, 2)
}

func TestTranscriptFeatureSpan(t *testing.T) {
	tr := Transcript{ID: "T", Chrom: "chr1", Blocks: []genome.Block{
		{Start: 500, Width: 100, Kind: genome.KindExon},
		{Start: 100, Width: 50, Kind: genome.KindExon},
	}}
	f := tr.Feature()
	assert.Equal(t, "T", f.Name)
	assert.Equal(t, 100, f.Start)
	assert.Equal(t, 600, f.End)
}

func TestReadTranscriptsSkipsMissingID(t *testing.T) {
	in := gtfText(gtfLine("chr1", "exon", 100, 200, ""))
	ts, err := ReadTranscripts(strings.NewReader(in))
	require.NoError(t, err)
	assert.Empty(t, ts)
}

func TestReadTranscriptsUnterminatedLastLine(t *testing.T) {
	in := gtfLine("chr1", "exon", 100, 200, "T1")
	ts, err := ReadTranscripts(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, 100, ts[0].Blocks[0].Start)
}

func TestReadTranscriptsMalformed(t *testing.T) {
	_, err := ReadTranscripts(strings.NewReader("chr1\tonly\tthree\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidRecord))
}

func TestLoadFiltersRegion(t *testing.T) {
	in := gtfText(
		gtfLine("chr1", "exon", 1100, 1200, "inside"),
		gtfLine("chr1", "exon", 900, 1050, "left"),
		gtfLine("chr1", "exon", 1900, 2100, "right"),
		gtfLine("chr1", "exon", 500, 600, "spanning"),
		gtfLine("chr1", "exon", 2500, 2600, "spanning"),
		gtfLine("chr1", "exon", 3000, 3100, "outside"),
		gtfLine("chr2", "exon", 1100, 1200, "other-chrom"),
		gtfLine("chr1", "exon", 900, 1000, "touching"),
	)
	region := genome.Region{Chrom: "chr1", Start: 1000, End: 2000}

	feats, err := Load(strings.NewReader(in), region)
	require.NoError(t, err)

	var names []string
	for _, f := range feats {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"inside", "left", "right", "spanning"}, names)
}
