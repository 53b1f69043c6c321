package align

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/genome"
)

const samHeader = "@HD\tVN:1.6\tSO:unsorted\n" +
	"@SQ\tSN:chr1\tLN:100000\n" +
	"@SQ\tSN:chr2\tLN:100000\n"

// samText builds SAM input from "name flag chrom pos cigar" rows; pos is
// one-based as written in SAM.
func samText(rows ...string) string {
	var b strings.Builder
	b.WriteString(samHeader)
	for _, row := range rows {
		f := strings.Fields(row)
		b.WriteString(strings.Join([]string{f[0], f[1], f[2], f[3], "60", f[4], "*", "0", "0", "*", "*"}, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

var window = genome.Region{Chrom: "chr1", Start: 1000, End: 2000}

func TestLoadSAM(t *testing.T) {
	in := samText(
		"spliced 0 chr1 1101 10M90N20M",
		"deleted 0 chr1 1501 5M2D5M",
		"clipped 16 chr1 1201 5S10M3I10M5H",
		"mixed 0 chr1 1301 5=1X4=",
		"unmapped 4 * 0 *",
		"elsewhere 0 chr2 1101 50M",
		"outside 0 chr1 5001 50M",
	)

	feats, err := LoadSAM(strings.NewReader(in), window)
	require.NoError(t, err)
	require.Len(t, feats, 4)

	spliced := feats[0]
	assert.Equal(t, "spliced", spliced.Name)
	assert.Equal(t, 1100, spliced.Start)
	assert.Equal(t, 1220, spliced.End)
	assert.Equal(t, []genome.Block{
		{Start: 1100, Width: 10, Kind: genome.KindExon},
		{Start: 1200, Width: 20, Kind: genome.KindExon},
	}, spliced.Blocks)

	deleted := feats[1]
	assert.Equal(t, 1512, deleted.End)
	assert.Equal(t, []genome.Block{
		{Start: 1500, Width: 5, Kind: genome.KindExon},
		{Start: 1507, Width: 5, Kind: genome.KindExon},
	}, deleted.Blocks)

	clipped := feats[2]
	assert.Equal(t, 1200, clipped.Start)
	assert.Equal(t, 1220, clipped.End)
	assert.Equal(t, []genome.Block{{Start: 1200, Width: 20, Kind: genome.KindExon}}, clipped.Blocks)

	mixed := feats[3]
	assert.Equal(t, []genome.Block{{Start: 1300, Width: 10, Kind: genome.KindExon}}, mixed.Blocks)
}

func TestLoadSAMBoundary(t *testing.T) {
	in := samText(
		"touch-left 0 chr1 901 100M",
		"touch-right 0 chr1 2001 100M",
		"spanning 0 chr1 501 2000M",
	)
	feats, err := LoadSAM(strings.NewReader(in), window)
	require.NoError(t, err)
	require.Len(t, feats, 1)
	assert.Equal(t, "spanning", feats[0].Name)
}

func TestLoadBAM(t *testing.T) {
	sr, err := sam.NewReader(strings.NewReader(samText(
		"a 0 chr1 1101 10M90N20M",
		"b 0 chr1 1401 30M",
	)))
	require.NoError(t, err)

	var buf bytes.Buffer
	w, err := bam.NewWriter(&buf, sr.Header(), 1)
	require.NoError(t, err)
	for {
		rec, err := sr.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.NoError(t, w.Write(rec))
	}
	require.NoError(t, w.Close())

	feats, err := LoadBAM(&buf, window)
	require.NoError(t, err)
	require.Len(t, feats, 2)
	assert.Equal(t, "a", feats[0].Name)
	assert.Len(t, feats[0].Blocks, 2)
	assert.Equal(t, 1430, feats[1].End)
}

func TestLoadBAMNotBAM(t *testing.T) {
	_, err := LoadBAM(strings.NewReader("not a bam file"), window)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidRecord))
}

func TestBlocksEmptyCigar(t *testing.T) {
	assert.Empty(t, Blocks(&sam.Record{Pos: 10}))
}
