package formats

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/genome"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"reads.psl", FormatPSL},
		{"/data/READS.PSL", FormatPSL},
		{"gencode.v44.gtf", FormatGTF},
		{"genes.gff", FormatGTF},
		{"genes.gff2", FormatGTF},
		{"aln.sam", FormatSAM},
		{"aln.sorted.bam", FormatBAM},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Detect(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Detect("reads.fastq")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" BAM ")
	require.NoError(t, err)
	assert.Equal(t, FormatBAM, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, Format(""), f)

	_, err = ParseFormat("bed")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestIsAnnotation(t *testing.T) {
	assert.True(t, FormatGTF.IsAnnotation())
	assert.False(t, FormatPSL.IsAnnotation())
	assert.False(t, FormatBAM.IsAnnotation())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reads.psl")
	line := strings.Join([]string{
		"100", "0", "0", "0", "0", "0", "0", "0", "+", "read1", "100", "0", "100",
		"chr1", "100000", "1100", "1200", "1", "100,", "0,", "1100,",
	}, "\t")
	require.NoError(t, os.WriteFile(path, []byte(line+"\n"), 0o644))

	region := genome.Region{Chrom: "chr1", Start: 1000, End: 2000}
	feats, err := Load(context.Background(), path, "", region)
	require.NoError(t, err)
	require.Len(t, feats, 1)
	assert.Equal(t, "read1", feats[0].Name)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	region := genome.Region{Chrom: "chr1", Start: 0, End: 10}

	_, err := Load(context.Background(), filepath.Join(dir, "missing.psl"), "", region)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "missing file: %v", err)

	_, err = Load(context.Background(), filepath.Join(dir, "reads.txt"), "", region)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "unknown extension: %v", err)

	bad := filepath.Join(dir, "bad.psl")
	require.NoError(t, os.WriteFile(bad, []byte("not\tpsl\n"), 0o644))
	_, err = Load(context.Background(), bad, "", region)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidRecord), "malformed: %v", err)
	assert.Contains(t, errors.UserMessage(err), "bad.psl")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Load(ctx, bad, "", region)
	assert.ErrorIs(t, err, context.Canceled)
}
