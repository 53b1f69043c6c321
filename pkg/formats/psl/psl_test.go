package psl

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/genome"
)

// pslLine formats a 21-column PSL record with the fields the reader uses.
func pslLine(qName, tName string, tStart, tEnd int, sizes, starts string) string {
	return fmt.Sprintf("100\t0\t0\t0\t0\t0\t1\t50\t+\t%s\t200\t0\t100\t%s\t1000000\t%d\t%d\t2\t%s\t0,50,\t%s",
		qName, tName, tStart, tEnd, sizes, starts)
}

const psLayoutHeader = `psLayout version 3

match	mis- 	rep. 	N's	Q gap	Q gap	T gap	T gap	strand	Q        	Q   	Q    	Q  	T        	T   	T    	T  	block	blockSizes 	qStarts	 tStarts
     	match	match	   	count	bases	count	bases	      	name     	size	start	end	name     	size	start	end	count
---------------------------------------------------------------------------------------------------------------------------------------------------------------
`

func TestReaderRead(t *testing.T) {
	in := pslLine("read1", "chr1", 1000, 1150, "50,50,", "1000,1100,") + "\n"
	r := NewReader(strings.NewReader(in))

	rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "read1", rec.QName)
	assert.Equal(t, "chr1", rec.TName)
	assert.Equal(t, 1000, rec.TStart)
	assert.Equal(t, 1150, rec.TEnd)
	assert.Equal(t, []int{50, 50}, rec.BlockSizes)
	assert.Equal(t, []int{1000, 1100}, rec.TStarts)
	assert.Equal(t, 1, r.Line())

	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReaderSkipsHeaderAndComments(t *testing.T) {
	in := psLayoutHeader +
		"# comment\n" +
		"\n" +
		pslLine("a", "chr1", 10, 20, "10,", "10,") + "\r\n" +
		pslLine("b", "chr2", 30, 40, "10,", "30,") + "\n"

	r := NewReader(strings.NewReader(in))
	var names []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, rec.QName)
	}
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestReaderErrors(t *testing.T) {
	badStart := strings.Replace(pslLine("a", "chr1", 0, 10, "10,", "0,"), "\t0\t10\t", "\tzero\t10\t", 1)

	tests := []struct {
		name string
		line string
		want string
	}{
		{"too few columns", "a\tb\tc", "expected at least 21"},
		{"bad tStart", badStart, "tStart"},
		{"bad block list", pslLine("a", "chr1", 0, 10, "10,x,", "0,5,"), "blockSizes"},
		{"block count mismatch", pslLine("a", "chr1", 0, 10, "5,5,", "0,"), "2 blockSizes but 1 tStarts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader("\n" + tt.line + "\n"))
			_, err := r.Read()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidRecord), "code = %s", errors.GetCode(err))
			assert.Contains(t, err.Error(), "line 2")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRecordFeature(t *testing.T) {
	rec := Record{QName: "r", TName: "chr1", TStart: 5, TEnd: 40, BlockSizes: []int{5, 10}, TStarts: []int{5, 30}}
	f := rec.Feature()

	assert.Equal(t, "r", f.Name)
	assert.Equal(t, 5, f.Start)
	assert.Equal(t, 40, f.End)
	require.Len(t, f.Blocks, 2)
	assert.Equal(t, genome.Block{Start: 30, Width: 10, Kind: genome.KindExon}, f.Blocks[1])
}

func TestLoadFiltersRegion(t *testing.T) {
	region := genome.Region{Chrom: "chr1", Start: 100, End: 200}
	lines := []string{
		pslLine("inside", "chr1", 120, 180, "60,", "120,"),
		pslLine("left", "chr1", 50, 150, "100,", "50,"),
		pslLine("right", "chr1", 150, 250, "100,", "150,"),
		pslLine("spanning", "chr1", 50, 250, "200,", "50,"),
		pslLine("outside", "chr1", 300, 400, "100,", "300,"),
		pslLine("other-chrom", "chr2", 120, 180, "60,", "120,"),
		pslLine("ends-at-start", "chr1", 50, 100, "50,", "50,"),
		pslLine("starts-at-end", "chr1", 200, 300, "100,", "200,"),
		pslLine("exact", "chr1", 100, 200, "100,", "100,"),
	}

	feats, err := Load(strings.NewReader(strings.Join(lines, "\n")), region)
	require.NoError(t, err)

	var names []string
	for _, f := range feats {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"inside", "left", "right", "spanning"}, names)
}

func TestLoadPropagatesErrors(t *testing.T) {
	_, err := Load(strings.NewReader("garbage\n"), genome.Region{Chrom: "chr1", Start: 0, End: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidRecord))
}
