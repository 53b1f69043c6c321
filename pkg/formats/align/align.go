// Package align reads SAM and BAM alignments as display features.
//
// Each mapped record becomes one feature spanning its reference
// coordinates. Aligned CIGAR runs (M, = and X) form exon blocks; deletions
// and skipped regions (D and N) split them. Coordinates are zero-based, the
// same convention PSL target coordinates use.
package align

import (
	"io"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/genome"
)

type recordReader interface {
	Read() (*sam.Record, error)
}

// LoadSAM reads SAM text from in and returns the features kept by region.
func LoadSAM(in io.Reader, region genome.Region) ([]genome.Feature, error) {
	r, err := sam.NewReader(in)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "sam header")
	}
	return load(r, region)
}

// LoadBAM reads BAM from in and returns the features kept by region.
func LoadBAM(in io.Reader, region genome.Region) ([]genome.Feature, error) {
	r, err := bam.NewReader(in, 1)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "bam header")
	}
	defer r.Close()
	return load(r, region)
}

func load(r recordReader, region genome.Region) ([]genome.Feature, error) {
	var feats []genome.Feature
	for n := 1; ; n++ {
		rec, err := r.Read()
		if err == io.EOF {
			return feats, nil
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "record %d", n)
		}
		if !Mapped(rec) {
			continue
		}
		start, end := rec.Start(), rec.End()
		if !region.KeepsOn(rec.Ref.Name(), start, end) {
			continue
		}
		feats = append(feats, genome.Feature{
			Name:   rec.Name,
			Start:  start,
			End:    end,
			Blocks: Blocks(rec),
		})
	}
}

// Mapped reports whether rec has a reference position.
func Mapped(rec *sam.Record) bool {
	return rec.Ref != nil && rec.Flags&sam.Unmapped == 0
}

// Blocks returns the aligned reference blocks of rec. Adjacent aligned
// operations (for example 5=1X5=) merge into one block.
func Blocks(rec *sam.Record) []genome.Block {
	var blocks []genome.Block
	pos := rec.Pos
	for _, co := range rec.Cigar {
		n := co.Len()
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if last := len(blocks) - 1; last >= 0 && blocks[last].End() == pos {
				blocks[last].Width += n
			} else {
				blocks = append(blocks, genome.Block{Start: pos, Width: n, Kind: genome.KindExon})
			}
			pos += n
		case sam.CigarDeletion, sam.CigarSkipped:
			pos += n
		}
	}
	return blocks
}
