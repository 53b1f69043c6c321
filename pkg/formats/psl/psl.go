// Package psl reads BLAT/minimap2-style PSL alignment files.
//
// Only the fields needed for display are decoded: the query name, the
// target chromosome and span, and the aligned block coordinates on the
// target. psLayout headers are skipped.
//
//	feats, err := psl.Load(f, region)
package psl

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/genome"
)

// Column indices in a PSL line.
const (
	colQName      = 9
	colTName      = 13
	colTStart     = 15
	colTEnd       = 16
	colBlockSizes = 18
	colTStarts    = 20

	minColumns = 21
)

// maxLineSize bounds a single PSL line. Long reads with many blocks can
// produce lines well past bufio's 64KiB default.
const maxLineSize = 16 << 20

// Record is one decoded PSL alignment.
type Record struct {
	QName      string
	TName      string
	TStart     int
	TEnd       int
	BlockSizes []int
	TStarts    []int
}

// Feature converts r to a feature whose blocks are all exons.
func (r Record) Feature() genome.Feature {
	return genome.NewUniform(r.QName, r.TStart, r.TEnd, r.TStarts, r.BlockSizes, genome.KindExon)
}

// Reader decodes PSL records from an input stream.
type Reader struct {
	sc       *bufio.Scanner
	line     int
	inHeader bool
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{sc: sc}
}

// Line returns the number of the last line read.
func (r *Reader) Line() int { return r.line }

// Read returns the next record, or io.EOF when the input is exhausted.
// Blank lines, '#' comments and psLayout headers are skipped.
func (r *Reader) Read() (Record, error) {
	for r.sc.Scan() {
		r.line++
		text := strings.TrimRight(r.sc.Text(), "\r\n")

		switch {
		case strings.HasPrefix(text, "psLayout"):
			r.inHeader = true
			continue
		case r.inHeader:
			// The header ends with a dashed rule.
			if strings.HasPrefix(text, "---") {
				r.inHeader = false
			}
			continue
		case strings.TrimSpace(text) == "", strings.HasPrefix(text, "#"):
			continue
		}
		return r.parse(text)
	}
	if err := r.sc.Err(); err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeInvalidRecord, err, "line %d", r.line+1)
	}
	return Record{}, io.EOF
}

func (r *Reader) parse(text string) (Record, error) {
	fields := strings.Split(text, "\t")
	if len(fields) < minColumns {
		return Record{}, errors.New(errors.ErrCodeInvalidRecord,
			"line %d: expected at least %d tab-separated columns, got %d", r.line, minColumns, len(fields))
	}

	rec := Record{QName: fields[colQName], TName: fields[colTName]}
	var err error
	if rec.TStart, err = r.atoi(fields[colTStart], "tStart"); err != nil {
		return Record{}, err
	}
	if rec.TEnd, err = r.atoi(fields[colTEnd], "tEnd"); err != nil {
		return Record{}, err
	}
	if rec.BlockSizes, err = r.list(fields[colBlockSizes], "blockSizes"); err != nil {
		return Record{}, err
	}
	if rec.TStarts, err = r.list(fields[colTStarts], "tStarts"); err != nil {
		return Record{}, err
	}
	if len(rec.BlockSizes) != len(rec.TStarts) {
		return Record{}, errors.New(errors.ErrCodeInvalidRecord,
			"line %d: %d blockSizes but %d tStarts", r.line, len(rec.BlockSizes), len(rec.TStarts))
	}
	return rec, nil
}

func (r *Reader) atoi(s, field string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidRecord, err, "line %d: %s", r.line, field)
	}
	return n, nil
}

// list parses a comma-separated integer list. PSL writes a trailing comma.
func (r *Reader) list(s, field string) ([]int, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ",")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := r.atoi(p, field)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// Load reads every record from in and returns the features kept by region,
// in file order.
func Load(in io.Reader, region genome.Region) ([]genome.Feature, error) {
	r := NewReader(in)
	var feats []genome.Feature
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return feats, nil
		}
		if err != nil {
			return nil, err
		}
		if region.KeepsOn(rec.TName, rec.TStart, rec.TEnd) {
			feats = append(feats, rec.Feature())
		}
	}
}
