package genome

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/readstack/pkg/errors"
)

// Region is a chromosome interval with inclusive bounds as written by the
// user ("chr1:100-200" covers 101 positions).
type Region struct {
	Chrom string `json:"chrom" toml:"chrom"`
	Start int    `json:"start" toml:"start"`
	End   int    `json:"end" toml:"end"`
}

// ParseRegion parses "chrom:start-end". Commas inside the numbers are
// ignored so that coordinates copied from genome browsers work as-is.
func ParseRegion(s string) (Region, error) {
	s = strings.TrimSpace(s)
	if err := errors.ValidateRegionText(s); err != nil {
		return Region{}, err
	}

	colon := strings.LastIndexByte(s, ':')
	chrom, span := s[:colon], strings.ReplaceAll(s[colon+1:], ",", "")

	lo, hi, ok := strings.Cut(span, "-")
	if !ok {
		return Region{}, errors.New(errors.ErrCodeInvalidRegion, "region %q is missing '-'", s)
	}
	start, err := strconv.Atoi(lo)
	if err != nil {
		return Region{}, errors.Wrap(errors.ErrCodeInvalidRegion, err, "region %q start", s)
	}
	end, err := strconv.Atoi(hi)
	if err != nil {
		return Region{}, errors.Wrap(errors.ErrCodeInvalidRegion, err, "region %q end", s)
	}

	r := Region{Chrom: chrom, Start: start, End: end}
	if err := r.Validate(); err != nil {
		return Region{}, err
	}
	return r, nil
}

// MustParseRegion is like ParseRegion but panics on error. Intended for tests
// and package-level defaults.
func MustParseRegion(s string) Region {
	r, err := ParseRegion(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Validate reports whether the region is usable.
func (r Region) Validate() error {
	if r.Chrom == "" {
		return errors.New(errors.ErrCodeInvalidRegion, "region chromosome cannot be empty")
	}
	if r.Start < 0 {
		return errors.New(errors.ErrCodeInvalidRegion, "region start %d is negative", r.Start)
	}
	if r.End < r.Start {
		return errors.New(errors.ErrCodeInvalidRegion, "region end %d is before start %d", r.End, r.Start)
	}
	return nil
}

// Width returns the number of positions covered by the inclusive bounds.
func (r Region) Width() int { return r.End - r.Start + 1 }

// String formats the region as "chrom:start-end".
func (r Region) String() string { return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End) }

// Keeps reports whether a record spanning [start, end] should be shown in
// the region. A record is kept when one of its endpoints lies strictly
// inside the region, or when it strictly contains the whole region.
// Records touching a boundary exactly are not kept.
func (r Region) Keeps(start, end int) bool {
	switch {
	case r.Start < start && start < r.End:
		return true
	case r.Start < end && end < r.End:
		return true
	case start < r.Start && end > r.End:
		return true
	}
	return false
}

// KeepsOn is Keeps plus a chromosome match.
func (r Region) KeepsOn(chrom string, start, end int) bool {
	return chrom == r.Chrom && r.Keeps(start, end)
}
