package genome

import (
	"testing"

	"github.com/matzehuels/readstack/pkg/errors"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Region
		wantErr bool
	}{
		{"simple", "chr1:100-200", Region{"chr1", 100, 200}, false},
		{"commas", "chr7:45,232,945-45,240,000", Region{"chr7", 45232945, 45240000}, false},
		{"surrounding space", "  chr2:5-5 ", Region{"chr2", 5, 5}, false},
		{"zero start", "chrM:0-16569", Region{"chrM", 0, 16569}, false},

		{"end before start", "chr1:200-100", Region{}, true},
		{"missing span", "chr1", Region{}, true},
		{"empty", "", Region{}, true},
		{"empty chrom", ":1-2", Region{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRegion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRegion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidRegion) {
					t.Errorf("ParseRegion(%q) code = %v, want %v", tt.input, errors.GetCode(err), errors.ErrCodeInvalidRegion)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseRegion(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRegionWidthAndString(t *testing.T) {
	r := Region{Chrom: "chr1", Start: 100, End: 110}
	if got := r.Width(); got != 11 {
		t.Errorf("Width() = %d, want 11", got)
	}
	if got := r.String(); got != "chr1:100-110" {
		t.Errorf("String() = %q, want %q", got, "chr1:100-110")
	}
}

func TestRegionKeeps(t *testing.T) {
	r := Region{Chrom: "chr1", Start: 100, End: 200}

	tests := []struct {
		name       string
		start, end int
		want       bool
	}{
		{"start inside", 150, 300, true},
		{"end inside", 50, 150, true},
		{"fully inside", 120, 180, true},
		{"contains region", 50, 250, true},
		{"left of region", 10, 90, false},
		{"right of region", 210, 300, false},

		// Boundary-exact records are dropped by the strict predicate.
		{"ends exactly at region start", 50, 100, false},
		{"starts exactly at region end", 200, 300, false},
		{"exactly the region", 100, 200, false},
		{"starts at region start, ends outside", 100, 250, false},
		{"starts outside, ends at region end", 50, 200, false},
		{"starts at region start, ends inside", 100, 150, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Keeps(tt.start, tt.end); got != tt.want {
				t.Errorf("Keeps(%d, %d) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestRegionKeepsOn(t *testing.T) {
	r := Region{Chrom: "chr1", Start: 100, End: 200}
	if !r.KeepsOn("chr1", 150, 160) {
		t.Error("KeepsOn(chr1) = false, want true")
	}
	if r.KeepsOn("chr2", 150, 160) {
		t.Error("KeepsOn(chr2) = true, want false")
	}
}
