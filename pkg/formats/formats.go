// Package formats dispatches input files to the readers for each supported
// format and reduces their records to genome features.
//
// # Supported Formats
//
//   - PSL (.psl): long-read alignments, see [psl]
//   - GTF (.gtf, .gff, .gff2): reference annotation, see [gtf]
//   - SAM (.sam) and BAM (.bam): alignments, see [align]
//
// The format is normally detected from the file extension:
//
//	feats, err := formats.Load(ctx, "reads.psl", "", region)
package formats

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/formats/align"
	"github.com/matzehuels/readstack/pkg/formats/gtf"
	"github.com/matzehuels/readstack/pkg/formats/psl"
	"github.com/matzehuels/readstack/pkg/genome"
)

// Format names an input format.
type Format string

// Supported formats.
const (
	FormatPSL Format = "psl"
	FormatGTF Format = "gtf"
	FormatSAM Format = "sam"
	FormatBAM Format = "bam"
)

// loader reads features overlapping a region from an input stream.
type loader func(io.Reader, genome.Region) ([]genome.Feature, error)

var loaders = map[Format]loader{
	FormatPSL: psl.Load,
	FormatGTF: gtf.Load,
	FormatSAM: align.LoadSAM,
	FormatBAM: align.LoadBAM,
}

var extensions = map[string]Format{
	".psl":  FormatPSL,
	".gtf":  FormatGTF,
	".gff":  FormatGTF,
	".gff2": FormatGTF,
	".sam":  FormatSAM,
	".bam":  FormatBAM,
}

// ParseFormat converts a user-supplied format name. The empty string is
// returned as-is and means "detect from the path".
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return "", nil
	}
	if _, ok := loaders[f]; !ok {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown input format %q (must be one of: psl, gtf, sam, bam)", s)
	}
	return f, nil
}

// Detect returns the format implied by path's extension.
func Detect(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot detect input format of %s (expected .psl, .gtf, .gff, .sam or .bam)", path)
}

// IsAnnotation reports whether f carries transcript models rather than reads.
func (f Format) IsAnnotation() bool { return f == FormatGTF }

// Read decodes in as format f and returns the features kept by region.
func Read(in io.Reader, f Format, region genome.Region) ([]genome.Feature, error) {
	load, ok := loaders[f]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown input format %q", f)
	}
	return load(in, region)
}

// Load opens path and reads it as format f. An empty f is detected from the
// extension.
func Load(ctx context.Context, path string, f Format, region genome.Region) ([]genome.Feature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	if f == "" {
		var err error
		if f, err = Detect(path); err != nil {
			return nil, err
		}
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer file.Close()

	feats, err := Read(file, f, region)
	if err != nil {
		return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInvalidRecord), err, "read %s", path)
	}
	return feats, nil
}
