// Package gtf reads transcript models from GTF annotation files.
//
// exon and CDS lines are grouped by their transcript_id attribute into one
// feature per transcript. Field decoding is delegated to biogo's GFF
// reader; coordinates are reported as written in the file (1-based) and
// each block's width is end-start.
package gtf

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/biogo/biogo/io/featio"
	"github.com/biogo/biogo/io/featio/gff"

	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/genome"
)

// TranscriptAttr is the attribute that groups lines into transcripts.
const TranscriptAttr = "transcript_id"

// Transcript is one transcript assembled from its exon and CDS lines.
type Transcript struct {
	ID     string
	Chrom  string
	Blocks []genome.Block
}

// Feature converts t to a feature spanning all of its blocks.
func (t Transcript) Feature() genome.Feature {
	start, end, _ := genome.Span(t.Blocks)
	return genome.Feature{Name: t.ID, Start: start, End: end, Blocks: t.Blocks}
}

// blockKinds maps GTF feature types to block kinds. Other types are ignored.
var blockKinds = map[string]genome.BlockKind{
	"exon": genome.KindExon,
	"CDS":  genome.KindCDS,
}

// ReadTranscripts decodes every exon and CDS line from in and groups them by
// transcript, in order of first appearance. Lines without a transcript_id
// are skipped.
func ReadTranscripts(in io.Reader) ([]Transcript, error) {
	sc := featio.NewScanner(gff.NewReader(&uncommented{r: bufio.NewReader(in)}))

	var out []Transcript
	index := make(map[string]int)
	for sc.Next() {
		f, ok := sc.Feat().(*gff.Feature)
		if !ok {
			continue
		}
		kind, ok := blockKinds[f.Feature]
		if !ok {
			continue
		}
		id := attr(f.FeatAttributes, TranscriptAttr)
		if id == "" {
			continue
		}

		// biogo stores a zero-based start; undo that to keep file coordinates.
		start := f.FeatStart + 1
		block := genome.Block{Start: start, Width: f.FeatEnd - start, Kind: kind}

		i, seen := index[id]
		if !seen {
			i = len(out)
			index[id] = i
			out = append(out, Transcript{ID: id, Chrom: f.SeqName})
		}
		out[i].Blocks = append(out[i].Blocks, block)
	}
	if err := sc.Error(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "gtf")
	}
	return out, nil
}

// Load reads in and returns the transcripts kept by region as features,
// in order of first appearance.
func Load(in io.Reader, region genome.Region) ([]genome.Feature, error) {
	ts, err := ReadTranscripts(in)
	if err != nil {
		return nil, err
	}
	var feats []genome.Feature
	for _, t := range ts {
		f := t.Feature()
		if region.KeepsOn(t.Chrom, f.Start, f.End) {
			feats = append(feats, f)
		}
	}
	return feats, nil
}

// attr returns the unquoted value of tag, or "".
func attr(attrs gff.Attributes, tag string) string {
	return strings.Trim(strings.TrimSpace(attrs.Get(tag)), `"`)
}

// uncommented drops '#' lines before the GFF decoder sees them. GTF files
// from Ensembl and GENCODE open with "#!" and "##" headers that are not GFF
// pragmas. It also terminates a final unterminated line.
type uncommented struct {
	r   *bufio.Reader
	buf []byte
}

func (u *uncommented) Read(p []byte) (int, error) {
	for len(u.buf) == 0 {
		line, err := u.r.ReadBytes('\n')
		if len(line) > 0 && line[0] != '#' {
			if !bytes.HasSuffix(line, []byte{'\n'}) {
				line = append(line, '\n')
			}
			u.buf = line
		}
		if err != nil {
			if len(u.buf) == 0 {
				return 0, err
			}
			break
		}
	}
	n := copy(p, u.buf)
	u.buf = u.buf[n:]
	return n, nil
}
