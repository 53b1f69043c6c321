package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/readstack/pkg/cache"
	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/genome"
	"github.com/matzehuels/readstack/pkg/render"
)

const testRegion = "chr1:1000-2000"

// pslRecord returns a single-block PSL line.
func pslRecord(name string, start, end int) string {
	return fmt.Sprintf("%d\t0\t0\t0\t0\t0\t0\t0\t+\t%s\t%d\t0\t%d\tchr1\t100000\t%d\t%d\t1\t%d,\t0,\t%d,",
		end-start, name, end-start, end-start, start, end, end-start, start)
}

func gtfRecord(typ string, start, end int, transcript string) string {
	return fmt.Sprintf("chr1\ttest\t%s\t%d\t%d\t.\t+\t.\tgene_id \"G1\"; transcript_id \"%s\";", typ, start, end, transcript)
}

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// testTracks writes an annotation and two read files and returns the
// matching track specs, top to bottom.
func testTracks(t *testing.T) []TrackSpec {
	t.Helper()
	dir := t.TempDir()
	gtf := writeFile(t, dir, "genes.gtf",
		gtfRecord("exon", 1100, 1200, "T1"),
		gtfRecord("exon", 1500, 1600, "T1"),
		gtfRecord("CDS", 1150, 1200, "T1"),
	)
	top := writeFile(t, dir, "top.psl",
		pslRecord("a", 1100, 1200),
		pslRecord("b", 1150, 1250),
	)
	bottom := writeFile(t, dir, "bottom.psl",
		pslRecord("r1", 1100, 1300),
		pslRecord("r2", 1250, 1400),
		pslRecord("r3", 1350, 1500),
	)
	return []TrackSpec{
		{Name: "genes", Path: gtf},
		{Name: "top", Path: top, Order: "end"},
		{Name: "bottom", Path: bottom, Order: "start", Coverage: true},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateColors(t *testing.T) {
	if err := ValidateColors(DefaultColors); err != nil {
		t.Errorf("Default colors should pass: %v", err)
	}
	if err := ValidateColors(Colors{}); err != nil {
		t.Errorf("Empty colors should pass: %v", err)
	}
	if err := ValidateColors(Colors{Coverage: "blueish"}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Invalid color error = %v, want INVALID_CONFIG", err)
	}
}

func TestValidateTrack(t *testing.T) {
	tr := TrackSpec{Name: "genes", Path: "a/genes.gtf"}
	if err := ValidateTrack(&tr); err != nil {
		t.Fatalf("ValidateTrack: %v", err)
	}
	if tr.Format != "gtf" || tr.Kind != KindAnnotation {
		t.Errorf("got format %q kind %q, want gtf annotation", tr.Format, tr.Kind)
	}

	tr = TrackSpec{Name: "reads", Path: "reads.bam"}
	if err := ValidateTrack(&tr); err != nil {
		t.Fatalf("ValidateTrack: %v", err)
	}
	if tr.Kind != KindReads {
		t.Errorf("bam kind = %q, want reads", tr.Kind)
	}

	tests := []struct {
		name string
		spec TrackSpec
		code errors.Code
	}{
		{"no name", TrackSpec{Path: "a.psl"}, errors.ErrCodeInvalidArgument},
		{"no path", TrackSpec{Name: "a"}, errors.ErrCodeInvalidPath},
		{"unknown extension", TrackSpec{Name: "a", Path: "a.txt"}, errors.ErrCodeInvalidFormat},
		{"unknown format", TrackSpec{Name: "a", Path: "a.psl", Format: "vcf"}, errors.ErrCodeInvalidFormat},
		{"bad kind", TrackSpec{Name: "a", Path: "a.psl", Kind: "genes"}, errors.ErrCodeInvalidArgument},
		{"bad order", TrackSpec{Name: "a", Path: "a.psl", Order: "length"}, errors.ErrCodeInvalidOrder},
		{"bad color", TrackSpec{Name: "a", Path: "a.psl", Color: "#12"}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := tt.spec
			err := ValidateTrack(&spec)
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateTrack() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateForLayout(t *testing.T) {
	tracks := []TrackSpec{{Name: "a", Path: "a.psl"}}

	opts := Options{Region: "chr1:1,000-2,000", Tracks: tracks}
	if err := opts.ValidateForLayout(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}
	if got := opts.ParsedRegion(); got != (genome.Region{Chrom: "chr1", Start: 1000, End: 2000}) {
		t.Errorf("ParsedRegion = %v", got)
	}
	if opts.MaxRegionWidth != DefaultMaxRegionWidth {
		t.Errorf("MaxRegionWidth should be %d, got %d", DefaultMaxRegionWidth, opts.MaxRegionWidth)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing region", Options{Tracks: tracks}, errors.ErrCodeInvalidRegion},
		{"malformed region", Options{Region: "chr1-1000", Tracks: tracks}, errors.ErrCodeInvalidRegion},
		{"reversed region", Options{Region: "chr1:2000-1000", Tracks: tracks}, errors.ErrCodeInvalidRegion},
		{"too wide", Options{Region: "chr1:1-1000", Tracks: tracks, MaxRegionWidth: 999}, errors.ErrCodeInvalidRegion},
		{"no tracks", Options{Region: testRegion}, errors.ErrCodeInvalidArgument},
		{"duplicate tracks", Options{Region: testRegion, Tracks: []TrackSpec{
			{Name: "a", Path: "a.psl"}, {Name: "a", Path: "b.psl"},
		}}, errors.ErrCodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLayout()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateForLayout() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOptionsRegionAtWidthLimit(t *testing.T) {
	opts := Options{Region: "chr1:1-1000", Tracks: []TrackSpec{{Name: "a", Path: "a.psl"}}, MaxRegionWidth: 1000}
	if err := opts.ValidateForLayout(); err != nil {
		t.Errorf("Region exactly at the limit should pass: %v", err)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{Colors: Colors{ReadsTop: "#123456"}}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.DPI != DefaultDPI {
		t.Errorf("DPI should be %v, got %v", DefaultDPI, opts.DPI)
	}
	if opts.Colors.ReadsTop != "#123456" {
		t.Errorf("Explicit color was overwritten: %s", opts.Colors.ReadsTop)
	}
	if opts.Colors.ReadsBottom != DefaultColors.ReadsBottom {
		t.Errorf("ReadsBottom should default to %s, got %s", DefaultColors.ReadsBottom, opts.Colors.ReadsBottom)
	}
}

func TestValidateForRender(t *testing.T) {
	opts := Options{DPI: -1}
	if err := opts.ValidateForRender(); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("Negative dpi error = %v", err)
	}
	opts = Options{Formats: []string{"svg", "tiff"}}
	if err := opts.ValidateForRender(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Unknown format error = %v", err)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Region: testRegion, Tracks: []TrackSpec{{Name: "a", Path: "a.psl"}}}

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalFormats := strings.Join(opts.Formats, ",")
	originalKind := opts.Tracks[0].Kind

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if strings.Join(opts.Formats, ",") != originalFormats {
		t.Error("Formats changed on second call")
	}
	if opts.Tracks[0].Kind != originalKind {
		t.Error("Kind changed on second call")
	}
}

func TestArtifactKeyOptsTrackStyle(t *testing.T) {
	a := Options{Tracks: []TrackSpec{{Name: "a"}}}
	b := Options{Tracks: []TrackSpec{{Name: "a", Color: "#ff0000"}}}
	if a.ArtifactKeyOpts("svg") == b.ArtifactKeyOpts("svg") {
		t.Error("Track colors should change the artifact key")
	}
	if a.ArtifactKeyOpts("svg") == a.ArtifactKeyOpts("png") {
		t.Error("Formats should change the artifact key")
	}
}

func loadTestTracks(t *testing.T, opts Options) []LoadedTrack {
	t.Helper()
	tracks, err := NewRunner(nil, nil, nil).Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return tracks
}

func TestComputeLayout(t *testing.T) {
	opts := Options{Region: testRegion, Tracks: testTracks(t)}
	tracks := loadTestTracks(t, opts)
	region := genome.MustParseRegion(testRegion)

	l, err := ComputeLayout(tracks, region, false)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if len(l.Tracks) != 3 {
		t.Fatalf("got %d tracks, want 3", len(l.Tracks))
	}

	genes, _ := l.Track("genes")
	if genes.Kind != KindAnnotation || genes.Packing.RowCount != 1 {
		t.Errorf("genes = kind %s rows %d, want annotation with 1 row", genes.Kind, genes.Packing.RowCount)
	}

	// r1 [1100,1300] and r3 [1350,1500] share row 0; r2 overlaps r1.
	bottom, _ := l.Track("bottom")
	if got := bottom.Packing.Assignments(); fmt.Sprint(got) != "[0 1 0]" {
		t.Errorf("bottom rows = %v, want [0 1 0]", got)
	}
	if l.RowCount() != 1+2+2 {
		t.Errorf("RowCount = %d, want 5", l.RowCount())
	}
	if l.FeatureCount() != 6 {
		t.Errorf("FeatureCount = %d, want 6", l.FeatureCount())
	}

	if len(l.Depth) != region.Width() {
		t.Fatalf("depth length = %d, want %d", len(l.Depth), region.Width())
	}
	if l.Stats.Max != 2 {
		t.Errorf("max depth = %d, want 2", l.Stats.Max)
	}
	if l.Depth[1100-1000] != 1 || l.Depth[1260-1000] != 2 || l.Depth[1500-1000] != 0 {
		t.Errorf("unexpected depth at 1100/1260/1500: %d %d %d",
			l.Depth[100], l.Depth[260], l.Depth[500])
	}
}

func TestComputeLayoutWithoutCoverage(t *testing.T) {
	specs := testTracks(t)[:2]
	opts := Options{Region: testRegion, Tracks: specs}
	l, err := ComputeLayout(loadTestTracks(t, opts), genome.MustParseRegion(testRegion), false)
	if err != nil {
		t.Fatal(err)
	}
	if l.Depth != nil {
		t.Errorf("Depth should be nil without coverage tracks, got %d entries", len(l.Depth))
	}
}

func TestComputeLayoutAbutting(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reads.psl", pslRecord("a", 1100, 1200), pslRecord("b", 1200, 1300))
	opts := Options{Region: testRegion, Tracks: []TrackSpec{{Name: "r", Path: path, Order: "start"}}}
	tracks := loadTestTracks(t, opts)
	region := genome.MustParseRegion(testRegion)

	strict, _ := ComputeLayout(tracks, region, false)
	abutting, _ := ComputeLayout(tracks, region, true)
	if strict.Tracks[0].Packing.RowCount != 2 {
		t.Errorf("strict rows = %d, want 2", strict.Tracks[0].Packing.RowCount)
	}
	if abutting.Tracks[0].Packing.RowCount != 1 {
		t.Errorf("abutting rows = %d, want 1", abutting.Tracks[0].Packing.RowCount)
	}
}

func TestTrackDepth(t *testing.T) {
	opts := Options{Region: testRegion, Tracks: testTracks(t)}
	l, err := ComputeLayout(loadTestTracks(t, opts), genome.MustParseRegion(testRegion), false)
	if err != nil {
		t.Fatal(err)
	}

	depth, err := l.TrackDepth("top")
	if err != nil {
		t.Fatalf("TrackDepth: %v", err)
	}
	if depth[1160-1000] != 2 || depth[1110-1000] != 1 {
		t.Errorf("top depth at 1110/1160 = %d/%d, want 1/2", depth[110], depth[160])
	}

	if _, err := l.TrackDepth("missing"); !errors.Is(err, errors.ErrCodeTrackNotFound) {
		t.Errorf("missing track error = %v", err)
	}
}

func TestTrackLayoutFeaturesInputOrder(t *testing.T) {
	opts := Options{Region: testRegion, Tracks: testTracks(t)}
	l, err := ComputeLayout(loadTestTracks(t, opts), genome.MustParseRegion(testRegion), false)
	if err != nil {
		t.Fatal(err)
	}
	top, _ := l.Track("top")
	feats := top.Features()
	if len(feats) != 2 || feats[0].Name != "a" || feats[1].Name != "b" {
		t.Errorf("Features() = %v, want a, b", feats)
	}
}

func TestBuildFigureColors(t *testing.T) {
	opts := Options{Region: testRegion, Tracks: testTracks(t)}
	l, err := ComputeLayout(loadTestTracks(t, opts), genome.MustParseRegion(testRegion), false)
	if err != nil {
		t.Fatal(err)
	}

	fig, err := BuildFigure(l, opts)
	if err != nil {
		t.Fatalf("BuildFigure: %v", err)
	}
	if len(fig.Panels) != 4 {
		t.Fatalf("got %d panels, want 4", len(fig.Panels))
	}

	want := []struct {
		kind render.PanelKind
		fill render.Color
	}{
		{render.PanelAnnotation, render.Grey},
		{render.PanelReads, render.Orange},
		{render.PanelReads, render.Blue},
		{render.PanelCoverage, render.Blue},
	}
	for i, w := range want {
		p := fig.Panels[i]
		if p.Kind != w.kind {
			t.Errorf("panel %d kind = %s, want %s", i, p.Kind, w.kind)
		}
		if len(p.Rects) == 0 {
			t.Errorf("panel %d has no rects", i)
			continue
		}
		if p.Rects[0].Fill != w.fill {
			t.Errorf("panel %d fill = %s, want %s", i, p.Rects[0].Fill, w.fill)
		}
	}
	if fig.Panels[0].Rects[0].StrokeWidth != annotationOutline {
		t.Error("annotation blocks should be outlined")
	}
	if fig.Panels[1].Rects[0].StrokeWidth != 0 {
		t.Error("read blocks should not be outlined")
	}
}

func TestBuildFigureTrackColorOverride(t *testing.T) {
	specs := testTracks(t)
	specs[1].Color = "#ff0000"
	opts := Options{Region: testRegion, Tracks: specs}
	l, err := ComputeLayout(loadTestTracks(t, opts), genome.MustParseRegion(testRegion), false)
	if err != nil {
		t.Fatal(err)
	}
	fig, err := BuildFigure(l, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := fig.Panels[1].Rects[0].Fill; got != render.RGB(255, 0, 0) {
		t.Errorf("override fill = %s, want #ff0000", got)
	}
}

func TestRunnerExecuteCaches(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := Options{
		Region:  testRegion,
		Tracks:  testTracks(t),
		Formats: []string{FormatSVG, FormatJSON},
	}

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss the cache: %+v", first.CacheInfo)
	}
	if !bytes.Contains(first.Artifacts[FormatSVG], []byte("<svg")) {
		t.Error("svg artifact missing")
	}
	if !bytes.Contains(first.Artifacts[FormatJSON], []byte(`"panels"`)) {
		t.Error("json artifact missing")
	}
	if first.Stats.FeatureCount != 6 || first.Stats.MaxDepth != 2 {
		t.Errorf("stats = %+v", first.Stats)
	}
	if first.LayoutHash == "" {
		t.Error("LayoutHash should be set")
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit the cache: %+v", second.CacheInfo)
	}
	if second.LayoutHash != first.LayoutHash {
		t.Error("cached layout should hash the same")
	}
	if !bytes.Equal(second.Artifacts[FormatSVG], first.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	opts.Refresh = true
	third, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass the cache: %+v", third.CacheInfo)
	}
}

func TestRunnerFileChangeInvalidatesLayout(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)

	specs := testTracks(t)
	opts := Options{Region: testRegion, Tracks: specs}
	if _, err := runner.Layout(ctx, opts); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Dir(specs[2].Path), filepath.Base(specs[2].Path), pslRecord("only", 1100, 1300))
	l, hit, err := runner.LayoutWithCacheInfo(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("changed file should miss the layout cache")
	}
	bottom, _ := l.Track("bottom")
	if len(bottom.Packing.Placements) != 1 {
		t.Errorf("got %d placements, want 1", len(bottom.Packing.Placements))
	}
}

func TestRunnerMissingFile(t *testing.T) {
	opts := Options{Region: testRegion, Tracks: []TrackSpec{{Name: "a", Path: filepath.Join(t.TempDir(), "gone.psl")}}}
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRunnerLoadCachesFeatures(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	opts := Options{Region: testRegion, Tracks: testTracks(t)}

	if _, hit, err := runner.LoadWithCacheInfo(ctx, opts); err != nil || hit {
		t.Fatalf("first load: hit %v err %v", hit, err)
	}
	tracks, hit, err := runner.LoadWithCacheInfo(ctx, opts)
	if err != nil || !hit {
		t.Fatalf("second load: hit %v err %v", hit, err)
	}
	if len(tracks[2].Features) != 3 {
		t.Errorf("cached bottom track has %d features, want 3", len(tracks[2].Features))
	}
}
