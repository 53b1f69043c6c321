package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/pipeline"
)

const sample = `
[figure]
width = 6.5
dpi = 150
abutting = true

[colors]
reads_top = "#ff0000"

[[tracks]]
name = "genes"
path = "genes.gtf"

[[tracks]]
name = "p6"
path = "/data/p6.psl"
order = "start"
coverage = true

[server]
addr = "127.0.0.1:9000"
max_region_width = 1000
request_timeout = "15s"

[cache]
backend = "none"
ttl = "12h"
`

func TestParse(t *testing.T) {
	cfg, err := Parse(sample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Figure.Width != 6.5 || cfg.Figure.DPI != 150 || !cfg.Figure.Abutting {
		t.Errorf("figure = %+v", cfg.Figure)
	}
	// Unset fields keep their defaults.
	if cfg.Figure.TrackHeight != Default().Figure.TrackHeight {
		t.Errorf("TrackHeight = %v, want default", cfg.Figure.TrackHeight)
	}
	if cfg.Colors.ReadsTop != "#ff0000" || cfg.Colors.ReadsBottom != pipeline.DefaultColors.ReadsBottom {
		t.Errorf("colors = %+v", cfg.Colors)
	}
	if len(cfg.Tracks) != 2 || cfg.Tracks[1].Order != "start" || !cfg.Tracks[1].Coverage {
		t.Errorf("tracks = %+v", cfg.Tracks)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.MaxRegionWidth != 1000 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.RequestTimeout.Duration != 15*time.Second {
		t.Errorf("request_timeout = %v", cfg.Server.RequestTimeout)
	}
	if cfg.Cache.Backend != BackendNone || cfg.Cache.TTL.Duration != 12*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"syntax", `[figure`},
		{"unknown key", "[figure]\nheigth = 3"},
		{"unknown section", "[plot]\nwidth = 3"},
		{"bad color", "[colors]\ncoverage = \"blueish\""},
		{"bad dpi", "[figure]\ndpi = -1"},
		{"bad order", "[[tracks]]\nname = \"a\"\npath = \"a.psl\"\norder = \"length\""},
		{"unknown track format", "[[tracks]]\nname = \"a\"\npath = \"a.vcf\""},
		{"track without name", "[[tracks]]\npath = \"a.psl\""},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
		{"redis without addr", "[cache]\nbackend = \"redis\""},
		{"bad duration", "[cache]\nttl = \"soon\""},
		{"zero region width", "[server]\nmax_region_width = 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Parse() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %s, want %s", cfg.Path(), path)
	}
	if got, want := cfg.Tracks[0].Path, filepath.Join(dir, "genes.gtf"); got != want {
		t.Errorf("relative path = %s, want %s", got, want)
	}
	if cfg.Tracks[1].Path != "/data/p6.psl" {
		t.Errorf("absolute path changed: %s", cfg.Tracks[1].Path)
	}
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing default config should not fail: %v", err)
	}
	if cfg.Server.Addr != DefaultAddr || cfg.Path() != "" {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	_, err = Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing explicit config error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/tmp/xdg/readstack/config.toml" {
		t.Errorf("DefaultPath() = %s", path)
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg, err := Parse(sample)
	if err != nil {
		t.Fatal(err)
	}
	opts := cfg.PipelineOptions("chr1:100-600")

	if opts.Region != "chr1:100-600" || opts.MaxRegionWidth != 1000 || !opts.Abutting {
		t.Errorf("options = %+v", opts)
	}
	if opts.Geometry.Width != 6.5 || opts.DPI != 150 {
		t.Errorf("geometry %+v dpi %v", opts.Geometry, opts.DPI)
	}
	if len(opts.Tracks) != 2 || opts.Tracks[1].Name != "p6" || !opts.Tracks[1].Coverage {
		t.Errorf("tracks = %+v", opts.Tracks)
	}
	if err := opts.ValidateForLayout(); err != nil {
		t.Errorf("converted options should validate: %v", err)
	}
}

func TestDefaultMatchesPipeline(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() should validate: %v", err)
	}
	if pipeline.Colors(cfg.Colors) != pipeline.DefaultColors {
		t.Error("default palette should match the pipeline defaults")
	}
}
