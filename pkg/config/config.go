// Package config loads the readstack TOML configuration file.
//
// The file is optional. Without it the CLI draws the original four-panel
// figure from flags alone; with it, track lists, palette, geometry, server
// and cache settings can be kept in one place:
//
//	[figure]
//	width = 5.0
//	dpi = 600
//
//	[colors]
//	reads_top = "#e6572b"
//
//	[[tracks]]
//	name = "gencode"
//	path = "gencode.v45.gtf"
//
//	[[tracks]]
//	name = "p6"
//	path = "p6.psl"
//	order = "start"
//	coverage = true
//
//	[server]
//	addr = ":8080"
//	max_region_width = 2000000
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "12h"
//
// Relative track paths are resolved against the directory of the file.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/pipeline"
	"github.com/matzehuels/readstack/pkg/render/panels"
)

// appName is the directory name under the XDG config home.
const appName = "readstack"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// DefaultAddr is the figure server listen address.
const DefaultAddr = ":8080"

// Config is the parsed configuration file.
type Config struct {
	Figure Figure        `toml:"figure"`
	Colors Colors        `toml:"colors"`
	Tracks []Track       `toml:"tracks"`
	Server Server        `toml:"server"`
	Cache  CacheSettings `toml:"cache"`

	// path is the file the config was read from, empty for defaults.
	path string
}

// Figure holds canvas settings. Sizes are inches.
type Figure struct {
	Width          float64 `toml:"width"`
	TrackHeight    float64 `toml:"track_height"`
	CoverageHeight float64 `toml:"coverage_height"`
	DPI            float64 `toml:"dpi"`
	Abutting       bool    `toml:"abutting"`
}

// Colors is the figure palette.
type Colors struct {
	Annotation  string `toml:"annotation"`
	ReadsTop    string `toml:"reads_top"`
	ReadsBottom string `toml:"reads_bottom"`
	Coverage    string `toml:"coverage"`
	Outline     string `toml:"outline"`
}

// Track is one [[tracks]] entry.
type Track struct {
	Name     string `toml:"name"`
	Path     string `toml:"path"`
	Format   string `toml:"format"`
	Kind     string `toml:"kind"`
	Order    string `toml:"order"`
	Color    string `toml:"color"`
	Coverage bool   `toml:"coverage"`
}

// Server configures `readstack serve`.
type Server struct {
	Addr           string   `toml:"addr"`
	MaxRegionWidth int      `toml:"max_region_width"`
	RequestTimeout Duration `toml:"request_timeout"`
}

// CacheSettings selects and configures the cache backend.
type CacheSettings struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
}

// Duration is a time.Duration written as a Go duration string ("90s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Figure: Figure{
			Width:          panels.DefaultGeometry.Width,
			TrackHeight:    panels.DefaultGeometry.TrackHeight,
			CoverageHeight: panels.DefaultGeometry.CoverageHeight,
			DPI:            pipeline.DefaultDPI,
		},
		Colors: Colors(pipeline.DefaultColors),
		Server: Server{
			Addr:           DefaultAddr,
			MaxRegionWidth: pipeline.DefaultMaxRegionWidth,
			RequestTimeout: Duration{time.Minute},
		},
		Cache: CacheSettings{Backend: BackendFile},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/readstack/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config at path. An empty path means DefaultPath, and a
// missing default file yields Default(). A missing explicit path is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg, err := Parse(string(data))
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	cfg.path = path
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes TOML text on top of Default() and validates the result.
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
func Parse(text string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Path returns the file the config was loaded from, or "" for defaults.
func (c Config) Path() string { return c.path }

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Figure.Width < 0 || c.Figure.TrackHeight < 0 || c.Figure.CoverageHeight < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "figure sizes must be positive")
	}
	if c.Figure.DPI < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "figure.dpi must be positive, got %g", c.Figure.DPI)
	}
	if err := pipeline.ValidateColors(pipeline.Colors(c.Colors)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "colors")
	}

	for i := range c.Tracks {
		spec := c.Tracks[i].spec()
		if err := pipeline.ValidateTrack(&spec); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "tracks[%d]", i)
		}
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MaxRegionWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_region_width must be positive")
	}

	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = BackendFile
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

func (c *Config) resolvePaths(dir string) {
	for i, t := range c.Tracks {
		if t.Path != "" && !filepath.IsAbs(t.Path) {
			c.Tracks[i].Path = filepath.Join(dir, t.Path)
		}
	}
	if c.Cache.Dir != "" && !filepath.IsAbs(c.Cache.Dir) {
		c.Cache.Dir = filepath.Join(dir, c.Cache.Dir)
	}
}

func (t Track) spec() pipeline.TrackSpec {
	return pipeline.TrackSpec(t)
}

// PipelineOptions converts the config into pipeline options for region.
// Formats and runtime fields are left for the caller.
func (c Config) PipelineOptions(region string) pipeline.Options {
	tracks := make([]pipeline.TrackSpec, len(c.Tracks))
	for i, t := range c.Tracks {
		tracks[i] = t.spec()
	}
	return pipeline.Options{
		Region:         region,
		Tracks:         tracks,
		MaxRegionWidth: c.Server.MaxRegionWidth,
		Abutting:       c.Figure.Abutting,
		DPI:            c.Figure.DPI,
		Colors:         pipeline.Colors(c.Colors),
		Geometry: panels.Geometry{
			Width:          c.Figure.Width,
			TrackHeight:    c.Figure.TrackHeight,
			CoverageHeight: c.Figure.CoverageHeight,
		},
	}
}
