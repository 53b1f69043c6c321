package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/readstack/pkg/errors"
)

// Color is an opaque RGB color. None marks an absent paint (no fill or no
// outline).
type Color struct {
	R, G, B uint8
	None    bool
}

// Named colors accepted by ParseColor besides hex notation.
var namedColors = map[string]Color{
	"black": {0, 0, 0, false},
	"white": {255, 255, 255, false},
	"grey":  {128, 128, 128, false},
	"gray":  {128, 128, 128, false},
	"none":  {None: true},
}

// Default palette.
var (
	Grey   = namedColors["grey"]
	Black  = namedColors["black"]
	Orange = MustParseColor("#e6572b")
	Blue   = MustParseColor("#585578")
	None   = Color{None: true}
)

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// ParseColor parses "#rrggbb", "#rgb" or a basic color name.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if err := errors.ValidateColor(s); err != nil {
		return Color{}, err
	}
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}

	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "color %q", s)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// MustParseColor is like ParseColor but panics on error.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns "#rrggbb", or "none".
func (c Color) Hex() string {
	if c.None {
		return "none"
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String implements fmt.Stringer.
func (c Color) String() string { return c.Hex() }

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler so colors can be read
// directly from TOML and JSON.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
