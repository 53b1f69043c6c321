package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// regionRegex matches "chrom:start-end" with optional thousands separators.
var regionRegex = regexp.MustCompile(`^[^\s:]+:[0-9,]+-[0-9,]+$`)

// ValidateRegionText checks that text looks like "chrom:start-end".
// It does not check the numeric bounds; see genome.ParseRegion.
func ValidateRegionText(text string) error {
	if text == "" {
		return New(ErrCodeInvalidRegion, "region cannot be empty")
	}
	if len(text) > 256 {
		return New(ErrCodeInvalidRegion, "region too long (max 256 characters)")
	}
	if !regionRegex.MatchString(text) {
		return New(ErrCodeInvalidRegion, "region %q must look like chrom:start-end", text)
	}
	return nil
}

// ValidatePath validates an input file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// colorRegex matches #rgb and #rrggbb hex colors.
var colorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// namedColors are the color names accepted besides hex notation.
var namedColors = map[string]bool{
	"black": true, "white": true, "grey": true, "gray": true, "none": true,
}

// ValidateColor checks that s is a hex color or one of the supported names.
func ValidateColor(s string) error {
	if colorRegex.MatchString(s) || namedColors[strings.ToLower(s)] {
		return nil
	}
	return New(ErrCodeInvalidConfig, "invalid color %q (use #rrggbb, #rgb or a basic name)", s)
}
