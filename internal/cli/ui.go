package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives every status line. Log output goes to the CLI logger.
var stdout io.Writer = os.Stdout

// Palette. Numbers are ANSI 256-color codes.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleHighlight marks addresses and regions in status lines.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	// StyleNumber marks counts and depths.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	// StyleDim is for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue is for file paths and plain values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
)

// statusIcons prefix the one-line status messages.
var statusIcons = struct {
	success, failure, warning, info string
}{
	success: lipgloss.NewStyle().Foreground(colorGreen).Render("✓"),
	failure: lipgloss.NewStyle().Foreground(colorRed).Render("✗"),
	warning: lipgloss.NewStyle().Foreground(colorYellow).Render("!"),
	info:    lipgloss.NewStyle().Foreground(colorGray).Render("›"),
}

func status(icon, format string, args ...any) {
	fmt.Fprintln(stdout, icon+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { status(statusIcons.success, format, args...) }
func printError(format string, args ...any)   { status(statusIcons.failure, format, args...) }
func printInfo(format string, args ...any)    { status(statusIcons.info, format, args...) }

func printWarning(format string, args ...any) {
	status(statusIcons.warning, "%s", lipgloss.NewStyle().Foreground(colorYellow).Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile lists one written output file.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

// printKeyValue prints a label padded to a fixed column and its value.
func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats summarizes a layout: "12 features · 4 rows · max depth 7 · fresh".
// The depth part is left out when maxDepth is zero.
func printStats(features, rows, maxDepth int, cached bool) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d features", features)),
		StyleDim.Render(fmt.Sprintf("%d rows", rows)),
	}
	if maxDepth > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("max depth %d", maxDepth)))
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, StyleDim.Render("fresh"))
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(stdout) }
