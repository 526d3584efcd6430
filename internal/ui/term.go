package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling, grounded on the teacher's
// internal/ui/term.go — the same fatih/color vars, remapped from deep
// work categories to CPM status.
var (
	// Critical-path tasks: bold red, impossible to miss.
	colorCritical = color.New(color.FgRed, color.Bold)

	// Tasks carrying float: dim/grey, lower priority to the eye.
	colorFloat = color.New(color.FgWhite, color.Faint)

	// Headers: bold.
	colorHeader = color.New(color.Bold)

	// Stats: green for positive metrics.
	colorStats = color.New(color.FgGreen)

	// Warnings and errors surfaced from the engine.
	colorWarn = color.New(color.FgYellow)

	// Muted: secondary information.
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// DisableColor disables all color output (e.g. when stdout isn't a tty).
func DisableColor() { color.NoColor = true }

// EnableColor re-enables color output.
func EnableColor() { color.NoColor = false }

func formatCritical(s string) string { return colorCritical.Sprint(s) }
func formatFloat(s string) string    { return colorFloat.Sprint(s) }
func formatHeader(s string) string   { return colorHeader.Sprint(s) }
func formatStats(s string) string    { return colorStats.Sprint(s) }
func formatWarn(s string) string     { return colorWarn.Sprint(s) }
func formatMuted(s string) string    { return colorMuted.Sprint(s) }
