package ui

import "fmt"

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

// Bold wraps s in bold
func Bold(s string) string {
	return ColorBold + s + ColorReset
}

// Success renders s in green
func Success(s string) string {
	return ColorGreen + s + ColorReset
}

// Info renders s dim yellow
func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

// Error renders s in red
func Error(s string) string {
	return ColorRed + s + ColorReset
}

// Dim renders s faint
func Dim(s string) string {
	return ColorDim + s + ColorReset
}

// Field renders a left-aligned label of width followed by value
func Field(label string, width int, value string) string {
	return fmt.Sprintf("%s%-*s%s %s", ColorCyan, width, label, ColorReset, value)
}
