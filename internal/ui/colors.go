// Package ui holds ANSI styling for terminal output.
package ui

const (
	ColorReset = "\033[0m"
	ColorDim   = "\033[2m"

	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorRed    = "\033[31m"
)

// Success styles a confirmation message.
func Success(s string) string {
	return ColorGreen + s + ColorReset
}

// Info styles an advisory message.
func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

// Error styles a failure message.
func Error(s string) string {
	return ColorRed + s + ColorReset
}
