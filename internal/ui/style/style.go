// Package style holds the colors and icons shared by log output, the progress view
// and build summaries.
package style

import "github.com/charmbracelet/lipgloss"

// Status colors.
var (
	// Green marks optimized assets and finished work.
	Green = lipgloss.Color("#22A06B")
	// Slate is used for sizes, cached assets and secondary text.
	Slate = lipgloss.Color("#667085")
	// Red marks failures.
	Red = lipgloss.Color("#D93025")
	// Yellow marks warnings and running work.
	Yellow = lipgloss.Color("#F59E0B")
)

// Status icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Circle  = "○"
)
