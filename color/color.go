// Package color names the terminal colors used by scrubdeck.
package color

import "github.com/charmbracelet/lipgloss"

// New wraps a color value: an ANSI index or a hex string.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

var (
	Red      = New("1")
	Green    = New("2")
	Yellow   = New("3")
	Blue     = New("4")
	Purple   = New("5")
	Cyan     = New("6")
	HiPurple = New("13")
	Orange   = New("#ffb703")
)

// Player surface colors.
var (
	Played   = New("#cba6f7")
	Buffered = New("#6c7086")
	Paused   = New("#f9e2af")
	Stalled  = New("#fab387")
	Healthy  = New("#a6e3a1")
	Broken   = New("#f38ba8")
)
