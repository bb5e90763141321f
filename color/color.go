// Package color provides the terminal palette shared by CLI output and the explorer.
package color

import "github.com/charmbracelet/lipgloss"

// New initializes a lipgloss.Color from an ANSI index or hex value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// ANSI palette.
var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
)

// High-intensity ANSI palette.
var (
	HiRed    = New("9")
	HiGreen  = New("10")
	HiYellow = New("11")
	HiBlue   = New("12")
	HiPurple = New("13")
	HiCyan   = New("14")
)

// Accents used by the explorer.
var (
	Mauve    = New("#cba6f7")
	Lavender = New("#b4befe")
	Overlay  = New("#6c7086")
	Orange   = New("#ffb703")
	Gray     = New("#808080")
)
