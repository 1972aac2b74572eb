package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Use these instead of inline lipgloss.Color literals.
var (
	// ColorCyan is used for identifiable nouns: render sets, layers, objects.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for the "done" outcome.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "skipped" outcome.
	ColorYellow = lipgloss.Color("220")

	// ColorBoldRed is used for the "failed" outcome (matches ERROR level).
	ColorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is used for the completion checkmark.
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")

	// ColorBlue is used for table headers.
	ColorBlue = lipgloss.Color("12")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns.
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleDim styles structural chrome.
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Outcome status strings shown in bake summaries.
const (
	StatusDone     = "done"
	StatusPartial  = "partial"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// StatusStyle returns the lipgloss style for a given outcome status.
// Unknown statuses return an unstyled default.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusDone:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusPartial, StatusSkipped:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusDisabled:
		return lipgloss.NewStyle().Faint(true)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minSetColumnWidth keeps status words aligned across lines.
const minSetColumnWidth = 40

// FormatSetLine renders a render set (and optional layer) with a right-aligned,
// color-coded status suffix.
//
// Format: s:<set>[/<layer>]  <status>
func FormatSetLine(set, layer, status string) string {
	path := set
	if layer != "" {
		path = fmt.Sprintf("%s/%s", set, layer)
	}

	padding := minSetColumnWidth - len(path)
	if padding < 2 {
		padding = 2
	}

	return StyleDim.Render("s:") +
		StyleNoun.Render(path) +
		strings.Repeat(" ", padding) +
		StatusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}
