// Package styles contains Lip Gloss style definitions.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Color tokens. The cyan/pink pairing is the board's signature: cyan for
// anything idle or informational, pink for anything currently sounding or
// destructive.
var (
	AccentColor = lipgloss.AdaptiveColor{Light: "#007A80", Dark: "#00F2FF"}
	AlertColor  = lipgloss.AdaptiveColor{Light: "#B8006E", Dark: "#FF0099"}

	TextPrimaryColor = lipgloss.AdaptiveColor{Light: "#1A1A2E", Dark: "#FFFFFF"}
	TextDimColor     = lipgloss.AdaptiveColor{Light: "#6B6B7B", Dark: "#9999AA"}
	TextMutedColor   = lipgloss.AdaptiveColor{Light: "#9A9AA5", Dark: "#555566"}

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#CCCCD6", Dark: "#333344"}
	BorderFocusedColor = AccentColor

	SelectionBackgroundColor = lipgloss.AdaptiveColor{Light: "#D6F7FA", Dark: "#003A40"}
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(TextDimColor)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextDimColor)

	StatusFlashStyle = lipgloss.NewStyle().
				Foreground(AccentColor).
				Bold(true)

	FooterStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	HelpKeyStyle  = lipgloss.NewStyle().Foreground(AccentColor)
	HelpDescStyle = lipgloss.NewStyle().Foreground(TextDimColor)
)

// Truncate truncates s to fit within maxWidth cells, appending an ellipsis
// when something was cut.
func Truncate(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}
	return runewidth.Truncate(s, maxWidth-1, "") + "…"
}

// Pad pads s with spaces on the right to exactly width cells, truncating
// first if needed.
func Pad(s string, width int) string {
	s = Truncate(s, width)
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}
