// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"}
	TextMutedColor   = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, help text, footers

	// Status
	StatusErrorColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Selection indicator color (used for ">" prefix in lists)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#FFFFFF"}

	// Match highlight in the filter and the session's context line
	MatchHighlightColor = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"}

	// Overlay colors
	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#8C8C8C"}

	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)
	MatchHighlightStyle     = lipgloss.NewStyle().Bold(true).Foreground(MatchHighlightColor)
	MutedStyle              = lipgloss.NewStyle().Foreground(TextMutedColor)
	ErrorStyle              = lipgloss.NewStyle().Foreground(StatusErrorColor).Bold(true)
)

// ApplyTheme overrides colors from configuration. Empty strings keep the
// defaults.
func ApplyTheme(muted, errorColor, highlight string) {
	if muted != "" {
		TextMutedColor = lipgloss.AdaptiveColor{Light: muted, Dark: muted}
		MutedStyle = MutedStyle.Foreground(TextMutedColor)
	}
	if errorColor != "" {
		StatusErrorColor = lipgloss.AdaptiveColor{Light: errorColor, Dark: errorColor}
		ErrorStyle = ErrorStyle.Foreground(StatusErrorColor)
	}
	if highlight != "" {
		MatchHighlightColor = lipgloss.AdaptiveColor{Light: highlight, Dark: highlight}
		MatchHighlightStyle = MatchHighlightStyle.Foreground(MatchHighlightColor)
	}
}
