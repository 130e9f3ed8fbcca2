// Package styles provides colour themes and styling for terminal output.
// The CLI renderer and the TUI share the same styles.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is used for depth headers.
	Secondary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Link is the colour of URLs.
	Link lipgloss.Color

	// Mark is the background of matched text.
	Mark lipgloss.Color

	// Success indicates positive outcomes.
	Success lipgloss.Color

	// Warning indicates caution.
	Warning lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Link:       lipgloss.Color("#89B4FA"), // Blue
		Mark:       lipgloss.Color("#F9E2AF"), // Yellow
		Success:    lipgloss.Color("#A6E3A1"), // Green
		Warning:    lipgloss.Color("#FAB387"), // Peach
		Error:      lipgloss.Color("#F38BA8"), // Red
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title is used for page titles and view headers.
	Title lipgloss.Style

	// Depth is the header above each depth group.
	Depth lipgloss.Style

	// Normal is regular text such as match snippets.
	Normal lipgloss.Style

	// Muted is for labels and secondary text.
	Muted lipgloss.Style

	// URL renders page and link targets.
	URL lipgloss.Style

	// Highlight renders the matched part of a snippet.
	Highlight lipgloss.Style

	// Selected is the highlighted list item.
	Selected lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	// InputField frames text inputs.
	InputField lipgloss.Style

	// StatusBar is the bottom line of the TUI.
	StatusBar lipgloss.Style

	// Help is key binding help text.
	Help lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Depth: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		URL: lipgloss.NewStyle().
			Underline(true).
			Foreground(theme.Link),

		Highlight: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1E1E2E")).
			Background(theme.Mark),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Primary),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(lipgloss.Color("#181825")).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// PlainStyles returns styles that render text unchanged.
// Used for non-terminal output and in tests.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		theme:      DefaultTheme(),
		Title:      plain,
		Depth:      plain,
		Normal:     plain,
		Muted:      plain,
		URL:        plain,
		Highlight:  plain,
		Selected:   plain,
		Error:      plain,
		Success:    plain,
		Warning:    plain,
		InputField: plain,
		StatusBar:  plain,
		Help:       plain,
	}
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
