// Package review renders libraries and proposed changes in the terminal and
// asks the user to apply or discard them.
package review

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles used for review output.
type Styles struct {
	Title        lipgloss.Style
	Folder       lipgloss.Style
	Bookmark     lipgloss.Style
	URL          lipgloss.Style
	Path         lipgloss.Style
	Added        lipgloss.Style
	Removed      lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	Box          lipgloss.Style
	Help         lipgloss.Style
	Empty        lipgloss.Style
}

// DefaultStyles returns the default style configuration.
// Grayscale with a single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"}
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	warn := lipgloss.AdaptiveColor{Light: "#8A5A44", Dark: "#AF8060"}
	border := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#505050"}

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Folder: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),

		Bookmark: lipgloss.NewStyle().
			Foreground(primary),

		URL: lipgloss.NewStyle().
			Foreground(subtle),

		Path: lipgloss.NewStyle().
			Foreground(subtle),

		Added: lipgloss.NewStyle().
			Foreground(accent),

		Removed: lipgloss.NewStyle().
			Foreground(warn),

		Item: lipgloss.NewStyle().
			Foreground(primary).
			PaddingLeft(1),

		ItemSelected: lipgloss.NewStyle().
			PaddingLeft(1).
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		Box: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(border).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(subtle).
			PaddingTop(1),

		Empty: lipgloss.NewStyle().
			Foreground(subtle),
	}
}
