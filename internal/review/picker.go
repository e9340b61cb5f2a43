package review

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/bmsort/internal/model"
	"github.com/nikbrunner/bmsort/internal/search"
)

// Picker selects one bookmark from search results.
type Picker struct {
	results   []search.SearchResult
	query     string
	cursor    int
	selected  bool
	cancelled bool
	keys      KeyMap
	styles    Styles

	// Terminal size, zero until the first WindowSizeMsg.
	width  int
	height int
}

// NewPicker creates a Picker over the given search results.
func NewPicker(results []search.SearchResult, query string) Picker {
	return Picker{
		results: results,
		query:   query,
		keys:    DefaultKeyMap(),
		styles:  DefaultStyles(),
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		p.width, p.height = size.Width, size.Height
		return p, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch {
	case key.Matches(keyMsg, p.keys.Quit):
		p.cancelled = true
		return p, tea.Quit
	case key.Matches(keyMsg, p.keys.Select):
		p.selected = len(p.results) > 0
		return p, tea.Quit
	case key.Matches(keyMsg, p.keys.Down):
		if p.cursor < len(p.results)-1 {
			p.cursor++
		}
	case key.Matches(keyMsg, p.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	}
	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(p.styles.Title.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	// title, blank line and help take four rows; each result takes two
	rows := 0
	if p.height > 0 {
		rows = max(1, (p.height-4)/2)
	}
	start, end := window(p.cursor, len(p.results), rows)
	for i := start; i < end; i++ {
		r := p.results[i]
		style := p.styles.Item
		if i == p.cursor {
			style = p.styles.ItemSelected
		}
		line := r.Bookmark.Title
		if r.FolderPath != "" {
			line += "  " + r.FolderPath
		}
		b.WriteString(style.Render(truncate(line, p.width-2)))
		b.WriteString("\n")
		b.WriteString("   " + p.styles.URL.Render(truncate(r.Bookmark.URL, p.width-3)))
		b.WriteString("\n")
	}

	b.WriteString(helpLine(p.styles, p.keys.Down, p.keys.Up, p.keys.Select, p.keys.Quit))
	return b.String()
}

// Selected returns the chosen bookmark, or nil if the picker was cancelled.
func (p Picker) Selected() *model.Bookmark {
	if p.cancelled || !p.selected || p.cursor >= len(p.results) {
		return nil
	}
	return p.results[p.cursor].Bookmark
}

// RunPicker shows the picker on out, reads keys from in and returns the
// chosen bookmark.
func RunPicker(ctx context.Context, in io.Reader, out io.Writer, results []search.SearchResult, query string) (*model.Bookmark, error) {
	p := tea.NewProgram(NewPicker(results, query),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(Picker).Selected(), nil
}
