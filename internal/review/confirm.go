package review

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Confirm asks whether to apply a change shown above the prompt.
type Confirm struct {
	title   string
	body    string
	keys    KeyMap
	styles  Styles
	decided bool
	apply   bool
}

// NewConfirm creates a Confirm prompt showing body under title.
func NewConfirm(title, body string) Confirm {
	return Confirm{
		title:  title,
		body:   body,
		keys:   DefaultKeyMap(),
		styles: DefaultStyles(),
	}
}

// Init implements tea.Model.
func (c Confirm) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (c Confirm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch {
	case key.Matches(keyMsg, c.keys.Apply):
		c.decided, c.apply = true, true
		return c, tea.Quit
	case key.Matches(keyMsg, c.keys.Discard), key.Matches(keyMsg, c.keys.Quit):
		c.decided, c.apply = true, false
		return c, tea.Quit
	}
	return c, nil
}

// View implements tea.Model.
func (c Confirm) View() string {
	if c.decided {
		return ""
	}

	var b strings.Builder
	b.WriteString(c.styles.Title.Render(c.title))
	b.WriteString("\n\n")
	b.WriteString(c.body)
	if !strings.HasSuffix(c.body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(helpLine(c.styles, c.keys.Apply, c.keys.Discard))
	b.WriteString("\n")
	return b.String()
}

// Applied reports whether the user chose to apply.
func (c Confirm) Applied() bool {
	return c.decided && c.apply
}

// RunConfirm shows the prompt on out, reads keys from in and returns the
// user's decision.
func RunConfirm(ctx context.Context, in io.Reader, out io.Writer, title, body string) (bool, error) {
	p := tea.NewProgram(NewConfirm(title, body),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	return final.(Confirm).Applied(), nil
}
