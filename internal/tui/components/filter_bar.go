package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/labeldesk/internal/tui/styles"
)

const filterInputWidth = 12

// FilterBar holds one text input per table column
type FilterBar struct {
	labels []string
	inputs []textinput.Model
	focus  int
	active bool
}

// NewFilterBar creates inputs for the given column labels
func NewFilterBar(labels []string) FilterBar {
	inputs := make([]textinput.Model, len(labels))
	for i := range labels {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 64
		ti.Width = filterInputWidth
		ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
		ti.PlaceholderStyle = styles.DimStyle
		inputs[i] = ti
	}
	return FilterBar{labels: labels, inputs: inputs}
}

// Activate focuses the current input
func (f *FilterBar) Activate() tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.active = true
	return f.inputs[f.focus].Focus()
}

// Deactivate returns focus to the table. Values are kept.
func (f *FilterBar) Deactivate() {
	f.active = false
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

// IsActive reports whether keystrokes go to the filter bar
func (f FilterBar) IsActive() bool {
	return f.active
}

// FocusedLabel returns the column label of the focused input
func (f FilterBar) FocusedLabel() string {
	if len(f.labels) == 0 {
		return ""
	}
	return f.labels[f.focus]
}

// Value returns the filter text of a column
func (f FilterBar) Value(label string) string {
	for i, l := range f.labels {
		if l == label {
			return f.inputs[i].Value()
		}
	}
	return ""
}

// HasValues reports whether any column has filter text
func (f FilterBar) HasValues() bool {
	for _, in := range f.inputs {
		if in.Value() != "" {
			return true
		}
	}
	return false
}

// Reset clears every input
func (f *FilterBar) Reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
}

func (f *FilterBar) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

// Update handles input while active. changed is true when the focused
// column's text differs after the message.
func (f FilterBar) Update(msg tea.Msg) (bar FilterBar, cmd tea.Cmd, changed bool) {
	if !f.active || len(f.inputs) == 0 {
		return f, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, FilterBarKeys.Leave):
			f.Deactivate()
			return f, nil, false
		case key.Matches(keyMsg, FilterBarKeys.Next):
			return f, f.move(1), false
		case key.Matches(keyMsg, FilterBarKeys.Prev):
			return f, f.move(-1), false
		case key.Matches(keyMsg, FilterBarKeys.Clear):
			changed = f.inputs[f.focus].Value() != ""
			f.inputs[f.focus].SetValue("")
			return f, nil, changed
		}
	}

	before := f.inputs[f.focus].Value()
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, f.inputs[f.focus].Value() != before
}

// View renders as many column inputs as fit in width, keeping the focused one visible
func (f FilterBar) View(width int) string {
	if len(f.inputs) == 0 {
		return ""
	}

	segments := make([]string, len(f.inputs))
	for i, label := range f.labels {
		labelStyle := styles.FilterLabelStyle
		if f.active && i == f.focus {
			labelStyle = styles.FilterActiveLabelStyle
		}
		var value string
		if f.active && i == f.focus {
			value = f.inputs[i].View()
		} else {
			value = styles.Pad(styles.Truncate(f.inputs[i].Value(), filterInputWidth), filterInputWidth)
			if f.inputs[i].Value() == "" {
				value = styles.DimStyle.Render(styles.Pad("·", filterInputWidth))
			}
		}
		segments[i] = labelStyle.Render(label+":") + " " + value
	}

	// Slide the window until the focused segment fits
	start := 0
	for start < f.focus {
		if lipgloss.Width(strings.Join(segments[start:f.focus+1], "  ")) <= width {
			break
		}
		start++
	}
	end := start
	for end < len(segments) && lipgloss.Width(strings.Join(segments[start:end+1], "  ")) <= width {
		end++
	}
	if end == start {
		end = start + 1
	}
	return strings.Join(segments[start:end], "  ")
}
