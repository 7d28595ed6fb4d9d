package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/labeldesk/internal/tui/styles"
)

// JumpCandidate is a table row offered by the jump search
type JumpCandidate struct {
	Row  int    // Table row index
	Text string // Searchable text, e.g. tracking number and posting
}

// jumpIndex implements fuzzy.Source over lowercase candidate texts
type jumpIndex struct {
	lower []string
}

func (idx jumpIndex) String(i int) string { return idx.lower[i] }
func (idx jumpIndex) Len() int            { return len(idx.lower) }

// JumpSearch is the fuzzy jump-to-row modal
type JumpSearch struct {
	input      textinput.Model
	candidates []JumpCandidate
	index      jumpIndex
	results    fuzzy.Matches
	cursor     int
	visible    bool
	width      int
	height     int
}

// NewJumpSearch creates a new jump search
func NewJumpSearch() JumpSearch {
	ti := textinput.New()
	ti.Placeholder = "Tracking number, posting or product..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "> "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return JumpSearch{input: ti}
}

// Show opens the search over the given candidates
func (j *JumpSearch) Show(candidates []JumpCandidate) tea.Cmd {
	j.visible = true
	j.candidates = candidates
	j.index = jumpIndex{lower: make([]string, len(candidates))}
	for i, c := range candidates {
		j.index.lower[i] = strings.ToLower(c.Text)
	}
	j.results = nil
	j.cursor = 0
	j.input.SetValue("")
	return j.input.Focus()
}

// Hide closes the search
func (j *JumpSearch) Hide() {
	j.visible = false
	j.input.Blur()
}

// IsVisible returns true if the search is open
func (j JumpSearch) IsVisible() bool {
	return j.visible
}

// SetSize updates the component dimensions
func (j *JumpSearch) SetSize(width, height int) {
	j.width = width
	j.height = height
	j.input.Width = max(20, min(width*2/3, 80)-10)
}

// Selected returns the table row of the highlighted result
func (j JumpSearch) Selected() (int, bool) {
	if j.cursor >= len(j.results) {
		return 0, false
	}
	return j.candidates[j.results[j.cursor].Index].Row, true
}

// ResultCount returns the number of matches
func (j JumpSearch) ResultCount() int {
	return len(j.results)
}

func (j *JumpSearch) search() {
	q := strings.ToLower(strings.TrimSpace(j.input.Value()))
	j.cursor = 0
	if q == "" {
		j.results = nil
		return
	}
	j.results = fuzzy.FindFrom(q, j.index)
}

// Update handles messages. submitted is true when a result was chosen.
func (j JumpSearch) Update(msg tea.Msg) (search JumpSearch, cmd tea.Cmd, submitted bool) {
	if !j.visible {
		return j, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, JumpKeys.Escape):
			j.Hide()
			return j, nil, false
		case key.Matches(keyMsg, JumpKeys.Enter):
			return j, nil, len(j.results) > 0
		case key.Matches(keyMsg, JumpKeys.Down):
			if j.cursor < len(j.results)-1 {
				j.cursor++
			}
			return j, nil, false
		case key.Matches(keyMsg, JumpKeys.Up):
			if j.cursor > 0 {
				j.cursor--
			}
			return j, nil, false
		}
	}

	before := j.input.Value()
	j.input, cmd = j.input.Update(msg)
	if j.input.Value() != before {
		j.search()
	}
	return j, cmd, false
}

// View renders the modal
func (j JumpSearch) View() string {
	if !j.visible {
		return ""
	}

	modalWidth := max(40, min(j.width*2/3, 80))
	const maxResults = 10

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render("Jump to order"))
	b.WriteString("\n")
	b.WriteString(j.input.View())
	b.WriteString("\n\n")

	switch {
	case len(j.results) == 0 && j.input.Value() != "":
		b.WriteString(styles.DimStyle.Render("No matches found"))
	case len(j.results) > 0:
		shown := min(len(j.results), maxResults)
		for i := 0; i < shown; i++ {
			m := j.results[i]
			text := styles.Truncate(j.candidates[m.Index].Text, modalWidth-6)
			b.WriteString(highlightMatches(text, m.MatchedIndexes, i == j.cursor))
			b.WriteString("\n")
		}
		if len(j.results) > maxResults {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("... and %d more", len(j.results)-maxResults)))
		}
	}

	content := lipgloss.NewStyle().Width(modalWidth - 4).Render(b.String())
	return styles.ModalStyle.Width(modalWidth).Render(content)
}

// highlightMatches renders text with matched byte offsets emphasised
func highlightMatches(text string, matched []int, selected bool) string {
	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}

	base := styles.NormalItemStyle
	hl := styles.MatchHighlightStyle
	if selected {
		base = styles.SelectedItemStyle
		hl = styles.MatchHighlightStyle.Background(styles.SlateLight)
	}

	var out strings.Builder
	for i, r := range text {
		if set[i] {
			out.WriteString(hl.Render(string(r)))
		} else {
			out.WriteString(base.Render(string(r)))
		}
	}
	return out.String()
}
