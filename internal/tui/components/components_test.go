package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFilterBar_TypingAndCycling(t *testing.T) {
	bar := NewFilterBar([]string{"Posting", "Product", "Tracking"})

	_, _, changed := bar.Update(runes("x"))
	assert.False(t, changed, "inactive bar ignores input")

	bar.Activate()
	require.True(t, bar.IsActive())
	assert.Equal(t, "Posting", bar.FocusedLabel())

	bar, _, changed = bar.Update(runes("p"))
	assert.True(t, changed)
	assert.Equal(t, "p", bar.Value("Posting"))

	bar, _, _ = bar.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "Tracking", bar.FocusedLabel())

	bar, _, _ = bar.Update(tea.KeyMsg{Type: tea.KeyTab})
	bar, _, _ = bar.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "Product", bar.FocusedLabel())

	bar, _, changed = bar.Update(runes("m"))
	assert.True(t, changed)
	assert.True(t, bar.HasValues())

	bar, _, changed = bar.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	assert.True(t, changed)
	assert.Empty(t, bar.Value("Product"))

	bar, _, _ = bar.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, bar.IsActive())
	assert.Equal(t, "p", bar.Value("Posting"))

	bar.Reset()
	assert.False(t, bar.HasValues())
}

func TestFilterBar_ViewKeepsFocusVisible(t *testing.T) {
	bar := NewFilterBar([]string{"Shop", "Order Date", "Posting", "SKU", "Product", "Qty", "Tracking"})
	bar.Activate()
	for i := 0; i < 6; i++ {
		bar, _, _ = bar.Update(tea.KeyMsg{Type: tea.KeyTab})
	}

	view := bar.View(40)
	assert.Contains(t, view, "Tracking:")
	assert.NotContains(t, view, "Shop:")
}

func TestJumpSearch(t *testing.T) {
	j := NewJumpSearch()
	j.SetSize(120, 40)
	j.Show([]JumpCandidate{
		{Row: 4, Text: "TRK0001  P-1  Mug"},
		{Row: 7, Text: "TRK0002  P-2  Plate"},
	})
	require.True(t, j.IsVisible())

	j, _, submitted := j.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, submitted, "nothing to choose without a query")

	for _, r := range "plate" {
		j, _, _ = j.Update(runes(string(r)))
	}
	require.Equal(t, 1, j.ResultCount())

	j, _, submitted = j.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, submitted)
	row, ok := j.Selected()
	assert.True(t, ok)
	assert.Equal(t, 7, row)
	assert.Contains(t, j.View(), "Jump to order")

	j, _, _ = j.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, j.IsVisible())
}

func TestInputModal(t *testing.T) {
	m := NewInputModal()
	m.Show("Export", "", "/tmp/orders.xlsx")

	m, _, submitted := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, submitted)
	assert.Equal(t, "/tmp/orders.xlsx", m.Value())

	m, _, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.IsVisible())
}
