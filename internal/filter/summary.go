package filter

import "fmt"

// SelectAllState is the tri-state of the select-all control
type SelectAllState int

const (
	SelectNone    SelectAllState = iota // Unchecked
	SelectAll                           // Checked
	SelectPartial                       // Indeterminate
)

// String returns the checkbox glyph for the state
func (s SelectAllState) String() string {
	switch s {
	case SelectAll:
		return "[x]"
	case SelectPartial:
		return "[-]"
	default:
		return "[ ]"
	}
}

// Summary is the UI state derived from a visibility computation
type Summary struct {
	Selected      int // Selected rows among the visible ones
	Visible       int
	SelectAll     SelectAllState
	SubmitEnabled bool
}

// Summarize derives counters, the select-all state and submit enablement.
// Hidden rows never count, whatever their selection flag.
func Summarize(rows []Row, visible []bool) Summary {
	var s Summary
	for i, r := range rows {
		if i >= len(visible) || !visible[i] {
			continue
		}
		s.Visible++
		if r.Selected {
			s.Selected++
		}
	}

	switch {
	case s.Visible == 0, s.Selected == 0:
		s.SelectAll = SelectNone
	case s.Selected == s.Visible:
		s.SelectAll = SelectAll
	default:
		s.SelectAll = SelectPartial
	}

	s.SubmitEnabled = s.Selected > 0
	return s
}

// Counter renders the selection counter, empty when nothing is visible
func (s Summary) Counter() string {
	if s.Visible == 0 {
		return ""
	}
	return fmt.Sprintf("Selected: %d of %d", s.Selected, s.Visible)
}
