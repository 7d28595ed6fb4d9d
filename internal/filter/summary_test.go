package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	sel := func(b bool) Row { return Row{Selected: b} }

	tests := []struct {
		name    string
		rows    []Row
		visible []bool
		want    Summary
	}{
		{
			name:    "nothing visible",
			rows:    []Row{sel(true)},
			visible: []bool{false},
			want:    Summary{SelectAll: SelectNone},
		},
		{
			name:    "none selected",
			rows:    []Row{sel(false), sel(false)},
			visible: []bool{true, true},
			want:    Summary{Visible: 2, SelectAll: SelectNone},
		},
		{
			name:    "all visible selected",
			rows:    []Row{sel(true), sel(true), sel(false)},
			visible: []bool{true, true, false},
			want:    Summary{Selected: 2, Visible: 2, SelectAll: SelectAll, SubmitEnabled: true},
		},
		{
			name:    "partial",
			rows:    []Row{sel(true), sel(false)},
			visible: []bool{true, true},
			want:    Summary{Selected: 1, Visible: 2, SelectAll: SelectPartial, SubmitEnabled: true},
		},
		{
			name:    "hidden selection does not enable submit",
			rows:    []Row{sel(false), sel(true)},
			visible: []bool{true, false},
			want:    Summary{Visible: 1, SelectAll: SelectNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.rows, tt.visible)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.Selected, 0)
			assert.LessOrEqual(t, got.Selected, got.Visible)
		})
	}
}

func TestSummary_Counter(t *testing.T) {
	assert.Equal(t, "", Summary{}.Counter())
	assert.Equal(t, "Selected: 1 of 3", Summary{Selected: 1, Visible: 3}.Counter())
}

func TestSelectAllState_String(t *testing.T) {
	assert.Equal(t, "[ ]", SelectNone.String())
	assert.Equal(t, "[x]", SelectAll.String())
	assert.Equal(t, "[-]", SelectPartial.String())
}
