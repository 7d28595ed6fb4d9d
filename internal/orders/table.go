package orders

import (
	"github.com/mmcdole/labeldesk/internal/domain"
	"github.com/mmcdole/labeldesk/internal/filter"
)

// Table is the view-model of the order table.
// Every mutator recomputes visibility and the summary before returning.
type Table struct {
	orders    []domain.Order
	rows      []filter.Row
	cols      filter.Columns
	criteria  filter.Criteria
	requested domain.TrackingSet

	visible []bool
	summary filter.Summary
}

// NewTable creates a table over orders with nothing selected
func NewTable(orders []domain.Order, requested domain.TrackingSet) *Table {
	t := &Table{
		cols: filter.NewColumns(domain.ColumnLabels()),
		criteria: filter.Criteria{
			Status:     domain.DownloadAny,
			ColumnText: make(map[string]string),
		},
		requested: requested,
	}
	if t.requested == nil {
		t.requested = domain.NewTrackingSet()
	}
	t.setOrders(orders, nil)
	return t
}

func (t *Table) setOrders(orders []domain.Order, keep map[string]bool) {
	t.orders = orders
	t.rows = make([]filter.Row, len(orders))
	for i, o := range orders {
		t.rows[i] = filter.Row{
			TrackingNumber: o.TrackingNumber,
			Values:         o.Values(),
			Selected:       keep[identity(o)],
		}
	}
	t.recompute()
}

// identity distinguishes product lines across reloads
func identity(o domain.Order) string {
	return o.PostingNumber + "\x00" + o.SKU + "\x00" + o.TrackingNumber
}

// Replace swaps in a freshly loaded queue. Filters are kept and rows that
// were selected before stay selected.
func (t *Table) Replace(orders []domain.Order) {
	keep := make(map[string]bool)
	for i, r := range t.rows {
		if r.Selected {
			keep[identity(t.orders[i])] = true
		}
	}
	t.setOrders(orders, keep)
}

func (t *Table) recompute() {
	t.visible = filter.Compute(t.rows, t.cols, t.criteria, t.requested)
	t.summary = filter.Summarize(t.rows, t.visible)
}

// Len returns the number of rows, visible or not
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the column index the filters bind to
func (t *Table) Columns() filter.Columns {
	return t.cols
}

// Order returns the order behind row i
func (t *Table) Order(i int) domain.Order {
	return t.orders[i]
}

// Selected reports whether row i is checked
func (t *Table) Selected(i int) bool {
	return t.rows[i].Selected
}

// Visible reports whether row i passes the current filters
func (t *Table) Visible(i int) bool {
	return i >= 0 && i < len(t.visible) && t.visible[i]
}

// IsRequested reports whether the label of row i was already requested
func (t *Table) IsRequested(i int) bool {
	return t.requested.Contains(t.rows[i].TrackingNumber)
}

// Summary returns the counters of the last recomputation
func (t *Table) Summary() filter.Summary {
	return t.summary
}

// Criteria returns a copy of the active filters
func (t *Table) Criteria() filter.Criteria {
	c := t.criteria
	c.ColumnText = make(map[string]string, len(t.criteria.ColumnText))
	for k, v := range t.criteria.ColumnText {
		c.ColumnText[k] = v
	}
	return c
}

// ColumnFilter returns the text filter bound to a column label
func (t *Table) ColumnFilter(label string) string {
	return t.criteria.ColumnText[label]
}

// SetColumnFilter sets the substring filter of one column.
// An empty value removes the constraint.
func (t *Table) SetColumnFilter(label, value string) {
	if value == "" {
		delete(t.criteria.ColumnText, label)
	} else {
		t.criteria.ColumnText[label] = value
	}
	t.recompute()
}

// ClearFilters resets every filter, keeping the selection
func (t *Table) ClearFilters() {
	t.criteria = filter.Criteria{
		Status:     domain.DownloadAny,
		ColumnText: make(map[string]string),
	}
	t.recompute()
}

// SetDownloadStatus sets the download status filter
func (t *Table) SetDownloadStatus(s domain.DownloadStatus) {
	t.criteria.Status = s
	t.recompute()
}

// SetOnlyDuplicates toggles the duplicate tracking number filter
func (t *Table) SetOnlyDuplicates(on bool) {
	t.criteria.OnlyDuplicates = on
	t.recompute()
}

// SetRequested replaces the requested set, typically after a label request
func (t *Table) SetRequested(requested domain.TrackingSet) {
	if requested == nil {
		requested = domain.NewTrackingSet()
	}
	t.requested = requested
	t.recompute()
}

// Toggle flips the selection of row i. Hidden rows can be toggled too;
// they just do not count until they are visible again.
func (t *Table) Toggle(i int) {
	if i < 0 || i >= len(t.rows) {
		return
	}
	t.rows[i].Selected = !t.rows[i].Selected
	t.recompute()
}

// SetAllVisible checks or unchecks every visible row. Hidden rows keep their state.
func (t *Table) SetAllVisible(checked bool) {
	for i := range t.rows {
		if t.visible[i] {
			t.rows[i].Selected = checked
		}
	}
	t.recompute()
}

// ToggleAllVisible applies the select-all control: a fully checked visible
// set is cleared, anything else is checked.
func (t *Table) ToggleAllVisible() {
	t.SetAllVisible(t.summary.SelectAll != filter.SelectAll)
}

// VisibleIndices returns the indexes of visible rows in table order
func (t *Table) VisibleIndices() []int {
	out := make([]int, 0, t.summary.Visible)
	for i, v := range t.visible {
		if v {
			out = append(out, i)
		}
	}
	return out
}

// VisibleOrders returns the orders of visible rows in table order
func (t *Table) VisibleOrders() []domain.Order {
	out := make([]domain.Order, 0, t.summary.Visible)
	for i, v := range t.visible {
		if v {
			out = append(out, t.orders[i])
		}
	}
	return out
}

// SelectedTrackingNumbers returns the tracking numbers to submit: visible,
// selected, non-empty, in table order and without repeats.
func (t *Table) SelectedTrackingNumbers() []string {
	seen := make(map[string]bool)
	var out []string
	for i, r := range t.rows {
		if !t.visible[i] || !r.Selected || r.TrackingNumber == "" || seen[r.TrackingNumber] {
			continue
		}
		seen[r.TrackingNumber] = true
		out = append(out, r.TrackingNumber)
	}
	return out
}
