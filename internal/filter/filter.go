// Package filter computes which order rows are visible under the active filters
// and the selection state derived from that visible set.
//
// Visibility is recomputed from scratch on every call. Nothing here keeps state
// between calls, so callers can run it after any change without bookkeeping.
package filter

import (
	"strings"

	"github.com/mmcdole/labeldesk/internal/domain"
)

// Row is the filterable view of one table row
type Row struct {
	TrackingNumber string   // May be empty
	Values         []string // Cell values in column order
	Selected       bool
}

// Criteria holds the independent filter settings
type Criteria struct {
	Status         domain.DownloadStatus
	ColumnText     map[string]string // Column label -> substring; empty value = no constraint
	OnlyDuplicates bool              // Keep only tracking numbers seen more than once
}

// Columns maps canonical column labels to cell indexes.
// Build it once per table; lookups are constant time.
type Columns struct {
	labels []string
	index  map[string]int
}

// NewColumns builds the label index. On duplicate labels the first one wins.
func NewColumns(labels []string) Columns {
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		l = strings.TrimSpace(l)
		if _, dup := idx[l]; !dup {
			idx[l] = i
		}
	}
	return Columns{labels: labels, index: idx}
}

// Index returns the cell index bound to label
func (c Columns) Index(label string) (int, bool) {
	i, ok := c.index[strings.TrimSpace(label)]
	return i, ok
}

// Labels returns the header labels in order
func (c Columns) Labels() []string {
	return c.labels
}

// Len returns the number of columns
func (c Columns) Len() int {
	return len(c.labels)
}

type textRule struct {
	col    int
	needle string
}

// compileText resolves the column filters to indexes.
// Filters bound to unknown columns impose no constraint.
func compileText(cols Columns, text map[string]string) []textRule {
	var rules []textRule
	for label, v := range text {
		if v == "" {
			continue
		}
		i, ok := cols.Index(label)
		if !ok {
			continue
		}
		rules = append(rules, textRule{col: i, needle: strings.ToLower(v)})
	}
	return rules
}

// Compute returns the visibility of every row, index-aligned with rows.
//
// Rules are applied per row in order, stopping at the first failure:
//  1. download status against the requested set
//  2. case-insensitive substring match for every non-empty column filter
//
// Rows passing both are candidates. With OnlyDuplicates set, a candidate stays
// visible only if its tracking number occurs more than once among candidates.
// Rows without a tracking number are never in the requested set and never duplicates.
func Compute(rows []Row, cols Columns, c Criteria, requested domain.TrackingSet) []bool {
	visible := make([]bool, len(rows))
	rules := compileText(cols, c.ColumnText)

	for i, r := range rows {
		visible[i] = passesStatus(r, c.Status, requested) && passesText(r, rules)
	}

	if !c.OnlyDuplicates {
		return visible
	}

	counts := make(map[string]int)
	for i, r := range rows {
		if visible[i] && r.TrackingNumber != "" {
			counts[r.TrackingNumber]++
		}
	}
	for i, r := range rows {
		if visible[i] && counts[r.TrackingNumber] < 2 {
			visible[i] = false
		}
	}
	return visible
}

func passesStatus(r Row, status domain.DownloadStatus, requested domain.TrackingSet) bool {
	switch status {
	case domain.DownloadDownloaded:
		return requested.Contains(r.TrackingNumber)
	case domain.DownloadNotDownloaded:
		return !requested.Contains(r.TrackingNumber)
	default:
		return true
	}
}

func passesText(r Row, rules []textRule) bool {
	for _, rule := range rules {
		if rule.col >= len(r.Values) {
			continue
		}
		if !strings.Contains(strings.ToLower(r.Values[rule.col]), rule.needle) {
			return false
		}
	}
	return true
}
