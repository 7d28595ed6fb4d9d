package tui

import (
	"github.com/mmcdole/labeldesk/internal/labels"
	"github.com/mmcdole/labeldesk/internal/orders"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// OrdersLoadedMsg signals that the order queue has been loaded
type OrdersLoadedMsg struct {
	Result orders.LoadResult
}

// LabelsRequestedMsg signals a successful label request
type LabelsRequestedMsg struct {
	Outcome labels.Outcome
	Count   int
}

// LabelRequestFailedMsg signals a failed label request
type LabelRequestFailedMsg struct {
	Err  error
	Path string // Saved file, set when the labels were saved but not marked
}

// LabelsClearedMsg signals that the requested label marks were forgotten
type LabelsClearedMsg struct{}

// ExportedMsg signals that visible rows were written to a workbook
type ExportedMsg struct {
	Path  string
	Count int
}

// CopiedMsg signals that tracking numbers were copied to the clipboard
type CopiedMsg struct {
	Count int
}

// FileOpenedMsg signals that a saved label file was handed to a viewer
type FileOpenedMsg struct {
	Path string
}

// ClearStatusMsg clears the status line if it is still showing message Seq
type ClearStatusMsg struct {
	Seq int
}
