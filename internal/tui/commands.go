package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/labeldesk/internal/domain"
	"github.com/mmcdole/labeldesk/internal/labels"
	"github.com/mmcdole/labeldesk/internal/orders"
)

// ExportFunc writes orders to a workbook at path
type ExportFunc func(path string, orders []domain.Order) error

// LoadOrdersCmd loads the order queue from all sources
func LoadOrdersCmd(svc *orders.Service) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.Load(context.Background())
		if err != nil {
			return ErrMsg{Err: err, Context: "loading orders"}
		}
		return OrdersLoadedMsg{Result: res}
	}
}

// RequestLabelsCmd asks the server for labels of the given tracking numbers
func RequestLabelsCmd(coord *labels.Coordinator, numbers []string) tea.Cmd {
	return func() tea.Msg {
		out, err := coord.Request(context.Background(), numbers)
		if err != nil {
			return LabelRequestFailedMsg{Err: err, Path: out.Path}
		}
		return LabelsRequestedMsg{Outcome: out, Count: len(numbers)}
	}
}

// ClearLabelsCmd forgets every requested label mark
func ClearLabelsCmd(reg *labels.Registry) tea.Cmd {
	return func() tea.Msg {
		if err := reg.Clear(); err != nil {
			return ErrMsg{Err: err, Context: "clearing requested labels"}
		}
		return LabelsClearedMsg{}
	}
}

// ExportCmd writes orders to a workbook
func ExportCmd(export ExportFunc, path string, rows []domain.Order) tea.Cmd {
	return func() tea.Msg {
		if err := export(path, rows); err != nil {
			return ErrMsg{Err: err, Context: "export"}
		}
		return ExportedMsg{Path: path, Count: len(rows)}
	}
}

// CopyCmd copies tracking numbers to the clipboard, one per line
func CopyCmd(clip domain.Clipboard, numbers []string) tea.Cmd {
	return func() tea.Msg {
		if clip == nil {
			return ErrMsg{Err: fmt.Errorf("clipboard is not available"), Context: "copy"}
		}
		if err := clip.WriteText(strings.Join(numbers, "\n")); err != nil {
			return ErrMsg{Err: err, Context: "copy"}
		}
		return CopiedMsg{Count: len(numbers)}
	}
}

// OpenFileCmd shows a saved label file in the viewer
func OpenFileCmd(opener domain.FileOpener, path string) tea.Cmd {
	return func() tea.Msg {
		if opener == nil {
			return ErrMsg{Err: fmt.Errorf("no viewer is configured"), Context: "open"}
		}
		if err := opener.Open(path); err != nil {
			return ErrMsg{Err: err, Context: "open"}
		}
		return FileOpenedMsg{Path: path}
	}
}

// ClearStatusCmd returns a command that clears status message seq after a delay
func ClearStatusCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}
