package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/labeldesk/internal/adapter/sheet"
	"github.com/mmcdole/labeldesk/internal/domain"
	"github.com/mmcdole/labeldesk/internal/labels"
	"github.com/mmcdole/labeldesk/internal/orders"
	"github.com/mmcdole/labeldesk/internal/tui/components"
	"github.com/mmcdole/labeldesk/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateFiltering
	StateJump
	StateExport
	StateHelp
	StateConfirmClear
)

const (
	// ChromeHeight is the title line, the filter line and the footer
	ChromeHeight = 3
	// tableChrome is the table header and its separator
	tableChrome = 2

	defaultMessageTimeout = 7 * time.Second
)

// Options wires the services the UI drives
type Options struct {
	Orders      *orders.Service
	Registry    *labels.Registry
	Coordinator *labels.Coordinator
	Clipboard   domain.Clipboard
	Opener      domain.FileOpener
	Export      ExportFunc // Defaults to sheet.Export
	ExportDir   string

	OpenAfterDownload bool
	MessageTimeout    time.Duration
	DefaultStatus     domain.DownloadStatus
	Logger            *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	opts   Options
	logger *slog.Logger
	now    func() time.Time

	// Data
	Table   *orders.Table
	Sources []string

	// Cursor is a position among visible rows; Offset is the first one rendered
	Cursor int
	Offset int

	// UI Components
	FilterBar   components.FilterBar
	Jump        components.JumpSearch
	ExportModal components.InputModal
	Spinner     spinner.Model
	Help        help.Model

	// Dimensions
	Width  int
	Height int

	// UI state
	Loading     bool
	Submitting  bool
	BusyText    string
	StatusMsg   string
	StatusIsErr bool
	statusSeq   int

	// LastLabelPath is the most recently saved label file
	LastLabelPath string
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Export == nil {
		opts.Export = sheet.Export
	}
	if opts.MessageTimeout <= 0 {
		opts.MessageTimeout = defaultMessageTimeout
	}
	if opts.DefaultStatus == "" {
		opts.DefaultStatus = domain.DownloadAny
	}

	table := orders.NewTable(nil, opts.Registry.Load())
	table.SetDownloadStatus(opts.DefaultStatus)

	var sources []string
	if opts.Orders != nil {
		sources = opts.Orders.Sources()
	}

	return Model{
		State:       StateBrowsing,
		opts:        opts,
		logger:      opts.Logger,
		now:         time.Now,
		Table:       table,
		Sources:     sources,
		FilterBar:   components.NewFilterBar(domain.ColumnLabels()),
		Jump:        components.NewJumpSearch(),
		ExportModal: components.NewInputModal(),
		Spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(styles.SpinnerStyle),
		),
		Help:     help.New(),
		Loading:  true,
		BusyText: "Loading orders...",
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadOrdersCmd(m.opts.Orders),
		m.Spinner.Tick,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.Help.Width = msg.Width
		m.Jump.SetSize(msg.Width, msg.Height)
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !m.Loading && !m.Submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case OrdersLoadedMsg:
		m.Loading = false
		m.keepCursorRow(func() { m.Table.Replace(msg.Result.Orders) })
		m.logger.Info("orders shown", "count", len(msg.Result.Orders))
		if len(msg.Result.Failed) > 0 {
			parts := make([]string, len(msg.Result.Failed))
			for i, f := range msg.Result.Failed {
				parts[i] = f.Source + ": " + describeError(f.Err)
			}
			return m, m.setStatus(fmt.Sprintf("Loaded %d orders, some sources failed (%s)",
				len(msg.Result.Orders), strings.Join(parts, "; ")), true)
		}
		return m, m.setStatus(fmt.Sprintf("Loaded %d orders", len(msg.Result.Orders)), false)

	case LabelsRequestedMsg:
		m.Submitting = false
		m.keepCursorRow(func() { m.Table.SetRequested(msg.Outcome.Requested) })
		status := m.setStatus(msg.Outcome.Message, false)
		if msg.Outcome.Path == "" {
			return m, status
		}
		m.LastLabelPath = msg.Outcome.Path
		if m.opts.OpenAfterDownload {
			return m, tea.Batch(status, OpenFileCmd(m.opts.Opener, msg.Outcome.Path))
		}
		return m, status

	case FileOpenedMsg:
		m.logger.Debug("opened label file", "path", msg.Path)
		return m, nil

	case LabelRequestFailedMsg:
		m.Submitting = false
		m.logger.Warn("label request failed", "error", msg.Err)
		if msg.Path != "" {
			m.LastLabelPath = msg.Path
		}
		return m, m.setStatus(describeError(msg.Err), true)

	case LabelsClearedMsg:
		m.keepCursorRow(func() { m.Table.SetRequested(domain.NewTrackingSet()) })
		return m, m.setStatus("Requested label marks cleared", false)

	case ExportedMsg:
		return m, m.setStatus(fmt.Sprintf("Exported %d orders to %s", msg.Count, msg.Path), false)

	case CopiedMsg:
		return m, m.setStatus(fmt.Sprintf("Copied %d tracking numbers", msg.Count), false)

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}
		return m, nil

	case ErrMsg:
		m.Loading = false
		m.logger.Error("operation failed", "context", msg.Context, "error", msg.Err)
		text := describeError(msg.Err)
		if msg.Context != "" {
			text = msg.Context + ": " + text
		}
		return m, m.setStatus(text, true)
	}

	// Cursor blink and other input messages go to the focused component
	var cmd tea.Cmd
	switch m.State {
	case StateFiltering:
		m.FilterBar, cmd, _ = m.FilterBar.Update(msg)
	case StateJump:
		m.Jump, cmd, _ = m.Jump.Update(msg)
	case StateExport:
		m.ExportModal, cmd, _ = m.ExportModal.Update(msg)
	}
	return m, cmd
}

// setStatus shows a message that dismisses itself after the configured timeout
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return ClearStatusCmd(m.statusSeq, m.opts.MessageTimeout)
}

// describeError turns an error into an operator-facing sentence
func describeError(err error) string {
	var reqErr *domain.RequestError
	switch {
	case errors.Is(err, domain.ErrServerOffline):
		return "Network error: " + err.Error()
	case errors.As(err, &reqErr) && reqErr.IsAuth():
		return "Session rejected by the server, run `labeldesk setup` to update it: " + reqErr.Error()
	case errors.Is(err, domain.ErrAuthFailed):
		return "Session rejected by the server, run `labeldesk setup` to update it"
	case errors.Is(err, domain.ErrNoSelection):
		return "Select at least one order with a tracking number"
	case errors.Is(err, domain.ErrNotConfigured):
		return "No order source configured, run `labeldesk setup`"
	default:
		return err.Error()
	}
}

// tableRows returns how many data rows fit on screen
func (m Model) tableRows() int {
	return max(1, m.Height-ChromeHeight-tableChrome)
}

// clampCursor keeps the cursor on a visible row and inside the rendered window
func (m *Model) clampCursor() {
	n := m.Table.Summary().Visible
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}

	rows := m.tableRows()
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+rows {
		m.Offset = m.Cursor - rows + 1
	}
	if m.Offset > max(0, n-rows) {
		m.Offset = max(0, n-rows)
	}
}

// cursorRow returns the table index under the cursor
func (m Model) cursorRow() (int, bool) {
	visible := m.Table.VisibleIndices()
	if m.Cursor < 0 || m.Cursor >= len(visible) {
		return 0, false
	}
	return visible[m.Cursor], true
}

// moveCursorToRow puts the cursor on table row i if it is visible
func (m *Model) moveCursorToRow(row int) bool {
	for pos, i := range m.Table.VisibleIndices() {
		if i == row {
			m.Cursor = pos
			m.clampCursor()
			return true
		}
	}
	return false
}

// keepCursorRow applies a table change and keeps the cursor on the same
// order when it is still visible afterwards
func (m *Model) keepCursorRow(change func()) {
	var key string
	if row, ok := m.cursorRow(); ok {
		key = orderKey(m.Table.Order(row))
	}

	change()

	if key != "" {
		for pos, i := range m.Table.VisibleIndices() {
			if orderKey(m.Table.Order(i)) == key {
				m.Cursor = pos
				break
			}
		}
	}
	m.clampCursor()
}

func orderKey(o domain.Order) string {
	return o.PostingNumber + "\x00" + o.SKU + "\x00" + o.TrackingNumber
}
