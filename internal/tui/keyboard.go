package tui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/labeldesk/internal/adapter/sheet"
	"github.com/mmcdole/labeldesk/internal/domain"
	"github.com/mmcdole/labeldesk/internal/tui/components"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle state-specific keys
	switch m.State {
	case StateHelp:
		m.State = StateBrowsing
		return m, nil

	case StateConfirmClear:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.State = StateBrowsing
			return m, ClearLabelsCmd(m.opts.Registry)
		case key.Matches(msg, Keys.Deny):
			m.State = StateBrowsing
		}
		return m, nil

	case StateFiltering:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		var changed bool
		m.FilterBar, cmd, changed = m.FilterBar.Update(msg)
		if changed {
			label := m.FilterBar.FocusedLabel()
			value := m.FilterBar.Value(label)
			m.keepCursorRow(func() { m.Table.SetColumnFilter(label, value) })
		}
		if !m.FilterBar.IsActive() {
			m.State = StateBrowsing
		}
		return m, cmd

	case StateJump:
		var cmd tea.Cmd
		var submitted bool
		m.Jump, cmd, submitted = m.Jump.Update(msg)
		if submitted {
			if row, ok := m.Jump.Selected(); ok {
				m.moveCursorToRow(row)
			}
			m.Jump.Hide()
		}
		if !m.Jump.IsVisible() {
			m.State = StateBrowsing
		}
		return m, cmd

	case StateExport:
		var cmd tea.Cmd
		var submitted bool
		m.ExportModal, cmd, submitted = m.ExportModal.Update(msg)
		if submitted {
			path := m.ExportModal.Value()
			m.ExportModal.Hide()
			m.State = StateBrowsing
			return m, ExportCmd(m.opts.Export, path, m.Table.VisibleOrders())
		}
		if !m.ExportModal.IsVisible() {
			m.State = StateBrowsing
		}
		return m, cmd
	}

	// Browsing keys
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Up):
		m.Cursor--
		m.clampCursor()
		return m, nil

	case key.Matches(msg, Keys.Down):
		m.Cursor++
		m.clampCursor()
		return m, nil

	case key.Matches(msg, Keys.PageUp):
		m.Cursor -= m.tableRows()
		m.clampCursor()
		return m, nil

	case key.Matches(msg, Keys.PageDown):
		m.Cursor += m.tableRows()
		m.clampCursor()
		return m, nil

	case key.Matches(msg, Keys.Home):
		m.Cursor = 0
		m.clampCursor()
		return m, nil

	case key.Matches(msg, Keys.End):
		m.Cursor = m.Table.Summary().Visible - 1
		m.clampCursor()
		return m, nil

	case key.Matches(msg, Keys.Toggle):
		if row, ok := m.cursorRow(); ok {
			m.Table.Toggle(row)
		}
		return m, nil

	case key.Matches(msg, Keys.SelectAll):
		m.Table.ToggleAllVisible()
		return m, nil

	case key.Matches(msg, Keys.Filter):
		m.State = StateFiltering
		return m, m.FilterBar.Activate()

	case key.Matches(msg, Keys.Status):
		next := m.Table.Criteria().Status.Next()
		m.keepCursorRow(func() { m.Table.SetDownloadStatus(next) })
		return m, nil

	case key.Matches(msg, Keys.Duplicates):
		on := !m.Table.Criteria().OnlyDuplicates
		m.keepCursorRow(func() { m.Table.SetOnlyDuplicates(on) })
		return m, nil

	case key.Matches(msg, Keys.ClearFilters):
		if !m.filtersActive() {
			return m, nil
		}
		m.FilterBar.Reset()
		m.keepCursorRow(m.Table.ClearFilters)
		return m, m.setStatus("Filters cleared", false)

	case key.Matches(msg, Keys.Submit):
		return m.submit()

	case key.Matches(msg, Keys.ClearLabels):
		m.State = StateConfirmClear
		return m, nil

	case key.Matches(msg, Keys.Jump):
		return m.openJump()

	case key.Matches(msg, Keys.Copy):
		numbers := m.Table.SelectedTrackingNumbers()
		if len(numbers) == 0 {
			return m, m.setStatus(describeError(domain.ErrNoSelection), true)
		}
		return m, CopyCmd(m.opts.Clipboard, numbers)

	case key.Matches(msg, Keys.Export):
		return m.openExport()

	case key.Matches(msg, Keys.OpenLabel):
		if m.LastLabelPath == "" {
			return m, m.setStatus("No label file saved yet", true)
		}
		return m, OpenFileCmd(m.opts.Opener, m.LastLabelPath)

	case key.Matches(msg, Keys.Reload):
		if m.Loading {
			return m, nil
		}
		m.Loading = true
		m.BusyText = "Loading orders..."
		return m, tea.Batch(LoadOrdersCmd(m.opts.Orders), m.Spinner.Tick)
	}

	return m, nil
}

// filtersActive reports whether any filter narrows the table
func (m Model) filtersActive() bool {
	c := m.Table.Criteria()
	return len(c.ColumnText) > 0 || c.OnlyDuplicates || c.Status != domain.DownloadAny
}

// submit sends a label request for the visible selected rows
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.Loading {
		return m, m.setStatus("Orders are still loading", true)
	}
	if m.Submitting || m.opts.Coordinator.Busy() {
		return m, m.setStatus("A label request is already in progress", true)
	}

	numbers := m.Table.SelectedTrackingNumbers()
	if !m.Table.Summary().SubmitEnabled || len(numbers) == 0 {
		return m, m.setStatus(describeError(domain.ErrNoSelection), true)
	}

	m.Submitting = true
	m.BusyText = fmt.Sprintf("Requesting labels for %d tracking numbers...", len(numbers))
	m.logger.Info("submitting label request", "count", len(numbers))
	return m, tea.Batch(RequestLabelsCmd(m.opts.Coordinator, numbers), m.Spinner.Tick)
}

func (m Model) openJump() (tea.Model, tea.Cmd) {
	visible := m.Table.VisibleIndices()
	if len(visible) == 0 {
		return m, m.setStatus("No visible orders to jump to", true)
	}

	candidates := make([]components.JumpCandidate, len(visible))
	for n, i := range visible {
		o := m.Table.Order(i)
		candidates[n] = components.JumpCandidate{
			Row:  i,
			Text: fmt.Sprintf("%s  %s  %s", o.TrackingNumber, o.PostingNumber, o.ProductName),
		}
	}

	m.State = StateJump
	m.Jump.SetSize(m.Width, m.Height)
	return m, m.Jump.Show(candidates)
}

func (m Model) openExport() (tea.Model, tea.Cmd) {
	visible := m.Table.VisibleOrders()
	if len(visible) == 0 {
		return m, m.setStatus("No visible orders to export", true)
	}

	name := sheet.ExportFileName(visible[0].Shop, m.now())
	m.State = StateExport
	return m, m.ExportModal.Show(
		"Export visible orders",
		fmt.Sprintf("%d rows · enter to save, esc to cancel", len(visible)),
		filepath.Join(m.opts.ExportDir, name),
	)
}
