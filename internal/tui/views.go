package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mmcdole/labeldesk/internal/domain"
	"github.com/mmcdole/labeldesk/internal/tui/styles"
)

const checkboxWidth = 3

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	// Handle modal states
	switch m.State {
	case StateHelp:
		return m.renderHelp()
	case StateConfirmClear:
		return m.renderClearConfirmation()
	}

	view := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderFilterLine(),
		m.renderTable(),
		m.renderFooter(),
	)

	if m.Jump.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.Jump.View())
	}

	if m.ExportModal.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.ExportModal.View())
	}

	return view
}

// renderHeader renders the title line: sources, filters, counter and submit state
func (m Model) renderHeader() string {
	c := m.Table.Criteria()
	summary := m.Table.Summary()

	left := styles.TitleStyle.Render("labeldesk")
	if len(m.Sources) > 0 {
		left += " " + styles.DimStyle.Render(strings.Join(m.Sources, ", "))
	}

	parts := []string{
		styles.DimStyle.Render("status ") + styles.AccentStyle.Render(c.Status.String()),
	}
	if c.OnlyDuplicates {
		parts = append(parts, styles.BadgeStyle.Render("duplicates"))
	}
	if counter := summary.Counter(); counter != "" {
		parts = append(parts, counter)
	}
	if summary.SubmitEnabled && !m.Submitting && !m.Loading {
		parts = append(parts, styles.BadgeStyle.Render("enter: get labels"))
	} else {
		parts = append(parts, styles.DimBadgeStyle.Render("enter: get labels"))
	}
	right := strings.Join(parts, "  ")

	gap := max(1, m.Width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

// renderFilterLine shows the filter inputs while editing, otherwise a summary of active filters
func (m Model) renderFilterLine() string {
	if m.State == StateFiltering {
		return m.FilterBar.View(m.Width)
	}

	text := m.Table.Criteria().ColumnText
	if len(text) == 0 {
		return styles.DimStyle.Render("/ to filter columns")
	}

	var parts []string
	for _, label := range domain.ColumnLabels() {
		if v, ok := text[label]; ok {
			parts = append(parts, styles.FilterLabelStyle.Render(label+":")+" "+styles.AccentStyle.Render(v))
		}
	}
	return styles.TruncateStyled(strings.Join(parts, "  "), m.Width)
}

// renderTable renders the visible window of the order table
func (m Model) renderTable() string {
	height := m.Height - ChromeHeight
	placeholder := func(text string) string {
		return lipgloss.Place(m.Width, height, lipgloss.Center, lipgloss.Center, styles.DimStyle.Render(text))
	}

	if m.Table.Len() == 0 {
		if m.Loading {
			return placeholder("Loading orders...")
		}
		return placeholder("No orders awaiting shipment")
	}

	visible := m.Table.VisibleIndices()
	if len(visible) == 0 {
		return placeholder("No orders match the filters")
	}

	end := min(m.Offset+m.tableRows(), len(visible))
	window := visible[m.Offset:end]

	headers := []string{m.Table.Summary().SelectAll.String()}
	for _, c := range domain.OrderColumns {
		headers = append(headers, styles.Truncate(c.Label, c.Width))
	}

	rows := make([][]string, len(window))
	for n, i := range window {
		cells := make([]string, 0, len(domain.OrderColumns)+1)
		if m.Table.Selected(i) {
			cells = append(cells, "[x]")
		} else {
			cells = append(cells, "[ ]")
		}
		for ci, v := range m.Table.Order(i).Values() {
			cells = append(cells, styles.Truncate(v, domain.OrderColumns[ci].Width))
		}
		rows[n] = cells
	}

	cursor := m.Cursor - m.Offset
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderStyle(styles.TableBorderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.HeaderStyle
			}
			if row < 0 || row >= len(window) {
				return styles.CellStyle
			}

			style := styles.CellStyle
			requested := m.Table.IsRequested(window[row])
			switch {
			case row == cursor && requested:
				style = styles.RequestedCursorCellStyle
			case row == cursor:
				style = styles.CursorCellStyle
			case requested:
				style = styles.RequestedCellStyle
			}
			if col == 0 {
				return style.Width(checkboxWidth + 2)
			}
			return style
		})

	if m.Width > 0 {
		t = t.Width(m.Width)
	}

	rendered := t.Render()
	if pad := height - lipgloss.Height(rendered); pad > 0 {
		rendered += strings.Repeat("\n", pad)
	}
	return rendered
}

// renderFooter renders a single-line footer
func (m Model) renderFooter() string {
	// Left side: spinner while busy, otherwise the status message
	var left string
	if m.Loading || m.Submitting {
		left = m.Spinner.View() + " " + styles.DimStyle.Render(m.BusyText)
	} else if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.SuccessStyle.Render(m.StatusMsg)
		}
	}

	// Center section: key hints
	center := m.Help.ShortHelpView(Keys.ShortHelp())

	// Right side: queue size
	right := styles.DimStyle.Render(fmt.Sprintf("%d orders", m.Table.Len()))

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth+2 >= m.Width {
		// Not enough space - just left + right
		left = styles.TruncateStyled(left, max(0, m.Width-rightWidth-1))
		gap := max(1, m.Width-lipgloss.Width(left)-rightWidth)
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad

	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	h := m.Help
	h.ShowAll = true

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render("Keys"),
		h.FullHelpView(Keys.FullHelp()),
		"",
		styles.DimStyle.Render("Rows in green already had labels requested."),
		styles.DimStyle.Render("Press any key to return..."),
	)

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(content))
}

// renderClearConfirmation renders the clear requested labels confirmation modal
func (m Model) renderClearConfirmation() string {
	modal := `
      Forget requested labels?

  Every row will show as not downloaded.
  Saved PDF and ZIP files are kept.

         [Y] Yes      [N] No
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(modal))
}
