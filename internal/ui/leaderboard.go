package ui

import (
	"fmt"
	"strings"

	"dexrun/internal/model"
	"dexrun/internal/sorter"
	"dexrun/internal/util"
)

type leaderboardColumn struct {
	column sorter.Column
	label  string
	width  int
}

var columnWidths = [sorter.NumColumns]int{
	sorter.ColumnRank:    6,
	sorter.ColumnName:    22,
	sorter.ColumnCount:   8,
	sorter.ColumnLastRun: 20,
}

// LeaderboardModel is the sortable leaderboard table.
type LeaderboardModel struct {
	sorter *sorter.Sorter

	rows []sorter.Row // server order
	view []sorter.Row

	state     sorter.SortState
	sorted    bool
	active    sorter.Column
	direction sorter.Direction

	columns []leaderboardColumn
	focus   int
	cursor  int
	offset  int

	viewportHeight int
}

// NewLeaderboardModel creates an empty leaderboard with a fresh sort state.
func NewLeaderboardModel(s *sorter.Sorter) *LeaderboardModel {
	if s == nil {
		s = &sorter.Sorter{}
	}
	columns := make([]leaderboardColumn, 0, sorter.NumColumns)
	for _, c := range sorter.Columns {
		columns = append(columns, leaderboardColumn{column: c, label: c.String(), width: columnWidths[c]})
	}
	return &LeaderboardModel{
		sorter:  s,
		state:   sorter.NewSortState(),
		columns: columns,
	}
}

// SetEntries replaces the table contents. An active sort is re-applied in
// its current direction.
func (m *LeaderboardModel) SetEntries(entries []model.LeaderboardEntry) {
	m.rows = model.LeaderboardRows(entries)
	m.view = append([]sorter.Row(nil), m.rows...)
	if m.sorted {
		// Pre-toggling cancels the toggle inside Sort.
		res, err := m.sorter.Sort(m.rows, m.active, m.state.Toggle(m.active))
		if err == nil {
			m.view = res.Rows
			m.state = res.State
		}
	}
	m.clampCursor()
}

// SortColumn toggles c's direction and reorders the table by it.
func (m *LeaderboardModel) SortColumn(c sorter.Column) (string, error) {
	res, err := m.sorter.Sort(m.view, c, m.state)
	if err != nil {
		return "", err
	}
	m.view = res.Rows
	m.state = res.State
	m.active = res.Active
	m.direction = res.Direction
	m.sorted = true
	for i, col := range m.columns {
		if col.column == c {
			m.focus = i
		}
	}
	m.clampCursor()

	order := "ascending"
	if res.Direction == sorter.Descending {
		order = "descending"
	}
	return fmt.Sprintf("Sorted %s %s", strings.ToUpper(m.columnLabel(c)), order), nil
}

// SortActiveColumn sorts by the focused column.
func (m *LeaderboardModel) SortActiveColumn() (string, error) {
	return m.SortColumn(m.columns[m.focus].column)
}

// Indicator returns the direction arrow for c and whether it is shown.
// Only the most recently sorted column shows one.
func (m *LeaderboardModel) Indicator(c sorter.Column) (string, bool) {
	if !m.sorted || c != m.active {
		return "", false
	}
	return m.direction.Arrow(), true
}

// State returns the per-column sort directions.
func (m *LeaderboardModel) State() sorter.SortState {
	return m.state
}

// Rows returns the rows in display order.
func (m *LeaderboardModel) Rows() []sorter.Row {
	return m.view
}

// Selected returns the row under the cursor.
func (m *LeaderboardModel) Selected() (sorter.Row, bool) {
	if len(m.view) == 0 {
		return sorter.Row{}, false
	}
	return m.view[m.cursor], true
}

func (m *LeaderboardModel) columnLabel(c sorter.Column) string {
	for _, col := range m.columns {
		if col.column == c {
			return col.label
		}
	}
	return c.String()
}

func (m *LeaderboardModel) clampCursor() {
	if len(m.view) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= len(m.view) {
		m.cursor = len(m.view) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.offset = scrollWindow(m.cursor, m.offset, m.viewportHeight, len(m.view))
}

func (m *LeaderboardModel) NextColumn() {
	m.focus = (m.focus + 1) % len(m.columns)
}

func (m *LeaderboardModel) PrevColumn() {
	m.focus--
	if m.focus < 0 {
		m.focus = len(m.columns) - 1
	}
}

// JumpToColumn focuses the 1-based column number.
func (m *LeaderboardModel) JumpToColumn(number int) bool {
	if number < 1 || number > len(m.columns) {
		return false
	}
	m.focus = number - 1
	return true
}

func (m *LeaderboardModel) TableMeta() string {
	parts := []string{fmt.Sprintf("col %s", strings.ToUpper(m.columns[m.focus].label))}
	if m.sorted {
		parts = append(parts, fmt.Sprintf("sort %s %s", strings.ToUpper(m.columnLabel(m.active)), m.direction))
	}
	return strings.Join(parts, "  ·  ")
}

// View renders the leaderboard.
func (m *LeaderboardModel) View(width, height int) string {
	if len(m.view) == 0 {
		return renderEmpty(width, height, `    No Pokémon on the leaderboard yet.
    Press  a  to add the first entry.`)
	}

	widths := make([]int, 0, len(m.columns))
	headers := make([]string, 0, len(m.columns))
	for i, col := range m.columns {
		label := formatHeaderLabel(col.label)
		if i == m.focus {
			label = renderActiveHeaderLabel(label)
		}
		if arrow, ok := m.Indicator(col.column); ok {
			label += " " + arrow
		}
		widths = append(widths, max(col.width+2, len([]rune(label))+4))
		headers = append(headers, label)
	}
	widths = fitWidths(widths, width)

	header := renderTableRow(headers, widths, TableHeaderStyle)
	divider := renderTableDivider(widths)

	m.viewportHeight = max(1, height-3)
	m.offset = scrollWindow(m.cursor, m.offset, m.viewportHeight, len(m.view))

	lines := []string{header, divider}
	for i := m.offset; i < len(m.view) && i < m.offset+m.viewportHeight; i++ {
		row := m.view[i]
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}
		cells := []string{
			row[sorter.ColumnRank],
			util.TruncateString(row[sorter.ColumnName], columnWidths[sorter.ColumnName]),
			row[sorter.ColumnCount],
			util.FormatTimestamp(row[sorter.ColumnLastRun]),
		}
		lines = append(lines, renderTableRow(cells, widths, style))
	}

	status := fmt.Sprintf("%d pokémon  ·  row %d/%d  ·  %s", len(m.view), m.cursor+1, len(m.view), m.TableMeta())
	return renderStatus(height, strings.Join(lines, "\n"), status)
}

// MoveDown moves the cursor down.
func (m *LeaderboardModel) MoveDown() {
	if m.cursor < len(m.view)-1 {
		m.cursor++
		m.offset = scrollWindow(m.cursor, m.offset, m.viewportHeight, len(m.view))
	}
}

// MoveUp moves the cursor up.
func (m *LeaderboardModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
		m.offset = scrollWindow(m.cursor, m.offset, m.viewportHeight, len(m.view))
	}
}

// JumpToTop jumps to the first row.
func (m *LeaderboardModel) JumpToTop() {
	m.cursor = 0
	m.offset = 0
}

// JumpToBottom jumps to the last row.
func (m *LeaderboardModel) JumpToBottom() {
	if len(m.view) > 0 {
		m.cursor = len(m.view) - 1
		m.offset = scrollWindow(m.cursor, m.offset, m.viewportHeight, len(m.view))
	}
}
