package ui

import (
	"fmt"
	"strings"
	"time"

	"dexrun/internal/model"
	"dexrun/internal/util"
)

// RecentModel lists the ten most recent entries.
type RecentModel struct {
	listCursor
	entries []model.RecentEntry
	now     func() time.Time
}

// NewRecentModel creates the recent-entries table.
func NewRecentModel(entries []model.RecentEntry) *RecentModel {
	m := &RecentModel{now: time.Now}
	m.SetEntries(entries)
	return m
}

// SetEntries replaces the table contents.
func (m *RecentModel) SetEntries(entries []model.RecentEntry) {
	m.entries = append([]model.RecentEntry(nil), entries...)
	m.reset(len(m.entries))
}

// Selected returns the Pokémon under the cursor.
func (m *RecentModel) Selected() (string, bool) {
	if len(m.entries) == 0 {
		return "", false
	}
	return m.entries[m.cursor].Pokemon, true
}

// View renders the recent entries.
func (m *RecentModel) View(width, height int) string {
	if len(m.entries) == 0 {
		return renderEmpty(width, height, "    No entries yet.")
	}

	widths := fitWidths([]int{26, 22, 14}, width)
	headers := []string{formatHeaderLabel("pokemon"), formatHeaderLabel("date"), formatHeaderLabel("when")}
	lines := []string{
		renderTableRow(headers, widths, TableHeaderStyle),
		renderTableDivider(widths),
	}

	from, to := m.visible(height - 3)
	now := m.now()
	for i := from; i < to; i++ {
		e := m.entries[i]
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}
		cells := []string{
			util.TruncateString(e.Pokemon, widths[0]-2),
			util.FormatTimestamp(e.Date),
			util.FormatTimestampHuman(e.Date, now),
		}
		lines = append(lines, renderTableRow(cells, widths, style))
	}

	status := fmt.Sprintf("last %d entries  ·  row %d/%d", len(m.entries), m.cursor+1, len(m.entries))
	return renderStatus(height, strings.Join(lines, "\n"), status)
}
