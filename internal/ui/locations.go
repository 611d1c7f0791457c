package ui

import (
	"fmt"
	"math"
	"strings"

	"dexrun/internal/model"
	"dexrun/internal/util"
)

// LocationsModel shows each location's share of all entries.
type LocationsModel struct {
	listCursor
	shares []model.LocationShare
}

// NewLocationsModel creates the location table.
func NewLocationsModel(shares []model.LocationShare) *LocationsModel {
	m := &LocationsModel{}
	m.SetShares(shares)
	return m
}

// SetShares replaces the table contents.
func (m *LocationsModel) SetShares(shares []model.LocationShare) {
	m.shares = append([]model.LocationShare(nil), shares...)
	m.reset(len(m.shares))
}

// percentBar draws p (0-100) as a bar of at most width cells.
func percentBar(p float64, width int) string {
	if width <= 0 {
		return ""
	}
	p = math.Max(0, math.Min(100, p))
	filled := int(math.Round(p / 100 * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// View renders the location shares.
func (m *LocationsModel) View(width, height int) string {
	if len(m.shares) == 0 {
		return renderEmpty(width, height, "    No locations recorded yet.")
	}

	widths := fitWidths([]int{26, 12, 24}, width)
	headers := []string{formatHeaderLabel("location"), formatHeaderLabel("share"), ""}
	lines := []string{
		renderTableRow(headers, widths, TableHeaderStyle),
		renderTableDivider(widths),
	}

	from, to := m.visible(height - 3)
	for i := from; i < to; i++ {
		s := m.shares[i]
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}
		cells := []string{
			util.TruncateString(s.Location, widths[0]-2),
			util.FormatPercent(s.Percentage),
			BarStyle.Render(percentBar(s.Percentage, min(widths[2]-2, 40))),
		}
		lines = append(lines, renderTableRow(cells, widths, style))
	}

	status := fmt.Sprintf("%d locations", len(m.shares))
	return renderStatus(height, strings.Join(lines, "\n"), status)
}
