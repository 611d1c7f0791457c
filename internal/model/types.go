package model

import (
	"strconv"

	"dexrun/internal/sorter"
)

// LeaderboardEntry is one Pokémon's aggregate line from /leaderboard.
type LeaderboardEntry struct {
	Pokemon     string `json:"Pokemon"`
	Count       int    `json:"Count"`
	LastTimeRan string `json:"Last Time Ran"`
}

// RecentEntry is one line from /last10.
type RecentEntry struct {
	Pokemon string `json:"Pokemon"`
	Date    string `json:"Date"`
}

// LocationShare is the share of all entries logged at one location.
type LocationShare struct {
	Location   string  `json:"Location"`
	Percentage float64 `json:"Percentage"` // 0-100
}

// Totals is the /total_pokemon payload.
type Totals struct {
	TotalPokemon int `json:"total_pokemon"`
}

// NewEntry is the data submitted by the add-entry form.
type NewEntry struct {
	Pokemon  string
	Location string
}

// AddEntryResult is the /add_entry response.
type AddEntryResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// LeaderboardRows converts entries in server order into display rows.
// Rank is the 1-based position the server returned the entry at.
func LeaderboardRows(entries []LeaderboardEntry) []sorter.Row {
	rows := make([]sorter.Row, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, sorter.Row{
			sorter.ColumnRank:    strconv.Itoa(i + 1),
			sorter.ColumnName:    e.Pokemon,
			sorter.ColumnCount:   strconv.Itoa(e.Count),
			sorter.ColumnLastRun: e.LastTimeRan,
		})
	}
	return rows
}
