package model

import "image"

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// TotalsLoadedMsg is sent when the entry total is fetched.
type TotalsLoadedMsg struct {
	Totals Totals
}

// TotalsFailedMsg is sent when the entry total could not be fetched.
type TotalsFailedMsg struct {
	Err error
}

// LoadFailedMsg is sent when one of the dashboard datasets could not be
// fetched. Source names the dataset ("leaderboard", "recent", "locations").
type LoadFailedMsg struct {
	Source string
	Err    error
}

// LeaderboardLoadedMsg is sent when the leaderboard is fetched.
type LeaderboardLoadedMsg struct {
	Entries []LeaderboardEntry
}

// RecentLoadedMsg is sent when the last ten entries are fetched.
type RecentLoadedMsg struct {
	Entries []RecentEntry
}

// LocationsLoadedMsg is sent when location percentages are fetched.
type LocationsLoadedMsg struct {
	Shares []LocationShare
}

// EntrySavedMsg is sent when the backend accepted a new entry.
type EntrySavedMsg struct {
	Entry NewEntry
}

// EntryRejectedMsg is sent when the backend answered success=false.
type EntryRejectedMsg struct {
	Reason string
}

// EntryFailedMsg is sent when the add request itself failed.
type EntryFailedMsg struct {
	Err error
}

// SpriteLoadedMsg carries a decoded sprite for the detail screen.
type SpriteLoadedMsg struct {
	Pokemon string
	Shiny   bool
	Image   image.Image
}

// SpriteFailedMsg is sent when a sprite could not be fetched.
type SpriteFailedMsg struct {
	Pokemon string
	Err     error
}

// RemoteChangedMsg is sent when the live feed reports new data.
type RemoteChangedMsg struct {
	Type string
}

// FeedClosedMsg is sent when the live feed ends.
type FeedClosedMsg struct {
	Err error
}

// FormCancelledMsg is sent when a form is cancelled.
type FormCancelledMsg struct{}

// Screen represents different app screens.
type Screen int

const (
	ScreenLeaderboard Screen = iota
	ScreenRecent
	ScreenLocations
	ScreenSprite
	ScreenEntryForm
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)
