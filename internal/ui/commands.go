package ui

import (
	"context"
	"errors"
	"image"
	"time"

	"dexrun/internal/api"
	"dexrun/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

const requestTimeout = 5 * time.Second

// Backend is the tracker API the dashboard reads from and writes to.
type Backend interface {
	TotalPokemon(ctx context.Context) (model.Totals, error)
	Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
	Last10(ctx context.Context) ([]model.RecentEntry, error)
	LocationPercentages(ctx context.Context) ([]model.LocationShare, error)
	AddEntry(ctx context.Context, e model.NewEntry) error
	Sprite(ctx context.Context, pokemon string, shiny bool) (image.Image, error)
}

// EventSource is an open live feed.
type EventSource interface {
	Next() (api.Event, error)
	Close() error
}

// Subscriber opens a live feed.
type Subscriber func(ctx context.Context) (EventSource, error)

const (
	sourceLeaderboard = "leaderboard"
	sourceRecent      = "recent"
	sourceLocations   = "locations"
)

func loadTotalsCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		totals, err := b.TotalPokemon(ctx)
		if err != nil {
			return model.TotalsFailedMsg{Err: err}
		}
		return model.TotalsLoadedMsg{Totals: totals}
	}
}

func loadLeaderboardCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		entries, err := b.Leaderboard(ctx)
		if err != nil {
			return model.LoadFailedMsg{Source: sourceLeaderboard, Err: err}
		}
		return model.LeaderboardLoadedMsg{Entries: entries}
	}
}

func loadRecentCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		entries, err := b.Last10(ctx)
		if err != nil {
			return model.LoadFailedMsg{Source: sourceRecent, Err: err}
		}
		return model.RecentLoadedMsg{Entries: entries}
	}
}

func loadLocationsCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		shares, err := b.LocationPercentages(ctx)
		if err != nil {
			return model.LoadFailedMsg{Source: sourceLocations, Err: err}
		}
		return model.LocationsLoadedMsg{Shares: shares}
	}
}

func addEntryCmd(ctx context.Context, b Backend, e model.NewEntry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		err := b.AddEntry(ctx, e)
		if err == nil {
			return model.EntrySavedMsg{Entry: e}
		}
		var rejected *api.RejectedError
		if errors.As(err, &rejected) {
			return model.EntryRejectedMsg{Reason: rejected.Reason}
		}
		if errors.Is(err, api.ErrEntryRejected) {
			return model.EntryRejectedMsg{}
		}
		return model.EntryFailedMsg{Err: err}
	}
}

func loadSpriteCmd(ctx context.Context, b Backend, pokemon string, shiny bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		img, err := b.Sprite(ctx, pokemon, shiny)
		if err != nil {
			return model.SpriteFailedMsg{Pokemon: pokemon, Err: err}
		}
		return model.SpriteLoadedMsg{Pokemon: pokemon, Shiny: shiny, Image: img}
	}
}

type feedOpenedMsg struct {
	source EventSource
}

func subscribeCmd(ctx context.Context, subscribe Subscriber) tea.Cmd {
	return func() tea.Msg {
		src, err := subscribe(ctx)
		if err != nil {
			return model.FeedClosedMsg{Err: err}
		}
		return feedOpenedMsg{source: src}
	}
}

func waitForEventCmd(src EventSource) tea.Cmd {
	return func() tea.Msg {
		ev, err := src.Next()
		if err != nil {
			return model.FeedClosedMsg{Err: err}
		}
		return model.RemoteChangedMsg{Type: ev.Type}
	}
}
