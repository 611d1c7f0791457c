package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dexrun/internal/model"
)

// TimeLayout is how ran_at is stored; it sorts lexically in time order.
const TimeLayout = "2006-01-02 15:04:05"

// InsertEntry records one run. A zero ranAt means now.
func InsertEntry(ctx context.Context, db *sql.DB, e model.NewEntry, ranAt time.Time) (int64, error) {
	pokemon := strings.TrimSpace(e.Pokemon)
	location := strings.TrimSpace(e.Location)
	if pokemon == "" {
		return 0, fmt.Errorf("pokemon is required")
	}
	if location == "" {
		return 0, fmt.Errorf("location is required")
	}
	if ranAt.IsZero() {
		ranAt = time.Now()
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO entries (pokemon, location, ran_at) VALUES (?, ?, ?)`,
		pokemon, location, ranAt.UTC().Format(TimeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// TotalPokemon counts every recorded entry.
func TotalPokemon(ctx context.Context, db *sql.DB) (model.Totals, error) {
	var t model.Totals
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&t.TotalPokemon); err != nil {
		return model.Totals{}, fmt.Errorf("failed to count entries: %w", err)
	}
	return t, nil
}

// Leaderboard aggregates entries per Pokémon, most frequent first.
func Leaderboard(ctx context.Context, db *sql.DB) ([]model.LeaderboardEntry, error) {
	query := `
		SELECT pokemon, COUNT(*) AS n, MAX(ran_at)
		FROM entries
		GROUP BY pokemon
		ORDER BY n DESC, pokemon ASC
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	results := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.Pokemon, &e.Count, &e.LastTimeRan); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		results = append(results, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard rows: %w", err)
	}
	return results, nil
}

// Last10 returns the ten most recent entries, newest first.
func Last10(ctx context.Context, db *sql.DB) ([]model.RecentEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT pokemon, ran_at
		FROM entries
		ORDER BY ran_at DESC, id DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent entries: %w", err)
	}
	defer rows.Close()

	results := []model.RecentEntry{}
	for rows.Next() {
		var e model.RecentEntry
		if err := rows.Scan(&e.Pokemon, &e.Date); err != nil {
			return nil, fmt.Errorf("failed to scan recent entry: %w", err)
		}
		results = append(results, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent entries: %w", err)
	}
	return results, nil
}

// LocationPercentages returns each location's share of all entries (0-100),
// largest first.
func LocationPercentages(ctx context.Context, db *sql.DB) ([]model.LocationShare, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT location, COUNT(*) * 100.0 / (SELECT COUNT(*) FROM entries) AS pct
		FROM entries
		GROUP BY location
		ORDER BY pct DESC, location ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query location percentages: %w", err)
	}
	defer rows.Close()

	results := []model.LocationShare{}
	for rows.Next() {
		var s model.LocationShare
		if err := rows.Scan(&s.Location, &s.Percentage); err != nil {
			return nil, fmt.Errorf("failed to scan location share: %w", err)
		}
		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating location shares: %w", err)
	}
	return results, nil
}

// Store adapts the package functions to a handle the server can hold.
type Store struct {
	DB *sql.DB
}

func (s Store) InsertEntry(ctx context.Context, e model.NewEntry) error {
	_, err := InsertEntry(ctx, s.DB, e, time.Time{})
	return err
}

func (s Store) TotalPokemon(ctx context.Context) (model.Totals, error) {
	return TotalPokemon(ctx, s.DB)
}

func (s Store) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	return Leaderboard(ctx, s.DB)
}

func (s Store) Last10(ctx context.Context) ([]model.RecentEntry, error) {
	return Last10(ctx, s.DB)
}

func (s Store) LocationPercentages(ctx context.Context) ([]model.LocationShare, error) {
	return LocationPercentages(ctx, s.DB)
}
