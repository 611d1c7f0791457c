package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"dexrun/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "dexrun.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func seed(t *testing.T, database *sql.DB) {
	t.Helper()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	entries := []struct {
		pokemon  string
		location string
		offset   int
	}{
		{"Pikachu", "Viridian Forest", 0},
		{"Bulbasaur", "Route 1", 1},
		{"Pikachu", "Viridian Forest", 2},
		{"Abra", "Route 24", 3},
		{"Pikachu", "Power Plant", 4},
	}
	for _, e := range entries {
		ranAt := base.Add(time.Duration(e.offset) * 24 * time.Hour)
		if _, err := InsertEntry(context.Background(), database, model.NewEntry{Pokemon: e.pokemon, Location: e.location}, ranAt); err != nil {
			t.Fatalf("InsertEntry(%s) error = %v", e.pokemon, err)
		}
	}
}

func TestInsertEntryValidation(t *testing.T) {
	database := openTestDB(t)
	tests := []struct {
		name  string
		entry model.NewEntry
	}{
		{"missing pokemon", model.NewEntry{Location: "Route 1"}},
		{"missing location", model.NewEntry{Pokemon: "Mew"}},
		{"blank pokemon", model.NewEntry{Pokemon: "   ", Location: "Route 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := InsertEntry(context.Background(), database, tt.entry, time.Time{}); err == nil {
				t.Error("InsertEntry() accepted an invalid entry")
			}
		})
	}
}

func TestTotalPokemon(t *testing.T) {
	database := openTestDB(t)
	seed(t, database)

	got, err := TotalPokemon(context.Background(), database)
	if err != nil {
		t.Fatalf("TotalPokemon() error = %v", err)
	}
	if got.TotalPokemon != 5 {
		t.Errorf("TotalPokemon = %d, want 5", got.TotalPokemon)
	}
}

func TestLeaderboard(t *testing.T) {
	database := openTestDB(t)
	seed(t, database)

	got, err := Leaderboard(context.Background(), database)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	want := []model.LeaderboardEntry{
		{Pokemon: "Pikachu", Count: 3, LastTimeRan: "2024-01-05 12:00:00"},
		{Pokemon: "Abra", Count: 1, LastTimeRan: "2024-01-04 12:00:00"},
		{Pokemon: "Bulbasaur", Count: 1, LastTimeRan: "2024-01-02 12:00:00"},
	}
	if len(got) != len(want) {
		t.Fatalf("Leaderboard() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLast10(t *testing.T) {
	database := openTestDB(t)
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		e := model.NewEntry{Pokemon: "Magikarp", Location: "Route 6"}
		if _, err := InsertEntry(context.Background(), database, e, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("InsertEntry() error = %v", err)
		}
	}

	got, err := Last10(context.Background(), database)
	if err != nil {
		t.Fatalf("Last10() error = %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("len(Last10()) = %d, want 10", len(got))
	}
	if got[0].Date != "2024-02-01 11:00:00" {
		t.Errorf("newest = %q, want 2024-02-01 11:00:00", got[0].Date)
	}
	if got[9].Date != "2024-02-01 02:00:00" {
		t.Errorf("oldest = %q, want 2024-02-01 02:00:00", got[9].Date)
	}
}

func TestLocationPercentages(t *testing.T) {
	database := openTestDB(t)
	seed(t, database)

	got, err := LocationPercentages(context.Background(), database)
	if err != nil {
		t.Fatalf("LocationPercentages() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("LocationPercentages() = %+v", got)
	}
	if got[0].Location != "Viridian Forest" || got[0].Percentage != 40 {
		t.Errorf("first share = %+v, want Viridian Forest 40", got[0])
	}
	total := 0.0
	for _, s := range got {
		total += s.Percentage
	}
	if total < 99.99 || total > 100.01 {
		t.Errorf("shares sum to %f, want 100", total)
	}
}

func TestEmptyStore(t *testing.T) {
	s := Store{DB: openTestDB(t)}
	ctx := context.Background()

	lb, err := s.Leaderboard(ctx)
	if err != nil || lb == nil || len(lb) != 0 {
		t.Errorf("Leaderboard() = %v, %v; want empty", lb, err)
	}
	locs, err := s.LocationPercentages(ctx)
	if err != nil || len(locs) != 0 {
		t.Errorf("LocationPercentages() = %v, %v; want empty", locs, err)
	}
	if err := s.InsertEntry(ctx, model.NewEntry{Pokemon: "Mew", Location: "Faraway Island"}); err != nil {
		t.Fatalf("InsertEntry() error = %v", err)
	}
	totals, err := s.TotalPokemon(ctx)
	if err != nil || totals.TotalPokemon != 1 {
		t.Errorf("TotalPokemon() = %v, %v; want 1", totals, err)
	}
}
