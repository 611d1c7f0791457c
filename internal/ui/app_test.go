package ui

import (
	"context"
	"errors"
	"image"
	"strings"
	"sync"
	"testing"

	"dexrun/internal/api"
	"dexrun/internal/model"
	"dexrun/internal/sorter"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeBackend struct {
	mu      sync.Mutex
	added   []model.NewEntry
	addErr  error
	spriteN []string
}

func (f *fakeBackend) TotalPokemon(context.Context) (model.Totals, error) {
	return model.Totals{TotalPokemon: 3}, nil
}

func (f *fakeBackend) Leaderboard(context.Context) ([]model.LeaderboardEntry, error) {
	return testEntries(), nil
}

func (f *fakeBackend) Last10(context.Context) ([]model.RecentEntry, error) {
	return []model.RecentEntry{{Pokemon: "Mew", Date: "2024-03-01 10:00:00"}}, nil
}

func (f *fakeBackend) LocationPercentages(context.Context) ([]model.LocationShare, error) {
	return []model.LocationShare{{Location: "Cerulean Cave", Percentage: 100}}, nil
}

func (f *fakeBackend) AddEntry(_ context.Context, e model.NewEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, e)
	return nil
}

func (f *fakeBackend) Sprite(_ context.Context, pokemon string, _ bool) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spriteN = append(f.spriteN, pokemon)
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func testEntries() []model.LeaderboardEntry {
	return []model.LeaderboardEntry{
		{Pokemon: "Zubat", Count: 9, LastTimeRan: "2024-01-02 09:00:00"},
		{Pokemon: "Abra", Count: 10, LastTimeRan: "2024-03-01 12:00:00"},
		{Pokemon: "Mew", Count: 2, LastTimeRan: "2023-12-31 23:59:59"},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return out, cmd
}

func loaded(t *testing.T, b Backend, opts Options) Model {
	t.Helper()
	m := New(b, opts)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, model.LeaderboardLoadedMsg{Entries: testEntries()})
	return m
}

func names(rows []sorter.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r[sorter.ColumnName]
	}
	return out
}

func TestModelSortKeys(t *testing.T) {
	m := loaded(t, &fakeBackend{}, Options{})

	m, _ = update(t, m, runes("3"))
	if got := names(m.leaderboard.Rows()); strings.Join(got, ",") != "Abra,Zubat,Mew" {
		t.Errorf("after first count sort = %v, want descending", got)
	}
	if m.info != "Sorted COUNT descending" {
		t.Errorf("info = %q", m.info)
	}

	m, _ = update(t, m, runes("3"))
	if got := names(m.leaderboard.Rows()); strings.Join(got, ",") != "Mew,Zubat,Abra" {
		t.Errorf("after second count sort = %v, want ascending", got)
	}

	m, _ = update(t, m, runes("2"))
	if arrow, ok := m.leaderboard.Indicator(sorter.ColumnName); !ok || arrow != sorter.Descending.Arrow() {
		t.Errorf("name indicator = %q, %v", arrow, ok)
	}
	if _, ok := m.leaderboard.Indicator(sorter.ColumnCount); ok {
		t.Error("count still shows an indicator after sorting by name")
	}
	if got := m.leaderboard.State(); !got[sorter.ColumnCount] {
		t.Errorf("count direction lost: %v", got)
	}
}

func TestModelSortActiveColumn(t *testing.T) {
	m := loaded(t, &fakeBackend{}, Options{})

	// rank -> pokemon
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, runes("s"))
	if got := names(m.leaderboard.Rows()); strings.Join(got, ",") != "Zubat,Mew,Abra" {
		t.Errorf("order = %v", got)
	}
}

func TestLeaderboardRefreshKeepsSort(t *testing.T) {
	lb := NewLeaderboardModel(nil)
	lb.SetEntries(testEntries())
	if _, err := lb.SortColumn(sorter.ColumnCount); err != nil {
		t.Fatal(err)
	}
	before := lb.State()

	lb.SetEntries(append(testEntries(), model.LeaderboardEntry{Pokemon: "Onix", Count: 50}))
	if got := names(lb.Rows()); got[0] != "Onix" {
		t.Errorf("refresh did not re-apply descending count sort: %v", got)
	}
	if lb.State() != before {
		t.Errorf("refresh changed sort state: %v -> %v", before, lb.State())
	}
	if arrow, ok := lb.Indicator(sorter.ColumnCount); !ok || arrow != "↓" {
		t.Errorf("indicator = %q, %v", arrow, ok)
	}
}

func TestLeaderboardRankFromServerOrder(t *testing.T) {
	lb := NewLeaderboardModel(nil)
	lb.SetEntries(testEntries())
	rows := lb.Rows()
	for i, want := range []string{"1", "2", "3"} {
		if rows[i][sorter.ColumnRank] != want {
			t.Errorf("row %d rank = %q, want %q", i, rows[i][sorter.ColumnRank], want)
		}
	}
	if _, ok := lb.Indicator(sorter.ColumnRank); ok {
		t.Error("indicator shown before any sort")
	}
}

func TestLeaderboardColumnsFollowSorter(t *testing.T) {
	lb := NewLeaderboardModel(nil)
	if len(lb.columns) != sorter.NumColumns {
		t.Fatalf("columns = %d, want %d", len(lb.columns), sorter.NumColumns)
	}
	for i, c := range sorter.Columns {
		got := lb.columns[i]
		if got.column != c || got.label != c.String() || got.width == 0 {
			t.Errorf("column %d = %+v, want %v labelled %q", i, got, c, c.String())
		}
	}
}

func TestModelSortErrorBanner(t *testing.T) {
	m := loaded(t, &fakeBackend{}, Options{})

	next, cmd := m.sortResult("", sorter.ErrUnknownColumn)
	m = next.(Model)
	if m.error != "" {
		t.Fatalf("error set before ErrorMsg: %q", m.error)
	}
	if cmd == nil {
		t.Fatal("sort error returned no command")
	}
	msg, ok := cmd().(model.ErrorMsg)
	if !ok {
		t.Fatalf("cmd() = %T, want model.ErrorMsg", cmd())
	}
	m, _ = update(t, m, msg)
	if !strings.Contains(m.error, "unknown column") {
		t.Errorf("error = %q", m.error)
	}
}

func TestModelInitialSort(t *testing.T) {
	c := sorter.ColumnName
	m := loaded(t, &fakeBackend{}, Options{InitialSort: &c})
	if got := names(m.leaderboard.Rows()); strings.Join(got, ",") != "Zubat,Mew,Abra" {
		t.Errorf("initial sort order = %v", got)
	}
	if m.initialSort != nil {
		t.Error("initial sort not cleared after first load")
	}

	m, _ = update(t, m, model.LeaderboardLoadedMsg{Entries: testEntries()})
	if arrow, _ := m.leaderboard.Indicator(sorter.ColumnName); arrow != "↓" {
		t.Errorf("reload flipped the initial sort: %q", arrow)
	}
}

func TestModelTotalBanner(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.Msg
		want string
	}{
		{"loaded", model.TotalsLoadedMsg{Totals: model.Totals{TotalPokemon: 42}}, "Total Pokemon: 42"},
		{"failed", model.TotalsFailedMsg{Err: errors.New("down")}, "Total Pokemon: Error loading data."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loaded(t, &fakeBackend{}, Options{})
			m, _ = update(t, m, tt.msg)
			if view := m.View(); !strings.Contains(view, tt.want) {
				t.Errorf("View() missing %q", tt.want)
			}
		})
	}
}

func TestModelLoadFailureBanner(t *testing.T) {
	m := loaded(t, &fakeBackend{}, Options{})
	m, _ = update(t, m, model.LoadFailedMsg{Source: sourceRecent, Err: errors.New("timeout")})

	if strings.Contains(m.View(), "Error loading recent data.") {
		t.Error("recent error shown on the leaderboard tab")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.screen != model.ScreenRecent {
		t.Fatalf("screen = %v, want recent", m.screen)
	}
	if !strings.Contains(m.View(), "Error loading recent data.") {
		t.Error("recent error banner missing")
	}

	m, _ = update(t, m, model.RecentLoadedMsg{})
	if strings.Contains(m.View(), "Error loading recent data.") {
		t.Error("error banner kept after a successful load")
	}
}

func TestModelAddEntry(t *testing.T) {
	b := &fakeBackend{}
	m := loaded(t, b, Options{})

	m, _ = update(t, m, runes("a"))
	if m.screen != model.ScreenEntryForm || m.mode != model.ModeInsert {
		t.Fatalf("screen/mode = %v/%v, want form/insert", m.screen, m.mode)
	}

	m, _ = update(t, m, runes("Snorlax"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, runes("Route 12"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("submit returned no command")
	}

	msg := cmd()
	saved, ok := msg.(model.EntrySavedMsg)
	if !ok {
		t.Fatalf("cmd() = %T, want EntrySavedMsg", msg)
	}
	if len(b.added) != 1 || b.added[0] != (model.NewEntry{Pokemon: "Snorlax", Location: "Route 12"}) {
		t.Errorf("backend got %v", b.added)
	}

	m, cmd = update(t, m, saved)
	if m.info != "Entry added successfully." {
		t.Errorf("info = %q", m.info)
	}
	if m.screen != model.ScreenLeaderboard || m.mode != model.ModeNav || m.form != nil {
		t.Errorf("form not closed: screen=%v mode=%v", m.screen, m.mode)
	}
	if cmd == nil || m.pending == 0 {
		t.Error("saving did not trigger a reload")
	}
}

func TestModelAddEntryValidation(t *testing.T) {
	m := loaded(t, &fakeBackend{}, Options{})
	m, _ = update(t, m, runes("a"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.form == nil || m.form.error != "pokémon is required" {
		t.Fatalf("form error = %v", m.form)
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, cmd())
	if m.mode != model.ModeNav || m.screen != model.ScreenLeaderboard {
		t.Errorf("cancel left screen/mode = %v/%v", m.screen, m.mode)
	}
}

func TestAddEntryCmdOutcomes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want tea.Msg
	}{
		{"saved", nil, model.EntrySavedMsg{Entry: model.NewEntry{Pokemon: "Mew", Location: "Faraway Island"}}},
		{"rejected with reason", &api.RejectedError{Reason: "location is required"}, model.EntryRejectedMsg{Reason: "location is required"}},
		{"rejected", api.ErrEntryRejected, model.EntryRejectedMsg{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{addErr: tt.err}
			got := addEntryCmd(context.Background(), b, model.NewEntry{Pokemon: "Mew", Location: "Faraway Island"})()
			if got != tt.want {
				t.Errorf("msg = %#v, want %#v", got, tt.want)
			}
		})
	}

	b := &fakeBackend{addErr: errors.New("connection refused")}
	if _, ok := addEntryCmd(context.Background(), b, model.NewEntry{})().(model.EntryFailedMsg); !ok {
		t.Error("transport error did not produce EntryFailedMsg")
	}
}

func TestModelAddEntryErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.Msg
		want string
	}{
		{"rejected", model.EntryRejectedMsg{}, "Failed to add entry."},
		{"failed", model.EntryFailedMsg{Err: errors.New("boom")}, "Error adding new entry."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loaded(t, &fakeBackend{}, Options{})
			m, _ = update(t, m, runes("a"))
			m, _ = update(t, m, tt.msg)
			if m.error != tt.want {
				t.Errorf("error = %q, want %q", m.error, tt.want)
			}
			if m.form == nil || m.form.submitting {
				t.Error("form should stay open and accept another submit")
			}
		})
	}
}

func TestModelSprite(t *testing.T) {
	b := &fakeBackend{}
	m := loaded(t, b, Options{})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != model.ScreenSprite || m.sprite == nil {
		t.Fatalf("screen = %v, want sprite", m.screen)
	}
	if m.sprite.Pokemon() != "Zubat" {
		t.Errorf("sprite for %q, want Zubat", m.sprite.Pokemon())
	}
	m, _ = update(t, m, cmd())
	if m.sprite.img == nil {
		t.Error("sprite image not stored")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != model.ScreenLeaderboard || m.sprite != nil {
		t.Errorf("back left screen = %v", m.screen)
	}
}

type fakeFeed struct {
	events chan api.Event
	closed bool
}

func (f *fakeFeed) Next() (api.Event, error) {
	ev, ok := <-f.events
	if !ok {
		return api.Event{}, errors.New("closed")
	}
	return ev, nil
}

func (f *fakeFeed) Close() error {
	f.closed = true
	return nil
}

func TestModelLiveRefresh(t *testing.T) {
	feed := &fakeFeed{events: make(chan api.Event, 1)}
	m := loaded(t, &fakeBackend{}, Options{
		Subscribe: func(context.Context) (EventSource, error) { return feed, nil },
	})
	m.pending = 0

	m, cmd := update(t, m, subscribeCmd(context.Background(), m.subscribe)())
	if m.feed == nil || cmd == nil {
		t.Fatal("feed not stored")
	}

	feed.events <- api.Event{Type: api.EventEntryAdded}
	m, _ = update(t, m, cmd())
	if m.pending != 4 {
		t.Errorf("pending = %d, want a full reload", m.pending)
	}

	close(feed.events)
	m, _ = update(t, m, waitForEventCmd(feed)())
	if m.feed != nil {
		t.Error("feed kept after close")
	}
}

func TestModelLiveRefreshSkipsWhileReloading(t *testing.T) {
	feed := &fakeFeed{events: make(chan api.Event, 1)}
	m := loaded(t, &fakeBackend{}, Options{})
	m, _ = update(t, m, feedOpenedMsg{source: feed})

	// Our own submit already started a reload.
	m, _ = update(t, m, model.EntrySavedMsg{})
	before := m.pending
	if before == 0 {
		t.Fatal("no reload in flight after save")
	}

	m, cmd := update(t, m, model.RemoteChangedMsg{Type: api.EventEntryAdded})
	if m.pending != before {
		t.Errorf("pending = %d, want %d", m.pending, before)
	}
	if cmd == nil {
		t.Fatal("feed wait not re-armed")
	}
	feed.events <- api.Event{Type: api.EventEntryAdded}
	if _, ok := cmd().(model.RemoteChangedMsg); !ok {
		t.Error("returned command is not the feed wait")
	}
}

func TestModelQuitClosesFeed(t *testing.T) {
	feed := &fakeFeed{events: make(chan api.Event)}
	m := loaded(t, &fakeBackend{}, Options{})
	m, _ = update(t, m, feedOpenedMsg{source: feed})

	_, cmd := update(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if !feed.closed {
		t.Error("feed not closed on quit")
	}
}
