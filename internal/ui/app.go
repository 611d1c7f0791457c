package ui

import (
	"context"
	"fmt"
	"io"
	"log"
	"maps"
	"math/rand"
	"strings"

	"dexrun/internal/api"
	"dexrun/internal/model"
	"dexrun/internal/sorter"
	"dexrun/internal/util"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Options configures the root model.
type Options struct {
	// Context bounds every request and the live feed.
	Context context.Context
	Sorter  *sorter.Sorter
	// InitialSort, when set, is applied once the leaderboard first loads.
	InitialSort *sorter.Column
	// Subscribe opens the live feed. Nil disables live refresh.
	Subscribe Subscriber
	Logger    *log.Logger
	Rand      *rand.Rand
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx       context.Context
	backend   Backend
	subscribe Subscriber
	feed      EventSource
	logger    *log.Logger
	rng       *rand.Rand

	screen     model.Screen
	prevScreen model.Screen
	mode       model.Mode
	gState     GState

	width  int
	height int

	total       int
	totalLoaded bool
	totalErr    bool
	loadErrs    map[string]string

	error       string
	info        string
	showingHelp bool

	pending int
	spinner spinner.Model

	initialSort *sorter.Column

	// Screen models
	leaderboard *LeaderboardModel
	recent      *RecentModel
	locations   *LocationsModel
	sprite      *SpriteModel
	form        *EntryFormModel

	keys     KeyMap
	formKeys FormKeyMap
}

var tabs = []struct {
	name   string
	screen model.Screen
}{
	{"Leaderboard", model.ScreenLeaderboard},
	{"Recent", model.ScreenRecent},
	{"Locations", model.ScreenLocations},
}

// New creates a new root model.
func New(backend Backend, opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = HelpKeyStyle

	return Model{
		ctx:         ctx,
		backend:     backend,
		subscribe:   opts.Subscribe,
		logger:      logger,
		rng:         opts.Rand,
		screen:      model.ScreenLeaderboard,
		mode:        model.ModeNav,
		gState:      GStateIdle,
		loadErrs:    map[string]string{},
		pending:     4,
		spinner:     sp,
		initialSort: opts.InitialSort,
		leaderboard: NewLeaderboardModel(opts.Sorter),
		recent:      NewRecentModel(nil),
		locations:   NewLocationsModel(nil),
		keys:        DefaultKeyMap(),
		formKeys:    DefaultFormKeyMap(),
	}
}

// Init starts the first load and, if enabled, the live feed.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.loadAllCmd()}
	if m.subscribe != nil {
		cmds = append(cmds, subscribeCmd(m.ctx, m.subscribe))
	}
	return tea.Batch(cmds...)
}

func (m Model) loadAllCmd() tea.Cmd {
	return tea.Batch(
		loadTotalsCmd(m.ctx, m.backend),
		loadLeaderboardCmd(m.ctx, m.backend),
		loadRecentCmd(m.ctx, m.backend),
		loadLocationsCmd(m.ctx, m.backend),
	)
}

// reload refetches all four datasets.
func (m Model) reload() (Model, tea.Cmd) {
	cmds := []tea.Cmd{m.loadAllCmd()}
	if m.pending == 0 {
		cmds = append(cmds, m.spinner.Tick)
	}
	m.pending += 4
	return m, tea.Batch(cmds...)
}

func (m *Model) done() {
	if m.pending > 0 {
		m.pending--
	}
}

func (m *Model) setLoadErr(source, msg string) {
	errs := maps.Clone(m.loadErrs)
	if msg == "" {
		delete(errs, source)
	} else {
		errs[source] = msg
	}
	m.loadErrs = errs
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		// Handle ctrl+c globally
		if msg.String() == "ctrl+c" {
			return m.quit()
		}

		if m.mode == model.ModeInsert {
			return m.handleInsertMode(msg)
		}

		if key.Matches(msg, m.keys.Help) {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" {
				m.showingHelp = false
			}
			return m, nil
		}

		return m.handleNavMode(msg)

	case model.ErrorMsg:
		m.error = msg.Err.Error()
		return m, nil

	case model.TotalsLoadedMsg:
		m.done()
		m.total = msg.Totals.TotalPokemon
		m.totalLoaded = true
		m.totalErr = false
		return m, nil

	case model.TotalsFailedMsg:
		m.done()
		m.totalErr = true
		m.logger.Printf("Error fetching total Pokemon: %v", msg.Err)
		return m, nil

	case model.LeaderboardLoadedMsg:
		m.done()
		m.leaderboard.SetEntries(msg.Entries)
		m.setLoadErr(sourceLeaderboard, "")
		if m.initialSort != nil {
			if _, err := m.leaderboard.SortColumn(*m.initialSort); err != nil {
				m.logger.Printf("Error applying initial sort: %v", err)
			}
			m.initialSort = nil
		}
		return m, nil

	case model.RecentLoadedMsg:
		m.done()
		m.recent.SetEntries(msg.Entries)
		m.setLoadErr(sourceRecent, "")
		return m, nil

	case model.LocationsLoadedMsg:
		m.done()
		m.locations.SetShares(msg.Shares)
		m.setLoadErr(sourceLocations, "")
		return m, nil

	case model.LoadFailedMsg:
		m.done()
		m.logger.Printf("Error fetching %s data: %v", msg.Source, msg.Err)
		m.setLoadErr(msg.Source, fmt.Sprintf("Error loading %s data.", msg.Source))
		return m, nil

	case model.EntrySavedMsg:
		m.logger.Printf("Entry added: %s at %s", msg.Entry.Pokemon, msg.Entry.Location)
		m.mode = model.ModeNav
		m.screen = m.prevScreen
		m.form = nil
		m.error = ""
		m.info = "Entry added successfully."
		return m.reload()

	case model.EntryRejectedMsg:
		m.logger.Printf("Entry rejected: %s", msg.Reason)
		m.info = ""
		m.error = "Failed to add entry."
		if m.form != nil {
			reason := "Failed to add entry."
			if msg.Reason != "" {
				reason = "Failed to add entry: " + msg.Reason
			}
			m.form.Fail(reason)
		}
		return m, nil

	case model.EntryFailedMsg:
		m.logger.Printf("Error adding new entry: %v", msg.Err)
		m.info = ""
		m.error = "Error adding new entry."
		if m.form != nil {
			m.form.Fail("Error adding new entry.")
		}
		return m, nil

	case model.FormCancelledMsg:
		m.mode = model.ModeNav
		m.form = nil
		m.screen = m.prevScreen
		return m, nil

	case model.SpriteLoadedMsg:
		if m.sprite != nil && m.sprite.Pokemon() == msg.Pokemon {
			m.sprite.SetImage(msg.Image)
		}
		return m, nil

	case model.SpriteFailedMsg:
		m.logger.Printf("Error fetching sprite for %s: %v", msg.Pokemon, msg.Err)
		if m.sprite != nil && m.sprite.Pokemon() == msg.Pokemon {
			m.sprite.SetError(msg.Err)
		}
		return m, nil

	case feedOpenedMsg:
		m.feed = msg.source
		return m, waitForEventCmd(msg.source)

	case model.RemoteChangedMsg:
		if m.feed == nil {
			return m, nil
		}
		next := waitForEventCmd(m.feed)
		// A reload already in flight, such as the one after our own
		// submit, picks up the new entry.
		if msg.Type != api.EventEntryAdded || m.pending > 0 {
			return m, next
		}
		var reload tea.Cmd
		m, reload = m.reload()
		return m, tea.Batch(reload, next)

	case model.FeedClosedMsg:
		m.feed = nil
		if m.ctx.Err() == nil {
			m.logger.Printf("Live feed closed: %v", msg.Err)
		}
		return m, nil

	default:
		// Pass all other messages to the form
		if m.mode == model.ModeInsert && m.form != nil {
			newForm, cmd := m.form.Update(msg, m.submitEntry)
			m.form = &newForm
			return m, cmd
		}
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.feed != nil {
		_ = m.feed.Close()
	}
	return m, tea.Quit
}

func (m Model) submitEntry(e model.NewEntry) tea.Cmd {
	return addEntryCmd(m.ctx, m.backend, e)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	showTabs := m.isTab(m.screen)

	var banners []string
	banners = append(banners, m.renderTotal())
	if errMsg := m.currentLoadErr(); errMsg != "" {
		banners = append(banners, ErrorStyle.Width(m.width).Render(errMsg))
	}
	if m.error != "" {
		banners = append(banners, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		banners = append(banners, SuccessStyle.Width(m.width).Render(m.info))
	}

	// header + footer (2 lines) + padding
	contentHeight := m.height - 4 - len(banners)
	if showTabs {
		contentHeight -= 2
	}
	contentHeight = max(1, contentHeight)

	var content string
	var breadcrumbParts []string
	switch m.screen {
	case model.ScreenLeaderboard:
		breadcrumbParts = []string{"Leaderboard"}
		content = m.leaderboard.View(m.width, contentHeight)
	case model.ScreenRecent:
		breadcrumbParts = []string{"Recent"}
		content = m.recent.View(m.width, contentHeight)
	case model.ScreenLocations:
		breadcrumbParts = []string{"Locations"}
		content = m.locations.View(m.width, contentHeight)
	case model.ScreenSprite:
		breadcrumbParts = []string{m.tabName(m.prevScreen), "Sprite"}
		if m.sprite != nil {
			content = m.sprite.View(m.width, contentHeight)
		}
	case model.ScreenEntryForm:
		breadcrumbParts = []string{m.tabName(m.prevScreen), "New entry"}
		if m.form != nil {
			content = m.form.View(m.width, contentHeight)
		}
	}

	header := m.renderHeader(breadcrumbParts)
	footer := RenderHelp(m.screen, m.mode, m.keys, m.formKeys, m.width)

	// Ensure content fills the available height to anchor footer at bottom
	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		Render(content)

	parts := []string{header}
	if showTabs {
		parts = append(parts, renderTabs(m.screen, m.width))
	}
	parts = append(parts, banners...)
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderTotal() string {
	switch {
	case m.totalErr:
		return TotalStyle.Width(m.width).Render("Total Pokemon: Error loading data.")
	case !m.totalLoaded:
		return TotalStyle.Width(m.width).Render("Total Pokemon: ...")
	default:
		return TotalStyle.Width(m.width).Render(fmt.Sprintf("Total Pokemon: %d", m.total))
	}
}

func (m Model) currentLoadErr() string {
	switch m.screen {
	case model.ScreenLeaderboard:
		return m.loadErrs[sourceLeaderboard]
	case model.ScreenRecent:
		return m.loadErrs[sourceRecent]
	case model.ScreenLocations:
		return m.loadErrs[sourceLocations]
	}
	return ""
}

func (m Model) isTab(screen model.Screen) bool {
	for _, tab := range tabs {
		if tab.screen == screen {
			return true
		}
	}
	return false
}

func (m Model) tabName(screen model.Screen) string {
	for _, tab := range tabs {
		if tab.screen == screen {
			return tab.name
		}
	}
	return ""
}

func renderTabs(screen model.Screen, width int) string {
	var tabStrings []string
	for _, tab := range tabs {
		tabStyle := lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(ColorMuted)

		if screen == tab.screen {
			tabStyle = tabStyle.
				Foreground(ColorText).
				Bold(true).
				Underline(true)
		}

		tabStrings = append(tabStrings, tabStyle.Render(tab.name))
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Left, tabStrings...)
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		Render(tabBar)
}

func (m Model) renderHeader(breadcrumbParts []string) string {
	// Left side: app name + breadcrumb
	title := HeaderStyle.Render("dexrun")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := HelpDescStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = LabelStyle.Render(part)
			} else {
				parts[i] = HelpDescStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb

	// Right side: loading spinner and live status
	var status []string
	if m.pending > 0 {
		status = append(status, m.spinner.View()+HelpDescStyle.Render("loading"))
	}
	if m.feed != nil {
		status = append(status, SuccessStyle.Render("● live"))
	}
	right := strings.Join(status, " ") + "  "

	padding := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return TitleStyle.Width(m.width).Render(left + strings.Repeat(" ", padding) + right)
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle "gg" state machine
	if key.Matches(msg, m.keys.Top) {
		if m.gState == GStateIdle {
			m.gState = GStateFirstG
			return m, nil
		}
		m.gState = GStateIdle
		if t := m.currentTable(); t != nil {
			t.JumpToTop()
		}
		return m, nil
	}
	m.gState = GStateIdle

	if m.screen == model.ScreenSprite {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.screen = m.prevScreen
			m.sprite = nil
			return m, nil
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.NextTab):
		m.screen = m.cycleTab(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.screen = m.cycleTab(-1)
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.info = ""
		m.error = ""
		return m.reload()
	case key.Matches(msg, m.keys.Add):
		m.prevScreen = m.screen
		m.screen = model.ScreenEntryForm
		m.mode = model.ModeInsert
		m.form = NewEntryFormModel(m.formKeys)
		m.info = ""
		m.error = ""
		return m, nil
	}

	if t := m.currentTable(); t != nil {
		switch {
		case key.Matches(msg, m.keys.Down):
			t.MoveDown()
			return m, nil
		case key.Matches(msg, m.keys.Up):
			t.MoveUp()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			t.JumpToBottom()
			return m, nil
		}
	}

	switch m.screen {
	case model.ScreenLeaderboard:
		return m.handleLeaderboardNav(msg)
	case model.ScreenRecent:
		if key.Matches(msg, m.keys.Sprite) {
			if name, ok := m.recent.Selected(); ok {
				return m.openSprite(name)
			}
		}
	}

	return m, nil
}

func (m Model) handleLeaderboardNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextColumn):
		m.leaderboard.NextColumn()
		return m, nil
	case key.Matches(msg, m.keys.PrevColumn):
		m.leaderboard.PrevColumn()
		return m, nil
	case key.Matches(msg, m.keys.Sort):
		return m.sortResult(m.leaderboard.SortActiveColumn())
	case key.Matches(msg, m.keys.SortColumn):
		c, err := sorter.ParseColumn(msg.String())
		if err != nil {
			return m.sortResult("", err)
		}
		return m.sortResult(m.leaderboard.SortColumn(c))
	case key.Matches(msg, m.keys.Sprite):
		if row, ok := m.leaderboard.Selected(); ok {
			return m.openSprite(row.Cell(sorter.ColumnName))
		}
	}
	return m, nil
}

func (m Model) sortResult(info string, err error) (tea.Model, tea.Cmd) {
	if err != nil {
		m.logger.Printf("Error sorting leaderboard: %v", err)
		return m, func() tea.Msg { return model.ErrorMsg{Err: err} }
	}
	m.error = ""
	m.info = info
	return m, nil
}

func (m Model) openSprite(pokemon string) (tea.Model, tea.Cmd) {
	if pokemon == "" {
		return m, nil
	}
	shiny := util.RollShiny(m.rng)
	m.prevScreen = m.screen
	m.screen = model.ScreenSprite
	m.sprite = NewSpriteModel(pokemon, shiny)
	if shiny {
		m.logger.Printf("Shiny %s!", pokemon)
	}
	return m, loadSpriteCmd(m.ctx, m.backend, pokemon, shiny)
}

func (m Model) cycleTab(step int) model.Screen {
	for i, tab := range tabs {
		if tab.screen == m.screen {
			return tabs[(i+step+len(tabs))%len(tabs)].screen
		}
	}
	return tabs[0].screen
}

func (m *Model) currentTable() tableController {
	switch m.screen {
	case model.ScreenLeaderboard:
		return m.leaderboard
	case model.ScreenRecent:
		return m.recent
	case model.ScreenLocations:
		return m.locations
	}
	return nil
}

// handleInsertMode routes keys to the entry form.
func (m Model) handleInsertMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.mode = model.ModeNav
		return m, nil
	}
	newForm, cmd := m.form.Update(msg, m.submitEntry)
	m.form = &newForm
	return m, cmd
}
