package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// OnboardingSettings is what first-run setup remembers between launches.
type OnboardingSettings struct {
	Completed bool   `json:"completed"`
	ServerURL string `json:"server_url,omitempty"`
}

func onboardingPath(configDir string) string {
	return filepath.Join(configDir, "onboarding.json")
}

func loadOnboardingSettings(configDir string) (OnboardingSettings, error) {
	data, err := os.ReadFile(onboardingPath(configDir))
	if err != nil {
		if os.IsNotExist(err) {
			return OnboardingSettings{}, nil
		}
		return OnboardingSettings{}, err
	}

	var settings OnboardingSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return OnboardingSettings{}, err
	}
	return settings, nil
}

func saveOnboardingSettings(configDir string, settings OnboardingSettings) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(onboardingPath(configDir), data, 0644)
}

func shouldRunOnboarding(settings OnboardingSettings) bool {
	if settings.Completed {
		return false
	}
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// validateServerURL accepts absolute http and https URLs.
func validateServerURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

type onboardingModel struct {
	input    textinput.Model
	settings OnboardingSettings
	status   string
	done     bool
	width    int
	height   int
}

var (
	obColorMuted  = lipgloss.Color("#7C8099")
	obColorText   = lipgloss.Color("#E2E4F0")
	obColorAccent = lipgloss.Color("#F2C14E")
	obColorDanger = lipgloss.Color("#f38ba8")

	obTitleStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obHeaderStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorMuted).
			Padding(1, 2)

	obInputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorAccent).
			Padding(0, 1)

	obLabelStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obMutedStyle = lipgloss.NewStyle().
			Foreground(obColorMuted)

	obWarnStyle = lipgloss.NewStyle().
			Foreground(obColorDanger)

	obFooterStyle = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(obColorMuted)
)

func newOnboardingModel(defaultURL string) onboardingModel {
	in := textinput.New()
	in.Placeholder = defaultURL
	in.SetValue(defaultURL)
	in.CharLimit = 300
	in.Prompt = "server> "
	in.TextStyle = lipgloss.NewStyle().Foreground(obColorText)
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(obColorMuted)
	in.Focus()

	return onboardingModel{
		input: in,
		settings: OnboardingSettings{
			Completed: true,
			ServerURL: defaultURL,
		},
	}
}

func (m onboardingModel) Init() tea.Cmd { return textinput.Blink }

func (m onboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			raw := strings.TrimRight(strings.TrimSpace(m.input.Value()), "/")
			if raw == "" {
				raw = m.input.Placeholder
			}
			if err := validateServerURL(raw); err != nil {
				m.status = fmt.Sprintf("Invalid server URL: %v", err)
				return m, nil
			}
			m.settings.ServerURL = raw
			m.status = "Server saved."
			m.done = true
			return m, tea.Quit
		case "esc", "ctrl+c":
			m.status = "Setup skipped. Using " + m.settings.ServerURL + "."
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m onboardingModel) View() string {
	width := m.width
	if width <= 0 {
		width = 100
	}
	height := m.height
	if height <= 0 {
		height = 24
	}

	left := "  " + obTitleStyle.Render("dexrun") + " " + obMutedStyle.Render("› Setup")
	right := obMutedStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "
	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	header := obHeaderStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)

	cardWidth := min(92, width-6)
	if cardWidth < 40 {
		cardWidth = width - 2
	}

	lines := []string{
		obLabelStyle.Render("Where is your run tracker?"),
		"",
		obMutedStyle.Render("dexrun reads the leaderboard from a tracker server."),
		obMutedStyle.Render("Start one locally with  dexrun -serve :5000"),
		"",
		obInputStyle.Width(max(30, cardWidth-14)).Render(m.input.View()),
	}
	if m.status != "" {
		style := obMutedStyle
		if strings.HasPrefix(m.status, "Invalid") {
			style = obWarnStyle
		}
		lines = append(lines, "", style.Render(m.status))
	}
	lines = append(lines, "", obMutedStyle.Render("You can change this later in ~/.dexrun/onboarding.json"))

	card := obPanelStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	content := lipgloss.Place(width, max(8, height-4), lipgloss.Center, lipgloss.Top, card)
	footer := obFooterStyle.Width(width).Render("enter save  esc skip")

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func runOnboarding(configDir, defaultURL string) (OnboardingSettings, error) {
	prog := tea.NewProgram(newOnboardingModel(defaultURL), tea.WithAltScreen())
	finalModel, err := prog.Run()
	if err != nil {
		return OnboardingSettings{}, fmt.Errorf("onboarding tui failed: %w", err)
	}
	m, ok := finalModel.(onboardingModel)
	if !ok {
		return OnboardingSettings{}, fmt.Errorf("unexpected onboarding model type")
	}
	if err := saveOnboardingSettings(configDir, m.settings); err != nil {
		return OnboardingSettings{}, err
	}
	return m.settings, nil
}
