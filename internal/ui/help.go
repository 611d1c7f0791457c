package ui

import (
	"strings"

	"dexrun/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, keys KeyMap, formKeys FormKeyMap, width int) string {
	if mode == model.ModeInsert {
		return renderHelpLine(bindingHelp(formKeys.NextField, formKeys.PrevField, formKeys.Save, formKeys.Cancel), width)
	}

	switch screen {
	case model.ScreenLeaderboard:
		return renderHelpLine(bindingHelp(
			keys.Down, keys.NextColumn, keys.Sort, keys.SortColumn,
			keys.Sprite, keys.Add, keys.NextTab, keys.Refresh, keys.Quit,
		), width)
	case model.ScreenRecent:
		return renderHelpLine(bindingHelp(
			keys.Down, keys.Sprite, keys.Add, keys.NextTab, keys.Refresh, keys.Quit,
		), width)
	case model.ScreenLocations:
		return renderHelpLine(bindingHelp(
			keys.Down, keys.Add, keys.NextTab, keys.Refresh, keys.Quit,
		), width)
	case model.ScreenSprite:
		return renderHelpLine(bindingHelp(keys.Back, keys.Quit), width)
	default:
		return renderHelpLine(bindingHelp(keys.Down, keys.Quit), width)
	}
}

func bindingHelp(bindings ...key.Binding) []string {
	out := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, helpKey(h.Key, h.Desc))
	}
	return out
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(max(10, width-4)).
		Height(max(4, height-6)).
		Padding(1, 2)

	sections := []string{
		titleSection("Navigation"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"gg", "Jump to top"},
			{"G", "Jump to bottom"},
			{"h / l / ← / →", "Previous / next tab"},
			{"r", "Reload all data"},
			{"q", "Quit"},
			{"?", "Toggle help"},
		}),
		titleSection("Leaderboard"),
		helpSection([]helpItem{
			{"tab / shift+tab", "Cycle active column"},
			{"s", "Sort active column (toggles direction)"},
			{"1-4", "Sort by rank / pokemon / count / last time ran"},
			{"enter", "Show sprite"},
		}),
		titleSection("Entries"),
		helpSection([]helpItem{
			{"a", "Add an entry"},
			{"tab / shift+tab", "Next / previous field"},
			{"enter / ctrl+s", "Submit"},
			{"esc", "Cancel"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
