package ui

import (
	"fmt"
	"strings"

	"dexrun/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldPokemon = iota
	fieldLocation
)

// EntryFormModel is the add-entry form.
type EntryFormModel struct {
	keys         FormKeyMap
	focusedField int
	inputs       []textinput.Model
	error        string
	submitting   bool
}

// NewEntryFormModel creates an empty form focused on the Pokémon field.
func NewEntryFormModel(keys FormKeyMap) *EntryFormModel {
	inputs := make([]textinput.Model, 2)

	inputs[fieldPokemon] = textinput.New()
	inputs[fieldPokemon].Placeholder = "Pokémon name"
	inputs[fieldPokemon].Focus()
	inputs[fieldPokemon].CharLimit = 40

	inputs[fieldLocation] = textinput.New()
	inputs[fieldLocation].Placeholder = "Where it was found"
	inputs[fieldLocation].CharLimit = 80

	return &EntryFormModel{
		keys:   keys,
		inputs: inputs,
	}
}

// Entry returns the trimmed form values.
func (m *EntryFormModel) Entry() model.NewEntry {
	return model.NewEntry{
		Pokemon:  strings.TrimSpace(m.inputs[fieldPokemon].Value()),
		Location: strings.TrimSpace(m.inputs[fieldLocation].Value()),
	}
}

// Validate checks required fields.
func (m *EntryFormModel) Validate() error {
	e := m.Entry()
	if e.Pokemon == "" {
		return fmt.Errorf("pokémon is required")
	}
	if e.Location == "" {
		return fmt.Errorf("location is required")
	}
	return nil
}

// Update handles input. submit is called with a valid entry when the user
// saves; it returns the command that performs the request.
func (m EntryFormModel) Update(msg tea.Msg, submit func(model.NewEntry) tea.Cmd) (EntryFormModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		return m, func() tea.Msg {
			return model.FormCancelledMsg{}
		}
	case key.Matches(keyMsg, m.keys.Save):
		if keyMsg.String() == "enter" && m.focusedField < len(m.inputs)-1 {
			m.nextField()
			return m, nil
		}
		if m.submitting {
			return m, nil
		}
		if err := m.Validate(); err != nil {
			m.error = err.Error()
			return m, nil
		}
		m.error = ""
		m.submitting = true
		return m, submit(m.Entry())
	case key.Matches(keyMsg, m.keys.NextField):
		m.nextField()
		return m, nil
	case key.Matches(keyMsg, m.keys.PrevField):
		m.prevField()
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(keyMsg)
	return m, cmd
}

// Fail re-enables the form after a rejected or failed submit.
func (m *EntryFormModel) Fail(reason string) {
	m.submitting = false
	m.error = reason
}

// View renders the form.
func (m *EntryFormModel) View(width, height int) string {
	fields := []string{
		renderFormField("Pokémon *", m.inputs[fieldPokemon], m.focusedField == fieldPokemon),
		renderFormField("Location *", m.inputs[fieldLocation], m.focusedField == fieldLocation),
	}
	if m.submitting {
		fields = append(fields, HelpDescStyle.Render("Submitting..."))
	}
	if m.error != "" {
		fields = append(fields, ErrorStyle.Render(m.error))
	}

	return PanelStyle.
		Width(max(10, width-4)).
		Height(max(4, height-4)).
		Render(strings.Join(fields, "\n\n"))
}

func (m *EntryFormModel) nextField() {
	m.inputs[m.focusedField].Blur()
	m.focusedField = (m.focusedField + 1) % len(m.inputs)
	m.inputs[m.focusedField].Focus()
}

func (m *EntryFormModel) prevField() {
	m.inputs[m.focusedField].Blur()
	m.focusedField--
	if m.focusedField < 0 {
		m.focusedField = len(m.inputs) - 1
	}
	m.inputs[m.focusedField].Focus()
}

func renderFormField(label string, input textinput.Model, focused bool) string {
	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}

	field := lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render(label),
		input.View(),
	)

	return style.Render(field)
}
