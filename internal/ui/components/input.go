package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// Input wraps bubbles/textinput as the chat's message line.
type Input struct {
	Model textinput.Model
}

// NewInput creates a focused input.
func NewInput(placeholder string, charLimit int) Input {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	ti.Focus()
	return Input{Model: ti}
}

// Init returns the initial command.
func (t Input) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t Input) Update(msg tea.Msg) (Input, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the input.
func (t Input) View() string {
	return t.Model.View()
}

// Value returns the current input value.
func (t Input) Value() string {
	return t.Model.Value()
}

// Empty reports whether nothing has been typed.
func (t Input) Empty() bool {
	return t.Model.Value() == ""
}

// Reset clears the input.
func (t *Input) Reset() {
	t.Model.Reset()
}
