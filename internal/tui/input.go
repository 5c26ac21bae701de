package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputMode represents what the text input is currently collecting.
type InputMode int

const (
	InputModeNone InputMode = iota
	InputModeAccessCode
	InputModeSearch
)

// InputModel handles text entry for the login gate and the search box.
type InputModel struct {
	textInput textinput.Model
	mode      InputMode
}

// NewInputModel creates a new input model.
func NewInputModel() InputModel {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 40

	return InputModel{
		textInput: ti,
		mode:      InputModeNone,
	}
}

// SetMode sets the input mode and updates the prompt.
func (m *InputModel) SetMode(mode InputMode) {
	m.mode = mode
	m.textInput.Reset()

	switch mode {
	case InputModeAccessCode:
		m.textInput.Placeholder = "Access code..."
		m.textInput.Prompt = inputPromptStyle.Render("🔑 ") + " "
		m.textInput.EchoMode = textinput.EchoPassword
	case InputModeSearch:
		m.textInput.Placeholder = "Search..."
		m.textInput.Prompt = inputPromptStyle.Render("/ ")
		m.textInput.EchoMode = textinput.EchoNormal
	default:
		m.textInput.Placeholder = ""
		m.textInput.Prompt = ""
		m.textInput.EchoMode = textinput.EchoNormal
	}

	if mode != InputModeNone {
		m.textInput.Focus()
	} else {
		m.textInput.Blur()
	}
}

// Mode returns the current input mode.
func (m InputModel) Mode() InputMode {
	return m.mode
}

// Value returns the current input value.
func (m InputModel) Value() string {
	return m.textInput.Value()
}

// IsActive returns true if input is being collected.
func (m InputModel) IsActive() bool {
	return m.mode != InputModeNone
}

// Reset deactivates the input.
func (m *InputModel) Reset() {
	m.SetMode(InputModeNone)
}

// SetWidth adjusts the input width.
func (m *InputModel) SetWidth(w int) {
	if w > 10 {
		m.textInput.Width = w
	}
}

// Focus returns the command that starts the cursor blink.
func (m InputModel) Focus() tea.Cmd {
	return textinput.Blink
}

// Update forwards messages to the underlying text input.
func (m InputModel) Update(msg tea.Msg) (InputModel, tea.Cmd) {
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the input line.
func (m InputModel) View() string {
	return m.textInput.View()
}
