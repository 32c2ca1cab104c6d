// Package modal renders a centered dialog box, either a confirmation
// prompt or a small form of text inputs.
package modal

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/cueboard/internal/ui/styles"
)

// Field identifies which button has focus when no input does.
type Field int

const (
	FieldSave Field = iota
	FieldCancel
)

// InputConfig describes one text input in the dialog.
type InputConfig struct {
	Key         string
	Label       string
	Placeholder string
	Value       string
	MaxLength   int
}

// Config describes the dialog. With no Inputs the dialog is a
// confirmation prompt; otherwise it is a form.
type Config struct {
	Title   string
	Message string
	Inputs  []InputConfig
}

// SubmitMsg is emitted when the dialog is accepted. Values maps each
// input Key to its entered text; it is empty for confirmation prompts.
type SubmitMsg struct {
	Values map[string]string
}

// CancelMsg is emitted when the dialog is dismissed.
type CancelMsg struct{}

// Model is the dialog state.
type Model struct {
	cfg       Config
	hasInputs bool
	inputs    []textinput.Model
	inputKeys []string

	// focusedInput is the index of the focused input, or -1 when focus
	// is on the buttons.
	focusedInput int
	focusedField Field

	width  int
	height int
}

// New creates a dialog from the config.
func New(cfg Config) Model {
	m := Model{
		cfg:          cfg,
		hasInputs:    len(cfg.Inputs) > 0,
		focusedInput: -1,
		focusedField: FieldSave,
	}

	for _, ic := range cfg.Inputs {
		ti := textinput.New()
		ti.Placeholder = ic.Placeholder
		ti.SetValue(ic.Value)
		ti.CharLimit = ic.MaxLength
		ti.Width = 32
		m.inputs = append(m.inputs, ti)
		m.inputKeys = append(m.inputKeys, ic.Key)
	}

	if m.hasInputs {
		m.focusedInput = 0
		m.inputs[0].Focus()
	}
	return m
}

// Init starts the cursor blink when the dialog has inputs.
func (m Model) Init() tea.Cmd {
	if m.hasInputs {
		return textinput.Blink
	}
	return nil
}

// SetSize records the terminal size used to center the overlay.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// Update handles dialog input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, emit(CancelMsg{})

	case "tab":
		return m.cycleFocus(1), nil

	case "shift+tab":
		return m.cycleFocus(-1), nil

	case "left", "right":
		if m.focusedInput == -1 {
			if m.focusedField == FieldSave {
				m.focusedField = FieldCancel
			} else {
				m.focusedField = FieldSave
			}
			return m, nil
		}

	case "enter":
		if m.focusedInput >= 0 {
			// Enter on an input jumps to the buttons.
			return m.cycleFocus(len(m.inputs) - m.focusedInput), nil
		}
		if m.focusedField == FieldCancel {
			return m, emit(CancelMsg{})
		}
		return m.submit()

	case "y":
		if m.focusedInput == -1 {
			return m.submit()
		}

	case "n":
		if m.focusedInput == -1 {
			return m, emit(CancelMsg{})
		}
	}

	if m.focusedInput >= 0 {
		var cmd tea.Cmd
		m.inputs[m.focusedInput], cmd = m.inputs[m.focusedInput].Update(msg)
		return m, cmd
	}
	return m, nil
}

// submit validates the form and emits SubmitMsg. Forms with any empty
// input do not submit.
func (m Model) submit() (Model, tea.Cmd) {
	values := make(map[string]string)
	for i, ti := range m.inputs {
		value := strings.TrimSpace(ti.Value())
		if value == "" {
			return m, nil
		}
		values[m.inputKeys[i]] = value
	}
	return m, emit(SubmitMsg{Values: values})
}

// cycleFocus walks the focus ring: inputs in order, then Save, then
// Cancel, then around again.
func (m Model) cycleFocus(delta int) Model {
	// Flatten the ring: 0..len(inputs)-1 are inputs, then Save, Cancel.
	ringLen := len(m.inputs) + 2
	pos := m.focusedInput
	if pos == -1 {
		pos = len(m.inputs)
		if m.focusedField == FieldCancel {
			pos++
		}
	}

	pos = ((pos+delta)%ringLen + ringLen) % ringLen

	if m.focusedInput >= 0 {
		m.inputs[m.focusedInput].Blur()
	}
	if pos < len(m.inputs) {
		m.focusedInput = pos
		m.inputs[pos].Focus()
	} else {
		m.focusedInput = -1
		m.focusedField = FieldSave
		if pos == len(m.inputs)+1 {
			m.focusedField = FieldCancel
		}
	}
	return m
}

var (
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.BorderFocusedColor).
			Padding(1, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(styles.TextDimColor)

	buttonStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimaryColor).
			Padding(0, 2)

	activeButtonStyle = buttonStyle.
				Background(styles.SelectionBackgroundColor).
				Foreground(styles.AccentColor).
				Bold(true)
)

// View renders the dialog box.
func (m Model) View() string {
	var sections []string

	sections = append(sections, styles.TitleStyle.Render(m.cfg.Title))

	if m.cfg.Message != "" {
		sections = append(sections, m.cfg.Message)
	}

	for i, ti := range m.inputs {
		sections = append(sections, labelStyle.Render(m.cfg.Inputs[i].Label), ti.View())
	}

	saveLabel := "Confirm"
	if m.hasInputs {
		saveLabel = "Save"
	}
	save := buttonStyle.Render(saveLabel)
	cancel := buttonStyle.Render("Cancel")
	if m.focusedInput == -1 {
		if m.focusedField == FieldSave {
			save = activeButtonStyle.Render(saveLabel)
		} else {
			cancel = activeButtonStyle.Render("Cancel")
		}
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, save, "  ", cancel))

	return dialogStyle.Render(strings.Join(sections, "\n\n"))
}

// Overlay centers the dialog over the given background, replacing the
// covered rows and leaving the rest of the background visible.
func (m Model) Overlay(background string) string {
	dialog := m.View()
	if m.width == 0 || m.height == 0 {
		return dialog
	}

	bgLines := strings.Split(background, "\n")
	dialogLines := strings.Split(dialog, "\n")

	top := max(0, (len(bgLines)-len(dialogLines))/2)
	for i, line := range dialogLines {
		row := top + i
		if row >= len(bgLines) {
			break
		}
		bgLines[row] = lipgloss.PlaceHorizontal(m.width, lipgloss.Center, line)
	}
	return strings.Join(bgLines, "\n")
}
