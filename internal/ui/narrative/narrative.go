// Package narrative is the story editor pane. It wraps a textarea holding
// the display form of the narrative, where each sound cue appears as an
// editable [[cue:ID]] token, and layers an @cue autocomplete popup on top.
package narrative

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/cueboard/internal/board"
	"github.com/zjrosen/cueboard/internal/marker"
)

// ToggleRequestMsg asks the app to flip playback for the cue token under
// the cursor.
type ToggleRequestMsg struct {
	ID string
}

// Model holds the narrative editor state.
type Model struct {
	input  textarea.Model
	picker picker

	focused bool
}

// New creates the narrative editor.
func New() Model {
	ta := textarea.New()
	ta.Placeholder = "Write your story, @ inserts a sound cue..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = ""
	ta.Blur()

	return Model{
		input:  ta,
		picker: newPicker(),
	}
}

// SetCues updates the cues offered by the @ autocomplete.
func (m Model) SetCues(cues []board.Cue) Model {
	m.picker = m.picker.setCues(cues)
	return m
}

// SetSize resizes the underlying textarea.
func (m Model) SetSize(width, height int) Model {
	m.input.SetWidth(width)
	m.input.SetHeight(height)
	return m
}

// SetContent replaces the editor text and moves the cursor to the end.
func (m Model) SetContent(text string) Model {
	m.input.SetValue(text)
	return m
}

// Content returns the current editor text in display form.
func (m Model) Content() string {
	return m.input.Value()
}

// Focus gives the editor keyboard focus.
func (m Model) Focus() (Model, tea.Cmd) {
	m.focused = true
	return m, m.input.Focus()
}

// Blur removes keyboard focus and closes the autocomplete popup.
func (m Model) Blur() Model {
	m.focused = false
	m.input.Blur()
	m.picker = m.picker.deactivate()
	return m
}

// Focused reports whether the editor has keyboard focus.
func (m Model) Focused() bool {
	return m.focused
}

// PickerActive reports whether the @cue popup is open.
func (m Model) PickerActive() bool {
	return m.picker.isActive()
}

// InsertToken inserts a cue token at the cursor, space padded so it stays
// separated from surrounding words.
func (m Model) InsertToken(id string) Model {
	m.input.InsertString(" " + marker.Token(id) + " ")
	return m
}

// Update handles key input for the editor and the popup.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused {
		return m, nil
	}

	if m.picker.isActive() {
		return m.updatePicker(keyMsg)
	}

	switch keyMsg.String() {
	case "@":
		m.picker = m.picker.activate()
		return m, nil

	case "ctrl+t":
		if id, ok := m.tokenUnderCursor(); ok {
			return m, func() tea.Msg { return ToggleRequestMsg{ID: id} }
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(keyMsg)
	return m, cmd
}

// updatePicker routes keys to the popup. While it is open, typed runes
// build the filter query instead of entering the text.
func (m Model) updatePicker(msg tea.KeyMsg) (Model, tea.Cmd) {
	var chosen *board.Cue
	var consumed bool
	m.picker, consumed, chosen = m.picker.handleKey(msg)
	if chosen != nil {
		m = m.InsertToken(chosen.ID)
		return m, nil
	}
	if consumed {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace:
		query := m.picker.query + string(msg.Runes)
		if msg.Type == tea.KeySpace {
			query = m.picker.query + " "
		}
		var stillMatching bool
		m.picker, stillMatching = m.picker.updateQuery(query)
		if !stillMatching {
			m.picker = m.picker.deactivate()
		}
		return m, nil

	case tea.KeyBackspace:
		if m.picker.query == "" {
			m.picker = m.picker.deactivate()
			return m, nil
		}
		runes := []rune(m.picker.query)
		m.picker, _ = m.picker.updateQuery(string(runes[:len(runes)-1]))
		return m, nil
	}

	// Any other key closes the popup and is handled normally.
	m.picker = m.picker.deactivate()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// tokenUnderCursor returns the cue id of the token the cursor sits on.
func (m Model) tokenUnderCursor() (string, bool) {
	lines := strings.Split(m.input.Value(), "\n")
	row := m.input.Line()
	if row < 0 || row >= len(lines) {
		return "", false
	}
	info := m.input.LineInfo()
	return TokenAtCursor(lines[row], info.StartColumn+info.ColumnOffset)
}

// TokenAtCursor finds the [[cue:ID]] token covering the given rune column
// of a line, if any.
func TokenAtCursor(line string, col int) (string, bool) {
	if col < 0 {
		return "", false
	}
	// Convert the rune column to a byte offset for match comparison.
	runes := []rune(line)
	if col > len(runes) {
		col = len(runes)
	}
	byteCol := len(string(runes[:col]))

	for _, match := range marker.TokenPattern.FindAllStringSubmatchIndex(line, -1) {
		if byteCol >= match[0] && byteCol <= match[1] {
			return line[match[2]:match[3]], true
		}
	}
	return "", false
}

// View renders the textarea with the popup, when open, below it.
func (m Model) View() string {
	if popup := m.picker.view(); popup != "" {
		return lipgloss.JoinVertical(lipgloss.Left, m.input.View(), popup)
	}
	return m.input.View()
}
