// Package grid renders the sound-cue board and turns key and mouse input
// into cue actions. The grid never mutates board state itself: it emits
// request messages the app layer applies, and is handed fresh cues after
// every change, so what is on screen is always a pure function of the
// board order.
package grid

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/cueboard/internal/board"
	"github.com/zjrosen/cueboard/internal/ui/styles"
)

// ToggleRequestMsg asks the app to flip playback for a cue.
type ToggleRequestMsg struct {
	ID string
}

// MoveRequestMsg asks the app to splice a cue to a new board position.
type MoveRequestMsg struct {
	ID     string
	Target int
}

// RenameRequestMsg asks the app to open the rename modal for a cue.
type RenameRequestMsg struct {
	ID      string
	Current string
}

// InsertRequestMsg asks the app to insert a cue marker into the narrative.
type InsertRequestMsg struct {
	ID string
}

// Model holds the grid view state.
type Model struct {
	zones   *zone.Manager
	cues    []board.Cue
	playing map[string]bool

	selected int
	columns  int
	width    int
	focused  bool
	moveMode bool

	// pressedID tracks a left-button press on a cell until release, which
	// is how a mouse drag-reorder is recognized.
	pressedID string
}

// New creates a grid with the given zone manager and column count.
func New(zones *zone.Manager, columns int) Model {
	return Model{
		zones:   zones,
		playing: make(map[string]bool),
		columns: max(1, columns),
	}
}

// SetCues replaces the rendered cues, clamping the selection.
func (m Model) SetCues(cues []board.Cue) Model {
	m.cues = cues
	if m.selected >= len(cues) {
		m.selected = max(0, len(cues)-1)
	}
	return m
}

// SetPlaying records the playing state for one cue id.
func (m Model) SetPlaying(id string, playing bool) Model {
	next := make(map[string]bool, len(m.playing)+1)
	for k, v := range m.playing {
		next[k] = v
	}
	if playing {
		next[id] = true
	} else {
		delete(next, id)
	}
	m.playing = next
	return m
}

// SetSize sets the available render width.
func (m Model) SetSize(width int) Model {
	m.width = width
	return m
}

// Focus sets keyboard focus. Losing focus cancels move mode.
func (m Model) Focus(focused bool) Model {
	m.focused = focused
	if !focused {
		m.moveMode = false
	}
	return m
}

// Focused reports whether the grid has keyboard focus.
func (m Model) Focused() bool {
	return m.focused
}

// MoveMode reports whether the selected cue is being moved.
func (m Model) MoveMode() bool {
	return m.moveMode
}

// Select moves the selection to the cue with the given id, if present.
func (m Model) Select(id string) Model {
	for i, c := range m.cues {
		if c.ID == id {
			m.selected = i
			break
		}
	}
	return m
}

// SelectedCue returns the currently selected cue.
func (m Model) SelectedCue() (board.Cue, bool) {
	if m.selected < 0 || m.selected >= len(m.cues) {
		return board.Cue{}, false
	}
	return m.cues[m.selected], true
}

func request(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// Update handles key and mouse input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.focused || len(m.cues) == 0 {
			return m, nil
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		return m.step(-1)
	case "right", "l":
		return m.step(1)
	case "up", "k":
		return m.step(-m.columns)
	case "down", "j":
		return m.step(m.columns)

	case "enter", " ":
		cue, ok := m.SelectedCue()
		if !ok {
			return m, nil
		}
		return m, request(ToggleRequestMsg{ID: cue.ID})

	case "m":
		m.moveMode = !m.moveMode
		return m, nil

	case "esc":
		m.moveMode = false
		return m, nil

	case "r":
		cue, ok := m.SelectedCue()
		if !ok {
			return m, nil
		}
		return m, request(RenameRequestMsg{ID: cue.ID, Current: cue.DisplayName})

	case "i":
		cue, ok := m.SelectedCue()
		if !ok {
			return m, nil
		}
		return m, request(InsertRequestMsg{ID: cue.ID})
	}
	return m, nil
}

// step moves the selection, or the selected cue itself in move mode.
func (m Model) step(delta int) (Model, tea.Cmd) {
	target := max(0, min(m.selected+delta, len(m.cues)-1))

	if m.moveMode {
		cue, ok := m.SelectedCue()
		if !ok || target == m.selected {
			return m, nil
		}
		m.selected = target // follow the cue to its new position
		return m, request(MoveRequestMsg{ID: cue.ID, Target: target})
	}

	m.selected = target
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if id, ok := m.cueAt(msg); ok {
			m.pressedID = id
		}

	case tea.MouseActionRelease:
		pressed := m.pressedID
		m.pressedID = ""
		if pressed == "" {
			return m, nil
		}
		target, ok := m.cueAt(msg)
		if !ok {
			return m, nil
		}
		m = m.Select(target)
		if target == pressed {
			// Press and release on the same cell: a click, which
			// toggles playback (activation on release, so a drag never
			// fires the sound).
			return m, request(ToggleRequestMsg{ID: pressed})
		}
		// Press on one cell, release on another: drag-reorder.
		m = m.Select(pressed)
		return m, request(MoveRequestMsg{ID: pressed, Target: m.indexOf(target)})
	}
	return m, nil
}

// cueAt returns the cue id whose cell contains the mouse event.
func (m Model) cueAt(msg tea.MouseMsg) (string, bool) {
	for _, c := range m.cues {
		if m.zones.Get(zoneID(c.ID)).InBounds(msg) {
			return c.ID, true
		}
	}
	return "", false
}

func (m Model) indexOf(id string) int {
	for i, c := range m.cues {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func zoneID(id string) string {
	return "cue:" + id
}

// View renders the cue cells in rows of m.columns.
func (m Model) View() string {
	if len(m.cues) == 0 {
		return ""
	}

	cellWidth := cellContentWidth(m.width, m.columns)

	var rows []string
	for start := 0; start < len(m.cues); start += m.columns {
		end := min(start+m.columns, len(m.cues))
		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cells = append(cells, m.renderCell(i, cellWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderCell(i, cellWidth int) string {
	cue := m.cues[i]
	playing := m.playing[cue.ID]

	name := styles.Pad(cue.DisplayName, cellWidth)

	status := "▶ " + styles.Truncate(cue.ID, cellWidth-2)
	statusStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	if playing {
		status = "■ playing"
		statusStyle = lipgloss.NewStyle().Foreground(styles.AlertColor)
	}

	nameStyle := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Bold(playing)
	content := nameStyle.Render(name) + "\n" + statusStyle.Render(styles.Pad(status, cellWidth))

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderDefaultColor).
		Padding(0, 1).
		Width(cellWidth + 2)

	switch {
	case m.focused && i == m.selected && m.moveMode:
		border = border.BorderForeground(styles.AlertColor)
	case m.focused && i == m.selected:
		border = border.BorderForeground(styles.BorderFocusedColor)
	case playing:
		border = border.BorderForeground(styles.AccentColor)
	}

	return m.zones.Mark(zoneID(cue.ID), border.Render(content))
}
