// Package app is the root bubbletea model. It owns the board state and the
// audio engine, routes input between the cue grid and the narrative editor,
// and keeps the persisted markup in sync with what is playing.
package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/cueboard/internal/audio"
	"github.com/zjrosen/cueboard/internal/board"
	"github.com/zjrosen/cueboard/internal/config"
	"github.com/zjrosen/cueboard/internal/library"
	"github.com/zjrosen/cueboard/internal/log"
	"github.com/zjrosen/cueboard/internal/marker"
	"github.com/zjrosen/cueboard/internal/ui/grid"
	"github.com/zjrosen/cueboard/internal/ui/narrative"
	"github.com/zjrosen/cueboard/internal/ui/nolibrary"
	"github.com/zjrosen/cueboard/internal/ui/shared/editor"
	"github.com/zjrosen/cueboard/internal/ui/shared/modal"
	"github.com/zjrosen/cueboard/internal/ui/styles"
)

// PlaybackMsg reports a playback transition from the audio engine.
type PlaybackMsg struct {
	ID      string
	Playing bool
}

// LibraryChangedMsg means the library directory changed on disk and the
// board should be reconciled against a fresh scan.
type LibraryChangedMsg struct{}

// clearStatusMsg expires a status flash. The seq guards against a stale
// tick clearing a newer message.
type clearStatusMsg struct {
	seq int
}

const (
	statusFlashDuration = 2 * time.Second
	volumeStep          = 5
)

type focusArea int

const (
	focusGrid focusArea = iota
	focusNarrative
)

// Model is the application root.
type Model struct {
	cfg        config.Config
	state      *board.State
	engine     *audio.Engine
	zones      *zone.Manager
	libraryDir string
	statePath  string

	grid      grid.Model
	narrative narrative.Model
	empty     nolibrary.Model
	dialog    *modal.Model
	renameID  string

	focus     focusArea
	width     int
	height    int
	statusMsg string
	statusSeq int
}

// New assembles the root model around loaded board state.
func New(cfg config.Config, libraryDir, statePath string, state *board.State, engine *audio.Engine) Model {
	zones := zone.New()

	m := Model{
		cfg:        cfg,
		state:      state,
		engine:     engine,
		zones:      zones,
		libraryDir: libraryDir,
		statePath:  statePath,
		grid:       grid.New(zones, cfg.UI.Columns).Focus(true),
		narrative:  narrative.New(),
		empty:      nolibrary.New(libraryDir),
	}
	m.grid = m.grid.SetCues(state.Cues())
	m.narrative = m.narrative.SetCues(state.Cues())
	m.narrative = m.narrative.SetContent(marker.ToDisplay(state.Narrative()))
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update routes messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case PlaybackMsg:
		return m.applyPlayback(msg), nil

	case LibraryChangedMsg:
		return m.reconcileLibrary(), nil

	case editor.ExecMsg:
		return m, msg.ExecCmd()

	case editor.FinishedMsg:
		if msg.Err != nil {
			log.ErrorErr(log.CatUI, "external edit failed", msg.Err)
			return m.flashStatus("edit failed: " + msg.Err.Error())
		}
		m.narrative = m.narrative.SetContent(msg.Content)
		return m, nil

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
		}
		return m, nil

	case modal.SubmitMsg:
		return m.applyRename(msg.Values["name"])

	case modal.CancelMsg:
		m.dialog = nil
		return m, nil

	case grid.ToggleRequestMsg:
		return m.togglePlayback(msg.ID), nil

	case narrative.ToggleRequestMsg:
		return m.togglePlayback(msg.ID), nil

	case grid.MoveRequestMsg:
		if m.state.Reorder(msg.ID, msg.Target) {
			m.grid = m.grid.SetCues(m.state.Cues())
		}
		return m, nil

	case grid.RenameRequestMsg:
		return m.openRenameDialog(msg.ID, msg.Current), nil

	case grid.InsertRequestMsg:
		m.narrative = m.narrative.InsertToken(msg.ID)
		return m.setFocus(focusNarrative)

	case tea.MouseMsg:
		if m.dialog != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) resize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.grid = m.grid.SetSize(msg.Width - 2)
	m.narrative = m.narrative.SetSize(msg.Width-4, narrativeHeight(msg.Height))
	m.empty = m.empty.SetSize(msg.Width, msg.Height)
	if m.dialog != nil {
		m.dialog.SetSize(msg.Width, msg.Height)
	}
	return m
}

// narrativeHeight gives the editor a third of the terminal.
func narrativeHeight(total int) int {
	return max(3, total/3)
}

// applyPlayback mirrors an engine transition into the grid and into the
// persisted markup, so saved icons always match reality.
func (m Model) applyPlayback(msg PlaybackMsg) Model {
	m.grid = m.grid.SetPlaying(msg.ID, msg.Playing)
	m.state.SetNarrative(marker.SetPlaying(m.state.Narrative(), msg.ID, msg.Playing))
	return m
}

// reconcileLibrary rescans the library and reconciles the board, stopping
// playback for cues whose files disappeared.
func (m Model) reconcileLibrary() Model {
	entries, err := library.Scan(m.libraryDir)
	if err != nil {
		log.ErrorErr(log.CatLibrary, "rescan failed", err, "dir", m.libraryDir)
		return m
	}

	m.state.Reconcile(entries)

	for _, id := range m.engine.Playing() {
		if _, ok := m.state.Cue(id); !ok {
			m.engine.Stop(id)
		}
	}

	m.grid = m.grid.SetCues(m.state.Cues())
	m.narrative = m.narrative.SetCues(m.state.Cues())
	log.Info(log.CatLibrary, "library reconciled", "cues", m.state.Len())
	return m
}

func (m Model) togglePlayback(id string) Model {
	cue, ok := m.state.Cue(id)
	if !ok {
		return m
	}
	m.engine.Toggle(cue.ID, cue.AbsPath)
	return m
}

func (m Model) openRenameDialog(id, current string) Model {
	dialog := modal.New(modal.Config{
		Title: "Rename Sound",
		Inputs: []modal.InputConfig{
			{Key: "name", Label: "Display Name", Placeholder: "Enter a name...", Value: current, MaxLength: 60},
		},
	})
	dialog.SetSize(m.width, m.height)
	m.dialog = &dialog
	m.renameID = id
	return m
}

func (m Model) applyRename(name string) (Model, tea.Cmd) {
	if m.renameID != "" && name != "" && m.state.Rename(m.renameID, name) {
		m.grid = m.grid.SetCues(m.state.Cues())
		m.narrative = m.narrative.SetCues(m.state.Cues())
		log.Info(log.CatBoard, "cue renamed", "id", m.renameID, "name", name)
	}
	m.dialog = nil
	m.renameID = ""
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dialog != nil {
		dialog, cmd := m.dialog.Update(msg)
		m.dialog = &dialog
		return m, cmd
	}

	// While the @cue popup is open, the narrative owns the keyboard.
	if m.focus == focusNarrative && m.narrative.PickerActive() {
		var cmd tea.Cmd
		m.narrative, cmd = m.narrative.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c":
		m.engine.StopAll()
		return m, tea.Quit

	case "tab":
		if m.focus == focusGrid {
			return m.setFocus(focusNarrative)
		}
		return m.setFocus(focusGrid)

	case "ctrl+s":
		return m.save()

	case "ctrl+e":
		return m, editor.OpenCmd(m.narrative.Content())
	}

	if m.focus == focusGrid {
		switch msg.String() {
		case "q":
			m.engine.StopAll()
			return m, tea.Quit
		case "S":
			m.engine.StopAll()
			return m.flashStatus("all sounds stopped")
		case "+", "=":
			return m.adjustVolume(volumeStep), nil
		case "-":
			return m.adjustVolume(-volumeStep), nil
		case "esc":
			// Fall through to the grid, which uses esc to leave move mode.
		}
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return m, cmd
	}

	if msg.String() == "esc" {
		return m.setFocus(focusGrid)
	}
	var cmd tea.Cmd
	m.narrative, cmd = m.narrative.Update(msg)
	return m, cmd
}

func (m Model) setFocus(focus focusArea) (Model, tea.Cmd) {
	m.focus = focus
	if focus == focusNarrative {
		m.grid = m.grid.Focus(false)
		var cmd tea.Cmd
		m.narrative, cmd = m.narrative.Focus()
		return m, cmd
	}
	m.narrative = m.narrative.Blur()
	m.grid = m.grid.Focus(true)
	return m, nil
}

func (m Model) adjustVolume(delta int) Model {
	v := m.state.MasterVolume() + delta
	m.state.SetMasterVolume(v)
	m.engine.SetMasterVolume(v)
	return m
}

// save converts the editor text back to markup and writes the snapshot.
func (m Model) save() (Model, tea.Cmd) {
	nameFor := func(id string) (string, bool) {
		cue, ok := m.state.Cue(id)
		return cue.DisplayName, ok
	}
	m.state.SetNarrative(marker.ToMarkup(m.narrative.Content(), nameFor, m.engine.IsPlaying))

	if err := m.state.Save(m.statePath); err != nil {
		log.ErrorErr(log.CatBoard, "save failed", err, "path", m.statePath)
		return m.flashStatus("save failed: " + err.Error())
	}
	log.Info(log.CatBoard, "state saved", "path", m.statePath)
	return m.flashStatus("state saved")
}

func (m Model) flashStatus(text string) (Model, tea.Cmd) {
	m.statusMsg = text
	m.statusSeq++
	seq := m.statusSeq
	return m, tea.Tick(statusFlashDuration, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

// View renders the full screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.state.Len() == 0 {
		return m.zones.Scan(m.empty.View())
	}

	header := lipgloss.JoinHorizontal(
		lipgloss.Center,
		styles.TitleStyle.Render("cueboard"),
		styles.SubtitleStyle.Render(fmt.Sprintf("  vol %d%%", m.state.MasterVolume())),
	)

	narrativeBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderDefaultColor).
		Padding(0, 1).
		Width(max(0, m.width-4))
	if m.focus == focusNarrative {
		narrativeBorder = narrativeBorder.BorderForeground(styles.BorderFocusedColor)
	}

	sections := []string{
		header,
		"",
		m.grid.View(),
		narrativeBorder.Render(m.narrative.View()),
	}
	if m.cfg.UI.ShowStatusBar {
		sections = append(sections, m.statusBar())
	}
	sections = append(sections, styles.FooterStyle.Render("library: "+m.libraryDir))
	view := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.dialog != nil {
		view = m.dialog.Overlay(view)
	}
	return m.zones.Scan(view)
}

func (m Model) statusBar() string {
	if m.statusMsg != "" {
		return styles.StatusFlashStyle.Render(m.statusMsg)
	}

	help := []struct{ key, desc string }{
		{"tab", "switch pane"},
		{"enter", "play/stop"},
		{"m", "move"},
		{"r", "rename"},
		{"i", "insert cue"},
		{"@", "cue picker"},
		{"ctrl+s", "save"},
		{"S", "stop all"},
		{"q", "quit"},
	}

	out := ""
	for i, h := range help {
		if i > 0 {
			out += styles.HelpDescStyle.Render(" · ")
		}
		out += styles.HelpKeyStyle.Render(h.key) + styles.HelpDescStyle.Render(" "+h.desc)
	}
	return styles.StatusBarStyle.Render(out)
}
