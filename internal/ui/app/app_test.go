package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/cueboard/internal/audio"
	"github.com/zjrosen/cueboard/internal/board"
	"github.com/zjrosen/cueboard/internal/config"
	"github.com/zjrosen/cueboard/internal/library"
	"github.com/zjrosen/cueboard/internal/marker"
	"github.com/zjrosen/cueboard/internal/ui/grid"
	"github.com/zjrosen/cueboard/internal/ui/shared/modal"
)

func testEntries(dir string) []library.Entry {
	return []library.Entry{
		{AbsPath: filepath.Join(dir, "thunder.mp3"), Rel: "thunder.mp3"},
		{AbsPath: filepath.Join(dir, "rain.ogg"), Rel: "rain.ogg"},
	}
}

func newTestApp(t *testing.T) (Model, string) {
	t.Helper()

	dir := t.TempDir()
	statePath := filepath.Join(dir, "cueboard.json")

	state := board.Load(statePath, testEntries(dir))
	engine := audio.NewEngine(nil)
	t.Cleanup(engine.Close)

	m := New(config.Defaults(), dir, statePath, state, engine)
	return sized(t, m), statePath
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestView_ShowsBoardAndChrome(t *testing.T) {
	m, _ := newTestApp(t)

	view := m.View()
	assert.Contains(t, view, "cueboard")
	assert.Contains(t, view, "vol 100%")
	assert.Contains(t, view, "thunder")
	assert.Contains(t, view, "rain")
	assert.Contains(t, view, "library:")
}

func TestView_EmptyLibraryShowsEmptyState(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "cueboard.json")
	state := board.Load(statePath, nil)
	engine := audio.NewEngine(nil)
	t.Cleanup(engine.Close)

	m := sized(t, New(config.Defaults(), dir, statePath, state, engine))

	assert.Contains(t, m.View(), "Your sound library is empty.")
}

func TestPlaybackMsg_UpdatesGridAndMarkup(t *testing.T) {
	m, _ := newTestApp(t)
	m.state.SetNarrative("<p>boom " + marker.Anchor("thunder.mp3", "thunder", false) + "</p>")

	m, _ = update(t, m, PlaybackMsg{ID: "thunder.mp3", Playing: true})

	assert.Contains(t, m.View(), "■ playing")
	assert.Equal(t,
		"<p>boom "+marker.Anchor("thunder.mp3", "thunder", true)+"</p>",
		m.state.Narrative())

	m, _ = update(t, m, PlaybackMsg{ID: "thunder.mp3", Playing: false})
	assert.NotContains(t, m.View(), "■ playing")
}

func TestMoveRequest_ReordersBoard(t *testing.T) {
	m, _ := newTestApp(t)
	require.Equal(t, []string{"thunder.mp3", "rain.ogg"}, m.state.Order())

	m, _ = update(t, m, grid.MoveRequestMsg{ID: "thunder.mp3", Target: 1})

	assert.Equal(t, []string{"rain.ogg", "thunder.mp3"}, m.state.Order())
}

func TestRenameFlow(t *testing.T) {
	m, _ := newTestApp(t)

	m, _ = update(t, m, grid.RenameRequestMsg{ID: "rain.ogg", Current: "rain"})
	require.NotNil(t, m.dialog)
	assert.Contains(t, m.View(), "Rename Sound")

	m, _ = update(t, m, modal.SubmitMsg{Values: map[string]string{"name": "Heavy Rain"}})

	assert.Nil(t, m.dialog)
	cue, ok := m.state.Cue("rain.ogg")
	require.True(t, ok)
	assert.Equal(t, "Heavy Rain", cue.DisplayName)
	assert.Contains(t, m.View(), "Heavy Rain")
}

func TestRenameFlow_Cancel(t *testing.T) {
	m, _ := newTestApp(t)

	m, _ = update(t, m, grid.RenameRequestMsg{ID: "rain.ogg", Current: "rain"})
	m, _ = update(t, m, modal.CancelMsg{})

	assert.Nil(t, m.dialog)
	cue, _ := m.state.Cue("rain.ogg")
	assert.Equal(t, "rain", cue.DisplayName)
}

func TestVolumeKeys(t *testing.T) {
	m, _ := newTestApp(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	assert.Equal(t, 100, m.state.MasterVolume(), "volume is already at the ceiling")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	assert.Equal(t, 90, m.state.MasterVolume())
	assert.Contains(t, m.View(), "vol 90%")
}

func TestCtrlS_WritesSnapshot(t *testing.T) {
	m, statePath := newTestApp(t)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd, "expected a status flash timer")
	assert.Equal(t, "state saved", m.statusMsg)

	data, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"text_html"`)
	assert.Contains(t, string(data), `"rain.ogg"`)
}

func TestStatusFlash_Clears(t *testing.T) {
	m, _ := newTestApp(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotEmpty(t, m.statusMsg)

	// A stale tick must not clear a newer flash.
	m, _ = update(t, m, clearStatusMsg{seq: m.statusSeq - 1})
	assert.NotEmpty(t, m.statusMsg)

	m, _ = update(t, m, clearStatusMsg{seq: m.statusSeq})
	assert.Empty(t, m.statusMsg)
}

func TestLibraryChanged_ReconcilesBoard(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wind.wav"), []byte("x"), 0o644))

	statePath := filepath.Join(dir, "cueboard.json")
	entries, err := library.Scan(dir)
	require.NoError(t, err)
	state := board.Load(statePath, entries)
	engine := audio.NewEngine(nil)
	t.Cleanup(engine.Close)

	m := sized(t, New(config.Defaults(), dir, statePath, state, engine))
	require.Equal(t, 1, m.state.Len())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "owl.mp3"), []byte("x"), 0o644))
	m, _ = update(t, m, LibraryChangedMsg{})

	assert.Equal(t, []string{"wind.wav", "owl.mp3"}, m.state.Order())
	assert.Contains(t, m.View(), "owl")
}

func TestTab_SwitchesFocus(t *testing.T) {
	m, _ := newTestApp(t)
	require.Equal(t, focusGrid, m.focus)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusNarrative, m.focus)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, focusGrid, m.focus)
}

func TestNarrativeTyping_DoesNotQuit(t *testing.T) {
	m, _ := newTestApp(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd != nil {
		_, isQuit := cmd().(tea.QuitMsg)
		assert.False(t, isQuit, "q must type into the narrative, not quit")
	}
}

func TestInsertRequest_AddsTokenAndFocusesNarrative(t *testing.T) {
	m, _ := newTestApp(t)

	m, _ = update(t, m, grid.InsertRequestMsg{ID: "thunder.mp3"})

	assert.Equal(t, focusNarrative, m.focus)
	assert.Contains(t, m.narrative.Content(), "[[cue:thunder.mp3]]")
}

func TestQuit_Smoke(t *testing.T) {
	m, _ := newTestApp(t)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
}

// Engine notifications feed back into the event loop as PlaybackMsg, the
// same wiring the root command sets up. The loop can only drain messages
// between updates, so toggling a cue from inside Update must not wait on
// that delivery or the program hangs on the first keypress.
func TestTogglePlayback_DoesNotStallEventLoop(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "cueboard.json")
	state := board.Load(statePath, testEntries(dir))

	var tm *teatest.TestModel
	engine := audio.NewEngine(func(id string, playing bool) {
		if tm != nil {
			tm.Send(PlaybackMsg{ID: id, Playing: playing})
		}
	})
	t.Cleanup(engine.Close)

	m := New(config.Defaults(), dir, statePath, state, engine)
	tm = teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

	tm.Send(grid.ToggleRequestMsg{ID: "thunder.mp3"})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))
}
