// Package editor hands the narrative text off to an external editor and
// reads the result back when it exits.
package editor

import (
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// FinishedMsg carries the edited text back once the editor closes.
type FinishedMsg struct {
	Content string
	Err     error
}

// ExecMsg means the editor command is ready. The app handles it by
// returning msg.ExecCmd(), which suspends the terminal while the editor
// runs.
type ExecMsg struct {
	cmd     *exec.Cmd
	tmpPath string
}

// OpenCmd writes content to a temp file and prepares the user's editor
// on it, chosen from $VISUAL, then $EDITOR, then vi.
func OpenCmd(content string) tea.Cmd {
	return func() tea.Msg {
		name := os.Getenv("VISUAL")
		if name == "" {
			name = os.Getenv("EDITOR")
		}
		if name == "" {
			name = "vi"
		}

		tmpFile, err := os.CreateTemp("", "cueboard-edit-*.txt")
		if err != nil {
			return FinishedMsg{Err: err}
		}
		tmpPath := tmpFile.Name()

		if _, err := tmpFile.WriteString(content); err != nil {
			_ = os.Remove(tmpPath)
			return FinishedMsg{Err: err}
		}
		if err := tmpFile.Close(); err != nil {
			_ = os.Remove(tmpPath)
			return FinishedMsg{Err: err}
		}

		// #nosec G204 -- the command comes from VISUAL/EDITOR or is vi
		return ExecMsg{cmd: exec.Command(name, tmpPath), tmpPath: tmpPath}
	}
}

// ExecCmd runs the prepared editor and cleans up the temp file.
func (msg ExecMsg) ExecCmd() tea.Cmd {
	return tea.ExecProcess(msg.cmd, func(err error) tea.Msg {
		defer func() { _ = os.Remove(msg.tmpPath) }()

		if err != nil {
			return FinishedMsg{Err: err}
		}

		content, readErr := os.ReadFile(msg.tmpPath)
		if readErr != nil {
			return FinishedMsg{Err: readErr}
		}

		// Editors like vim append a trailing newline on save.
		return FinishedMsg{Content: strings.TrimRight(string(content), "\n")}
	})
}
