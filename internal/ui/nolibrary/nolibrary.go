// Package nolibrary is the empty state shown when the sound library holds
// no playable files.
package nolibrary

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/cueboard/internal/ui/styles"
)

const art = `
   ._________.
   | ♪  ♫  ♪ |
   |_________|
`

// Model holds the empty library view state.
type Model struct {
	libraryDir string
	width      int
	height     int
}

// New creates the view for the given library directory.
func New(libraryDir string) Model {
	return Model{libraryDir: libraryDir}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

// SetSize updates the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the empty state.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.TextPrimaryColor).
		MarginTop(1)

	messageStyle := lipgloss.NewStyle().
		Foreground(styles.TextDimColor)

	hintStyle := lipgloss.NewStyle().
		Foreground(styles.TextMutedColor).
		Italic(true).
		MarginTop(2)

	var content strings.Builder
	content.WriteString(styles.TitleStyle.Render(art))
	content.WriteString("\n\n")
	content.WriteString(titleStyle.Render("Your sound library is empty."))
	content.WriteString("\n\n")
	content.WriteString(messageStyle.Render("No .mp3, .wav or .ogg files found in:"))
	content.WriteString("\n")
	content.WriteString(messageStyle.Render("  " + m.libraryDir))
	content.WriteString("\n\n")
	content.WriteString(messageStyle.Render("Drop some audio files there and they will appear on the board,"))
	content.WriteString("\n")
	content.WriteString(messageStyle.Render("or point cueboard elsewhere with the --library flag."))
	content.WriteString("\n\n")
	content.WriteString(hintStyle.Render("Press q to quit"))

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content.String())
}
