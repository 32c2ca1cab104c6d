package narrative

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/cueboard/internal/board"
	"github.com/zjrosen/cueboard/internal/ui/styles"
)

// picker is the @cue autocomplete popup shown inside the narrative editor.
type picker struct {
	cues []board.Cue

	active       bool
	query        string
	filtered     []board.Cue
	cursor       int
	maxVisible   int
	scrollOffset int
}

func newPicker() picker {
	return picker{maxVisible: 5}
}

func (p picker) setCues(cues []board.Cue) picker {
	p.cues = cues
	if p.active {
		p = p.updateFilter()
	}
	return p
}

func (p picker) isActive() bool {
	return p.active
}

// selected returns the cue under the picker cursor, or nil.
func (p picker) selected() *board.Cue {
	if !p.active || len(p.filtered) == 0 || p.cursor >= len(p.filtered) {
		return nil
	}
	return &p.filtered[p.cursor]
}

func (p picker) activate() picker {
	p.active = true
	p.query = ""
	p.cursor = 0
	p.scrollOffset = 0
	return p.updateFilter()
}

func (p picker) deactivate() picker {
	p.active = false
	p.query = ""
	p.cursor = 0
	p.scrollOffset = 0
	p.filtered = nil
	return p
}

// updateQuery re-filters. The second return is false when nothing matches
// and the popup should close.
func (p picker) updateQuery(query string) (picker, bool) {
	p.query = query
	p = p.updateFilter()
	if len(p.filtered) == 0 {
		return p, false
	}
	return p, true
}

// updateFilter matches the query against both display name and id.
func (p picker) updateFilter() picker {
	query := strings.ToLower(p.query)

	p.filtered = make([]board.Cue, 0, len(p.cues))
	for _, c := range p.cues {
		if query == "" ||
			strings.Contains(strings.ToLower(c.DisplayName), query) ||
			strings.Contains(strings.ToLower(c.ID), query) {
			p.filtered = append(p.filtered, c)
		}
	}

	if p.cursor >= len(p.filtered) {
		p.cursor = 0
		p.scrollOffset = 0
	}
	return p
}

func (p picker) next() picker {
	if len(p.filtered) == 0 {
		return p
	}
	p.cursor = (p.cursor + 1) % len(p.filtered)
	return p.ensureVisible()
}

func (p picker) prev() picker {
	if len(p.filtered) == 0 {
		return p
	}
	p.cursor = (p.cursor - 1 + len(p.filtered)) % len(p.filtered)
	return p.ensureVisible()
}

func (p picker) ensureVisible() picker {
	if p.cursor < p.scrollOffset {
		p.scrollOffset = p.cursor
	} else if p.cursor >= p.scrollOffset+p.maxVisible {
		p.scrollOffset = p.cursor - p.maxVisible + 1
	}
	return p
}

// handleKey processes a key while the popup is open.
// Returns (updated picker, consumed, chosen cue on enter).
func (p picker) handleKey(msg tea.KeyMsg) (picker, bool, *board.Cue) {
	if !p.active {
		return p, false, nil
	}

	switch msg.String() {
	case "ctrl+n", "down":
		return p.next(), true, nil
	case "ctrl+p", "up":
		return p.prev(), true, nil
	case "enter", "tab":
		chosen := p.selected()
		if chosen != nil {
			return p.deactivate(), true, chosen
		}
		return p, true, nil
	case "esc":
		return p.deactivate(), true, nil
	}
	return p, false, nil
}

func (p picker) view() string {
	if !p.active || len(p.filtered) == 0 {
		return ""
	}

	visibleCount := min(p.maxVisible, len(p.filtered))
	endIdx := min(p.scrollOffset+visibleCount, len(p.filtered))

	maxLabelWidth := 0
	for i := p.scrollOffset; i < endIdx; i++ {
		if w := len(" @") + len(p.filtered[i].DisplayName) + 1; w > maxLabelWidth {
			maxLabelWidth = w
		}
	}
	contentWidth := max(maxLabelWidth, 12)

	normalStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimaryColor).
		Width(contentWidth)
	selectedStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimaryColor).
		Background(styles.SelectionBackgroundColor).
		Width(contentWidth)

	var lines []string
	for i := p.scrollOffset; i < endIdx; i++ {
		label := " @" + p.filtered[i].DisplayName
		if i == p.cursor {
			lines = append(lines, selectedStyle.Render(label))
		} else {
			lines = append(lines, normalStyle.Render(label))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderDefaultColor).
		Render(strings.Join(lines, "\n"))
}
