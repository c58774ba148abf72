// Package chooser provides the interactive instance picker shown when a hop
// has no usable selection.
package chooser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/hopper/internal/keys"
	"github.com/zjrosen/hopper/internal/ui/styles"
)

const defaultBoxWidth = 36

// rowZoneID returns the bubblezone ID for the visible row at i.
func rowZoneID(i int) string {
	return fmt.Sprintf("chooser-row-%d", i)
}

// Model holds the picker state. Typing narrows the candidates by
// case-insensitive substring.
type Model struct {
	title      string
	candidates []string
	visible    []int // indexes into candidates
	filter     string
	selected   int // index into visible
	boxWidth   int
	keys       keys.ChooserKeyMap
	help       help.Model

	chosen    string
	done      bool
	cancelled bool
}

// New creates a picker over candidates.
func New(title string, candidates []string) Model {
	m := Model{
		title:      title,
		candidates: candidates,
		boxWidth:   defaultBoxWidth,
		keys:       keys.DefaultChooserKeyMap(),
		help:       help.New(),
	}
	m.refilter()
	return m
}

// SetSelected moves the highlight to the candidate named name, if visible.
func (m Model) SetSelected(name string) Model {
	for i, idx := range m.visible {
		if m.candidates[idx] == name {
			m.selected = i
			break
		}
	}
	return m
}

// Highlighted returns the candidate under the cursor.
func (m Model) Highlighted() (string, bool) {
	if len(m.visible) == 0 {
		return "", false
	}
	return m.candidates[m.visible[m.selected]], true
}

// Chosen returns the confirmed candidate. ok is false when the picker was
// cancelled or has not finished.
func (m Model) Chosen() (string, bool) {
	return m.chosen, m.done && !m.cancelled
}

// Cancelled reports whether the user aborted.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Filter returns the current filter text.
func (m Model) Filter() string {
	return m.filter
}

func (m *Model) refilter() {
	visible := make([]int, 0, len(m.candidates))
	needle := strings.ToLower(m.filter)
	for i, c := range m.candidates {
		if needle == "" || strings.Contains(strings.ToLower(c), needle) {
			visible = append(visible, i)
		}
	}
	m.visible = visible
	if m.selected >= len(m.visible) {
		m.selected = max(0, len(m.visible)-1)
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.boxWidth = min(defaultBoxWidth, max(12, msg.Width-2))
		m.help.Width = msg.Width
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Select):
			name, ok := m.Highlighted()
			if !ok {
				return m, nil
			}
			m.chosen = name
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.visible)-1 {
				m.selected++
			}
		case key.Matches(msg, m.keys.Top):
			m.selected = 0
		case key.Matches(msg, m.keys.Bottom):
			m.selected = max(0, len(m.visible)-1)
		case key.Matches(msg, m.keys.ClearFilter):
			m.filter = ""
			m.refilter()
		case key.Matches(msg, m.keys.Backspace):
			if r := []rune(m.filter); len(r) > 0 {
				m.filter = string(r[:len(r)-1])
				m.refilter()
			}
		case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
			m.filter += string(msg.Runes)
			if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
				m.filter += " "
			}
			m.selected = 0
			m.refilter()
		}
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case tea.MouseButtonWheelDown:
		if m.selected < len(m.visible)-1 {
			m.selected++
		}
		return m, nil
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionRelease {
			return m, nil
		}
		for i := range m.visible {
			if z := zone.Get(rowZoneID(i)); z != nil && z.InBounds(msg) {
				m.selected = i
				m.chosen = m.candidates[m.visible[i]]
				m.done = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// highlight styles the first case-insensitive occurrence of the filter.
func (m Model) highlight(label string) string {
	if m.filter == "" {
		return label
	}
	runes := []rune(label)
	lower := []rune(strings.ToLower(label))
	needle := []rune(strings.ToLower(m.filter))
	if len(lower) != len(runes) {
		return label
	}
	at := strings.Index(string(lower), string(needle))
	if at < 0 {
		return label
	}
	start := len([]rune(string(lower)[:at]))
	end := start + len(needle)
	return string(runes[:start]) + styles.MatchHighlightStyle.Render(string(runes[start:end])) + string(runes[end:])
}

// View implements tea.Model.
func (m Model) View() string {
	if m.done {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1)

	inner := m.boxWidth - 2

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(" filter: ")
	b.WriteString(styles.MatchHighlightStyle.Render(m.filter))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(styles.OverlayBorderColor).Render(strings.Repeat("─", m.boxWidth)))
	b.WriteString("\n")

	if len(m.visible) == 0 {
		b.WriteString(styles.MutedStyle.Render(" no matching instances"))
	}
	for i, idx := range m.visible {
		label := ansi.Truncate(m.highlight(m.candidates[idx]), inner, "…")
		var row string
		if i == m.selected {
			row = styles.SelectionIndicatorStyle.Render(">") + lipgloss.NewStyle().Bold(true).Render(label)
		} else {
			row = " " + label
		}
		b.WriteString(zone.Mark(rowZoneID(i), row))
		if i < len(m.visible)-1 {
			b.WriteString("\n")
		}
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(m.boxWidth).
		Render(b.String())

	return zone.Scan(box + "\n" + m.help.View(m.keys))
}
