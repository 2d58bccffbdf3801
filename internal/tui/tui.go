// Package tui provides a Bubble Tea viewer for scripts and build drafts.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/please/internal/builder"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	lineNoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// Lines recorded by `please ask`
	askStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	commentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

// Loader re-reads the content shown in live mode.
type Loader func() ([]builder.Line, error)

type changedMsg struct{}

type loadedMsg struct {
	lines []builder.Line
	err   error
	at    time.Time
}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the viewer.
type Model struct {
	title    string
	lines    []builder.Line
	viewport viewport.Model
	width    int
	height   int
	ready    bool

	// live mode
	load     Loader
	changes  <-chan struct{}
	err      error
	loadedAt time.Time
}

// New creates a viewer for a fixed set of lines.
func New(title string, lines []builder.Line) Model {
	return Model{title: title, lines: lines}
}

// NewLive creates a viewer that reloads its lines every time changes fires.
func NewLive(title string, load Loader, changes <-chan struct{}) Model {
	m := Model{title: title, load: load, changes: changes}
	m.lines, m.err = load()
	m.loadedAt = time.Now()
	return m
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (m Model) reload() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		lines, err := load()
		return loadedMsg{lines: lines, err: err, at: time.Now()}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "g", "home":
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// title(1) + statusBar(1) = 2 fixed rows
		vpHeight := m.height - 2
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.viewport.SetContent(m.renderBody())
		return m, nil

	case changedMsg:
		return m, tea.Batch(m.reload(), m.waitForChange())

	case loadedMsg:
		m.lines, m.err, m.loadedAt = msg.lines, msg.err, msg.at
		if m.ready {
			m.viewport.SetContent(m.renderBody())
			m.viewport.GotoBottom()
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  please  " + m.title)

	hint := "  ↑/↓ scroll  g/G top/bottom  q quit"
	if m.load != nil {
		hint += "  (live, updated " + m.loadedAt.Format("15:04:05") + ")"
	}
	pct := fmt.Sprintf("%3.0f%%", m.viewport.ScrollPercent()*100)
	pad := m.width - lipgloss.Width(hint) - len(pct) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(hint + strings.Repeat(" ", pad) + pct)

	return lipgloss.JoinVertical(lipgloss.Left, title, m.viewport.View(), statusBar)
}

// renderBody numbers each line and highlights ask lines.
func (m Model) renderBody() string {
	var sb strings.Builder
	sb.WriteString("\n")
	if m.err != nil {
		sb.WriteString(errStyle.Render("  "+m.err.Error()) + "\n\n")
	}
	if len(m.lines) == 0 {
		sb.WriteString(dimStyle.Render("  (no commands yet)") + "\n")
		return sb.String()
	}
	width := len(fmt.Sprint(len(m.lines)))
	for i, l := range m.lines {
		no := lineNoStyle.Render(fmt.Sprintf("  %*d │ ", width, i+1))
		sb.WriteString(no + styleLine(l) + "\n")
	}
	return sb.String()
}

func styleLine(l builder.Line) string {
	switch {
	case l.Ask:
		return askStyle.Render(l.Text)
	case strings.HasPrefix(strings.TrimSpace(l.Text), "#"):
		return commentStyle.Render(l.Text)
	}
	return l.Text
}

// Lines splits stored script text into viewer lines. `read -p` lines and the
// line after them are marked as asks.
func Lines(text string) []builder.Line {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	raw := strings.Split(text, "\n")
	lines := make([]builder.Line, 0, len(raw))
	askNext := false
	for _, r := range raw {
		isRead := strings.HasPrefix(strings.TrimSpace(r), "read -p ")
		lines = append(lines, builder.Line{Text: r, Ask: isRead || askNext})
		askNext = isRead
	}
	return lines
}

// Run starts the viewer in the alternate screen and blocks until it quits.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
