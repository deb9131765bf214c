package tui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vito/progrock"
	"go.trai.ch/csspost/internal/ui/style"
)

const (
	statusRunning = "running"
	statusDone    = "done"
	statusCached  = "cached"
	statusFailed  = "failed"
)

// VertexState is one asset transformation shown in the view.
type VertexState struct {
	ID     string
	Name   string
	Status string
	// Detail is the last line the vertex printed.
	Detail string
}

type styles struct {
	running lipgloss.Style
	done    lipgloss.Style
	cached  lipgloss.Style
	failed  lipgloss.Style
	detail  lipgloss.Style
}

// Model is the Bubble Tea model of the progress view.
type Model struct {
	tape     TapeSource
	vertices []VertexState
	index    map[string]int
	width    int
	height   int
	spinner  spinner.Model
	styles   styles
}

// NewModel creates a progress view reading from tape. The renderer decides the color profile.
func NewModel(tape TapeSource, r *lipgloss.Renderer) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = r.NewStyle().Foreground(style.Yellow)

	return &Model{
		tape:    tape,
		index:   make(map[string]int),
		spinner: s,
		styles: styles{
			running: r.NewStyle().Foreground(style.Yellow),
			done:    r.NewStyle().Foreground(style.Green),
			cached:  r.NewStyle().Foreground(style.Slate),
			failed:  r.NewStyle().Foreground(style.Red),
			detail:  r.NewStyle().Foreground(style.Slate).Faint(true),
		},
	}
}

// Init starts reading from the tape.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForTape(m.tape),
		m.spinner.Tick,
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case MsgTapeUpdate:
		m.apply(msg.Update)
		return m, WaitForTape(m.tape)
	case MsgTapeEnded:
		return m, tea.Quit
	}
	return m, nil
}

// apply merges vertex and log updates into the view state.
func (m *Model) apply(update *progrock.StatusUpdate) {
	if update == nil {
		return
	}
	for _, v := range update.Vertexes {
		i, ok := m.index[v.Id]
		if !ok {
			i = len(m.vertices)
			m.index[v.Id] = i
			m.vertices = append(m.vertices, VertexState{ID: v.Id})
		}
		state := &m.vertices[i]
		state.Name = v.Name
		state.Status = vertexStatus(v)
	}
	for _, l := range update.Logs {
		i, ok := m.index[l.Vertex]
		if !ok {
			continue
		}
		if line := lastLine(l.Data); line != "" {
			m.vertices[i].Detail = line
		}
	}
}

func vertexStatus(v *progrock.Vertex) string {
	switch {
	case v.Cached:
		return statusCached
	case v.Completed == nil:
		return statusRunning
	case v.Error != nil:
		return statusFailed
	default:
		return statusDone
	}
}

func lastLine(data []byte) string {
	lines := bytes.Split(bytes.TrimRight(data, "\n"), []byte("\n"))
	return strings.TrimSpace(string(lines[len(lines)-1]))
}

// View renders the most recent vertices that fit the terminal height.
func (m *Model) View() string {
	var s strings.Builder

	start := 0
	if m.height > 0 && len(m.vertices) > m.height {
		start = len(m.vertices) - m.height
	}

	for _, v := range m.vertices[start:] {
		var icon string
		var st lipgloss.Style
		switch v.Status {
		case statusRunning:
			icon = m.spinner.View()
			st = m.styles.running
		case statusDone:
			icon = style.Check
			st = m.styles.done
		case statusCached:
			icon = style.Tilde
			st = m.styles.cached
		case statusFailed:
			icon = style.Cross
			st = m.styles.failed
		default:
			icon = style.Circle
			st = m.styles.cached
		}

		line := fmt.Sprintf("%s %s", st.Render(icon), v.Name)
		if v.Detail != "" {
			line += " " + m.styles.detail.Render(v.Detail)
		}
		s.WriteString(line + "\n")
	}

	return s.String()
}
