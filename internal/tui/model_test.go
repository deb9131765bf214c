//nolint:testpackage // Test needs access to unexported fields
package tui

import (
	"bytes"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vito/progrock"
	"go.trai.ch/csspost/internal/ui/output"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type sliceTape struct {
	updates []*progrock.StatusUpdate
}

func (s *sliceTape) Read() (*progrock.StatusUpdate, error) {
	if len(s.updates) == 0 {
		return nil, io.EOF
	}
	u := s.updates[0]
	s.updates = s.updates[1:]
	return u, nil
}

func newTestModel(t *testing.T, tape TapeSource) *Model {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	return NewModel(tape, output.NewRenderer(&bytes.Buffer{}))
}

func TestModel_Apply(t *testing.T) {
	m := newTestModel(t, &sliceTape{})
	failure := "unexpected token"

	m.apply(&progrock.StatusUpdate{Vertexes: []*progrock.Vertex{
		{Id: "a", Name: "PostProcessor main.css"},
		{Id: "b", Name: "PostProcessor vendor.css", Cached: true},
	}})
	m.apply(&progrock.StatusUpdate{
		Vertexes: []*progrock.Vertex{
			{Id: "a", Name: "PostProcessor main.css", Completed: timestamppb.Now()},
			{Id: "c", Name: "PostProcessor broken.css", Completed: timestamppb.Now(), Error: &failure},
		},
		Logs: []*progrock.VertexLog{
			{Vertex: "a", Data: []byte("main.css -> main.min.css (52 -> 41 bytes)\n")},
			{Vertex: "unknown", Data: []byte("ignored\n")},
		},
	})

	require.Len(t, m.vertices, 3)
	assert.Equal(t, statusDone, m.vertices[0].Status)
	assert.Equal(t, "main.css -> main.min.css (52 -> 41 bytes)", m.vertices[0].Detail)
	assert.Equal(t, statusCached, m.vertices[1].Status)
	assert.Equal(t, statusFailed, m.vertices[2].Status)
}

func TestModel_Update_TapeFlow(t *testing.T) {
	tape := &sliceTape{updates: []*progrock.StatusUpdate{
		{Vertexes: []*progrock.Vertex{{Id: "a", Name: "PostProcessor main.css"}}},
	}}
	m := newTestModel(t, tape)

	msg := WaitForTape(tape)()
	update, ok := msg.(MsgTapeUpdate)
	require.True(t, ok)

	_, cmd := m.Update(update)
	require.NotNil(t, cmd)
	require.Len(t, m.vertices, 1)
	assert.Equal(t, statusRunning, m.vertices[0].Status)

	assert.IsType(t, MsgTapeEnded{}, cmd())

	_, cmd = m.Update(MsgTapeEnded{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_Update_CtrlC(t *testing.T) {
	m := newTestModel(t, &sliceTape{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_Update_WindowSize(t *testing.T) {
	m := newTestModel(t, &sliceTape{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Equal(t, 80, m.width)
	assert.Equal(t, 24, m.height)
}
