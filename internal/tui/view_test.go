//nolint:testpackage // Test needs access to unexported fields
package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModel_View(t *testing.T) {
	m := newTestModel(t, nil)
	m.vertices = []VertexState{
		{ID: "1", Name: "PostProcessor main.css", Status: statusDone, Detail: "main.css -> main.min.css"},
		{ID: "2", Name: "PostProcessor vendor.css", Status: statusCached},
		{ID: "3", Name: "PostProcessor broken.css", Status: statusFailed},
	}

	view := m.View()

	assert.Contains(t, view, "✓ PostProcessor main.css main.css -> main.min.css")
	assert.Contains(t, view, "~ PostProcessor vendor.css")
	assert.Contains(t, view, "✗ PostProcessor broken.css")
}

func TestModel_View_Overflow(t *testing.T) {
	m := newTestModel(t, nil)
	m.height = 2
	m.vertices = []VertexState{
		{ID: "1", Name: "first.css", Status: statusDone},
		{ID: "2", Name: "second.css", Status: statusDone},
		{ID: "3", Name: "third.css", Status: statusDone},
	}

	view := m.View()

	assert.NotContains(t, view, "first.css")
	assert.Equal(t, 2, strings.Count(view, "\n"))
}
