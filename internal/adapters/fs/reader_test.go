package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/csspost/internal/adapters/fs"
	"go.trai.ch/csspost/internal/core/domain"
)

const sampleMap = `{"version":3,"file":"main.css","sources":["src/main.scss"],"names":[],"mappings":"AAAA;AACA"}`

func TestReader_Read(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.css"), "body {\n  color: red;\n}\n")
	writeFile(t, filepath.Join(dir, "css", "theme.css"), "a{}")
	writeFile(t, filepath.Join(dir, "app.js"), "console.log(1)")
	writeFile(t, filepath.Join(dir, ".csspost", "cache", "entry.json"), "{}")

	assets, err := fs.NewReader(fs.NewWalker()).Read(context.Background(), dir, false)
	require.NoError(t, err)

	require.Len(t, assets, 3)
	require.Contains(t, assets, "main.css")
	require.Contains(t, assets, "css/theme.css")
	require.Contains(t, assets, "app.js")

	main := assets["main.css"]
	assert.Equal(t, "main.css", main.Name)
	assert.Equal(t, "body {\n  color: red;\n}\n", string(main.Source.Content()))
	assert.Nil(t, main.Source.Map())
	assert.Equal(t, "main.css", main.Info.SourceFilename)
}

func TestReader_Read_AttachesSourceMap(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.css"), "a{}\nb{}\n/*# sourceMappingURL=main.css.map*/")
	writeFile(t, filepath.Join(dir, "main.css.map"), sampleMap)
	writeFile(t, filepath.Join(dir, "orphan.js.map"), "{}")

	assets, err := fs.NewReader(fs.NewWalker()).Read(context.Background(), dir, true)
	require.NoError(t, err)

	require.Len(t, assets, 2)
	assert.NotContains(t, assets, "main.css.map")
	assert.Contains(t, assets, "orphan.js.map")

	main := assets["main.css"]
	assert.Equal(t, "a{}\nb{}", string(main.Source.Content()))
	require.NotNil(t, main.Source.Map())
	assert.Equal(t, []string{"src/main.scss"}, main.Source.Map().Sources)
	assert.Equal(t, "main.css.map", main.Info.Related["sourceMap"])
}

func TestReader_Read_SynthesizesIdentityMap(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.css"), "a{}\nb{}\n")
	writeFile(t, filepath.Join(dir, "app.js"), "1")

	assets, err := fs.NewReader(fs.NewWalker()).Read(context.Background(), dir, true)
	require.NoError(t, err)

	m := assets["main.css"].Source.Map()
	require.NotNil(t, m)
	assert.Equal(t, []string{"main.css"}, m.Sources)
	assert.Equal(t, "AAAA;AACA", m.Mappings)
	assert.Nil(t, assets["app.js"].Source.Map())
}

func TestReader_Read_InvalidSourceMap(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.css"), "a{}")
	writeFile(t, filepath.Join(dir, "main.css.map"), "not json")

	_, err := fs.NewReader(fs.NewWalker()).Read(context.Background(), dir, true)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrSourceMapInvalid.Error())
}

func TestReader_Read_ReusesUnchangedSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.css"), "a{}")
	writeFile(t, filepath.Join(dir, "b.css"), "b{}")

	reader := fs.NewReader(fs.NewWalker())
	first, err := reader.Read(context.Background(), dir, false)
	require.NoError(t, err)

	bPath := filepath.Join(dir, "b.css")
	writeFile(t, bPath, "b{color:red}")
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(bPath, later, later))

	second, err := reader.Read(context.Background(), dir, false)
	require.NoError(t, err)

	assert.Same(t, first["a.css"].Source, second["a.css"].Source)
	assert.NotSame(t, first["b.css"].Source, second["b.css"].Source)
	assert.Equal(t, "b{color:red}", string(second["b.css"].Source.Content()))
}

func TestReader_Read_ContextCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.css"), "a{}")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fs.NewReader(fs.NewWalker()).Read(ctx, dir, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStripAnnotation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"NoAnnotation", "a{}", "a{}"},
		{"Trailing", "a{}\n/*# sourceMappingURL=a.css.map*/", "a{}"},
		{"TrailingWhitespace", "a{}\n/*# sourceMappingURL=a.css.map */\n", "a{}"},
		{"KeepsOwnNewline", "a{}\n\n/*# sourceMappingURL=a.css.map*/", "a{}\n"},
		{"NotTrailing", "/*# sourceMappingURL=a.css.map*/\na{}", "/*# sourceMappingURL=a.css.map*/\na{}"},
		{"Unterminated", "a{}\n/*# sourceMappingURL=a.css.map", "a{}\n/*# sourceMappingURL=a.css.map"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(fs.StripAnnotation([]byte(tt.input))))
		})
	}
}

func TestAnnotate_RoundTrip(t *testing.T) {
	content := []byte("a{}\n")
	annotated := fs.Annotate(content, "a.css.map")
	assert.Equal(t, "a{}\n\n/*# sourceMappingURL=a.css.map*/", string(annotated))
	assert.Equal(t, "a{}\n", string(fs.StripAnnotation(annotated)))
}
