package watcher_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/csspost/internal/adapters/fs"
	"go.trai.ch/csspost/internal/adapters/watcher"
)

func TestWriteFilter_Filter(t *testing.T) {
	dir := t.TempDir()
	own := filepath.Join(dir, "main.min.css")
	other := filepath.Join(dir, "main.css")
	require.NoError(t, os.WriteFile(own, []byte("a{}"), 0o600))
	require.NoError(t, os.WriteFile(other, []byte("a { }"), 0o600))

	f := watcher.NewWriteFilter(fs.NewHasher())
	f.Record([]string{own})

	assert.Equal(t, []string{other}, f.Filter([]string{own, other}))
}

func TestWriteFilter_Filter_ExternalChangeAfterWrite(t *testing.T) {
	dir := t.TempDir()
	own := filepath.Join(dir, "main.css")
	require.NoError(t, os.WriteFile(own, []byte("a{}"), 0o600))

	f := watcher.NewWriteFilter(fs.NewHasher())
	f.Record([]string{own})
	assert.Empty(t, f.Filter([]string{own}))

	require.NoError(t, os.WriteFile(own, []byte("b{}"), 0o600))
	assert.Equal(t, []string{own}, f.Filter([]string{own}))
}

func TestWriteFilter_Filter_Removed(t *testing.T) {
	dir := t.TempDir()
	own := filepath.Join(dir, "main.css")
	require.NoError(t, os.WriteFile(own, []byte("a{}"), 0o600))

	f := watcher.NewWriteFilter(fs.NewHasher())
	f.Record([]string{own})
	require.NoError(t, os.Remove(own))

	assert.Equal(t, []string{own}, f.Filter([]string{own}))
}

func TestWriteFilter_Filter_Internal(t *testing.T) {
	dir := t.TempDir()
	f := watcher.NewWriteFilter(fs.NewHasher())

	paths := []string{
		filepath.Join(dir, ".csspost"),
		filepath.Join(dir, ".csspost", "cache", "ab", "1.json"),
		filepath.Join(dir, "css", ".csspost-1234"),
	}
	assert.Empty(t, f.Filter(paths))
}
