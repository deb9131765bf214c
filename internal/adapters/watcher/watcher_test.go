package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/csspost/internal/adapters/watcher"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/csspost/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestWatcher_Events(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".csspost"), 0o750))

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(log)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, dir))
	defer w.Stop() //nolint:errcheck // Best effort cleanup in test

	target := filepath.Join(dir, "css", "main.css")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".csspost", "state"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(target, []byte("a{}"), 0o600))

	found := make(chan ports.WatchEvent, 1)
	go func() {
		for event := range w.Events() {
			if event.Path == target {
				found <- event
				return
			}
			if filepath.Dir(event.Path) == filepath.Join(dir, ".csspost") {
				t.Errorf("unexpected event in state directory: %s", event.Path)
			}
		}
	}()

	select {
	case event := <-found:
		require.Contains(t, []ports.WatchOp{ports.OpCreate, ports.OpWrite}, event.Operation)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for file event")
	}
}
