package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/csspost/internal/adapters/watcher"
)

func TestDebouncer_Add_Coalesced(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var calls [][]string

		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			mu.Lock()
			calls = append(calls, paths)
			mu.Unlock()
		})

		d.Add("/dist/b.css")
		d.Add("/dist/a.css")
		d.Add("/dist/b.css")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, calls, 1)
		assert.Equal(t, []string{"/dist/a.css", "/dist/b.css"}, calls[0])
	})
}

func TestDebouncer_Add_TimerReset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		callCount := 0

		d := watcher.NewDebouncer(100*time.Millisecond, func([]string) {
			mu.Lock()
			callCount++
			mu.Unlock()
		})

		d.Add("/dist/a.css")
		time.Sleep(60 * time.Millisecond)
		d.Add("/dist/b.css")
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		assert.Equal(t, 0, callCount)
		mu.Unlock()

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		assert.Equal(t, 1, callCount)
		mu.Unlock()
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var received []string
		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			received = paths
		})

		d.Add("/dist/main.css")
		d.Flush()

		assert.Equal(t, []string{"/dist/main.css"}, received)

		received = nil
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Nil(t, received, "flushed paths must not be delivered twice")
	})
}

func TestDebouncer_Flush_Empty(t *testing.T) {
	called := false
	d := watcher.NewDebouncer(100*time.Millisecond, func([]string) {
		called = true
	})

	d.Flush()

	assert.False(t, called)
}

func TestDebouncer_Stop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		called := false
		d := watcher.NewDebouncer(100*time.Millisecond, func([]string) {
			called = true
		})

		d.Add("/dist/main.css")
		d.Stop()

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.False(t, called)
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := watcher.NewDebouncer(10*time.Millisecond, nil)
		d.Add("/dist/main.css")
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		d.Flush()
	})
}
