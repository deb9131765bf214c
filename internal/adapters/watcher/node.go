package watcher

import (
	"context"
	"time"

	"github.com/grindlemire/graft"
	"go.trai.ch/csspost/internal/adapters/fs"
	"go.trai.ch/csspost/internal/adapters/logger"
	"go.trai.ch/csspost/internal/core/ports"
)

const (
	// WatcherNodeID is the unique identifier for the watcher factory Graft node.
	WatcherNodeID graft.ID = "adapter.watcher"
	// WriteFilterNodeID is the unique identifier for the self-write filter Graft node.
	WriteFilterNodeID graft.ID = "adapter.write_filter"
)

// Factory creates a watcher. Each watch session owns its fsnotify handle.
type Factory func() (ports.Watcher, error)

// DefaultDebounceWindow is the default time window for debouncing file events.
const DefaultDebounceWindow = 100 * time.Millisecond

func init() {
	graft.Register(graft.Node[Factory]{
		ID:        WatcherNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (Factory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return func() (ports.Watcher, error) {
				return NewWatcher(log)
			}, nil
		},
	})

	graft.Register(graft.Node[*WriteFilter]{
		ID:        WriteFilterNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.HasherNodeID},
		Run: func(ctx context.Context) (*WriteFilter, error) {
			hasher, err := graft.Dep[*fs.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			return NewWriteFilter(hasher), nil
		},
	})
}
