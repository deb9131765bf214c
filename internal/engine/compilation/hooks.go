package compilation

import (
	"context"
	"slices"
	"sync"
)

// Stage orders ProcessAssets taps. Lower stages run first.
type Stage int

const (
	// StageAdditional adds assets to the compilation.
	StageAdditional Stage = -2000
	// StagePreProcess runs basic preprocessing of existing assets.
	StagePreProcess Stage = -1000
	// StageOptimize optimizes existing assets in a general way.
	StageOptimize Stage = 100
	// StageOptimizeSize reduces the size of existing assets.
	StageOptimizeSize Stage = 400
	// StageSummarize creates summaries of the final assets.
	StageSummarize Stage = 1000
)

// ProcessAssetsFunc handles the named assets of a compilation.
type ProcessAssetsFunc func(ctx context.Context, names []string) error

// TapOptions registers a ProcessAssets handler.
type TapOptions struct {
	// Name identifies the handler in errors and logs.
	Name  string
	Stage Stage
	// AdditionalAssets runs the handler once more over assets emitted after it first ran.
	AdditionalAssets bool
}

type tap struct {
	opts  TapOptions
	fn    ProcessAssetsFunc
	order int
}

// Hooks are the extension points of a compilation.
type Hooks struct {
	ProcessAssets ProcessAssetsHook
}

// ProcessAssetsHook collects handlers for the process-assets phase.
type ProcessAssetsHook struct {
	mu   sync.Mutex
	taps []tap
}

// Tap registers fn with the given options.
func (h *ProcessAssetsHook) Tap(opts TapOptions, fn ProcessAssetsFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.taps = append(h.taps, tap{opts: opts, fn: fn, order: len(h.taps)})
}

// Len returns the number of registered handlers.
func (h *ProcessAssetsHook) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.taps)
}

// sorted returns the handlers ordered by stage, then registration.
func (h *ProcessAssetsHook) sorted() []tap {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := slices.Clone(h.taps)
	slices.SortStableFunc(out, func(a, b tap) int {
		if a.opts.Stage != b.opts.Stage {
			return int(a.opts.Stage - b.opts.Stage)
		}
		return a.order - b.order
	})
	return out
}
