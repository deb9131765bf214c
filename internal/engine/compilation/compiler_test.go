package compilation_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/csspost/internal/adapters/telemetry"
	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/csspost/internal/core/ports/mocks"
	"go.trai.ch/csspost/internal/engine/compilation"
	"go.uber.org/mock/gomock"
)

type pluginFunc func(c *compilation.Compilation)

func (f pluginFunc) Apply(c *compilation.Compilation) { f(c) }

func newCompiler(t *testing.T, cache ports.Cache, plugins ...compilation.Plugin) *compilation.Compiler {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()

	metrics := mocks.NewMockMetrics(ctrl)
	return compilation.NewCompiler(log, telemetry.NewNoOp(), metrics, cache, plugins...)
}

func cssAssets(names ...string) map[string]*domain.Asset {
	assets := make(map[string]*domain.Asset, len(names))
	for _, name := range names {
		assets[name] = &domain.Asset{Name: name, Source: domain.NewRawSource([]byte("a{}"))}
	}
	return assets
}

// minSuffix emits "<name>.min.css" for every css asset it receives.
func minSuffix(c *compilation.Compilation, names []string) error {
	for _, name := range names {
		if !strings.HasSuffix(name, ".css") {
			continue
		}
		a, _ := c.GetAsset(name)
		if err := c.EmitAsset(strings.TrimSuffix(name, ".css")+".min.css", a.Source, a.Info); err != nil {
			return err
		}
	}
	return nil
}

func TestCompiler_Run_StageOrder(t *testing.T) {
	var order []string
	record := func(name string) compilation.ProcessAssetsFunc {
		return func(_ context.Context, _ []string) error {
			order = append(order, name)
			return nil
		}
	}

	plugin := pluginFunc(func(c *compilation.Compilation) {
		c.Hooks.ProcessAssets.Tap(compilation.TapOptions{Name: "summarize", Stage: compilation.StageSummarize}, record("summarize"))
		c.Hooks.ProcessAssets.Tap(compilation.TapOptions{Name: "pre", Stage: compilation.StagePreProcess}, record("pre"))
		c.Hooks.ProcessAssets.Tap(compilation.TapOptions{Name: "size", Stage: compilation.StageOptimizeSize}, record("size"))
		c.Hooks.ProcessAssets.Tap(compilation.TapOptions{Name: "pre2", Stage: compilation.StagePreProcess}, record("pre2"))
		c.Hooks.ProcessAssets.Tap(compilation.TapOptions{Name: "additional", Stage: compilation.StageAdditional}, record("additional"))
	})

	comp, err := newCompiler(t, nil, plugin).Run(context.Background(), cssAssets("main.css"))
	require.NoError(t, err)

	assert.Equal(t, 5, comp.Hooks.ProcessAssets.Len())
	assert.Equal(t, []string{"additional", "pre", "pre2", "size", "summarize"}, order)
}

func TestCompiler_Run_AdditionalAssets(t *testing.T) {
	tests := []struct {
		name       string
		additional bool
		calls      [][]string
		names      []string
	}{
		{
			name:  "single pass",
			calls: [][]string{{"main.css"}},
			names: []string{"main.css", "main.min.css"},
		},
		{
			name:       "one additional pass",
			additional: true,
			calls:      [][]string{{"main.css"}, {"main.min.css"}},
			names:      []string{"main.css", "main.min.css", "main.min.min.css"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls [][]string
			var comp *compilation.Compilation
			plugin := pluginFunc(func(c *compilation.Compilation) {
				comp = c
				c.Hooks.ProcessAssets.Tap(compilation.TapOptions{
					Name:             "min",
					Stage:            compilation.StageOptimizeSize,
					AdditionalAssets: tt.additional,
				}, func(_ context.Context, names []string) error {
					calls = append(calls, names)
					return minSuffix(comp, names)
				})
			})

			result, err := newCompiler(t, nil, plugin).Run(context.Background(), cssAssets("main.css"))
			require.NoError(t, err)

			assert.Equal(t, tt.calls, calls)
			assert.Equal(t, tt.names, result.Names())
		})
	}
}

func TestCompiler_Run_AdditionalSeesLaterStages(t *testing.T) {
	var seen [][]string
	plugin := pluginFunc(func(c *compilation.Compilation) {
		c.Hooks.ProcessAssets.Tap(compilation.TapOptions{
			Name:             "watcher",
			Stage:            compilation.StageOptimize,
			AdditionalAssets: true,
		}, func(_ context.Context, names []string) error {
			seen = append(seen, names)
			return nil
		})
		c.Hooks.ProcessAssets.Tap(compilation.TapOptions{
			Name:  "emitter",
			Stage: compilation.StageOptimizeSize,
		}, func(_ context.Context, names []string) error {
			return minSuffix(c, names)
		})
	})

	_, err := newCompiler(t, nil, plugin).Run(context.Background(), cssAssets("a.css", "b.css"))
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"a.css", "b.css"}, {"a.min.css", "b.min.css"}}, seen)
}

func TestCompiler_Run_Error(t *testing.T) {
	boom := errors.New("boom")
	ranAfter := false

	plugin := pluginFunc(func(c *compilation.Compilation) {
		c.Hooks.ProcessAssets.Tap(compilation.TapOptions{Name: "failing", Stage: compilation.StageOptimize},
			func(context.Context, []string) error { return boom })
		c.Hooks.ProcessAssets.Tap(compilation.TapOptions{Name: "after", Stage: compilation.StageSummarize},
			func(context.Context, []string) error {
				ranAfter = true
				return nil
			})
	})

	comp, err := newCompiler(t, nil, plugin).Run(context.Background(), cssAssets("main.css"))
	require.Error(t, err)
	require.NotNil(t, comp, "partial results are returned")

	assert.ErrorIs(t, err, domain.ErrBuildFailed)
	assert.ErrorIs(t, err, boom)
	assert.False(t, ranAfter)
}

func TestCompiler_Run_Canceled(t *testing.T) {
	ran := false
	plugin := pluginFunc(func(c *compilation.Compilation) {
		c.Hooks.ProcessAssets.Tap(compilation.TapOptions{Name: "never"}, func(context.Context, []string) error {
			ran = true
			return nil
		})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newCompiler(t, nil, plugin).Run(ctx, cssAssets("main.css"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestCompiler_Run_FreshCompilationPerBuild(t *testing.T) {
	var mu sync.Mutex
	var comps []*compilation.Compilation
	plugin := pluginFunc(func(c *compilation.Compilation) {
		mu.Lock()
		defer mu.Unlock()
		comps = append(comps, c)
	})

	compiler := newCompiler(t, nil, plugin)
	first, err := compiler.Run(context.Background(), cssAssets("a.css"))
	require.NoError(t, err)
	second, err := compiler.Run(context.Background(), cssAssets("b.css"))
	require.NoError(t, err)

	require.Len(t, comps, 2)
	assert.NotSame(t, first, second)
	assert.Equal(t, []string{"a.css"}, first.Names())
	assert.Equal(t, []string{"b.css"}, second.Names())
	assert.Same(t, first.Cache(), second.Cache(), "the cache facade outlives builds")
}
