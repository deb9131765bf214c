package compilation_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/engine/compilation"
)

func runEmpty(t *testing.T, assets map[string]*domain.Asset) *compilation.Compilation {
	t.Helper()
	comp, err := newCompiler(t, nil).Run(context.Background(), assets)
	require.NoError(t, err)
	return comp
}

func TestCompilation_GetAsset(t *testing.T) {
	comp := runEmpty(t, cssAssets("minimized/main.css"))

	a, ok := comp.GetAsset("./minimized/main.css")
	require.True(t, ok)
	assert.Equal(t, "minimized/main.css", a.Name)

	_, ok = comp.GetAsset("main.css")
	assert.False(t, ok)
}

func TestCompilation_UpdateAsset(t *testing.T) {
	comp := runEmpty(t, cssAssets("main.css"))

	src := domain.NewRawSource([]byte("b{}"))
	require.NoError(t, comp.UpdateAsset("main.css", src, domain.AssetInfo{Optimized: true}))

	a, _ := comp.GetAsset("main.css")
	assert.Same(t, src, a.Source)
	assert.True(t, a.Info.Optimized)

	err := comp.UpdateAsset("missing.css", src, domain.AssetInfo{})
	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestCompilation_EmitAsset(t *testing.T) {
	comp := runEmpty(t, cssAssets("main.css"))

	require.NoError(t, comp.EmitAsset("./out/main.css", domain.NewRawSource([]byte("b{}")), domain.AssetInfo{}))
	assert.Equal(t, []string{"main.css", "out/main.css"}, comp.Names())

	// Same content under an existing name replaces the info.
	err := comp.EmitAsset("out/main.css", domain.NewRawSource([]byte("b{}")), domain.AssetInfo{Optimized: true})
	require.NoError(t, err)
	a, _ := comp.GetAsset("out/main.css")
	assert.True(t, a.Info.Optimized)

	err = comp.EmitAsset("out/main.css", domain.NewRawSource([]byte("c{}")), domain.AssetInfo{})
	assert.ErrorIs(t, err, domain.ErrAssetAlreadyExists)
}

func TestCompilation_ConcurrentAccess(t *testing.T) {
	comp := runEmpty(t, cssAssets("main.css"))

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			name := fmt.Sprintf("out/%d.css", i)
			assert.NoError(t, comp.EmitAsset(name, domain.NewRawSource([]byte(name)), domain.AssetInfo{}))
			_, ok := comp.GetAsset(name)
			assert.True(t, ok)
		})
	}
	wg.Wait()

	assert.Len(t, comp.Names(), 51)
}

func TestCompilation_Stats(t *testing.T) {
	comp := runEmpty(t, cssAssets("a.css", "b.css"))

	comp.RegisterInfoPrinter("optimized", func(info domain.AssetInfo) bool { return info.Optimized })
	require.NoError(t, comp.UpdateAsset("b.css", domain.NewRawSource([]byte("b{x:y}")), domain.AssetInfo{Optimized: true}))
	comp.Report("b.css", domain.AssetStatusOptimized)

	assert.Equal(t, []compilation.AssetStat{
		{Name: "a.css", Size: 3},
		{Name: "b.css", Size: 6, Flags: []string{"optimized"}, Status: domain.AssetStatusOptimized},
	}, comp.Stats())
}
