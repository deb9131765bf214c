package compilation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports/mocks"
	"go.trai.ch/csspost/internal/engine/compilation"
	"go.uber.org/mock/gomock"
)

func TestCache_Disabled(t *testing.T) {
	c := compilation.NewCache(nil)
	src := domain.NewRawSource([]byte("a{}"))
	item := c.Item("scope", "main.css", c.LazyEtag(src))

	require.NoError(t, item.Store(context.Background(), domain.CacheEntry{Filename: "main.css"}))
	entry, err := item.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestCache_MemoryLayer(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockCache(ctrl)

	src := domain.NewRawSource([]byte("a{}"))
	entry := domain.CacheEntry{Filename: "main.min.css", Content: []byte("a{}")}

	backend.EXPECT().Store(gomock.Any(), "scope", "main.css", src.Hash(), entry).Return(nil)

	c := compilation.NewCache(backend)
	require.NoError(t, c.Item("scope", "main.css", c.LazyEtag(src)).Store(context.Background(), entry))

	// Served from memory: no backend Get expected.
	got, err := c.Item("scope", "main.css", c.LazyEtag(src)).Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry, *got)

	// A different source falls through to the backend.
	changed := domain.NewRawSource([]byte("b{}"))
	backend.EXPECT().Get(gomock.Any(), "scope", "main.css", changed.Hash()).Return(nil, nil)
	got, err = c.Item("scope", "main.css", c.LazyEtag(changed)).Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_RevertedSourceHitsMemory(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockCache(ctrl)
	backend.EXPECT().Store(gomock.Any(), "scope", "main.css", gomock.Any(), gomock.Any()).Return(nil).Times(2)

	original := domain.NewRawSource([]byte("a{}"))
	edited := domain.NewRawSource([]byte("b{}"))
	first := domain.CacheEntry{Filename: "main.css", Content: []byte("a{}")}
	second := domain.CacheEntry{Filename: "main.css", Content: []byte("b{}")}

	c := compilation.NewCache(backend)
	require.NoError(t, c.Item("scope", "main.css", c.LazyEtag(original)).Store(context.Background(), first))
	require.NoError(t, c.Item("scope", "main.css", c.LazyEtag(edited)).Store(context.Background(), second))

	// Both etags are served from memory: no backend Get expected.
	reverted := domain.NewRawSource([]byte("a{}"))
	got, err := c.Item("scope", "main.css", c.LazyEtag(reverted)).Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first, *got)

	got, err = c.Item("scope", "main.css", c.LazyEtag(edited)).Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second, *got)
}

func TestCache_BackendHitIsRemembered(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockCache(ctrl)

	src := domain.NewRawSource([]byte("a{}"))
	entry := &domain.CacheEntry{Filename: "main.css", Content: []byte("a{}")}
	backend.EXPECT().Get(gomock.Any(), "scope", "main.css", src.Hash()).Return(entry, nil).Times(1)

	c := compilation.NewCache(backend)
	for range 3 {
		got, err := c.Item("scope", "main.css", c.LazyEtag(src)).Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, entry, got)
	}
}

func TestCache_BackendErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockCache(ctrl)
	boom := errors.New("boom")

	src := domain.NewRawSource([]byte("a{}"))
	backend.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, boom)
	backend.EXPECT().Store(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(boom)

	c := compilation.NewCache(backend)
	item := c.Item("scope", "main.css", c.LazyEtag(src))

	_, err := item.Get(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, item.Store(context.Background(), domain.CacheEntry{}), boom)
}

func TestEtag_String(t *testing.T) {
	c := compilation.NewCache(nil)
	src := domain.NewRawSource([]byte("a{}"))

	assert.Equal(t, src.Hash(), c.LazyEtag(src).String())
	assert.Len(t, c.LazyEtag(src).String(), 16)
}
