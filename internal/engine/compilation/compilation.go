// Package compilation implements the host build pipeline that asset post-processors tap into.
package compilation

import (
	"bytes"
	"path"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/zerr"
)

// Compilation holds the asset set of one build.
// Asset operations are safe for concurrent use on independent names.
type Compilation struct {
	Hooks Hooks

	logger    ports.Logger
	telemetry ports.Telemetry
	metrics   ports.Metrics
	cache     *Cache

	mu       sync.RWMutex
	assets   map[string]*domain.Asset
	added    map[string]int
	seq      int
	statuses map[string]domain.AssetStatus
	printers map[string]InfoPrinter
}

// InfoPrinter reports whether an asset should be flagged with the printer's key in build summaries.
type InfoPrinter func(info domain.AssetInfo) bool

func newCompilation(
	logger ports.Logger,
	telemetry ports.Telemetry,
	metrics ports.Metrics,
	cache *Cache,
) *Compilation {
	return &Compilation{
		logger:    logger,
		telemetry: telemetry,
		metrics:   metrics,
		cache:     cache,
		assets:    make(map[string]*domain.Asset),
		added:     make(map[string]int),
		statuses:  make(map[string]domain.AssetStatus),
		printers:  make(map[string]InfoPrinter),
	}
}

// Logger returns the build logger.
func (c *Compilation) Logger() ports.Logger {
	return c.logger
}

// Telemetry returns the build telemetry recorder.
func (c *Compilation) Telemetry() ports.Telemetry {
	return c.telemetry
}

// Metrics returns the build metrics sink.
func (c *Compilation) Metrics() ports.Metrics {
	return c.metrics
}

// Cache returns the build cache facade.
func (c *Compilation) Cache() *Cache {
	return c.cache
}

// GetAsset returns the asset with the given name.
func (c *Compilation) GetAsset(name string) (*domain.Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assets[path.Clean(name)]
	return a, ok
}

// Names returns the sorted names of all assets.
func (c *Compilation) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.assets))
	for name := range c.assets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Assets returns all assets sorted by name.
func (c *Compilation) Assets() []*domain.Asset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*domain.Asset, 0, len(c.assets))
	for _, a := range c.assets {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *domain.Asset) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// UpdateAsset replaces the source and info of an existing asset.
func (c *Compilation) UpdateAsset(name string, src *domain.Source, info domain.AssetInfo) error {
	name = path.Clean(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.assets[name]; !ok {
		return zerr.With(zerr.Wrap(domain.ErrAssetNotFound, "cannot update asset"), "asset", name)
	}
	c.assets[name] = &domain.Asset{Name: name, Source: src, Info: info}
	return nil
}

// EmitAsset adds a new asset.
// Emitting over an existing name succeeds only when the content is identical, in which case
// the info is replaced.
func (c *Compilation) EmitAsset(name string, src *domain.Source, info domain.AssetInfo) error {
	name = path.Clean(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.assets[name]; ok {
		if existing.Source != src && !bytes.Equal(existing.Source.Content(), src.Content()) {
			return zerr.With(zerr.Wrap(domain.ErrAssetAlreadyExists, "cannot emit asset"), "asset", name)
		}
		c.assets[name] = &domain.Asset{Name: name, Source: src, Info: info}
		return nil
	}

	c.seq++
	c.assets[name] = &domain.Asset{Name: name, Source: src, Info: info}
	c.added[name] = c.seq
	return nil
}

// addInitial seeds the compilation with an input asset.
func (c *Compilation) addInitial(a *domain.Asset) {
	name := path.Clean(a.Name)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assets[name] = &domain.Asset{Name: name, Source: a.Source, Info: a.Info}
}

// watermark returns the sequence number of the most recently emitted asset.
func (c *Compilation) watermark() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seq
}

// namesAddedSince returns the sorted names of assets emitted after the given watermark.
func (c *Compilation) namesAddedSince(mark int) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var names []string
	for name, seq := range c.added {
		if seq > mark {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Report records the processing outcome of an asset for the build summary.
func (c *Compilation) Report(name string, status domain.AssetStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[path.Clean(name)] = status
}

// RegisterInfoPrinter flags assets whose info satisfies fn with key in build summaries.
func (c *Compilation) RegisterInfoPrinter(key string, fn InfoPrinter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printers[key] = fn
}

// AssetStat is one row of a build summary.
type AssetStat struct {
	Name   string
	Size   int
	Flags  []string
	Status domain.AssetStatus
}

// Stats summarizes the asset set, sorted by name.
func (c *Compilation) Stats() []AssetStat {
	assets := c.Assets()

	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.printers))
	for key := range c.printers {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	stats := make([]AssetStat, 0, len(assets))
	for _, a := range assets {
		stat := AssetStat{Name: a.Name, Size: a.Source.Size(), Status: c.statuses[a.Name]}
		for _, key := range keys {
			if c.printers[key](a.Info) {
				stat.Flags = append(stat.Flags, key)
			}
		}
		stats = append(stats, stat)
	}
	return stats
}
