package postprocess

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.trai.ch/csspost/internal/adapters/cssengine"
	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/csspost/internal/engine/compilation"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// OptimizedFlag is the summary flag of assets produced by a processor.
const OptimizedFlag = "optimized"

// Processor runs selected assets through a plugin chain.
type Processor struct {
	opts   Options
	engine ports.Engine
	scope  string
}

// New validates opts and creates a Processor.
// Every violated constraint is reported in a single *domain.ConfigurationError.
func New(opts Options) (*Processor, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Name == "" {
		opts.Name = DefaultName
	}

	engine := opts.Implementation
	if engine == nil {
		engine = cssengine.New()
	}

	return &Processor{
		opts:   opts,
		engine: engine,
		scope:  opts.scope(),
	}, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return p.opts.Name
}

// Scope returns the cache namespace of the processor.
func (p *Processor) Scope() string {
	return p.scope
}

// Apply taps the compilation's process-assets phase at the size-optimization stage
// and flags produced assets as optimized in build summaries.
func (p *Processor) Apply(c *compilation.Compilation) {
	c.Hooks.ProcessAssets.Tap(compilation.TapOptions{
		Name:             p.opts.Name,
		Stage:            compilation.StageOptimizeSize,
		AdditionalAssets: p.opts.AdditionalAssets,
	}, func(ctx context.Context, names []string) error {
		return p.Optimize(ctx, names, c)
	})

	c.RegisterInfoPrinter(OptimizedFlag, func(info domain.AssetInfo) bool {
		return info.Optimized
	})
}

// Optimize processes the selected assets among names concurrently and waits for all of them.
// The first failure is returned. Cache entries stored before the failure are kept.
func (p *Processor) Optimize(ctx context.Context, names []string, c *compilation.Compilation) error {
	if len(p.opts.Plugins) == 0 {
		return nil
	}

	selected := p.selectAssets(names)
	if len(selected) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range selected {
		g.Go(func() error {
			return p.process(ctx, name, c)
		})
	}
	return g.Wait()
}

// selectAssets returns the names matched by the filter, in order.
func (p *Processor) selectAssets(names []string) []string {
	var selected []string
	for _, name := range names {
		if p.opts.Filter.Match(name) {
			selected = append(selected, name)
		}
	}
	return selected
}

// process transforms one asset, or restores it from the cache.
func (p *Processor) process(ctx context.Context, name string, c *compilation.Compilation) error {
	asset, ok := c.GetAsset(name)
	if !ok {
		return nil
	}
	if asset.Source.Empty() {
		c.Metrics().AssetSkipped(p.scope)
		c.Report(name, domain.AssetStatusSkipped)
		return nil
	}

	ctx, vertex := c.Telemetry().Record(ctx, p.opts.Name+" "+name)

	cache := c.Cache()
	item := cache.Item(p.scope, name, cache.LazyEtag(asset.Source))

	entry, err := item.Get(ctx)
	if err != nil {
		c.Logger().Warn("cache lookup failed", "asset", name, "error", err)
		entry = nil
	}
	if entry != nil {
		c.Metrics().CacheHit(p.scope)
		vertex.Cached()
		err := p.commit(c, name, entry.Filename, entry.Source(), asset.Info)
		vertex.Complete(err)
		if err != nil {
			return err
		}
		c.Report(entry.Filename, domain.AssetStatusCached)
		c.Logger().Debug("restored from cache", "asset", name, "output", entry.Filename)
		return nil
	}
	c.Metrics().CacheMiss(p.scope)

	start := time.Now()
	css, inputMap := asset.Source.SourceAndMap()
	dest := p.opts.Filename.Derive(name)

	var mapOpts *ports.MapOptions
	if inputMap != nil {
		mapOpts = &ports.MapOptions{Prev: inputMap}
	}

	result, err := p.engine.Process(ctx, p.opts.Plugins, css, ports.ProcessOptions{
		Map:  mapOpts,
		From: name,
		To:   dest,
	})
	if err != nil {
		c.Metrics().AssetFailed(p.scope)
		c.Report(name, domain.AssetStatusFailed)
		vertex.Log(domain.LogLevelError, err.Error())
		vertex.Complete(err)
		return zerr.With(zerr.Wrap(err, domain.ErrTransformFailed.Error()), "asset", name)
	}

	var out *domain.Source
	if result.Map != nil {
		out = domain.NewSourceMapSource(result.CSS, dest, result.Map)
	} else {
		out = domain.NewRawSource(result.CSS)
	}

	if err := item.Store(ctx, domain.CacheEntry{Filename: dest, Content: result.CSS, Map: out.Map()}); err != nil {
		c.Logger().Warn("cache store failed", "asset", name, "error", err)
	}

	err = p.commit(c, name, dest, out, asset.Info)
	vertex.Complete(err)
	if err != nil {
		return err
	}

	c.Metrics().AssetProcessed(p.scope, time.Since(start).Seconds())
	c.Report(dest, domain.AssetStatusOptimized)
	_, _ = fmt.Fprintf(vertex.Stdout(), "%s -> %s (%d -> %d bytes)\n", name, dest, len(css), len(result.CSS))
	return nil
}

// commit writes a processed source back into the compilation: in place when the destination
// is the source name, as a new asset otherwise. The source asset's info is carried forward.
func (p *Processor) commit(
	c *compilation.Compilation,
	source, dest string,
	out *domain.Source,
	info domain.AssetInfo,
) error {
	outInfo := info.Clone()
	outInfo.Optimized = true

	if path.Clean(dest) == path.Clean(source) {
		return c.UpdateAsset(source, out, outInfo)
	}
	return c.EmitAsset(dest, out, outInfo)
}
