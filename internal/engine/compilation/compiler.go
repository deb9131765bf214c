package compilation

import (
	"context"
	"errors"

	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/zerr"
)

// Plugin hooks into every compilation created by a Compiler.
type Plugin interface {
	Apply(c *Compilation)
}

// Compiler runs builds over a set of input assets.
// The cache facade is shared by every build of the same Compiler.
type Compiler struct {
	logger    ports.Logger
	telemetry ports.Telemetry
	metrics   ports.Metrics
	cache     *Cache
	plugins   []Plugin
}

// NewCompiler creates a Compiler applying plugins in the given order.
func NewCompiler(
	logger ports.Logger,
	telemetry ports.Telemetry,
	metrics ports.Metrics,
	cache ports.Cache,
	plugins ...Plugin,
) *Compiler {
	return &Compiler{
		logger:    logger,
		telemetry: telemetry,
		metrics:   metrics,
		cache:     NewCache(cache),
		plugins:   plugins,
	}
}

// Run creates a compilation seeded with assets and runs the process-assets phase.
// Handlers run ordered by stage, then registration. Handlers registered with
// AdditionalAssets then run once more over the assets emitted after they first ran.
// The compilation is returned even on failure so partial results can be inspected.
func (c *Compiler) Run(ctx context.Context, assets map[string]*domain.Asset) (*Compilation, error) {
	comp := newCompilation(c.logger, c.telemetry, c.metrics, c.cache)
	for _, a := range assets {
		comp.addInitial(a)
	}
	for _, p := range c.plugins {
		p.Apply(comp)
	}

	taps := comp.Hooks.ProcessAssets.sorted()
	marks := make([]int, len(taps))
	for i, t := range taps {
		if err := ctx.Err(); err != nil {
			return comp, err
		}
		marks[i] = comp.watermark()
		if err := t.fn(ctx, comp.Names()); err != nil {
			return comp, errors.Join(domain.ErrBuildFailed, zerr.With(err, "processor", t.opts.Name))
		}
	}

	for i, t := range taps {
		if !t.opts.AdditionalAssets {
			continue
		}
		added := comp.namesAddedSince(marks[i])
		if len(added) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return comp, err
		}
		c.logger.Debug("processing additional assets", "processor", t.opts.Name, "count", len(added))
		if err := t.fn(ctx, added); err != nil {
			return comp, errors.Join(domain.ErrBuildFailed, zerr.With(err, "processor", t.opts.Name))
		}
	}

	return comp, nil
}
