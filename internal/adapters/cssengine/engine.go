// Package cssengine implements the stylesheet transformation engine and its built-in plugins.
package cssengine

import (
	"context"

	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/zerr"
)

// Engine runs plugin chains over stylesheets.
type Engine struct{}

// New creates an Engine.
func New() *Engine {
	return &Engine{}
}

// Process validates css, runs it through plugins in order and, when opts.Map is set,
// maps the result back to the input or to the sources of opts.Map.Prev.
func (e *Engine) Process(
	ctx context.Context,
	plugins []ports.Plugin,
	css []byte,
	opts ports.ProcessOptions,
) (*ports.Result, error) {
	if err := Check(css); err != nil {
		return nil, err
	}

	out := css
	for _, p := range plugins {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := p.Transform(ctx, out)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "plugin failed"), "plugin", p.Name())
		}
		out = next
	}

	result := &ports.Result{CSS: out}
	if opts.Map == nil {
		return result, nil
	}

	m, err := buildMap(opts, css, out)
	if err != nil {
		return nil, err
	}
	result.Map = m
	return result, nil
}
