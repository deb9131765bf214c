// Package telemetry provides telemetry adapters that do not depend on a recording backend.
package telemetry

import (
	"context"
	"io"

	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
)

// NoOp is a ports.Telemetry that discards everything.
type NoOp struct{}

// NewNoOp creates a new NoOp telemetry.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Record returns a vertex that discards everything.
func (*NoOp) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, noOpVertex{}
}

// Close does nothing.
func (*NoOp) Close() error {
	return nil
}

type noOpVertex struct{}

func (noOpVertex) Stdout() io.Writer { return io.Discard }
func (noOpVertex) Log(domain.LogLevel, string) {}
func (noOpVertex) Cached() {}
func (noOpVertex) Complete(error) {}
