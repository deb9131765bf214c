package cssengine

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/csspost/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the transformation engine Graft node.
	NodeID graft.ID = "adapter.css_engine"
	// RegistryNodeID is the unique identifier for the plugin registry Graft node.
	RegistryNodeID graft.ID = "adapter.plugin_registry"
)

func init() {
	graft.Register(graft.Node[ports.Engine]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Engine, error) {
			return New(), nil
		},
	})

	graft.Register(graft.Node[*Registry]{
		ID:        RegistryNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Registry, error) {
			return NewRegistry(), nil
		},
	})
}
