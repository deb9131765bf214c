package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/csspost/internal/adapters/cssengine" //nolint:depguard // Wired in adapter layer
	"go.trai.ch/csspost/internal/adapters/logger"    //nolint:depguard // Wired in adapter layer
	"go.trai.ch/csspost/internal/core/ports"
)

// NodeID is the unique identifier for the config loader Graft node.
const NodeID graft.ID = "adapter.config_loader"

func init() {
	graft.Register(graft.Node[ports.ConfigLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, cssengine.RegistryNodeID},
		Run: func(ctx context.Context) (ports.ConfigLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			registry, err := graft.Dep[*cssengine.Registry](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log, registry), nil
		},
	})
}
