package cache

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the cache factory Graft node.
const NodeID graft.ID = "adapter.cache"

func init() {
	graft.Register(graft.Node[Factory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (Factory, error) {
			return New, nil
		},
	})
}
