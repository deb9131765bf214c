package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/csspost/internal/core/ports"
)

const (
	// WalkerNodeID is the graft node ID for the file walker.
	WalkerNodeID graft.ID = "adapter.fs.walker"
	// ReaderNodeID is the graft node ID for the asset reader.
	ReaderNodeID graft.ID = "adapter.fs.reader"
	// WriterNodeID is the graft node ID for the asset writer.
	WriterNodeID graft.ID = "adapter.fs.writer"
	// ManifestNodeID is the graft node ID for the output manifest.
	ManifestNodeID graft.ID = "adapter.fs.manifest"
	// HasherNodeID is the graft node ID for the file hasher.
	HasherNodeID graft.ID = "adapter.fs.hasher"
)

func init() {
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	graft.Register(graft.Node[ports.AssetReader]{
		ID:        ReaderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{WalkerNodeID},
		Run: func(ctx context.Context) (ports.AssetReader, error) {
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewReader(walker), nil
		},
	})

	graft.Register(graft.Node[ports.AssetWriter]{
		ID:        WriterNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.AssetWriter, error) {
			return NewWriter(), nil
		},
	})

	graft.Register(graft.Node[ports.OutputManifest]{
		ID:        ManifestNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.OutputManifest, error) {
			return NewManifest(), nil
		},
	})

	graft.Register(graft.Node[*Hasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Hasher, error) {
			return NewHasher(), nil
		},
	})
}
