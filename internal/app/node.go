package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/csspost/internal/adapters/cache"              //nolint:depguard // Wired in app layer
	"go.trai.ch/csspost/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/csspost/internal/adapters/cssengine"          //nolint:depguard // Wired in app layer
	"go.trai.ch/csspost/internal/adapters/fs"                 //nolint:depguard // Wired in app layer
	"go.trai.ch/csspost/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/csspost/internal/adapters/metrics"            //nolint:depguard // Wired in app layer
	"go.trai.ch/csspost/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/csspost/internal/adapters/watcher"            //nolint:depguard // Wired in app layer
	"go.trai.ch/csspost/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App      *App
	Logger   ports.Logger
	Metrics  *metrics.Prometheus
	Registry *cssengine.Registry
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.ReaderNodeID,
			fs.WriterNodeID,
			fs.ManifestNodeID,
			cache.NodeID,
			cssengine.NodeID,
			logger.NodeID,
			progrock.NodeID,
			metrics.NodeID,
			watcher.WatcherNodeID,
			watcher.WriteFilterNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			metrics.NodeID,
			cssengine.RegistryNodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	reader, err := graft.Dep[ports.AssetReader](ctx)
	if err != nil {
		return nil, err
	}
	writer, err := graft.Dep[ports.AssetWriter](ctx)
	if err != nil {
		return nil, err
	}
	manifest, err := graft.Dep[ports.OutputManifest](ctx)
	if err != nil {
		return nil, err
	}
	caches, err := graft.Dep[cache.Factory](ctx)
	if err != nil {
		return nil, err
	}
	engine, err := graft.Dep[ports.Engine](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}
	prom, err := graft.Dep[*metrics.Prometheus](ctx)
	if err != nil {
		return nil, err
	}
	newWatcher, err := graft.Dep[watcher.Factory](ctx)
	if err != nil {
		return nil, err
	}
	filter, err := graft.Dep[*watcher.WriteFilter](ctx)
	if err != nil {
		return nil, err
	}

	a := New(loader, reader, writer, manifest, CacheFactory(caches), engine, log, telemetry, prom)
	return a.WithWatcher(newWatcher, filter), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	a, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	prom, err := graft.Dep[*metrics.Prometheus](ctx)
	if err != nil {
		return nil, err
	}
	registry, err := graft.Dep[*cssengine.Registry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:      a,
		Logger:   log,
		Metrics:  prom,
		Registry: registry,
	}, nil
}
