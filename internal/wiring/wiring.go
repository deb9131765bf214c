// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/csspost/internal/adapters/cache"
	_ "go.trai.ch/csspost/internal/adapters/config"
	_ "go.trai.ch/csspost/internal/adapters/cssengine"
	_ "go.trai.ch/csspost/internal/adapters/fs"
	_ "go.trai.ch/csspost/internal/adapters/logger"
	_ "go.trai.ch/csspost/internal/adapters/metrics"
	_ "go.trai.ch/csspost/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/csspost/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/csspost/internal/app"
)
