package ports

import "go.trai.ch/csspost/internal/core/domain"

// ProcessorSpec describes one configured post-processor.
type ProcessorSpec struct {
	Name             string
	Plugins          []Plugin
	Filename         domain.FilenameRule
	Filter           domain.FilterSpec
	AdditionalAssets bool
}

// Project is a loaded csspost configuration.
type Project struct {
	// Root is the directory holding the configuration file.
	Root       string
	Settings   domain.ProjectSettings
	Processors []ProcessorSpec
}

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads and validates the configuration file at path.
	Load(path string) (*Project, error)
}
