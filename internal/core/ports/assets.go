package ports

import (
	"context"

	"go.trai.ch/csspost/internal/core/domain"
)

// AssetReader loads build assets from a directory.
//
//go:generate go run go.uber.org/mock/mockgen -source=assets.go -destination=mocks/mock_assets.go -package=mocks
type AssetReader interface {
	// Read returns the assets found under dir keyed by slash-separated relative name.
	// With sourceMaps set, sibling ".map" files are attached to their stylesheet.
	Read(ctx context.Context, dir string, sourceMaps bool) (map[string]*domain.Asset, error)
}

// AssetWriter persists build assets to a directory.
type AssetWriter interface {
	// Write stores assets under dir and returns the paths of the files it wrote.
	// With sourceMaps set, maps are written next to their stylesheet and referenced
	// by an annotation comment. Files whose content is already up to date are left untouched.
	Write(ctx context.Context, dir string, assets []*domain.Asset, sourceMaps bool) ([]string, error)
}

// OutputManifest remembers the files a build wrote so later builds do not read them back as inputs.
// Outputs map absolute paths to a content hash. Emitted files carry an empty hash. Inputs rewritten
// in place carry the hash of the written content, so they are skipped only while left untouched.
type OutputManifest interface {
	// Load returns the outputs recorded for the project rooted at root.
	Load(root string) (map[string]string, error)
	// Save replaces the recorded outputs.
	Save(root string, outputs map[string]string) error
}
