package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidConfiguration is the sentinel wrapped by every ConfigurationError.
	ErrInvalidConfiguration = zerr.New("invalid configuration")

	// ErrTransformFailed is returned when the transformation engine fails on an asset.
	ErrTransformFailed = zerr.New("failed to transform asset")

	// ErrSyntax is returned when a stylesheet cannot be tokenized or has unbalanced blocks.
	ErrSyntax = zerr.New("invalid stylesheet syntax")

	// ErrUnknownPlugin is returned when a configuration references a plugin that is not registered.
	ErrUnknownPlugin = zerr.New("unknown plugin")

	// ErrSourceMapInvalid is returned when an input source map cannot be decoded.
	ErrSourceMapInvalid = zerr.New("invalid source map")

	// ErrBuildFailed is returned when the optimize-assets stage of a build fails.
	ErrBuildFailed = zerr.New("build failed")

	// ErrAssetNotFound is returned when an asset operation references a missing asset.
	ErrAssetNotFound = zerr.New("asset not found")

	// ErrAssetAlreadyExists is returned when emitting an asset under a name that is taken
	// by a different source.
	ErrAssetAlreadyExists = zerr.New("asset already exists")

	// ErrUnknownCacheBackend is returned when the configured cache backend is not supported.
	ErrUnknownCacheBackend = zerr.New("unknown cache backend")

	// ErrCacheReadFailed is returned when a cache entry cannot be read.
	ErrCacheReadFailed = zerr.New("failed to read cache entry")

	// ErrCacheWriteFailed is returned when a cache entry cannot be written.
	ErrCacheWriteFailed = zerr.New("failed to write cache entry")

	// ErrCacheMarshalFailed is returned when a cache entry cannot be encoded.
	ErrCacheMarshalFailed = zerr.New("failed to marshal cache entry")

	// ErrCacheUnmarshalFailed is returned when a cache entry cannot be decoded.
	ErrCacheUnmarshalFailed = zerr.New("failed to unmarshal cache entry")

	// ErrConfigNotFound is returned when no configuration file is found.
	ErrConfigNotFound = zerr.New("no csspost.yaml found in directory or parents")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrAssetReadFailed is returned when an input asset cannot be read from disk.
	ErrAssetReadFailed = zerr.New("failed to read asset")

	// ErrAssetWriteFailed is returned when an output asset cannot be written to disk.
	ErrAssetWriteFailed = zerr.New("failed to write asset")

	// ErrOutputPathOutsideRoot is returned when an asset name escapes the output directory.
	ErrOutputPathOutsideRoot = zerr.New("output path is outside output directory")

	// ErrManifestReadFailed is returned when the output manifest cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read output manifest")

	// ErrManifestWriteFailed is returned when the output manifest cannot be written.
	ErrManifestWriteFailed = zerr.New("failed to write output manifest")

	// ErrUnsafeCleanPath is returned when clean is asked to remove a directory holding project files.
	ErrUnsafeCleanPath = zerr.New("refusing to remove directory containing project files")

	// ErrMetricsWriteFailed is returned when the metrics textfile cannot be written.
	ErrMetricsWriteFailed = zerr.New("failed to write metrics file")
)
