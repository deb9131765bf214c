package domain

import "path/filepath"

const (
	// StateDirName is the name of the internal state directory.
	StateDirName = ".csspost"

	// CacheDirName is the name of the on-disk cache directory.
	CacheDirName = "cache"

	// ManifestFileName is the name of the file listing the outputs of the last build.
	ManifestFileName = "outputs.json"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "csspost.yaml"

	// SourceMapSuffix is appended to an asset name to name its source map.
	SourceMapSuffix = ".map"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultStatePath returns the default root directory for csspost state.
func DefaultStatePath() string {
	return StateDirName
}

// DefaultCachePath returns the default path of the on-disk cache.
// It joins .csspost and cache.
func DefaultCachePath() string {
	return filepath.Join(StateDirName, CacheDirName)
}
