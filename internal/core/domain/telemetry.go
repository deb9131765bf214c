package domain

import "strings"

// AssetStatus is the outcome of post-processing one asset.
type AssetStatus string

const (
	// AssetStatusPending indicates the asset was selected but not yet processed.
	AssetStatusPending AssetStatus = "pending"
	// AssetStatusOptimized indicates the plugin chain ran and the result was written.
	AssetStatusOptimized AssetStatus = "optimized"
	// AssetStatusCached indicates the result was restored from the cache.
	AssetStatusCached AssetStatus = "cached"
	// AssetStatusSkipped indicates the asset had no content.
	AssetStatusSkipped AssetStatus = "skipped"
	// AssetStatusFailed indicates the plugin chain returned an error.
	AssetStatusFailed AssetStatus = "failed"
)

// IsTerminal reports whether processing of the asset has ended.
func (s AssetStatus) IsTerminal() bool {
	switch s {
	case AssetStatusOptimized, AssetStatusCached, AssetStatusSkipped, AssetStatusFailed:
		return true
	default:
		return false
	}
}

// NormalizeAssetStatus converts a string to an AssetStatus, defaulting to pending if unknown.
func NormalizeAssetStatus(s string) AssetStatus {
	switch strings.ToLower(s) {
	case string(AssetStatusOptimized):
		return AssetStatusOptimized
	case string(AssetStatusCached):
		return AssetStatusCached
	case string(AssetStatusSkipped):
		return AssetStatusSkipped
	case string(AssetStatusFailed):
		return AssetStatusFailed
	default:
		return AssetStatusPending
	}
}

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}
