package watcher

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/csspost/internal/adapters/fs"
	"go.trai.ch/csspost/internal/core/domain"
)

// tempPrefix is the name prefix of the temporary files the asset writer renames into place.
const tempPrefix = domain.StateDirName + "-"

// WriteFilter drops file events caused by the build's own writes.
// A path is ignored while its content hash equals the hash recorded when it was written.
type WriteFilter struct {
	mu      sync.Mutex
	hasher  *fs.Hasher
	written map[string]uint64
}

// NewWriteFilter creates an empty filter.
func NewWriteFilter(hasher *fs.Hasher) *WriteFilter {
	return &WriteFilter{
		hasher:  hasher,
		written: make(map[string]uint64),
	}
}

// Record remembers the current content of paths written by a build.
func (f *WriteFilter) Record(paths []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range paths {
		h, err := f.hasher.ComputeFileHash(p)
		if err != nil {
			delete(f.written, p)
			continue
		}
		f.written[p] = h
	}
}

// Filter returns the sorted subset of paths that were not produced by a recorded write.
func (f *WriteFilter) Filter(paths []string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, p := range paths {
		if isInternal(p) {
			continue
		}
		if h, ok := f.written[p]; ok {
			current, err := f.hasher.ComputeFileHash(p)
			if err == nil && current == h {
				continue
			}
			delete(f.written, p)
		}
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// isInternal reports whether p is the state directory or one of the writer's temporary files.
func isInternal(p string) bool {
	base := filepath.Base(p)
	if base == domain.StateDirName || strings.HasPrefix(base, tempPrefix) {
		return true
	}
	return slices.Contains(strings.Split(filepath.ToSlash(p), "/"), domain.StateDirName)
}
