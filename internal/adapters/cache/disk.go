package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/zerr"
)

// Disk implements ports.Cache with one JSON file per (scope, key, etag) under a directory.
// Files are named by the xxhash of the triple and written atomically.
type Disk struct {
	dir string
}

// NewDisk creates a Disk cache rooted at dir. The directory is created on first store.
func NewDisk(dir string) *Disk {
	return &Disk{dir: filepath.Clean(dir)}
}

// Dir returns the cache directory.
func (d *Disk) Dir() string {
	return d.dir
}

func (d *Disk) path(scope, key, etag string) string {
	h := xxhash.New()
	_, _ = h.WriteString(scope)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(key)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(etag)
	name := fmt.Sprintf("%016x.json", h.Sum64())
	return filepath.Join(d.dir, name[:2], name)
}

// Get returns the entry stored for (scope, key, etag).
func (d *Disk) Get(_ context.Context, scope, key, etag string) (*domain.CacheEntry, error) {
	p := d.path(scope, key, etag)

	//nolint:gosec // Path is derived from a hash under the cache directory
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "path", p)
	}

	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheUnmarshalFailed.Error()), "path", p)
	}
	if r.Scope != scope || r.Key != key || r.Etag != etag {
		return nil, nil
	}
	return &r.Entry, nil
}

// Store writes the entry for (scope, key, etag).
func (d *Disk) Store(_ context.Context, scope, key, etag string, entry domain.CacheEntry) error {
	data, err := json.Marshal(record{Scope: scope, Key: key, Etag: etag, Entry: entry})
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheMarshalFailed.Error())
	}

	p := d.path(scope, key, etag)
	if err := os.MkdirAll(filepath.Dir(p), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", p)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".entry-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", p)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", p)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", p)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", p)
	}
	return nil
}

// Clean removes the cache directory.
func (d *Disk) Clean() error {
	if err := os.RemoveAll(d.dir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to clean cache"), "path", d.dir)
	}
	return nil
}
