package fs

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.AssetReader = (*Reader)(nil)

const annotationPrefix = "/*# sourceMappingURL="

// fileState remembers the source built for a file so unchanged files keep their
// *domain.Source, and with it the memoised content hash, across reads.
type fileState struct {
	modTime    time.Time
	size       int64
	mapModTime time.Time
	mapSize    int64
	sourceMaps bool
	source     *domain.Source
}

// Reader loads assets from a directory.
type Reader struct {
	walker *Walker

	mu    sync.Mutex
	known map[string]fileState
}

// NewReader creates a new Reader.
func NewReader(walker *Walker) *Reader {
	return &Reader{
		walker: walker,
		known:  make(map[string]fileState),
	}
}

// Read returns every file under dir as an asset named by its slash-separated path
// relative to dir. With sourceMaps set, "<name>.map" files are attached to "<name>"
// instead of being read as assets, and stylesheets without one get an identity map.
func (r *Reader) Read(ctx context.Context, dir string, sourceMaps bool) (map[string]*domain.Asset, error) {
	files := make(map[string]string)
	for p := range r.walker.WalkFiles(dir, nil) {
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrAssetReadFailed.Error()), "path", p)
		}
		files[filepath.ToSlash(rel)] = p
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(files))
	assets := make(map[string]*domain.Asset, len(files))
	for name, p := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sourceMaps && strings.HasSuffix(name, domain.SourceMapSuffix) {
			if _, ok := files[strings.TrimSuffix(name, domain.SourceMapSuffix)]; ok {
				continue
			}
		}

		mapPath := ""
		if sourceMaps {
			mapPath = files[name+domain.SourceMapSuffix]
		}

		src, err := r.load(name, p, mapPath, sourceMaps)
		if err != nil {
			return nil, err
		}
		seen[p] = true

		info := domain.AssetInfo{SourceFilename: name}
		if mapPath != "" {
			info.Related = map[string]string{"sourceMap": name + domain.SourceMapSuffix}
		}
		assets[name] = &domain.Asset{Name: name, Source: src, Info: info}
	}

	for p := range r.known {
		if !seen[p] {
			delete(r.known, p)
		}
	}

	return assets, nil
}

// load returns the source of one file, reusing the previous one when neither the
// file nor its map changed.
func (r *Reader) load(name, p, mapPath string, sourceMaps bool) (*domain.Source, error) {
	fi, err := os.Stat(p)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrAssetReadFailed.Error()), "path", p)
	}
	state := fileState{modTime: fi.ModTime(), size: fi.Size(), sourceMaps: sourceMaps}
	if mapPath != "" {
		mfi, err := os.Stat(mapPath)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrAssetReadFailed.Error()), "path", mapPath)
		}
		state.mapModTime = mfi.ModTime()
		state.mapSize = mfi.Size()
	}

	if prev, ok := r.known[p]; ok && prev.sameAs(state) {
		return prev.source, nil
	}

	content, err := os.ReadFile(p) //nolint:gosec // Path comes from walking the input directory
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrAssetReadFailed.Error()), "path", p)
	}

	switch {
	case mapPath != "":
		data, err := os.ReadFile(mapPath) //nolint:gosec // Path comes from walking the input directory
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrAssetReadFailed.Error()), "path", mapPath)
		}
		m, err := domain.ParseSourceMap(data)
		if err != nil {
			return nil, zerr.With(err, "path", mapPath)
		}
		content = StripAnnotation(content)
		state.source = domain.NewSourceMapSource(content, name, m)
	case sourceMaps && path.Ext(name) == ".css":
		content = StripAnnotation(content)
		state.source = domain.NewSourceMapSource(content, name, domain.IdentityMap(name, content))
	default:
		state.source = domain.NewRawSource(content)
	}

	r.known[p] = state
	return state.source, nil
}

func (s fileState) sameAs(o fileState) bool {
	return s.modTime.Equal(o.modTime) && s.size == o.size &&
		s.mapModTime.Equal(o.mapModTime) && s.mapSize == o.mapSize &&
		s.sourceMaps == o.sourceMaps
}

// StripAnnotation removes a trailing sourceMappingURL comment, and the newline before it,
// from a stylesheet.
func StripAnnotation(content []byte) []byte {
	idx := bytes.LastIndex(content, []byte(annotationPrefix))
	if idx < 0 {
		return content
	}
	end := bytes.Index(content[idx:], []byte("*/"))
	if end < 0 || len(bytes.TrimSpace(content[idx+end+2:])) != 0 {
		return content
	}
	out := content[:idx]
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out
}

// Annotate appends a sourceMappingURL comment referencing mapName to a stylesheet.
func Annotate(content []byte, mapName string) []byte {
	out := make([]byte, 0, len(content)+len(annotationPrefix)+len(mapName)+3)
	out = append(out, content...)
	out = append(out, '\n')
	out = append(out, annotationPrefix...)
	out = append(out, mapName...)
	out = append(out, "*/"...)
	return out
}
