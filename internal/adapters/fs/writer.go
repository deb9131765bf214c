package fs

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.AssetWriter = (*Writer)(nil)

// Writer persists assets to a directory.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write stores every asset under dir and returns the paths written.
func (w *Writer) Write(ctx context.Context, dir string, assets []*domain.Asset, sourceMaps bool) ([]string, error) {
	var written []string
	for _, a := range assets {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		dest, err := w.resolve(dir, a.Name)
		if err != nil {
			return written, err
		}

		content := a.Source.Content()
		if m := a.Source.Map(); sourceMaps && m != nil {
			data, err := m.JSON()
			if err != nil {
				return written, zerr.With(zerr.Wrap(err, domain.ErrAssetWriteFailed.Error()), "asset", a.Name)
			}
			changed, err := writeIfChanged(dest+domain.SourceMapSuffix, data)
			if err != nil {
				return written, zerr.With(err, "asset", a.Name+domain.SourceMapSuffix)
			}
			if changed {
				written = append(written, dest+domain.SourceMapSuffix)
			}
			content = Annotate(content, path.Base(a.Name)+domain.SourceMapSuffix)
		}

		changed, err := writeIfChanged(dest, content)
		if err != nil {
			return written, zerr.With(err, "asset", a.Name)
		}
		if changed {
			written = append(written, dest)
		}
	}
	return written, nil
}

// resolve maps an asset name to a path under dir.
func (w *Writer) resolve(dir, name string) (string, error) {
	dest := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
		return "", zerr.With(zerr.Wrap(domain.ErrOutputPathOutsideRoot, "cannot write asset"), "asset", name)
	}
	return dest, nil
}

// writeIfChanged atomically replaces the file at p with content unless it already holds it.
func writeIfChanged(p string, content []byte) (bool, error) {
	existing, err := os.ReadFile(p) //nolint:gosec // Path is resolved under the output directory
	switch {
	case err == nil && bytes.Equal(existing, content):
		return false, nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return false, zerr.With(zerr.Wrap(err, domain.ErrAssetWriteFailed.Error()), "path", p)
	}

	if err := os.MkdirAll(filepath.Dir(p), domain.DirPerm); err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrAssetWriteFailed.Error()), "path", p)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".csspost-*")
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrAssetWriteFailed.Error()), "path", p)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // Best effort cleanup, fails after rename

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return false, zerr.With(zerr.Wrap(err, domain.ErrAssetWriteFailed.Error()), "path", p)
	}
	if err := tmp.Close(); err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrAssetWriteFailed.Error()), "path", p)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrAssetWriteFailed.Error()), "path", p)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrAssetWriteFailed.Error()), "path", p)
	}
	return true, nil
}
