package fs

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.OutputManifest = (*Manifest)(nil)

// Manifest stores the outputs of the last build under the project's state directory.
type Manifest struct{}

// NewManifest creates a new Manifest.
func NewManifest() *Manifest {
	return &Manifest{}
}

type manifestFile struct {
	Outputs map[string]string `json:"outputs"`
}

func manifestPath(root string) string {
	return filepath.Join(root, domain.StateDirName, domain.ManifestFileName)
}

// Load returns the recorded outputs. A missing manifest is empty.
func (m *Manifest) Load(root string) (map[string]string, error) {
	p := manifestPath(root)
	data, err := os.ReadFile(p) //nolint:gosec // Path is under the project state directory
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", p)
	}

	var f manifestFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", p)
	}
	if f.Outputs == nil {
		f.Outputs = map[string]string{}
	}
	return f.Outputs, nil
}

// Save replaces the recorded outputs. Keys are written sorted.
func (m *Manifest) Save(root string, outputs map[string]string) error {
	if outputs == nil {
		outputs = map[string]string{}
	}
	data, err := json.MarshalIndent(manifestFile{Outputs: outputs}, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}
	if _, err := writeIfChanged(manifestPath(root), data); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrManifestWriteFailed.Error()), "root", root)
	}
	return nil
}
