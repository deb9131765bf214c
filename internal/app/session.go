package app

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/csspost/internal/engine/compilation"
	"go.trai.ch/csspost/internal/engine/postprocess"
	"go.trai.ch/zerr"
)

// session builds one loaded project. Its compiler, and with it the cache facade,
// is reused by every build of the session.
type session struct {
	app      *App
	project  *ports.Project
	compiler *compilation.Compiler
	closer   io.Closer
}

func (a *App) newSession(project *ports.Project, noCache bool, telemetry ports.Telemetry) (*session, error) {
	settings := project.Settings.Cache
	if noCache {
		settings.Backend = domain.CacheNone
	}
	backend, err := a.caches(settings)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create cache")
	}

	plugins := make([]compilation.Plugin, 0, len(project.Processors))
	for _, spec := range project.Processors {
		p, err := postprocess.New(postprocess.Options{
			Name:             spec.Name,
			Plugins:          spec.Plugins,
			Filename:         spec.Filename,
			Filter:           spec.Filter,
			AdditionalAssets: spec.AdditionalAssets,
			Implementation:   a.engine,
		})
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, p)
	}

	s := &session{
		app:      a,
		project:  project,
		compiler: compilation.NewCompiler(a.logger, telemetry, a.metrics, backend, plugins...),
	}
	if c, ok := backend.(io.Closer); ok {
		s.closer = c
	}
	return s, nil
}

func (s *session) close() {
	if s.closer != nil {
		_ = s.closer.Close()
	}
}

// build reads the input directory, runs the compiler and writes every asset to the output directory.
// Nothing is written when the compilation fails.
func (s *session) build(ctx context.Context) (*BuildResult, error) {
	start := time.Now()
	settings := s.project.Settings
	result := &BuildResult{Project: s.project}

	assets, err := s.app.reader.Read(ctx, settings.Input, settings.SourceMaps)
	if err != nil {
		return result, err
	}

	previous, err := s.app.manifest.Load(s.project.Root)
	if err != nil {
		s.app.logger.Warn("ignoring output manifest", "error", err)
		previous = map[string]string{}
	}
	outputs := make(map[string]string)
	for name, a := range assets {
		p := filepath.Join(settings.Input, filepath.FromSlash(name))
		hash, ok := previous[p]
		switch {
		case !ok:
		case hash == "":
			delete(assets, name)
		case hash == a.Source.ContentHash():
			// Rewritten in place by an earlier build and untouched since.
			delete(assets, name)
			outputs[p] = hash
		}
	}

	comp, err := s.compiler.Run(ctx, assets)
	if comp != nil {
		result.Stats = comp.Stats()
	}
	if err != nil {
		return result, err
	}

	all := comp.Assets()
	result.Written, err = s.app.writer.Write(ctx, settings.Output, all, settings.SourceMaps)
	if err != nil {
		return result, err
	}

	for _, a := range all {
		p := filepath.Join(settings.Output, filepath.FromSlash(a.Name))
		input, ok := assets[a.Name]
		switch {
		case !ok:
			result.Emitted = append(result.Emitted, p)
			outputs[p] = ""
		case input.Source != a.Source:
			outputs[p] = a.Source.ContentHash()
		}
	}
	if err := s.app.manifest.Save(s.project.Root, outputs); err != nil {
		s.app.logger.Warn("cannot save output manifest", "error", err)
	}

	result.Duration = time.Since(start)
	s.app.logger.Debug("build finished",
		"inputs", len(assets),
		"assets", len(all),
		"written", len(result.Written),
		"duration", result.Duration,
	)
	return result, nil
}
