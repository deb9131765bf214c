// Package app implements the application layer for csspost.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/csspost/internal/adapters/telemetry/progrock" //nolint:depguard // Progress view is wired in app layer
	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/csspost/internal/engine/compilation"
	"go.trai.ch/csspost/internal/tui"
	"go.trai.ch/csspost/internal/ui/output"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// CacheFactory creates the cache backend selected by the project settings.
type CacheFactory func(s domain.CacheSettings) (ports.Cache, error)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	reader       ports.AssetReader
	writer       ports.AssetWriter
	manifest     ports.OutputManifest
	caches       CacheFactory
	engine       ports.Engine
	logger       ports.Logger
	telemetry    ports.Telemetry
	metrics      ports.Metrics
	newWatcher   func() (ports.Watcher, error)
	filter       WriteFilter
	teaOptions   []tea.ProgramOption
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	reader ports.AssetReader,
	writer ports.AssetWriter,
	manifest ports.OutputManifest,
	caches CacheFactory,
	engine ports.Engine,
	log ports.Logger,
	telemetry ports.Telemetry,
	metrics ports.Metrics,
) *App {
	return &App{
		configLoader: loader,
		reader:       reader,
		writer:       writer,
		manifest:     manifest,
		caches:       caches,
		engine:       engine,
		logger:       log,
		telemetry:    telemetry,
		metrics:      metrics,
	}
}

// WithTeaOptions adds bubbletea program options used by the progress view.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// BuildOptions configure a build.
type BuildOptions struct {
	// ConfigPath is the config file, or a directory to search upwards from.
	ConfigPath string
	// NoCache disables the configured cache backend.
	NoCache bool
	// Progress renders an interactive progress view on Output while building.
	Progress bool
	// Output receives the progress view. Defaults to stderr.
	Output io.Writer
}

// BuildResult describes a finished build.
type BuildResult struct {
	Project *ports.Project
	// Stats summarizes every asset of the compilation.
	Stats []compilation.AssetStat
	// Written lists the files the build changed on disk.
	Written []string
	// Emitted lists the output paths of assets the processors created.
	Emitted  []string
	Duration time.Duration
}

// Build loads the configuration and runs one build.
func (a *App) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	project, err := a.configLoader.Load(opts.ConfigPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	if !opts.Progress {
		s, err := a.newSession(project, opts.NoCache, a.telemetry)
		if err != nil {
			return nil, err
		}
		defer s.close()
		return s.build(ctx)
	}

	return a.buildWithProgress(ctx, project, opts)
}

// buildWithProgress runs the build while a progress view consumes its telemetry.
func (a *App) buildWithProgress(ctx context.Context, project *ports.Project, opts BuildOptions) (*BuildResult, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	feed := progrock.NewFeed()
	recorder := progrock.NewRecorder(feed)

	s, err := a.newSession(project, opts.NoCache, recorder)
	if err != nil {
		return nil, err
	}
	defer s.close()

	model := tui.NewModel(feed, output.NewRenderer(out))
	teaOpts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(out)}, a.teaOptions...)
	program := tea.NewProgram(model, teaOpts...)

	var result *BuildResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		defer recorder.Close() //nolint:errcheck // Closing the feed only ends the view
		var err error
		result, err = s.build(gctx)
		return err
	})

	err = g.Wait()
	return result, err
}

// CleanResult lists what Clean removed.
type CleanResult struct {
	Removed []string
}

// Clean removes the project state directory and the disk cache.
func (a *App) Clean(_ context.Context, configPath string) (*CleanResult, error) {
	project, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	result := &CleanResult{}
	var errs error

	targets := []string{filepath.Join(project.Root, domain.StateDirName)}
	if c := project.Settings.Cache; c.Backend == domain.CacheDisk && c.Path != "" && !isWithin(targets[0], c.Path) {
		if err := checkCleanTarget(project, c.Path); err != nil {
			errs = err
		} else {
			targets = append(targets, c.Path)
		}
	}

	for _, target := range targets {
		if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := os.RemoveAll(target); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, "failed to remove directory"), "path", target))
			continue
		}
		a.logger.Info(fmt.Sprintf("removed %s", target))
		result.Removed = append(result.Removed, target)
	}
	return result, errs
}

// checkCleanTarget rejects a directory that is, or contains, the project root or its
// input and output directories.
func checkCleanTarget(project *ports.Project, target string) error {
	protected := []string{project.Root, project.Settings.Input, project.Settings.Output}
	for _, p := range protected {
		if p == "" {
			continue
		}
		if isWithin(absPath(target), absPath(p)) {
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrUnsafeCleanPath, "cannot clean cache"), "path", target), "contains", p)
		}
	}
	return nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// isWithin reports whether p is dir or below it.
func isWithin(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !filepath.IsAbs(rel) && !hasParentPrefix(rel))
}

func hasParentPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:2] == ".." && os.IsPathSeparator(rel[2])
}
