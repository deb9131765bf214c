package app

import (
	"context"
	"time"

	"go.trai.ch/csspost/internal/adapters/watcher" //nolint:depguard // Debouncing is wired in app layer
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/zerr"
)

// WriteFilter drops file events caused by the build's own writes.
type WriteFilter interface {
	// Record remembers the content of files a build wrote.
	Record(paths []string)
	// Filter returns the paths changed by something other than a recorded write.
	Filter(paths []string) []string
}

// WithWatcher enables Watch with watchers created by newWatcher.
func (a *App) WithWatcher(newWatcher func() (ports.Watcher, error), filter WriteFilter) *App {
	a.newWatcher = newWatcher
	a.filter = filter
	return a
}

// WatchOptions configure a watch session.
type WatchOptions struct {
	BuildOptions
	// Debounce is the quiet period after a change before rebuilding.
	Debounce time.Duration
	// OnBuild is called after every build, including failed ones.
	OnBuild func(result *BuildResult, err error)
}

// Watch builds once, then rebuilds whenever files in the input directory change,
// until ctx is canceled. Build failures are reported to OnBuild and do not end the session.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	if a.newWatcher == nil || a.filter == nil {
		return zerr.New("watching is not configured")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = watcher.DefaultDebounceWindow
	}
	onBuild := opts.OnBuild
	if onBuild == nil {
		onBuild = func(*BuildResult, error) {}
	}

	project, err := a.configLoader.Load(opts.ConfigPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	s, err := a.newSession(project, opts.NoCache, a.telemetry)
	if err != nil {
		return err
	}
	defer s.close()

	rebuild := func() {
		result, err := s.build(ctx)
		if result != nil {
			a.filter.Record(result.Written)
		}
		if ctx.Err() != nil {
			return
		}
		onBuild(result, err)
	}

	w, err := a.newWatcher()
	if err != nil {
		return zerr.Wrap(err, "failed to create watcher")
	}
	defer w.Stop() //nolint:errcheck // Best effort cleanup on exit

	rebuild()

	if err := w.Start(ctx, project.Settings.Input); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to watch input directory"), "path", project.Settings.Input)
	}
	a.logger.Info("watching for changes", "path", project.Settings.Input)

	trigger := make(chan struct{}, 1)
	d := watcher.NewDebouncer(opts.Debounce, func(paths []string) {
		changed := a.filter.Filter(paths)
		if len(changed) == 0 {
			return
		}
		a.logger.Debug("changes detected", "paths", changed)
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	defer d.Stop()

	go func() {
		for event := range w.Events() {
			d.Add(event.Path)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
			rebuild()
		}
	}
}
