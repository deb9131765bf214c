package app_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/csspost/internal/adapters/cache"
	"go.trai.ch/csspost/internal/adapters/cssengine"
	"go.trai.ch/csspost/internal/adapters/fs"
	"go.trai.ch/csspost/internal/adapters/telemetry"
	"go.trai.ch/csspost/internal/adapters/watcher"
	"go.trai.ch/csspost/internal/app"
	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/csspost/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const sampleCSS = "body {\n  font-size: 15px;\n  font-family: sans-serif;\n}\n"

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	l := mocks.NewMockLogger(ctrl)
	l.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	l.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	l.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	return l
}

func quietMetrics(ctrl *gomock.Controller) *mocks.MockMetrics {
	m := mocks.NewMockMetrics(ctrl)
	m.EXPECT().AssetProcessed(gomock.Any(), gomock.Any()).AnyTimes()
	m.EXPECT().CacheHit(gomock.Any()).AnyTimes()
	m.EXPECT().CacheMiss(gomock.Any()).AnyTimes()
	m.EXPECT().AssetSkipped(gomock.Any()).AnyTimes()
	m.EXPECT().AssetFailed(gomock.Any()).AnyTimes()
	return m
}

// minProject processes every stylesheet in dir into a minified "[name].min[ext]" sibling.
func minProject(dir string, sourceMaps bool) *ports.Project {
	return &ports.Project{
		Root: dir,
		Settings: domain.ProjectSettings{
			Input:      dir,
			Output:     dir,
			SourceMaps: sourceMaps,
			Cache:      domain.CacheSettings{Backend: domain.CacheMemory},
		},
		Processors: []ports.ProcessorSpec{{
			Name:     "min",
			Plugins:  []ports.Plugin{cssengine.NewMinify(cssengine.MinifyOptions{})},
			Filename: domain.TemplateFilename("[name].min[ext]"),
		}},
	}
}

type harness struct {
	app    *app.App
	loader *mocks.MockConfigLoader
	caches []domain.CacheSettings
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := quietLogger(ctrl)
	h := &harness{loader: mocks.NewMockConfigLoader(ctrl)}

	caches := func(s domain.CacheSettings) (ports.Cache, error) {
		h.caches = append(h.caches, s)
		return cache.New(s)
	}

	h.app = app.New(
		h.loader,
		fs.NewReader(fs.NewWalker()),
		fs.NewWriter(),
		fs.NewManifest(),
		caches,
		cssengine.New(),
		log,
		telemetry.NewNoOp(),
		quietMetrics(ctrl),
	).WithWatcher(func() (ports.Watcher, error) {
		return watcher.NewWatcher(log)
	}, watcher.NewWriteFilter(fs.NewHasher()))
	return h
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestApp_Build(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.css"), sampleCSS)
	writeFile(t, filepath.Join(dir, "app.js"), "console.log(1)")

	h := newHarness(t)
	h.loader.EXPECT().Load(dir).Return(minProject(dir, false), nil).Times(2)

	result, err := h.app.Build(context.Background(), app.BuildOptions{ConfigPath: dir})
	require.NoError(t, err)

	output := filepath.Join(dir, "main.min.css")
	assert.Equal(t, "body{font-size:15px;font-family:sans-serif}", readFile(t, output))
	assert.Equal(t, []string{output}, result.Written)
	assert.Equal(t, []string{output}, result.Emitted)

	require.Len(t, result.Stats, 3)
	assert.Equal(t, "main.min.css", result.Stats[2].Name)
	assert.Equal(t, []string{"optimized"}, result.Stats[2].Flags)
	assert.Equal(t, domain.AssetStatusOptimized, result.Stats[2].Status)

	// Outputs of the previous build are not read back as inputs.
	result, err = h.app.Build(context.Background(), app.BuildOptions{ConfigPath: dir})
	require.NoError(t, err)
	assert.Empty(t, result.Written)
	assert.NoFileExists(t, filepath.Join(dir, "main.min.min.css"))
	assert.Equal(t, []string{output}, result.Emitted)
}

func TestApp_Build_InPlaceRewriteIsNotRepeated(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "main.css")
	writeFile(t, input, "a{color:red}")

	banner, err := cssengine.NewBanner(cssengine.BannerOptions{Text: "v1"})
	require.NoError(t, err)
	project := &ports.Project{
		Root: dir,
		Settings: domain.ProjectSettings{
			Input:  dir,
			Output: dir,
			Cache:  domain.CacheSettings{Backend: domain.CacheMemory},
		},
		Processors: []ports.ProcessorSpec{{Name: "banner", Plugins: []ports.Plugin{banner}}},
	}

	h := newHarness(t)
	h.loader.EXPECT().Load(dir).Return(project, nil).Times(3)

	result, err := h.app.Build(context.Background(), app.BuildOptions{ConfigPath: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{input}, result.Written)
	assert.Empty(t, result.Emitted)
	assert.Equal(t, "/*! v1 */\na{color:red}", readFile(t, input))

	result, err = h.app.Build(context.Background(), app.BuildOptions{ConfigPath: dir})
	require.NoError(t, err)
	assert.Empty(t, result.Written)
	assert.Equal(t, "/*! v1 */\na{color:red}", readFile(t, input))

	// Editing the rewritten file makes it an input again.
	writeFile(t, input, "b{color:blue}")
	_, err = h.app.Build(context.Background(), app.BuildOptions{ConfigPath: dir})
	require.NoError(t, err)
	assert.Equal(t, "/*! v1 */\nb{color:blue}", readFile(t, input))
}

func TestApp_Build_SourceMaps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "css", "main.css"), sampleCSS)

	h := newHarness(t)
	h.loader.EXPECT().Load(dir).Return(minProject(dir, true), nil)

	_, err := h.app.Build(context.Background(), app.BuildOptions{ConfigPath: dir})
	require.NoError(t, err)

	assert.Equal(t,
		"body{font-size:15px;font-family:sans-serif}\n/*# sourceMappingURL=main.min.css.map*/",
		readFile(t, filepath.Join(dir, "css", "main.min.css")))

	m, err := domain.ParseSourceMap([]byte(readFile(t, filepath.Join(dir, "css", "main.min.css.map"))))
	require.NoError(t, err)
	assert.Equal(t, "css/main.min.css", m.File)
	assert.Equal(t, []string{"css/main.css"}, m.Sources)
}

func TestApp_Build_NoCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.css"), sampleCSS)

	h := newHarness(t)
	h.loader.EXPECT().Load(dir).Return(minProject(dir, false), nil)

	_, err := h.app.Build(context.Background(), app.BuildOptions{ConfigPath: dir, NoCache: true})
	require.NoError(t, err)

	require.Len(t, h.caches, 1)
	assert.Equal(t, domain.CacheNone, h.caches[0].Backend)
}

func TestApp_Build_LoadError(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load("missing").Return(nil, domain.ErrConfigNotFound)

	_, err := h.app.Build(context.Background(), app.BuildOptions{ConfigPath: "missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigNotFound)
}

func TestApp_Build_TransformFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.css"), "body { color: red;\n")

	h := newHarness(t)
	h.loader.EXPECT().Load(dir).Return(minProject(dir, false), nil)

	result, err := h.app.Build(context.Background(), app.BuildOptions{ConfigPath: dir})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildFailed)
	assert.NoFileExists(t, filepath.Join(dir, "main.min.css"))

	require.NotNil(t, result)
	require.Len(t, result.Stats, 1)
	assert.Equal(t, domain.AssetStatusFailed, result.Stats[0].Status)
}

func TestApp_Build_UnknownCacheBackend(t *testing.T) {
	dir := t.TempDir()
	project := minProject(dir, false)
	project.Settings.Cache.Backend = "s3"

	h := newHarness(t)
	h.loader.EXPECT().Load(dir).Return(project, nil)

	_, err := h.app.Build(context.Background(), app.BuildOptions{ConfigPath: dir})
	assert.ErrorIs(t, err, domain.ErrUnknownCacheBackend)
}

func TestApp_Build_Progress(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.css"), sampleCSS)

	h := newHarness(t)
	h.loader.EXPECT().Load(dir).Return(minProject(dir, false), nil)
	h.app.WithTeaOptions(tea.WithInput(nil), tea.WithoutRenderer())

	var out bytes.Buffer
	result, err := h.app.Build(context.Background(), app.BuildOptions{
		ConfigPath: dir,
		Progress:   true,
		Output:     &out,
	})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "main.min.css"))
	assert.Len(t, result.Stats, 2)
}

func TestApp_Clean(t *testing.T) {
	dir := t.TempDir()
	state := filepath.Join(dir, domain.StateDirName)
	writeFile(t, filepath.Join(state, domain.CacheDirName, "ab", "entry.json"), "{}")
	external := filepath.Join(dir, "tmp-cache")
	writeFile(t, filepath.Join(external, "ab", "entry.json"), "{}")

	project := minProject(dir, false)
	project.Settings.Cache = domain.CacheSettings{Backend: domain.CacheDisk, Path: external}

	h := newHarness(t)
	h.loader.EXPECT().Load(dir).Return(project, nil).Times(2)

	result, err := h.app.Clean(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{state, external}, result.Removed)
	assert.NoDirExists(t, state)
	assert.NoDirExists(t, external)

	result, err = h.app.Clean(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, result.Removed)
}

func TestApp_Clean_KeepsProjectFiles(t *testing.T) {
	tests := []struct {
		name  string
		cache func(root string) string
	}{
		{"project root", func(root string) string { return root }},
		{"ancestor of project root", filepath.Dir},
		{"input directory", func(root string) string { return filepath.Join(root, "src") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			source := filepath.Join(root, "src", "main.css")
			writeFile(t, source, sampleCSS)
			state := filepath.Join(root, domain.StateDirName)
			writeFile(t, filepath.Join(state, domain.ManifestFileName), "{}")

			project := minProject(root, false)
			project.Settings.Input = filepath.Join(root, "src")
			project.Settings.Output = filepath.Join(root, "dist")
			project.Settings.Cache = domain.CacheSettings{Backend: domain.CacheDisk, Path: tt.cache(root)}

			h := newHarness(t)
			h.loader.EXPECT().Load(root).Return(project, nil)

			result, err := h.app.Clean(context.Background(), root)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrUnsafeCleanPath)
			assert.FileExists(t, source)
			assert.Equal(t, []string{state}, result.Removed)
		})
	}
}

func TestApp_Watch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.css"), sampleCSS)

	h := newHarness(t)
	h.loader.EXPECT().Load(dir).Return(minProject(dir, false), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	builds := make(chan *app.BuildResult, 10)
	done := make(chan error, 1)
	go func() {
		done <- h.app.Watch(ctx, app.WatchOptions{
			BuildOptions: app.BuildOptions{ConfigPath: dir},
			Debounce:     20 * time.Millisecond,
			OnBuild: func(result *app.BuildResult, err error) {
				if err == nil {
					builds <- result
				}
			},
		})
	}()

	waitBuild := func() *app.BuildResult {
		select {
		case r := <-builds:
			return r
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for build")
			return nil
		}
	}

	first := waitBuild()
	assert.FileExists(t, filepath.Join(dir, "main.min.css"))
	assert.NotEmpty(t, first.Written)

	// Give the watcher time to register before changing files.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "theme.css"), "a { color: red; }")

	second := waitBuild()
	assert.Contains(t, second.Written, filepath.Join(dir, "theme.min.css"))
	assert.Equal(t, "a{color:red}", readFile(t, filepath.Join(dir, "theme.min.css")))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestApp_Watch_NotConfigured(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := app.New(
		mocks.NewMockConfigLoader(ctrl),
		mocks.NewMockAssetReader(ctrl),
		mocks.NewMockAssetWriter(ctrl),
		mocks.NewMockOutputManifest(ctrl),
		cache.New,
		mocks.NewMockEngine(ctrl),
		quietLogger(ctrl),
		telemetry.NewNoOp(),
		quietMetrics(ctrl),
	)

	err := a.Watch(context.Background(), app.WatchOptions{})
	require.Error(t, err)
}

func TestApp_Build_WriteError(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	reader := mocks.NewMockAssetReader(ctrl)
	writer := mocks.NewMockAssetWriter(ctrl)
	manifest := mocks.NewMockOutputManifest(ctrl)
	boom := errors.New("disk full")

	project := minProject("/project", false)
	loader.EXPECT().Load("/project").Return(project, nil)
	reader.EXPECT().Read(gomock.Any(), "/project", false).Return(map[string]*domain.Asset{
		"main.css": {Name: "main.css", Source: domain.NewRawSource([]byte(sampleCSS))},
	}, nil)
	manifest.EXPECT().Load("/project").Return(map[string]string{}, nil)
	writer.EXPECT().Write(gomock.Any(), "/project", gomock.Len(2), false).Return(nil, boom)

	a := app.New(loader, reader, writer, manifest, cache.New, cssengine.New(),
		quietLogger(ctrl), telemetry.NewNoOp(), quietMetrics(ctrl))

	_, err := a.Build(context.Background(), app.BuildOptions{ConfigPath: "/project"})
	assert.ErrorIs(t, err, boom)
}
