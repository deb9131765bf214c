package postprocess_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/csspost/internal/adapters/cssengine"
	"go.trai.ch/csspost/internal/adapters/telemetry"
	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/csspost/internal/core/ports/mocks"
	"go.trai.ch/csspost/internal/engine/compilation"
	"go.trai.ch/csspost/internal/engine/postprocess"
	"go.uber.org/mock/gomock"
)

const (
	sampleCSS   = "body {\n  font-size: 15px;\n  font-family: sans-serif;\n}\n"
	minifiedCSS = "body{font-size:15px;font-family:sans-serif}"
)

func minify() ports.Plugin {
	return cssengine.NewMinify(cssengine.MinifyOptions{})
}

func pxtorem(t *testing.T) ports.Plugin {
	t.Helper()
	p, err := cssengine.NewPxToRem(cssengine.DefaultPxToRemOptions())
	require.NoError(t, err)
	return p
}

func newProcessor(t *testing.T, opts postprocess.Options) *postprocess.Processor {
	t.Helper()
	p, err := postprocess.New(opts)
	require.NoError(t, err)
	return p
}

// quietMetrics accepts any metric update.
func quietMetrics(ctrl *gomock.Controller) *mocks.MockMetrics {
	m := mocks.NewMockMetrics(ctrl)
	m.EXPECT().AssetProcessed(gomock.Any(), gomock.Any()).AnyTimes()
	m.EXPECT().CacheHit(gomock.Any()).AnyTimes()
	m.EXPECT().CacheMiss(gomock.Any()).AnyTimes()
	m.EXPECT().AssetSkipped(gomock.Any()).AnyTimes()
	m.EXPECT().AssetFailed(gomock.Any()).AnyTimes()
	return m
}

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	l := mocks.NewMockLogger(ctrl)
	l.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	l.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	l.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	return l
}

func newCompiler(
	t *testing.T,
	metrics ports.Metrics,
	cache ports.Cache,
	processors ...*postprocess.Processor,
) *compilation.Compiler {
	t.Helper()
	ctrl := gomock.NewController(t)
	if metrics == nil {
		metrics = quietMetrics(ctrl)
	}

	plugins := make([]compilation.Plugin, 0, len(processors))
	for _, p := range processors {
		plugins = append(plugins, p)
	}
	return compilation.NewCompiler(quietLogger(ctrl), telemetry.NewNoOp(), metrics, cache, plugins...)
}

func assets(contents map[string]string) map[string]*domain.Asset {
	out := make(map[string]*domain.Asset, len(contents))
	for name, css := range contents {
		out[name] = &domain.Asset{Name: name, Source: domain.NewRawSource([]byte(css))}
	}
	return out
}

// contents returns the text of every asset in the compilation.
func contents(t *testing.T, c *compilation.Compilation) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, a := range c.Assets() {
		out[a.Name] = string(a.Source.Content())
	}
	return out
}

func run(t *testing.T, compiler *compilation.Compiler, in map[string]*domain.Asset) *compilation.Compilation {
	t.Helper()
	c, err := compiler.Run(context.Background(), in)
	require.NoError(t, err)
	return c
}
