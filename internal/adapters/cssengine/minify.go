package cssengine

import (
	"context"
	"strconv"

	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	"go.trai.ch/csspost/internal/core/ports"
	"gopkg.in/yaml.v3"
)

// MinifyName is the registry name of the minifier.
const MinifyName = "minify"

const cssMediaType = "text/css"

// MinifyOptions configure the minifier.
type MinifyOptions struct {
	// Precision is the number of significant digits kept in numbers. Zero keeps all.
	Precision int `yaml:"precision"`
}

// Minify removes whitespace and comments and shortens values.
type Minify struct {
	opts MinifyOptions
	m    *minify.M
}

// NewMinify creates a minifier.
func NewMinify(opts MinifyOptions) *Minify {
	m := minify.New()
	m.Add(cssMediaType, &mincss.Minifier{Precision: opts.Precision})
	return &Minify{opts: opts, m: m}
}

func newMinifyFromYAML(node *yaml.Node) (ports.Plugin, error) {
	var opts MinifyOptions
	if err := decodeOptions(node, &opts, "precision"); err != nil {
		return nil, err
	}
	return NewMinify(opts), nil
}

// Name returns the registry name.
func (*Minify) Name() string {
	return MinifyName
}

// CacheKey identifies the minifier and its options.
func (p *Minify) CacheKey() string {
	return MinifyName + "(" + strconv.Itoa(p.opts.Precision) + ")"
}

// Transform minifies css.
func (p *Minify) Transform(_ context.Context, css []byte) ([]byte, error) {
	return p.m.Bytes(cssMediaType, css)
}
