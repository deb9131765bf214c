package cssengine

import (
	"context"
	"strings"

	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// BannerName is the registry name of the banner plugin.
const BannerName = "banner"

// BannerOptions configure the banner plugin.
type BannerOptions struct {
	Text string `yaml:"text"`
}

// Banner prepends a preserved comment to the stylesheet.
type Banner struct {
	text string
}

// NewBanner creates a banner plugin. The text must be non-empty and must not close the comment.
func NewBanner(opts BannerOptions) (*Banner, error) {
	if strings.TrimSpace(opts.Text) == "" {
		return nil, zerr.New("banner text must not be empty")
	}
	if strings.Contains(opts.Text, "*/") {
		return nil, zerr.New("banner text must not contain */")
	}
	return &Banner{text: opts.Text}, nil
}

func newBannerFromYAML(node *yaml.Node) (ports.Plugin, error) {
	var opts BannerOptions
	if err := decodeOptions(node, &opts, "text"); err != nil {
		return nil, err
	}
	return NewBanner(opts)
}

// Name returns the registry name.
func (*Banner) Name() string {
	return BannerName
}

// CacheKey identifies the plugin and its text.
func (p *Banner) CacheKey() string {
	return BannerName + "(" + p.text + ")"
}

// Transform prepends the banner.
func (p *Banner) Transform(_ context.Context, css []byte) ([]byte, error) {
	out := make([]byte, 0, len(p.text)+len(css)+8)
	out = append(out, "/*! "...)
	out = append(out, p.text...)
	out = append(out, " */\n"...)
	return append(out, css...), nil
}
