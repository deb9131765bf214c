package cssengine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	cssparse "github.com/tdewolff/parse/v2/css"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// PxToRemName is the registry name of the px to rem converter.
const PxToRemName = "pxtorem"

// PxToRemOptions configure the px to rem converter.
type PxToRemOptions struct {
	// RootValue is the root element font size in pixels.
	RootValue float64 `yaml:"rootValue"`
	// UnitPrecision is the number of decimals kept in rem values.
	UnitPrecision int `yaml:"unitPrecision"`
	// PropList selects the converted properties. "*" matches all, "x*" matches a prefix,
	// "*x" a suffix, and a leading "!" excludes.
	PropList []string `yaml:"propList"`
	// MinPixelValue leaves smaller pixel values untouched.
	MinPixelValue float64 `yaml:"minPixelValue"`
}

// DefaultPxToRemOptions returns the converter defaults.
func DefaultPxToRemOptions() PxToRemOptions {
	return PxToRemOptions{
		RootValue:     16,
		UnitPrecision: 5,
		PropList:      []string{"font", "font-size", "line-height", "letter-spacing"},
	}
}

// PxToRem rewrites pixel lengths of selected properties as rem.
type PxToRem struct {
	opts PxToRemOptions
}

// NewPxToRem creates a converter.
func NewPxToRem(opts PxToRemOptions) (*PxToRem, error) {
	if opts.RootValue <= 0 {
		return nil, zerr.With(zerr.New("rootValue must be positive"), "rootValue", opts.RootValue)
	}
	if opts.UnitPrecision < 0 {
		return nil, zerr.With(zerr.New("unitPrecision must not be negative"), "unitPrecision", opts.UnitPrecision)
	}
	return &PxToRem{opts: opts}, nil
}

func newPxToRemFromYAML(node *yaml.Node) (ports.Plugin, error) {
	opts := DefaultPxToRemOptions()
	if err := decodeOptions(node, &opts, "rootValue", "unitPrecision", "propList", "minPixelValue"); err != nil {
		return nil, err
	}
	return NewPxToRem(opts)
}

// Name returns the registry name.
func (*PxToRem) Name() string {
	return PxToRemName
}

// CacheKey identifies the converter and its options.
func (p *PxToRem) CacheKey() string {
	return fmt.Sprintf("%s(%g,%d,%s,%g)", PxToRemName,
		p.opts.RootValue, p.opts.UnitPrecision, strings.Join(p.opts.PropList, " "), p.opts.MinPixelValue)
}

// Transform converts px dimensions inside declarations of matching properties.
// At-rule preludes such as media queries are left untouched.
func (p *PxToRem) Transform(_ context.Context, css []byte) ([]byte, error) {
	l := cssparse.NewLexer(parse.NewInput(bytes.NewReader(css)))
	out := bytes.NewBuffer(make([]byte, 0, len(css)))

	var (
		prelude   bool
		candidate string
		property  string
	)
	for {
		tt, data := l.Next()
		switch tt {
		case cssparse.ErrorToken:
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, err
			}
			return out.Bytes(), nil
		case cssparse.AtKeywordToken:
			prelude = true
			candidate, property = "", ""
		case cssparse.LeftBraceToken, cssparse.RightBraceToken, cssparse.SemicolonToken:
			prelude = false
			candidate, property = "", ""
		case cssparse.IdentToken:
			if property == "" {
				candidate = strings.ToLower(string(data))
			}
		case cssparse.ColonToken:
			if property == "" && candidate != "" {
				property = candidate
			}
			candidate = ""
		case cssparse.WhitespaceToken, cssparse.CommentToken:
		case cssparse.DimensionToken:
			if !prelude && property != "" && p.matches(property) {
				if converted, ok := p.convert(data); ok {
					out.WriteString(converted)
					continue
				}
			}
		default:
			candidate = ""
		}
		out.Write(data)
	}
}

// convert returns the rem form of a px dimension token.
func (p *PxToRem) convert(data []byte) (string, bool) {
	s := string(data)
	number, ok := strings.CutSuffix(s, "px")
	if !ok {
		return "", false
	}
	px, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return "", false
	}
	if math.Abs(px) < p.opts.MinPixelValue {
		return "", false
	}

	scale := math.Pow(10, float64(p.opts.UnitPrecision))
	rem := math.Round(px/p.opts.RootValue*scale) / scale
	if rem == 0 {
		return "0", true
	}
	return strconv.FormatFloat(rem, 'f', -1, 64) + "rem", true
}

// matches reports whether prop is selected by the property list. Exclusions win.
func (p *PxToRem) matches(prop string) bool {
	matched := false
	for _, entry := range p.opts.PropList {
		if excluded, ok := strings.CutPrefix(entry, "!"); ok {
			if matchProp(excluded, prop) {
				return false
			}
			continue
		}
		if matchProp(entry, prop) {
			matched = true
		}
	}
	return matched
}

func matchProp(pattern, prop string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(prop, strings.TrimSuffix(pattern, "*"))
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(prop, strings.TrimPrefix(pattern, "*"))
	default:
		return pattern == prop
	}
}
