package cssengine

import (
	"github.com/go-sourcemap/sourcemap"
	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/zerr"
)

// buildMap creates a line-level map from output to input. Generated line i is anchored to
// input line i, clamped to the last input line. With a previous map the anchor is resolved
// through it, so the result points at the original sources.
func buildMap(opts ports.ProcessOptions, input, output []byte) (*domain.SourceMap, error) {
	m := &domain.SourceMap{
		Version: domain.SourceMapVersion,
		File:    opts.To,
		Sources: []string{},
		Names:   []string{},
	}

	inLines := domain.LineCount(input)
	outLines := domain.LineCount(output)
	if inLines == 0 {
		return m, nil
	}

	var prev *sourcemap.Consumer
	if opts.Map != nil && opts.Map.Prev != nil {
		data, err := opts.Map.Prev.JSON()
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrSourceMapInvalid.Error())
		}
		prev, err = sourcemap.Parse("", data)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceMapInvalid.Error()), "asset", opts.From)
		}
	}

	if prev == nil {
		m.Sources = append(m.Sources, opts.From)
		m.SourcesContent = []string{string(input)}
	}

	index := make(map[string]int)
	mappings := make([]domain.Mapping, 0, outLines)
	for genLine := range outLines {
		anchor := min(genLine, inLines-1)
		if prev == nil {
			mappings = append(mappings, domain.Mapping{GenLine: genLine, OrigLine: anchor})
			continue
		}

		source, _, line, column, ok := prev.Source(anchor+1, 0)
		if !ok || source == "" {
			continue
		}
		idx, seen := index[source]
		if !seen {
			idx = len(m.Sources)
			index[source] = idx
			m.Sources = append(m.Sources, source)
			m.SourcesContent = append(m.SourcesContent, prev.SourceContent(source))
		}
		mappings = append(mappings, domain.Mapping{
			GenLine:    genLine,
			Source:     idx,
			OrigLine:   line - 1,
			OrigColumn: column,
		})
	}

	m.Mappings = domain.EncodeMappings(mappings)
	return m, nil
}
