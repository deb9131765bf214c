package domain

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// SourceMapVersion is the only revision of the source map format supported.
const SourceMapVersion = 3

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// SourceMap is a revision 3 source map.
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// Mapping links a zero-based generated position to a zero-based original position.
type Mapping struct {
	GenLine    int
	GenColumn  int
	Source     int
	OrigLine   int
	OrigColumn int
}

// ParseSourceMap decodes a JSON source map.
func ParseSourceMap(data []byte) (*SourceMap, error) {
	var m SourceMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, zerr.Wrap(err, ErrSourceMapInvalid.Error())
	}
	if m.Version != SourceMapVersion {
		return nil, zerr.With(zerr.Wrap(ErrSourceMapInvalid, "unsupported version"), "version", m.Version)
	}
	return &m, nil
}

// JSON encodes the map.
func (m *SourceMap) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// Clone returns a deep copy of the map.
func (m *SourceMap) Clone() *SourceMap {
	if m == nil {
		return nil
	}
	c := *m
	c.Sources = slices.Clone(m.Sources)
	c.SourcesContent = slices.Clone(m.SourcesContent)
	c.Names = slices.Clone(m.Names)
	return &c
}

// IdentityMap maps every line of content onto the same line of the named source.
func IdentityMap(name string, content []byte) *SourceMap {
	lines := LineCount(content)
	mappings := make([]Mapping, 0, lines)
	for i := range lines {
		mappings = append(mappings, Mapping{GenLine: i, OrigLine: i})
	}
	return &SourceMap{
		Version:        SourceMapVersion,
		File:           name,
		Sources:        []string{name},
		SourcesContent: []string{string(content)},
		Names:          []string{},
		Mappings:       EncodeMappings(mappings),
	}
}

// LineCount returns the number of lines in content, ignoring a trailing newline.
func LineCount(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}

// EncodeMappings renders mappings as a VLQ mappings string.
// The input need not be sorted.
func EncodeMappings(mappings []Mapping) string {
	sorted := slices.Clone(mappings)
	slices.SortStableFunc(sorted, func(a, b Mapping) int {
		if a.GenLine != b.GenLine {
			return a.GenLine - b.GenLine
		}
		return a.GenColumn - b.GenColumn
	})

	var b strings.Builder
	var prevSource, prevOrigLine, prevOrigColumn int
	line := 0
	for i, m := range sorted {
		prevGenColumn := 0
		if i > 0 && sorted[i-1].GenLine == m.GenLine {
			prevGenColumn = sorted[i-1].GenColumn
			b.WriteByte(',')
		}
		for ; line < m.GenLine; line++ {
			b.WriteByte(';')
		}
		writeVLQ(&b, m.GenColumn-prevGenColumn)
		writeVLQ(&b, m.Source-prevSource)
		writeVLQ(&b, m.OrigLine-prevOrigLine)
		writeVLQ(&b, m.OrigColumn-prevOrigColumn)
		prevSource, prevOrigLine, prevOrigColumn = m.Source, m.OrigLine, m.OrigColumn
	}
	return b.String()
}

// DecodeMappings parses a VLQ mappings string. Segments without a source are dropped.
func DecodeMappings(s string) ([]Mapping, error) {
	var out []Mapping
	var source, origLine, origColumn int
	for genLine, lineStr := range strings.Split(s, ";") {
		genColumn := 0
		if lineStr == "" {
			continue
		}
		for seg := range strings.SplitSeq(lineStr, ",") {
			fields, err := readVLQs(seg)
			if err != nil {
				return nil, err
			}
			if len(fields) == 0 {
				continue
			}
			genColumn += fields[0]
			if len(fields) < 4 {
				continue
			}
			source += fields[1]
			origLine += fields[2]
			origColumn += fields[3]
			out = append(out, Mapping{
				GenLine:    genLine,
				GenColumn:  genColumn,
				Source:     source,
				OrigLine:   origLine,
				OrigColumn: origColumn,
			})
		}
	}
	return out, nil
}

func writeVLQ(b *strings.Builder, v int) {
	u := v << 1
	if v < 0 {
		u = (-v << 1) | 1
	}
	for {
		digit := u & 31
		u >>= 5
		if u > 0 {
			digit |= 32
		}
		b.WriteByte(base64Alphabet[digit])
		if u == 0 {
			return
		}
	}
}

func readVLQs(seg string) ([]int, error) {
	var fields []int
	value, shift := 0, 0
	for i := range len(seg) {
		digit := strings.IndexByte(base64Alphabet, seg[i])
		if digit < 0 {
			return nil, zerr.With(zerr.Wrap(ErrSourceMapInvalid, "malformed segment"), "segment", seg)
		}
		value += (digit & 31) << shift
		if digit&32 != 0 {
			shift += 5
			continue
		}
		if value&1 == 1 {
			fields = append(fields, -(value >> 1))
		} else {
			fields = append(fields, value>>1)
		}
		value, shift = 0, 0
	}
	if shift != 0 {
		return nil, zerr.With(zerr.Wrap(ErrSourceMapInvalid, "malformed segment"), "segment", seg)
	}
	return fields, nil
}
