package domain

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Source is the immutable content of an asset: stylesheet text and an optional source map.
// Its content hash is computed lazily on first use and memoised.
type Source struct {
	content   []byte
	sourceMap *SourceMap

	hashOnce sync.Once
	hash     string
}

// NewRawSource creates a source without a source map.
func NewRawSource(content []byte) *Source {
	return &Source{content: content}
}

// NewSourceMapSource creates a source carrying a source map for the generated file name.
// A nil map yields a raw source.
func NewSourceMapSource(content []byte, name string, m *SourceMap) *Source {
	if m == nil {
		return NewRawSource(content)
	}
	mapped := m.Clone()
	if name != "" {
		mapped.File = name
	}
	return &Source{content: content, sourceMap: mapped}
}

// Content returns the text of the source.
func (s *Source) Content() []byte {
	return s.content
}

// Map returns the source map, or nil for raw sources.
func (s *Source) Map() *SourceMap {
	return s.sourceMap
}

// SourceAndMap returns the content and the optional map in one call.
func (s *Source) SourceAndMap() ([]byte, *SourceMap) {
	return s.content, s.sourceMap
}

// Size returns the content length in bytes.
func (s *Source) Size() int {
	return len(s.content)
}

// Empty reports whether the source has no content.
func (s *Source) Empty() bool {
	return s == nil || len(s.content) == 0
}

// ContentHash returns the xxhash64 of the content alone as a 16 character hex string.
func (s *Source) ContentHash() string {
	return fmt.Sprintf("%016x", xxhash.Sum64(s.content))
}

// Hash returns the xxhash64 of the content and the serialized map as a 16 character hex string.
func (s *Source) Hash() string {
	s.hashOnce.Do(func() {
		h := xxhash.New()
		_, _ = h.Write(s.content)
		_, _ = h.Write([]byte{0})
		if s.sourceMap != nil {
			if data, err := s.sourceMap.JSON(); err == nil {
				_, _ = h.Write(data)
			}
		}
		s.hash = fmt.Sprintf("%016x", h.Sum64())
	})
	return s.hash
}
