package domain

import "maps"

// Asset is a named build artifact held in a compilation's asset set.
type Asset struct {
	Name   string
	Source *Source
	Info   AssetInfo
}

// AssetInfo is metadata attached to an asset and carried forward by transformations.
type AssetInfo struct {
	// Optimized marks assets produced by a post-processor. Build summaries flag them.
	Optimized bool
	// SourceFilename is the name of the input file the asset was read from, if any.
	SourceFilename string
	// Related names assets tied to this one, e.g. "sourceMap" -> "main.css.map".
	Related map[string]string
	// Extra holds arbitrary metadata set by upstream stages.
	Extra map[string]string
}

// Clone returns a copy of the info that shares no maps with the receiver.
func (i AssetInfo) Clone() AssetInfo {
	c := i
	c.Related = maps.Clone(i.Related)
	c.Extra = maps.Clone(i.Extra)
	return c
}

// CacheEntry is a transformed asset as stored by a cache backend.
type CacheEntry struct {
	// Filename is the destination the transformed content was written to.
	Filename string     `json:"filename"`
	Content  []byte     `json:"content"`
	Map      *SourceMap `json:"map,omitempty"`
}

// Source rebuilds the asset source described by the entry.
func (e *CacheEntry) Source() *Source {
	return NewSourceMapSource(e.Content, e.Filename, e.Map)
}
