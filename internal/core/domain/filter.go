package domain

import "regexp"

// DefaultFilterPattern selects stylesheets when no filter is configured.
var DefaultFilterPattern = regexp.MustCompile(`\.css$`)

// FilterKind identifies the active variant of a FilterSpec.
type FilterKind uint8

const (
	// FilterDefault matches names ending in ".css".
	FilterDefault FilterKind = iota
	// FilterPattern matches names against a regular expression.
	FilterPattern
	// FilterPredicate matches names for which a function returns true.
	FilterPredicate
)

// FilterSpec decides which assets a post-processor handles.
// The zero value is the default filter.
type FilterSpec struct {
	kind      FilterKind
	pattern   *regexp.Regexp
	predicate func(name string) bool
}

// DefaultFilter returns the ".css" suffix filter.
func DefaultFilter() FilterSpec {
	return FilterSpec{}
}

// PatternFilter returns a filter matching names against re.
func PatternFilter(re *regexp.Regexp) FilterSpec {
	return FilterSpec{kind: FilterPattern, pattern: re}
}

// PredicateFilter returns a filter delegating to fn.
func PredicateFilter(fn func(name string) bool) FilterSpec {
	return FilterSpec{kind: FilterPredicate, predicate: fn}
}

// Kind returns the active variant.
func (f FilterSpec) Kind() FilterKind {
	return f.kind
}

// Match reports whether name is selected.
func (f FilterSpec) Match(name string) bool {
	switch f.kind {
	case FilterPattern:
		return f.pattern.MatchString(name)
	case FilterPredicate:
		return f.predicate(name)
	default:
		return DefaultFilterPattern.MatchString(name)
	}
}

// Validate records violations for a malformed filter under path.
func (f FilterSpec) Validate(errs *ConfigurationError, path string) {
	switch f.kind {
	case FilterPattern:
		if f.pattern == nil {
			errs.Add(path, "pattern must not be nil")
		}
	case FilterPredicate:
		if f.predicate == nil {
			errs.Add(path, "predicate must not be nil")
		}
	}
}
