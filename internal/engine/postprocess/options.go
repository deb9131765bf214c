// Package postprocess implements the asset post-processor that runs stylesheets through a
// chain of transformation plugins during a compilation's process-assets phase.
package postprocess

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
)

// DefaultName identifies a processor created without a name.
const DefaultName = "PostProcessor"

// Options configure a Processor. They are validated once by New and never change afterwards.
type Options struct {
	// Name identifies the processor in logs and scopes its cache entries.
	Name string
	// Plugins is the ordered transformation chain. It is required; an empty chain disables the processor.
	Plugins []ports.Plugin
	// Filename derives the destination of each processed asset. The zero value rewrites in place.
	Filename domain.FilenameRule
	// Filter selects the assets to process. The zero value selects names ending in ".css".
	Filter domain.FilterSpec
	// AdditionalAssets also processes assets emitted after the processor first ran,
	// including its own outputs.
	AdditionalAssets bool
	// Implementation overrides the transformation engine.
	Implementation ports.Engine
}

// validate reports every violated constraint in one error.
func (o *Options) validate() error {
	errs := &domain.ConfigurationError{Subject: DefaultName}
	if o.Name != "" {
		errs.Subject = o.Name
		if strings.TrimSpace(o.Name) == "" {
			errs.Add("name", "must not be empty")
		}
	}

	if o.Plugins == nil {
		errs.Add("plugins", "is required")
	}
	for i, p := range o.Plugins {
		if p == nil {
			errs.Add(fmt.Sprintf("plugins[%d]", i), "must not be nil")
		}
	}

	o.Filename.Validate(errs, "filename")
	o.Filter.Validate(errs, "filter")

	return errs.Err()
}

// funcRules numbers processors deriving filenames with a function.
var funcRules atomic.Uint64

// scope namespaces cache entries by processor identity, plugin chain and filename rule.
// Functions cannot be compared, so each processor using one gets a scope of its own.
func (o *Options) scope() string {
	names := make([]string, 0, len(o.Plugins))
	for _, p := range o.Plugins {
		if k, ok := p.(ports.CacheKeyer); ok {
			names = append(names, k.CacheKey())
			continue
		}
		names = append(names, p.Name())
	}
	scope := o.Name + "|" + strings.Join(names, ",")
	switch o.Filename.Kind() {
	case domain.FilenameTemplate:
		scope += "|" + o.Filename.Template()
	case domain.FilenameFunc:
		scope += fmt.Sprintf("|func#%d", funcRules.Add(1))
	}
	return scope
}
