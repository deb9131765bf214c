package cssengine

import (
	"slices"
	"strings"
	"sync"

	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Factory builds a plugin from its YAML options. opts is nil when none are configured.
type Factory func(opts *yaml.Node) (ports.Plugin, error)

// Registry maps plugin names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a Registry holding the built-in plugins.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(MinifyName, newMinifyFromYAML)
	r.Register(PxToRemName, newPxToRemFromYAML)
	r.Register(BannerName, newBannerFromYAML)
	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered plugin names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Build creates the plugin registered under name.
func (r *Registry) Build(name string, opts *yaml.Node) (ports.Plugin, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownPlugin, "cannot build plugin"), "plugin", name)
	}
	return f(opts)
}

// decodeOptions decodes a mapping node into dst, rejecting keys not listed in known.
func decodeOptions(node *yaml.Node, dst any, known ...string) error {
	if node == nil || node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return zerr.With(zerr.New("options must be a mapping"), "line", node.Line)
	}

	var unknown []string
	for i := 0; i+1 < len(node.Content); i += 2 {
		if key := node.Content[i].Value; !slices.Contains(known, key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		return zerr.With(zerr.New("unknown option "+strings.Join(unknown, ", ")), "line", node.Line)
	}

	return node.Decode(dst)
}
