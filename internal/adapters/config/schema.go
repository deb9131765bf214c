package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"go.trai.ch/csspost/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// Configfile represents the structure of the csspost.yaml configuration file.
// Build-wide settings are read separately through koanf so they can be overridden from the
// environment.
type Configfile struct {
	Version    string          `yaml:"version"`
	Processors []*ProcessorDTO `yaml:"processors"`
}

// ProcessorDTO represents a post-processor definition in the configuration.
type ProcessorDTO struct {
	Name             string       `yaml:"name"`
	Plugins          []*PluginDTO `yaml:"plugins"`
	Filename         string       `yaml:"filename"`
	Filter           string       `yaml:"filter"`
	AdditionalAssets bool         `yaml:"additionalAssets"`
}

// PluginDTO is a plugin reference: either a bare name or a mapping with name and options.
type PluginDTO struct {
	Name    string    `yaml:"name"`
	Options yaml.Node `yaml:"options"`
}

// UnmarshalYAML accepts the bare name form.
func (p *PluginDTO) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		p.Name = n.Value
		return nil
	}
	type plain PluginDTO
	return n.Decode((*plain)(p))
}

// SettingsDTO holds the build-wide settings. Keys use koanf paths.
type SettingsDTO struct {
	Input      string   `koanf:"input"`
	Output     string   `koanf:"output"`
	SourceMaps bool     `koanf:"sourceMaps"`
	Cache      CacheDTO `koanf:"cache"`
}

// CacheDTO holds the cache settings.
type CacheDTO struct {
	Backend       string        `koanf:"backend"`
	Path          string        `koanf:"path"`
	RedisAddr     string        `koanf:"redisAddr"`
	RedisPassword string        `koanf:"redisPassword"`
	RedisDB       int           `koanf:"redisDB"`
	TTL           time.Duration `koanf:"ttl"`
}

var cacheBackends = []string{
	string(domain.CacheNone),
	string(domain.CacheMemory),
	string(domain.CacheDisk),
	string(domain.CacheRedis),
}

type kind uint8

const (
	kindString kind = iota + 1
	kindBool
	kindInt
	kindMapping
	kindSequence
	kindPlugin
	kindAnyMapping
)

// field is a node of the configuration schema.
type field struct {
	kind     kind
	required bool
	fields   map[string]*field
	items    *field
	// check returns a violation for a well-typed scalar, or "".
	check func(value string) string
}

// PluginLookup reports whether a plugin name is registered.
type PluginLookup func(name string) bool

func schema(hasPlugin PluginLookup) *field {
	plugin := &field{
		kind: kindPlugin,
		fields: map[string]*field{
			"name":    {kind: kindString, required: true, check: checkPlugin(hasPlugin)},
			"options": {kind: kindAnyMapping},
		},
		check: checkPlugin(hasPlugin),
	}

	processor := &field{
		kind: kindMapping,
		fields: map[string]*field{
			"name":             {kind: kindString},
			"plugins":          {kind: kindSequence, required: true, items: plugin},
			"filename":         {kind: kindString, check: checkTemplate},
			"filter":           {kind: kindString, check: checkPattern},
			"additionalAssets": {kind: kindBool},
		},
	}

	return &field{
		kind: kindMapping,
		fields: map[string]*field{
			"version":    {kind: kindString},
			"input":      {kind: kindString},
			"output":     {kind: kindString},
			"sourceMaps": {kind: kindBool},
			"cache": {
				kind: kindMapping,
				fields: map[string]*field{
					"backend":       {kind: kindString, check: checkBackend},
					"path":          {kind: kindString},
					"redisAddr":     {kind: kindString},
					"redisPassword": {kind: kindString},
					"redisDB":       {kind: kindInt},
					"ttl":           {kind: kindString, check: checkDuration},
				},
			},
			"processors": {kind: kindSequence, required: true, items: processor},
		},
	}
}

// Validate checks a parsed configuration document against the schema and records every
// violation in errs, keyed by dotted path.
func Validate(doc *yaml.Node, hasPlugin PluginLookup, errs *domain.ConfigurationError) {
	if doc == nil || doc.Kind == 0 || (doc.Kind == yaml.DocumentNode && len(doc.Content) == 0) {
		errs.Add("", "empty file")
		return
	}
	root := doc
	if doc.Kind == yaml.DocumentNode {
		root = doc.Content[0]
	}
	validateNode(errs, "", root, schema(hasPlugin))
}

func validateNode(errs *domain.ConfigurationError, path string, n *yaml.Node, f *field) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}

	switch f.kind {
	case kindString, kindBool, kindInt:
		validateScalar(errs, path, n, f)
	case kindMapping:
		if n.Kind != yaml.MappingNode {
			errs.Add(path, "must be a mapping")
			return
		}
		validateMapping(errs, path, n, f)
	case kindAnyMapping:
		if n.Kind != yaml.MappingNode {
			errs.Add(path, "must be a mapping")
		}
	case kindSequence:
		if n.Kind != yaml.SequenceNode {
			errs.Add(path, "must be a sequence")
			return
		}
		for i, item := range n.Content {
			validateNode(errs, fmt.Sprintf("%s[%d]", path, i), item, f.items)
		}
	case kindPlugin:
		switch n.Kind {
		case yaml.ScalarNode:
			if msg := f.check(n.Value); msg != "" {
				errs.Add(path, "%s", msg)
			}
		case yaml.MappingNode:
			validateMapping(errs, path, n, f)
		default:
			errs.Add(path, "must be a plugin name or mapping")
		}
	}
}

func validateScalar(errs *domain.ConfigurationError, path string, n *yaml.Node, f *field) {
	if n.Kind != yaml.ScalarNode {
		errs.Add(path, "must be %s", kindName(f.kind))
		return
	}
	switch f.kind {
	case kindBool:
		if n.Tag != "!!bool" {
			errs.Add(path, "must be a boolean")
			return
		}
	case kindInt:
		if n.Tag != "!!int" {
			errs.Add(path, "must be an integer")
			return
		}
	}
	if f.check != nil {
		if msg := f.check(n.Value); msg != "" {
			errs.Add(path, "%s", msg)
		}
	}
}

func validateMapping(errs *domain.ConfigurationError, path string, n *yaml.Node, f *field) {
	seen := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i].Value, n.Content[i+1]
		seen[key] = true

		child, ok := f.fields[key]
		if !ok {
			errs.Add(joinPath(path, key), "unknown key")
			continue
		}
		if isNull(value) {
			if child.required {
				errs.Add(joinPath(path, key), "is required")
			}
			continue
		}
		validateNode(errs, joinPath(path, key), value, child)
	}

	required := make([]string, 0)
	for key, child := range f.fields {
		if child.required && !seen[key] {
			required = append(required, key)
		}
	}
	slices.Sort(required)
	for _, key := range required {
		errs.Add(joinPath(path, key), "is required")
	}
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func kindName(k kind) string {
	switch k {
	case kindBool:
		return "a boolean"
	case kindInt:
		return "an integer"
	default:
		return "a string"
	}
}

func checkPlugin(hasPlugin PluginLookup) func(string) string {
	return func(name string) string {
		if strings.TrimSpace(name) == "" {
			return "plugin name must not be empty"
		}
		if hasPlugin != nil && !hasPlugin(name) {
			return fmt.Sprintf("unknown plugin %q", name)
		}
		return ""
	}
}

func checkTemplate(value string) string {
	errs := &domain.ConfigurationError{}
	domain.TemplateFilename(value).Validate(errs, "")
	if len(errs.Violations) > 0 {
		return errs.Violations[0]
	}
	return ""
}

func checkPattern(value string) string {
	if _, err := regexp.Compile(value); err != nil {
		return fmt.Sprintf("invalid pattern %q", value)
	}
	return ""
}

func checkBackend(value string) string {
	if !slices.Contains(cacheBackends, value) {
		return "must be one of " + strings.Join(cacheBackends, ", ")
	}
	return ""
}

func checkDuration(value string) string {
	if _, err := time.ParseDuration(value); err != nil {
		return fmt.Sprintf("invalid duration %q", value)
	}
	return ""
}
