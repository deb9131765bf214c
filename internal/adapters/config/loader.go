// Package config provides the configuration loader for csspost.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.trai.ch/csspost/internal/adapters/cssengine" //nolint:depguard // Plugins are resolved at load time
	"go.trai.ch/csspost/internal/core/domain"
	"go.trai.ch/csspost/internal/core/ports"
	"go.trai.ch/zerr"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables overriding build-wide settings.
const EnvPrefix = "CSSPOST_"

// envKeys maps environment variable names, without the prefix, to settings keys.
var envKeys = map[string]string{
	"INPUT":                 "input",
	"OUTPUT":                "output",
	"SOURCE_MAPS":           "sourceMaps",
	"CACHE__BACKEND":        "cache.backend",
	"CACHE__PATH":           "cache.path",
	"CACHE__REDIS_ADDR":     "cache.redisAddr",
	"CACHE__REDIS_PASSWORD": "cache.redisPassword",
	"CACHE__REDIS_DB":       "cache.redisDB",
	"CACHE__TTL":            "cache.ttl",
}

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger   ports.Logger
	Registry *cssengine.Registry
}

// NewLoader creates a new Loader resolving plugins through registry.
func NewLoader(logger ports.Logger, registry *cssengine.Registry) *Loader {
	return &Loader{Logger: logger, Registry: registry}
}

// Load reads the configuration at path. When path is a directory, csspost.yaml is searched for
// in it and its parents. Every schema violation is reported in one *domain.ConfigurationError.
func (l *Loader) Load(path string) (*ports.Project, error) {
	configPath, err := l.findConfiguration(path)
	if err != nil {
		return nil, err
	}

	doc, err := readDocument(configPath)
	if err != nil {
		return nil, err
	}

	errs := &domain.ConfigurationError{Subject: configPath}
	Validate(doc, l.Registry.Has, errs)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	var cfg Configfile
	if err := doc.Decode(&cfg); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}
	if cfg.Version != "" && cfg.Version != "1" {
		l.Logger.Warn("unsupported config version, reading as version 1", "version", cfg.Version)
	}

	settings, err := loadSettings(configPath, errs)
	if err != nil {
		return nil, err
	}
	processors := l.buildProcessors(cfg.Processors, errs)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	l.Logger.Debug("configuration loaded", "path", configPath, "processors", len(processors))
	return &ports.Project{Root: filepath.Dir(configPath), Settings: settings, Processors: processors}, nil
}

func (l *Loader) findConfiguration(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}
	if !info.IsDir() {
		return path, nil
	}

	currentDir, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "cannot load configuration"), "cwd", path)
}

func readDocument(configPath string) (*yamlv3.Node, error) {
	data, err := os.ReadFile(configPath) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}

	var doc yamlv3.Node
	if err := yamlv3.Unmarshal(data, &doc); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}
	return &doc, nil
}

// loadSettings merges the file with CSSPOST_ environment variables over the defaults.
// Relative directories are resolved against the directory of the config file.
func loadSettings(configPath string, errs *domain.ConfigurationError) (domain.ProjectSettings, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return domain.ProjectSettings{}, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return domain.ProjectSettings{}, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}

	defaults := domain.DefaultProjectSettings()
	dto := SettingsDTO{
		Input:  defaults.Input,
		Output: defaults.Output,
		Cache: CacheDTO{
			Backend: string(defaults.Cache.Backend),
			Path:    defaults.Cache.Path,
		},
	}
	if err := k.Unmarshal("", &dto); err != nil {
		return domain.ProjectSettings{}, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}
	if msg := checkBackend(dto.Cache.Backend); msg != "" {
		errs.Add("cache.backend", "%s", msg)
	}
	if dto.Cache.Backend == string(domain.CacheRedis) && dto.Cache.RedisAddr == "" {
		errs.Add("cache.redisAddr", "is required for the redis backend")
	}

	base := filepath.Dir(configPath)
	return domain.ProjectSettings{
		Input:      resolvePath(base, dto.Input),
		Output:     resolvePath(base, dto.Output),
		SourceMaps: dto.SourceMaps,
		Cache: domain.CacheSettings{
			Backend:       domain.CacheBackend(dto.Cache.Backend),
			Path:          resolvePath(base, dto.Cache.Path),
			RedisAddr:     dto.Cache.RedisAddr,
			RedisPassword: dto.Cache.RedisPassword,
			RedisDB:       dto.Cache.RedisDB,
			TTL:           dto.Cache.TTL,
		},
	}, nil
}

// envKey maps CSSPOST_CACHE__BACKEND to cache.backend. Unknown variables are ignored.
func envKey(name string) string {
	return envKeys[name[len(EnvPrefix):]]
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func (l *Loader) buildProcessors(dtos []*ProcessorDTO, errs *domain.ConfigurationError) []ports.ProcessorSpec {
	specs := make([]ports.ProcessorSpec, 0, len(dtos))
	var names []string

	for i, dto := range dtos {
		path := processorPath(i)
		if dto.Name != "" {
			if slices.Contains(names, dto.Name) {
				errs.Add(path+".name", "duplicate name %q", dto.Name)
			}
			names = append(names, dto.Name)
		}

		spec := ports.ProcessorSpec{
			Name:             dto.Name,
			Plugins:          make([]ports.Plugin, 0, len(dto.Plugins)),
			AdditionalAssets: dto.AdditionalAssets,
		}
		for j, p := range dto.Plugins {
			plugin, err := l.Registry.Build(p.Name, &p.Options)
			if err != nil {
				errs.Add(pluginPath(i, j), "%s", err.Error())
				continue
			}
			spec.Plugins = append(spec.Plugins, plugin)
		}
		if dto.Filename != "" {
			spec.Filename = domain.TemplateFilename(dto.Filename)
		}
		if dto.Filter != "" {
			if re, err := regexp.Compile(dto.Filter); err == nil {
				spec.Filter = domain.PatternFilter(re)
			}
		}
		specs = append(specs, spec)
	}
	return specs
}

func processorPath(i int) string {
	return fmt.Sprintf("processors[%d]", i)
}

func pluginPath(i, j int) string {
	return fmt.Sprintf("processors[%d].plugins[%d]", i, j)
}
