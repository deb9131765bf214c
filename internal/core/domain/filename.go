package domain

import (
	"path"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\[(\w+)\]`)

// FilenameKind identifies the active variant of a FilenameRule.
type FilenameKind uint8

const (
	// FilenameKeep writes the output over the source asset.
	FilenameKeep FilenameKind = iota
	// FilenameTemplate interpolates path components into a template.
	FilenameTemplate
	// FilenameFunc derives the name with a function.
	FilenameFunc
)

// FilenameRule derives the destination name of a processed asset.
// The zero value keeps the source name.
type FilenameRule struct {
	kind     FilenameKind
	template string
	fn       func(name string) string
}

// KeepFilename returns the in-place rule.
func KeepFilename() FilenameRule {
	return FilenameRule{}
}

// TemplateFilename returns a rule interpolating [root], [dir], [base], [name] and [ext].
func TemplateFilename(template string) FilenameRule {
	return FilenameRule{kind: FilenameTemplate, template: template}
}

// FuncFilename returns a rule delegating to fn.
func FuncFilename(fn func(name string) string) FilenameRule {
	return FilenameRule{kind: FilenameFunc, fn: fn}
}

// Kind returns the active variant.
func (r FilenameRule) Kind() FilenameKind {
	return r.kind
}

// Template returns the template string of a FilenameTemplate rule.
func (r FilenameRule) Template() string {
	return r.template
}

// Derive returns the destination name for source.
// Templates are applied below the source's directory so nesting is preserved.
func (r FilenameRule) Derive(source string) string {
	switch r.kind {
	case FilenameFunc:
		return r.fn(source)
	case FilenameTemplate:
		parts := ParsePath(source)
		tmpl := r.template
		switch parts.Dir {
		case "":
		case "/":
			tmpl = "[dir]" + tmpl
		default:
			tmpl = "[dir]/" + tmpl
		}
		return placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
			value, ok := parts.Component(m[1 : len(m)-1])
			if !ok {
				return m
			}
			return value
		})
	default:
		return source
	}
}

// Validate records violations for a malformed rule under field.
func (r FilenameRule) Validate(errs *ConfigurationError, field string) {
	switch r.kind {
	case FilenameTemplate:
		if strings.TrimSpace(r.template) == "" {
			errs.Add(field, "template must not be empty")
			return
		}
		for _, m := range placeholderRe.FindAllStringSubmatch(r.template, -1) {
			if _, ok := (PathParts{}).Component(m[1]); !ok {
				errs.Add(field, "unknown placeholder [%s]", m[1])
			}
		}
	case FilenameFunc:
		if r.fn == nil {
			errs.Add(field, "function must not be nil")
		}
	}
}

// PathParts are the components of a slash-separated asset name.
type PathParts struct {
	Root string
	Dir  string
	Base string
	Ext  string
	Name string
}

// ParsePath splits an asset name into its components.
// "sub/dir/main.css" yields Dir "sub/dir", Base "main.css", Ext ".css" and Name "main".
func ParsePath(p string) PathParts {
	var parts PathParts
	if strings.HasPrefix(p, "/") {
		parts.Root = "/"
	}

	base := p
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		base = p[i+1:]
		parts.Dir = p[:i]
		if i == 0 {
			parts.Dir = "/"
		}
	}
	parts.Base = base

	ext := path.Ext(base)
	if ext == base {
		// Dotfiles such as ".stylelintrc" have no extension.
		ext = ""
	}
	parts.Ext = ext
	parts.Name = strings.TrimSuffix(base, ext)
	return parts
}

// Component returns the value of a placeholder name.
func (p PathParts) Component(key string) (string, bool) {
	switch key {
	case "root":
		return p.Root, true
	case "dir":
		return p.Dir, true
	case "base":
		return p.Base, true
	case "ext":
		return p.Ext, true
	case "name":
		return p.Name, true
	default:
		return "", false
	}
}
