// Package language maps file extensions to language buckets using an
// ordered, configurable registry.
package language

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var embeddedRegistry []byte

// Language is a registry entry.
type Language struct {
	Name       string   `yaml:"name"`
	Extensions []string `yaml:"extensions"`
	Enabled    bool     `yaml:"enabled"`
}

// Registry is an ordered set of languages. Order is significant: it fixes
// the color index of each enabled language.
type Registry struct {
	Languages []Language `yaml:"languages"`
}

// Default returns the built-in registry.
func Default() (*Registry, []string, error) {
	return Parse(embeddedRegistry)
}

// LoadFile reads a registry from a YAML file.
func LoadFile(path string) (*Registry, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read language registry: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML registry. Entries without a name or without any
// extension are skipped and reported in the returned warnings.
func Parse(data []byte) (*Registry, []string, error) {
	var raw Registry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse language registry: %w", err)
	}

	reg := &Registry{}
	var warnings []string
	seen := make(map[string]bool)

	for i, lang := range raw.Languages {
		name := strings.TrimSpace(lang.Name)
		if name == "" {
			warnings = append(warnings, fmt.Sprintf("language entry %d has no name, skipping", i))
			continue
		}
		exts := normalizeExtensions(lang.Extensions)
		if len(exts) == 0 {
			warnings = append(warnings, fmt.Sprintf("language %q has no extensions, skipping", name))
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			warnings = append(warnings, fmt.Sprintf("language %q listed twice, keeping the first entry", name))
			continue
		}
		seen[key] = true
		reg.Languages = append(reg.Languages, Language{Name: name, Extensions: exts, Enabled: lang.Enabled})
	}

	return reg, warnings, nil
}

// Merge overlays other onto r. Languages present in both (case-insensitive
// name match) take other's extensions and enabled flag; new languages are
// appended in other's order.
func (r *Registry) Merge(other *Registry) *Registry {
	out := r.clone()
	if other == nil {
		return out
	}
	index := make(map[string]int, len(out.Languages))
	for i, lang := range out.Languages {
		index[strings.ToLower(lang.Name)] = i
	}
	for _, lang := range other.Languages {
		if i, ok := index[strings.ToLower(lang.Name)]; ok {
			out.Languages[i].Extensions = append([]string(nil), lang.Extensions...)
			out.Languages[i].Enabled = lang.Enabled
			continue
		}
		index[strings.ToLower(lang.Name)] = len(out.Languages)
		out.Languages = append(out.Languages, Language{
			Name:       lang.Name,
			Extensions: append([]string(nil), lang.Extensions...),
			Enabled:    lang.Enabled,
		})
	}
	return out
}

// WithEnabled returns a copy of r whose enabled flags are overridden by the
// given settings. Keys are matched case-insensitively; languages not named
// keep their registry default.
func (r *Registry) WithEnabled(settings map[string]bool) *Registry {
	out := r.clone()
	if len(settings) == 0 {
		return out
	}
	lower := make(map[string]bool, len(settings))
	for k, v := range settings {
		lower[strings.ToLower(k)] = v
	}
	for i := range out.Languages {
		if v, ok := lower[strings.ToLower(out.Languages[i].Name)]; ok {
			out.Languages[i].Enabled = v
		}
	}
	return out
}

// Enabled returns the enabled languages in registry order.
func (r *Registry) Enabled() []Language {
	var langs []Language
	for _, lang := range r.Languages {
		if lang.Enabled {
			langs = append(langs, lang)
		}
	}
	return langs
}

// Extensions returns the sorted extension set of all enabled languages.
func (r *Registry) Extensions() []string {
	set := make(map[string]bool)
	for _, lang := range r.Enabled() {
		for _, ext := range lang.Extensions {
			set[ext] = true
		}
	}
	exts := make([]string, 0, len(set))
	for ext := range set {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Lookup returns the registry entry with the given name.
func (r *Registry) Lookup(name string) (Language, bool) {
	for _, lang := range r.Languages {
		if strings.EqualFold(lang.Name, name) {
			return lang, true
		}
	}
	return Language{}, false
}

func (r *Registry) clone() *Registry {
	out := &Registry{Languages: make([]Language, len(r.Languages))}
	for i, lang := range r.Languages {
		out.Languages[i] = Language{
			Name:       lang.Name,
			Extensions: append([]string(nil), lang.Extensions...),
			Enabled:    lang.Enabled,
		}
	}
	return out
}

// NormalizeExtension lower-cases ext and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func normalizeExtensions(exts []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, ext := range exts {
		ext = NormalizeExtension(ext)
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}
