// Package theme selects go-theme manifests and flattens a selection into the
// renderer configuration the HTML renderer consumes.
package theme

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

// DefaultName is the built-in theme.
const DefaultName = "specviz"

var ErrUnknownTheme = errors.New("theme: unknown theme")

// Default returns the built-in manifest. Its tokens mirror the custom
// properties declared by the embedded stylesheet.
func Default() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"sv-fg":        "#1f2328",
			"sv-muted":     "#59636e",
			"sv-border":    "#d1d9e0",
			"sv-accent":    "#0969da",
			"sv-danger":    "#d1242f",
			"sv-bg":        "#ffffff",
			"sv-bg-subtle": "#f6f8fa",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"sv-fg":        "#e6edf3",
					"sv-muted":     "#9198a1",
					"sv-border":    "#3d444d",
					"sv-accent":    "#4493f8",
					"sv-danger":    "#f85149",
					"sv-bg":        "#0d1117",
					"sv-bg-subtle": "#151b23",
				},
			},
		},
	}
}

// Selector resolves theme and variant names against registered manifests,
// falling back to the configured defaults.
type Selector struct {
	mu             sync.RWMutex
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*Selector)(nil)

// NewSelector validates manifests through a go-theme registry and indexes
// them by name. The built-in manifest is always present.
func NewSelector(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (*Selector, error) {
	s := &Selector{
		manifests:      make(map[string]*theme.Manifest),
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
	}
	if s.defaultTheme == "" {
		s.defaultTheme = DefaultName
	}

	registry := theme.NewRegistry()
	all := append([]*theme.Manifest{Default()}, manifests...)
	for _, manifest := range all {
		if manifest == nil {
			continue
		}
		if _, seen := s.manifests[manifest.Name]; !seen {
			if err := registry.Register(manifest); err != nil {
				return nil, fmt.Errorf("theme: register %q: %w", manifest.Name, err)
			}
		}
		s.manifests[manifest.Name] = manifest
	}
	if _, ok := s.manifests[s.defaultTheme]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, s.defaultTheme)
	}
	return s, nil
}

// Select returns the manifest for name and variant. Empty arguments use the
// defaults; a variant the manifest does not declare is an error.
func (s *Selector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	variant = strings.TrimSpace(variant)
	if name == "" {
		name = s.defaultTheme
		if variant == "" {
			variant = s.defaultVariant
		}
	}

	s.mu.RLock()
	manifest, ok := s.manifests[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("theme: %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// Names lists the registered themes.
func (s *Selector) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Config merges the manifest with its variant. Variant tokens, templates and
// asset files win over the base manifest; fallbacks fill partials neither
// declares.
func Config(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	variant := manifest.Variants[selection.Variant]

	partials := make(map[string]string, len(fallbacks))
	for key, value := range fallbacks {
		partials[key] = value
	}
	overlay(partials, manifest.Templates)
	overlay(partials, variant.Templates)

	tokens := make(map[string]string, len(manifest.Tokens))
	overlay(tokens, manifest.Tokens)
	overlay(tokens, variant.Tokens)

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	prefix := manifest.Assets.Prefix
	if variant.Assets.Prefix != "" {
		prefix = variant.Assets.Prefix
	}
	files := make(map[string]string)
	overlay(files, manifest.Assets.Files)
	overlay(files, variant.Assets.Files)

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok {
				return ""
			}
			if strings.HasPrefix(file, "/") || strings.Contains(file, "://") || prefix == "" {
				return file
			}
			return strings.TrimRight(prefix, "/") + "/" + path.Clean(file)
		},
	}
}

func overlay(dst, src map[string]string) {
	for key, value := range src {
		if strings.TrimSpace(value) != "" {
			dst[key] = value
		}
	}
}

type manifestFile struct {
	Name      string                 `yaml:"name"`
	Version   string                 `yaml:"version"`
	Tokens    map[string]string      `yaml:"tokens"`
	Templates map[string]string      `yaml:"templates"`
	Assets    assetsFile             `yaml:"assets"`
	Variants  map[string]variantFile `yaml:"variants"`
}

type assetsFile struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

type variantFile struct {
	Tokens    map[string]string `yaml:"tokens"`
	Templates map[string]string `yaml:"templates"`
	Assets    assetsFile        `yaml:"assets"`
}

// ParseManifest decodes a YAML theme manifest.
func ParseManifest(raw []byte) (*theme.Manifest, error) {
	var file manifestFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("theme: decode manifest: %w", err)
	}
	if strings.TrimSpace(file.Name) == "" {
		return nil, errors.New("theme: manifest name is required")
	}
	manifest := &theme.Manifest{
		Name:      file.Name,
		Version:   file.Version,
		Tokens:    file.Tokens,
		Templates: file.Templates,
		Assets:    theme.Assets{Prefix: file.Assets.Prefix, Files: file.Assets.Files},
	}
	if len(file.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(file.Variants))
		for name, v := range file.Variants {
			manifest.Variants[name] = theme.Variant{
				Tokens:    v.Tokens,
				Templates: v.Templates,
				Assets:    theme.Assets{Prefix: v.Assets.Prefix, Files: v.Assets.Files},
			}
		}
	}
	return manifest, nil
}

// LoadManifests reads each manifest file.
func LoadManifests(paths ...string) ([]*theme.Manifest, error) {
	out := make([]*theme.Manifest, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("theme: read %s: %w", p, err)
		}
		manifest, err := ParseManifest(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out = append(out, manifest)
	}
	return out, nil
}
