// Package registry maps public spec names to their document locations. A
// Registry is built once at startup and read concurrently afterwards.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-specviz/pkg/schema"
)

// ErrNotFound reports a name with no registry entry.
var ErrNotFound = errors.New("registry: spec not found")

// Entry is the configuration form of a descriptor.
type Entry struct {
	Name     string `yaml:"name" json:"name"`
	Title    string `yaml:"title,omitempty" json:"title,omitempty"`
	Spec     string `yaml:"spec" json:"spec"`
	UISchema string `yaml:"uiSchema,omitempty" json:"uiSchema,omitempty"`
}

// Descriptor is a resolved registry entry.
type Descriptor struct {
	Name     string
	Title    string
	Document schema.Source
	UIHints  schema.Source
}

// HasHints reports whether a UI hint document is configured.
func (d Descriptor) HasHints() bool {
	return d.UIHints != nil
}

// Registry is an immutable name → descriptor table.
type Registry struct {
	order []string
	byKey map[string]Descriptor
}

// New validates entries and resolves their locations against baseDir.
func New(entries []Entry, baseDir string) (*Registry, error) {
	reg := &Registry{byKey: make(map[string]Descriptor, len(entries))}
	for i, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("registry: entry %d has no name", i)
		}
		if strings.ContainsAny(name, "/?#") {
			return nil, fmt.Errorf("registry: name %q must be a single path segment", name)
		}
		if _, dup := reg.byKey[name]; dup {
			return nil, fmt.Errorf("registry: duplicate name %q", name)
		}

		doc, err := schema.ParseSource(entry.Spec, baseDir)
		if err != nil {
			return nil, fmt.Errorf("registry: %s document: %w", name, err)
		}
		desc := Descriptor{
			Name:     name,
			Title:    strings.TrimSpace(entry.Title),
			Document: doc,
		}
		if desc.Title == "" {
			desc.Title = defaultTitle(name)
		}
		if strings.TrimSpace(entry.UISchema) != "" {
			hints, err := schema.ParseSource(entry.UISchema, baseDir)
			if err != nil {
				return nil, fmt.Errorf("registry: %s ui schema: %w", name, err)
			}
			desc.UIHints = hints
		}

		reg.byKey[name] = desc
		reg.order = append(reg.order, name)
	}
	return reg, nil
}

// MustNew panics when entries are invalid. Useful for tests.
func MustNew(entries []Entry, baseDir string) *Registry {
	reg, err := New(entries, baseDir)
	if err != nil {
		panic(err)
	}
	return reg
}

// Lookup resolves a public name.
func (r *Registry) Lookup(name string) (Descriptor, error) {
	if r == nil {
		return Descriptor{}, ErrNotFound
	}
	desc, ok := r.byKey[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return desc, nil
}

// List returns descriptors in configuration order.
func (r *Registry) List() []Descriptor {
	if r == nil {
		return nil
	}
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byKey[name])
	}
	return out
}

// Len reports the number of entries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

func defaultTitle(name string) string {
	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + name[size:] + " Spec"
}
