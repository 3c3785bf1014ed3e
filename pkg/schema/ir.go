package schema

import (
	"sort"
	"strconv"
	"strings"
)

// Schema is the normalised, order-preserving view of a spec document node.
// Only the keywords the form pipeline consumes are lifted into fields; the
// rest stay reachable through Extensions.
type Schema struct {
	Ref         string
	Type        string
	Format      string
	Title       string
	Description string
	Default     any
	Const       any
	Enum        []any

	Required      []string
	Properties    map[string]*Schema
	PropertyOrder []string
	Items         *Schema
	OneOf         []*Schema
	AnyOf         []*Schema

	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum bool
	ExclusiveMaximum bool
	MinLength        *int
	MaxLength        *int
	MinItems         *int
	MaxItems         *int
	Pattern          string
	UniqueItems      bool

	Extensions map[string]any
}

// Property pairs a property name with its schema.
type Property struct {
	Name   string
	Schema *Schema
}

// Choice is one selectable value declared through enum or oneOf/const.
type Choice struct {
	Value       any
	Label       string
	Description string
}

// IsRequired reports whether name appears in the required list.
func (s *Schema) IsRequired(name string) bool {
	if s == nil {
		return false
	}
	for _, candidate := range s.Required {
		if candidate == name {
			return true
		}
	}
	return false
}

// OrderedProperties returns the properties in declared order. Names present in
// Properties but missing from PropertyOrder are appended alphabetically.
func (s *Schema) OrderedProperties() []Property {
	if s == nil || len(s.Properties) == 0 {
		return nil
	}
	out := make([]Property, 0, len(s.Properties))
	seen := make(map[string]struct{}, len(s.Properties))
	for _, name := range s.PropertyOrder {
		prop, ok := s.Properties[name]
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, Property{Name: name, Schema: prop})
	}
	var rest []string
	for name := range s.Properties {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, Property{Name: name, Schema: s.Properties[name]})
	}
	return out
}

// Property returns the named child schema or nil.
func (s *Schema) Property(name string) *Schema {
	if s == nil || s.Properties == nil {
		return nil
	}
	return s.Properties[name]
}

// At walks a dotted value path ("jobs.2.needs"). Numeric segments and the
// literal "items" step into array items.
func (s *Schema) At(path string) *Schema {
	node := s
	for _, segment := range strings.Split(strings.Trim(path, "."), ".") {
		if node == nil || segment == "" {
			break
		}
		if _, err := strconv.Atoi(segment); err == nil || segment == "items" {
			node = node.Items
			continue
		}
		node = node.Property(segment)
	}
	return node
}

// Choices lists the selectable values of the node: oneOf entries carrying a
// const win over a plain enum.
func (s *Schema) Choices() []Choice {
	if s == nil {
		return nil
	}
	var out []Choice
	for _, option := range s.OneOf {
		if option == nil || option.Const == nil {
			continue
		}
		label := option.Title
		if label == "" {
			label = stringify(option.Const)
		}
		out = append(out, Choice{Value: option.Const, Label: label, Description: option.Description})
	}
	if len(out) > 0 {
		return out
	}
	for _, value := range s.Enum {
		out = append(out, Choice{Value: value, Label: stringify(value)})
	}
	return out
}

// EffectiveType falls back to structural hints when no type keyword exists.
func (s *Schema) EffectiveType() string {
	if s == nil {
		return ""
	}
	if s.Type != "" {
		return s.Type
	}
	switch {
	case len(s.Properties) > 0:
		return "object"
	case s.Items != nil:
		return "array"
	case len(s.Enum) > 0 || len(s.OneOf) > 0:
		return "string"
	}
	return ""
}
