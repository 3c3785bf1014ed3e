// Package catalog binds widget kinds and generic field shapes to the
// renderer components that implement them.
package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-specviz/pkg/model"
	"github.com/goliatone/go-specviz/pkg/widgets"
)

// Component names understood by the renderers.
const (
	ComponentInput          = "input"
	ComponentNumber         = "number"
	ComponentCheckbox       = "checkbox"
	ComponentSelect         = "select"
	ComponentTextarea       = "textarea"
	ComponentObject         = "object"
	ComponentArray          = "array"
	ComponentPermissions    = "permissions"
	ComponentKeyValue       = "key-value"
	ComponentNestedSchema   = "nested-schema"
	ComponentJobSelect      = "job-select"
	ComponentJobMultiSelect = "job-multiselect"
)

// Descriptor describes the implementation bound to a widget kind.
type Descriptor struct {
	Kind      widgets.Kind
	Component string
	// Interactive widgets talk to the editing session for options or text
	// validation instead of only posting leaf values.
	Interactive bool
}

// Catalog is the explicit kind → implementation table.
var Catalog = map[widgets.Kind]Descriptor{
	widgets.KindPermissions:      {Kind: widgets.KindPermissions, Component: ComponentPermissions},
	widgets.KindKeyValue:         {Kind: widgets.KindKeyValue, Component: ComponentKeyValue, Interactive: true},
	widgets.KindNestedSchema:     {Kind: widgets.KindNestedSchema, Component: ComponentNestedSchema, Interactive: true},
	widgets.KindJobSelector:      {Kind: widgets.KindJobSelector, Component: ComponentJobSelect, Interactive: true},
	widgets.KindJobMultiSelector: {Kind: widgets.KindJobMultiSelector, Component: ComponentJobMultiSelect, Interactive: true},
	widgets.KindTextarea:         {Kind: widgets.KindTextarea, Component: ComponentTextarea},
}

// Matcher decides whether a component should handle a generic field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects components for fields. Custom widget kinds always win;
// generic fields go through matchers, higher priority first and ties in
// registration order.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the generic matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher for component name.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{name: trimmed, priority: priority, match: matcher, order: len(r.rules)})
}

// Resolve returns the component for field.
func (r *Registry) Resolve(field model.Field) string {
	if desc, ok := Catalog[field.Widget]; ok {
		return desc.Component
	}
	if r == nil {
		return ComponentInput
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name
		}
	}
	return ComponentInput
}

// Decorate implements model.Decorator, stamping Component on every field.
func (r *Registry) Decorate(form *model.FormModel) error {
	if form == nil {
		return nil
	}
	form.Fields = r.decorateFields(form.Fields)
	return nil
}

func (r *Registry) decorateFields(fields []model.Field) []model.Field {
	for idx := range fields {
		fields[idx] = r.decorateField(fields[idx])
	}
	return fields
}

func (r *Registry) decorateField(field model.Field) model.Field {
	field.Component = r.Resolve(field)
	// custom widgets own their whole subtree
	if field.Widget.Custom() {
		return field
	}
	if field.Items != nil {
		item := r.decorateField(*field.Items)
		field.Items = &item
	}
	if len(field.Nested) > 0 {
		field.Nested = r.decorateFields(field.Nested)
	}
	return field
}

func (r *Registry) registerBuiltins() {
	r.Register(ComponentSelect, 40, func(f model.Field) bool {
		return len(f.Choices) > 0 && f.Type != model.FieldTypeArray && f.Type != model.FieldTypeObject
	})
	r.Register(ComponentCheckbox, 30, func(f model.Field) bool { return f.Type == model.FieldTypeBoolean })
	r.Register(ComponentNumber, 30, func(f model.Field) bool {
		return f.Type == model.FieldTypeInteger || f.Type == model.FieldTypeNumber
	})
	r.Register(ComponentArray, 20, func(f model.Field) bool { return f.Type == model.FieldTypeArray })
	r.Register(ComponentObject, 20, func(f model.Field) bool { return f.Type == model.FieldTypeObject })
	r.Register(ComponentTextarea, 10, func(f model.Field) bool {
		return f.Type == model.FieldTypeString && (f.Format == "textarea" || f.Format == "markdown")
	})
}
