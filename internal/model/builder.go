package model

import (
	"errors"
	"strconv"

	"github.com/goliatone/go-specviz/pkg/formstate"
	"github.com/goliatone/go-specviz/pkg/schema"
	"github.com/goliatone/go-specviz/pkg/uihints"
)

const itemsSegment = "items"

var errRootNotObject = errors.New("model builder: root schema must describe an object")

// Input is what the builder needs from a loaded spec.
type Input struct {
	Name   string
	Title  string
	Schema *schema.Schema
	Hints  uihints.Hints
}

// Builder converts spec schemas into form models.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	return &Builder{opts: opts}
}

// Build walks the schema in declared order (or the hinted ui:order) and
// produces one Field per property.
func (b *Builder) Build(in Input) (FormModel, error) {
	root := in.Schema
	if root == nil {
		root = &schema.Schema{Type: "object"}
	}
	if typ := root.EffectiveType(); typ != "" && typ != "object" {
		return FormModel{}, errRootNotObject
	}

	form := FormModel{
		Name:         in.Name,
		Title:        firstNonEmpty(in.Hints.Root.Title, root.Title, in.Title),
		Description:  firstNonEmpty(in.Hints.Root.Description, root.Description),
		SubmitHidden: in.Hints.SubmitHidden,
		Schema:       root,
	}
	form.Fields = b.objectFields(root, "", in.Hints)
	return form, nil
}

func (b *Builder) objectFields(node *schema.Schema, path string, hints uihints.Hints) []Field {
	props := node.OrderedProperties()
	if len(props) == 0 {
		return nil
	}
	if order := hintOrder(hints, path); len(order) > 0 {
		props = applyOrder(props, order)
	}
	fields := make([]Field, 0, len(props))
	for _, prop := range props {
		fields = append(fields, b.field(prop.Name, formstate.Join(path, prop.Name), prop.Schema, node.IsRequired(prop.Name), hints))
	}
	return fields
}

func (b *Builder) field(name, path string, node *schema.Schema, required bool, hints uihints.Hints) Field {
	if node == nil {
		node = &schema.Schema{}
	}
	fieldHints, _ := hints.Lookup(path)

	field := Field{
		Name:        name,
		Path:        path,
		Type:        mapType(node.EffectiveType()),
		Format:      node.Format,
		Required:    required,
		Label:       firstNonEmpty(fieldHints.Title, node.Title, b.opts.Labeler(name)),
		Description: firstNonEmpty(fieldHints.Description, node.Description),
		Help:        fieldHints.Help,
		Placeholder: fieldHints.Placeholder,
		Classes:     fieldHints.Classes,
		Default:     node.Default,
		Choices:     node.Choices(),
		Widget:      fieldHints.Widget,
		Hidden:      fieldHints.Hidden,
		Options:     fieldHints.Options,
		Schema:      node,
	}
	if node.Ref != "" {
		field.Metadata = map[string]string{"$ref": node.Ref}
	}
	applyValidations(&field, node)

	switch field.Type {
	case FieldTypeObject:
		field.Nested = b.objectFields(node, path, hints)
	case FieldTypeArray:
		itemSchema := node.Items
		if itemSchema == nil {
			itemSchema = &schema.Schema{Type: "string"}
		}
		item := b.field(name, formstate.Join(path, itemsSegment), itemSchema, false, hints)
		item.Label = firstNonEmpty(itemSchema.Title, field.Label)
		field.Items = &item
	}
	return field
}

func hintOrder(hints uihints.Hints, path string) []string {
	h, ok := hints.Lookup(path)
	if !ok {
		return nil
	}
	return h.Order
}

// applyOrder follows ui:order semantics: listed names first, `*` marks where
// the remaining properties go (appended when absent).
func applyOrder(props []schema.Property, order []string) []schema.Property {
	byName := make(map[string]schema.Property, len(props))
	for _, p := range props {
		byName[p.Name] = p
	}
	used := make(map[string]struct{}, len(order))
	var head, tail []schema.Property
	wildcard := false
	for _, name := range order {
		if name == "*" {
			wildcard = true
			continue
		}
		p, ok := byName[name]
		if !ok {
			continue
		}
		if _, dup := used[name]; dup {
			continue
		}
		used[name] = struct{}{}
		if wildcard {
			tail = append(tail, p)
		} else {
			head = append(head, p)
		}
	}
	out := head
	for _, p := range props {
		if _, ok := used[p.Name]; !ok {
			out = append(out, p)
		}
	}
	return append(out, tail...)
}

func mapType(schemaType string) FieldType {
	switch schemaType {
	case "integer":
		return FieldTypeInteger
	case "number":
		return FieldTypeNumber
	case "boolean":
		return FieldTypeBoolean
	case "array":
		return FieldTypeArray
	case "object", "":
		return FieldTypeObject
	default:
		return FieldTypeString
	}
}

func applyValidations(field *Field, node *schema.Schema) {
	if node.Minimum != nil {
		params := map[string]string{"value": formatFloat(*node.Minimum)}
		if node.ExclusiveMinimum {
			params["exclusive"] = "true"
		}
		field.Validations = append(field.Validations, ValidationRule{Kind: ValidationRuleMin, Params: params})
	}
	if node.Maximum != nil {
		params := map[string]string{"value": formatFloat(*node.Maximum)}
		if node.ExclusiveMaximum {
			params["exclusive"] = "true"
		}
		field.Validations = append(field.Validations, ValidationRule{Kind: ValidationRuleMax, Params: params})
	}
	addInt := func(kind string, v *int) {
		if v != nil {
			field.Validations = append(field.Validations, ValidationRule{Kind: kind, Params: map[string]string{"value": strconv.Itoa(*v)}})
		}
	}
	addInt(ValidationRuleMinLength, node.MinLength)
	addInt(ValidationRuleMaxLength, node.MaxLength)
	addInt(ValidationRuleMinItems, node.MinItems)
	addInt(ValidationRuleMaxItems, node.MaxItems)
	if node.Pattern != "" {
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   ValidationRulePattern,
			Params: map[string]string{"pattern": node.Pattern},
		})
	}
}

// Rule returns the first validation of kind.
func (f Field) Rule(kind string) (ValidationRule, bool) {
	for _, rule := range f.Validations {
		if rule.Kind == kind {
			return rule, true
		}
	}
	return ValidationRule{}, false
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
