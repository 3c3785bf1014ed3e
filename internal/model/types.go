package model

import (
	"github.com/goliatone/go-specviz/pkg/schema"
	"github.com/goliatone/go-specviz/pkg/widgets"
)

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
	FieldTypeObject  FieldType = "object"
)

const (
	ValidationRuleMin       = "min"
	ValidationRuleMax       = "max"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
	ValidationRuleMinItems  = "minItems"
	ValidationRuleMaxItems  = "maxItems"
)

// ValidationRule represents a single constraint applied to a field. Numeric
// thresholds live in Params["value"], patterns in Params["pattern"].
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Field models one control of a generated form. Path addresses the field in
// the hint document, so array elements appear as `items`; renderers derive
// the concrete FormState path while walking values.
type Field struct {
	Name        string            `json:"name"`
	Path        string            `json:"path"`
	Type        FieldType         `json:"type"`
	Format      string            `json:"format,omitempty"`
	Required    bool              `json:"required"`
	Label       string            `json:"label,omitempty"`
	Description string            `json:"description,omitempty"`
	Help        string            `json:"help,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Classes     string            `json:"classes,omitempty"`
	Default     any               `json:"default,omitempty"`
	Choices     []schema.Choice   `json:"choices,omitempty"`
	Nested      []Field           `json:"nested,omitempty"`
	Items       *Field            `json:"items,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty"`
	Widget      widgets.Kind      `json:"widget,omitempty"`
	Component   string            `json:"component,omitempty"`
	Hidden      bool              `json:"hidden,omitempty"`
	Options     map[string]any    `json:"options,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`

	// Schema is the node the field was built from, handed to custom widgets.
	Schema *schema.Schema `json:"-"`
}

// FormModel is the top-level structure renderers consume.
type FormModel struct {
	Name         string            `json:"name"`
	Title        string            `json:"title,omitempty"`
	Description  string            `json:"description,omitempty"`
	Fields       []Field           `json:"fields"`
	SubmitHidden bool              `json:"submitHidden,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`

	Schema *schema.Schema `json:"-"`
}

// Walk visits every field depth-first, items included.
func (f FormModel) Walk(fn func(Field)) {
	var visit func(fields []Field)
	visit = func(fields []Field) {
		for _, field := range fields {
			fn(field)
			if field.Items != nil {
				visit([]Field{*field.Items})
			}
			visit(field.Nested)
		}
	}
	visit(f.Fields)
}
