package components

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-specviz/pkg/formstate"
	"github.com/goliatone/go-specviz/pkg/model"
	"github.com/goliatone/go-specviz/pkg/widgets"
	"github.com/goliatone/go-specviz/pkg/widgets/catalog"
)

const templatePrefix = "templates/components/"

// PartialKey is the theme partial that overrides component's template.
func PartialKey(component string) string {
	return "forms." + component
}

// NewDefaultRegistry constructs a registry with one entry per catalog
// component.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(catalog.ComponentInput, Descriptor{Renderer: templateComponent(catalog.ComponentInput, inputPayload)})
	registry.MustRegister(catalog.ComponentNumber, Descriptor{Renderer: templateComponent(catalog.ComponentNumber, numberPayload)})
	registry.MustRegister(catalog.ComponentCheckbox, Descriptor{Renderer: templateComponent(catalog.ComponentCheckbox, checkboxPayload)})
	registry.MustRegister(catalog.ComponentSelect, Descriptor{Renderer: templateComponent(catalog.ComponentSelect, selectPayload)})
	registry.MustRegister(catalog.ComponentTextarea, Descriptor{Renderer: templateComponent(catalog.ComponentTextarea, inputPayload)})
	registry.MustRegister(catalog.ComponentObject, Descriptor{Renderer: templateComponent(catalog.ComponentObject, objectPayload), Group: true})
	registry.MustRegister(catalog.ComponentArray, Descriptor{Renderer: templateComponent(catalog.ComponentArray, arrayPayload), Group: true})

	registry.MustRegister(catalog.ComponentPermissions, Descriptor{Renderer: templateComponent(catalog.ComponentPermissions, permissionsPayload), Group: true})
	registry.MustRegister(catalog.ComponentKeyValue, Descriptor{Renderer: templateComponent(catalog.ComponentKeyValue, keyValuePayload)})
	registry.MustRegister(catalog.ComponentNestedSchema, Descriptor{Renderer: templateComponent(catalog.ComponentNestedSchema, nestedSchemaPayload)})
	registry.MustRegister(catalog.ComponentJobSelect, Descriptor{Renderer: templateComponent(catalog.ComponentJobSelect, jobSelectPayload)})
	registry.MustRegister(catalog.ComponentJobMultiSelect, Descriptor{Renderer: templateComponent(catalog.ComponentJobMultiSelect, jobMultiSelectPayload), Group: true})

	return registry
}

type payloadFunc func(field model.Field, data ComponentData, payload map[string]any) error

func templateComponent(component string, fill payloadFunc) Renderer {
	templateName := templatePrefix + component + ".tmpl"
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		resolved := templateName
		if candidate := strings.TrimSpace(data.Partials[PartialKey(component)]); candidate != "" {
			resolved = candidate
		}

		payload := map[string]any{
			"field":  FieldView(field, data.Path),
			"errors": data.Errors,
		}
		if fill != nil {
			if err := fill(field, data, payload); err != nil {
				return fmt.Errorf("components: %s %q: %w", component, data.Path, err)
			}
		}
		rendered, err := data.Template.RenderTemplate(resolved, payload)
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", resolved, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

// FieldView flattens the presentation attributes of field at path.
func FieldView(field model.Field, path string) map[string]any {
	return map[string]any{
		"name":        field.Name,
		"path":        path,
		"id":          ControlID(path),
		"label":       field.Label,
		"description": field.Description,
		"help":        field.Help,
		"placeholder": field.Placeholder,
		"classes":     SanitizeClassList(field.Classes),
		"required":    field.Required,
		"type":        string(field.Type),
		"component":   field.Component,
		"widget":      field.Widget.String(),
		"hidden":      field.Hidden,
	}
}

func inputPayload(field model.Field, data ComponentData, payload map[string]any) error {
	payload["text"] = ScalarText(data.Value)
	payload["input_type"] = inputType(field.Format)
	if rule, ok := field.Rule(model.ValidationRuleMinLength); ok {
		payload["minlength"] = rule.Params["value"]
	}
	if rule, ok := field.Rule(model.ValidationRuleMaxLength); ok {
		payload["maxlength"] = rule.Params["value"]
	}
	if rule, ok := field.Rule(model.ValidationRulePattern); ok {
		payload["pattern"] = rule.Params["pattern"]
	}
	return nil
}

func numberPayload(field model.Field, data ComponentData, payload map[string]any) error {
	payload["text"] = ScalarText(data.Value)
	payload["step"] = "any"
	if field.Type == model.FieldTypeInteger {
		payload["step"] = "1"
	}
	if rule, ok := field.Rule(model.ValidationRuleMin); ok && rule.Params["exclusive"] == "" {
		payload["min"] = rule.Params["value"]
	}
	if rule, ok := field.Rule(model.ValidationRuleMax); ok && rule.Params["exclusive"] == "" {
		payload["max"] = rule.Params["value"]
	}
	return nil
}

func checkboxPayload(_ model.Field, data ComponentData, payload map[string]any) error {
	checked, _ := data.Value.(bool)
	payload["checked"] = checked
	return nil
}

func selectPayload(field model.Field, data ComponentData, payload map[string]any) error {
	options := make([]map[string]any, 0, len(field.Choices))
	for _, choice := range field.Choices {
		options = append(options, map[string]any{
			"key":      widgets.ChoiceKey(choice.Value),
			"label":    choice.Label,
			"selected": data.Value != nil && widgets.ChoiceKey(data.Value) == widgets.ChoiceKey(choice.Value),
		})
	}
	payload["options"] = options
	payload["allow_empty"] = !field.Required || data.Value == nil
	return nil
}

func objectPayload(field model.Field, data ComponentData, payload map[string]any) error {
	if data.RenderChild == nil {
		payload["children"] = ""
		return nil
	}
	var children strings.Builder
	for _, nested := range field.Nested {
		html, err := data.RenderChild(nested, formstate.Join(data.Path, nested.Name))
		if err != nil {
			return err
		}
		children.WriteString(html)
	}
	payload["children"] = children.String()
	return nil
}

func arrayPayload(field model.Field, data ComponentData, payload map[string]any) error {
	list, _ := data.Value.([]any)
	items := make([]map[string]any, 0, len(list))
	if field.Items != nil && data.RenderChild != nil {
		for idx := range list {
			item := *field.Items
			item.Name = fmt.Sprint(idx)
			item.Label = fmt.Sprintf("%s %d", firstNonEmpty(field.Items.Label, field.Label), idx+1)
			item.Required = true
			path := formstate.Join(data.Path, item.Name)
			html, err := data.RenderChild(item, path)
			if err != nil {
				return err
			}
			items = append(items, map[string]any{"index": strconv.Itoa(idx), "path": path, "html": html})
		}
	}
	payload["items"] = items
	payload["add_label"] = "Add " + strings.ToLower(firstNonEmpty(field.Label, "item"))
	return nil
}

func permissionsPayload(field model.Field, data ComponentData, payload map[string]any) error {
	choices := widgets.PermissionChoices(field.Schema)
	out := make([]map[string]any, 0, len(choices))
	for idx, choice := range choices {
		out = append(out, map[string]any{
			"key":         widgets.ChoiceKey(choice.Value),
			"label":       choice.Label,
			"description": choice.Description,
			"checked":     widgets.Checked(data.Value, choice.Value),
			"id":          fmt.Sprintf("%s-%d", ControlID(data.Path), idx),
		})
	}
	payload["choices"] = out
	return nil
}

func keyValuePayload(_ model.Field, data ComponentData, payload map[string]any) error {
	payload["text"] = widgets.FormatJSON(data.Value, true)
	return nil
}

func nestedSchemaPayload(_ model.Field, data ComponentData, payload map[string]any) error {
	payload["text"] = widgets.FormatJSON(data.Value, false)
	payload["preview"] = ""
	if data.Nested == nil || data.Value == nil {
		return nil
	}
	html, err := data.Nested(data.Value)
	if err != nil {
		payload["preview_error"] = err.Error()
		return nil
	}
	payload["preview"] = string(html)
	return nil
}

func jobSelectPayload(field model.Field, data ComponentData, payload map[string]any) error {
	current, _ := data.Value.(string)
	options := widgets.JobOptions(data.Values, data.Path, jobsPath(field))
	out := make([]map[string]any, 0, len(options))
	for _, name := range options {
		out = append(out, map[string]any{"key": name, "selected": name == current})
	}
	payload["options"] = out
	payload["current"] = current
	return nil
}

func jobMultiSelectPayload(field model.Field, data ComponentData, payload map[string]any) error {
	selected := make([]string, 0)
	if list, ok := data.Value.([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				selected = append(selected, s)
			}
		}
	}
	var available []string
	for _, name := range widgets.JobOptions(data.Values, data.Path, jobsPath(field)) {
		if !widgets.Checked(data.Value, name) {
			available = append(available, name)
		}
	}
	payload["selected"] = selected
	payload["available"] = available
	return nil
}

func jobsPath(field model.Field) string {
	if field.Options != nil {
		if p, ok := field.Options["jobsPath"].(string); ok && strings.TrimSpace(p) != "" {
			return strings.TrimSpace(p)
		}
	}
	return widgets.DefaultJobsPath
}

func inputType(format string) string {
	switch format {
	case "email":
		return "email"
	case "uri", "url":
		return "url"
	case "date":
		return "date"
	case "date-time":
		return "datetime-local"
	case "password":
		return "password"
	default:
		return "text"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
