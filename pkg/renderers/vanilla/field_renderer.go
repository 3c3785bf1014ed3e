package vanilla

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-specviz/pkg/formstate"
	"github.com/goliatone/go-specviz/pkg/model"
	"github.com/goliatone/go-specviz/pkg/render"
	"github.com/goliatone/go-specviz/pkg/render/template"
	"github.com/goliatone/go-specviz/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-specviz/pkg/widgets/catalog"
	"github.com/goliatone/go-specviz/pkg/widgets/collapse"
)

const sectionTemplate = "templates/section.tmpl"

type componentRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	opts      render.RenderOptions
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, opts render.RenderOptions) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		templates: templates,
		registry:  registry,
		opts:      opts,
	}
}

// render writes field at the concrete state path, wrapped in its section.
func (r *componentRenderer) render(field model.Field, path string) (string, error) {
	componentName := strings.TrimSpace(field.Component)
	if componentName == "" {
		componentName = catalog.ComponentInput
	}

	descriptor, ok := r.registry.Descriptor(componentName)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", componentName, path)
	}

	value, _ := formstate.Get(r.opts.Values, path)
	data := components.ComponentData{
		Template:    r.templates,
		Path:        path,
		Value:       value,
		Values:      r.opts.Values,
		Errors:      r.opts.Errors[path],
		Partials:    partials(r.opts),
		RenderChild: r.render,
		Nested:      r.opts.Nested,
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", componentName, path, err)
	}

	return r.wrap(field, path, descriptor, control.String())
}

func (r *componentRenderer) wrap(field model.Field, path string, descriptor components.Descriptor, control string) (string, error) {
	section := collapse.Initial(path, field.Required, field.Hidden)
	section = r.opts.Sections.Apply(section)

	payload := map[string]any{
		"field":    components.FieldView(field, path),
		"label_id": components.LabelID(path),
		"group":    descriptor.Group,
		"control":  control,
		"errors":   r.opts.Errors[path],
		"section": map[string]any{
			"expanded":         section.Expanded,
			"toggleable":       section.Toggleable,
			"hidden":           section.Hidden,
			"show_description": section.ShowDescription(),
		},
		"interactive": interactive(field),
	}
	rendered, err := r.templates.RenderTemplate(partial(r.opts, "forms.section", sectionTemplate), payload)
	if err != nil {
		return "", fmt.Errorf("render section %q: %w", path, err)
	}
	return rendered, nil
}

func interactive(field model.Field) bool {
	desc, ok := catalog.Catalog[field.Widget]
	return ok && desc.Interactive
}
