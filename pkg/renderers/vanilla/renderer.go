package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-specviz/pkg/model"
	"github.com/goliatone/go-specviz/pkg/render"
	rendertemplate "github.com/goliatone/go-specviz/pkg/render/template"
	"github.com/goliatone/go-specviz/pkg/renderers/vanilla/components"
)

const (
	formTemplate     = "templates/form.tmpl"
	documentTemplate = "templates/document.tmpl"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	components       *components.Registry
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default component set.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// Renderer turns a form model plus the current state into server rendered
// HTML that the browser runtime keeps in sync over a websocket.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	components *components.Registry
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.components == nil {
		cfg.components = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := rendertemplate.New(
			rendertemplate.WithFS(cfg.templateFS),
			rendertemplate.WithExtension(".tmpl"),
			rendertemplate.WithSetName("vanilla"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, components: cfg.components}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the form markup. With Standalone set the form is wrapped in
// a document carrying the inlined stylesheet.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	fields, err := r.RenderFields(ctx, form, opts)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"form": map[string]any{
			"name":          form.Name,
			"title":         form.Title,
			"description":   form.Description,
			"submit_hidden": form.SubmitHidden,
		},
		"fields":      fields,
		"form_errors": opts.FormErrors,
		"css_vars":    CSSVars(opts),
	}

	result, err := r.templates.RenderTemplate(partial(opts, "forms.form", formTemplate), payload)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	if !opts.Standalone {
		return []byte(result), nil
	}

	doc, err := r.templates.RenderTemplate(documentTemplate, map[string]any{
		"title":      firstNonEmpty(form.Title, form.Name),
		"stylesheet": defaultStylesheet(),
		"body":       result,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render document: %w", err)
	}
	return []byte(doc), nil
}

// RenderFields renders only the field sections, used to re-render the form
// body after a structural change.
func (r *Renderer) RenderFields(ctx context.Context, form model.FormModel, opts render.RenderOptions) (string, error) {
	walker := newComponentRenderer(r.templates, r.components, opts)
	var out strings.Builder
	for _, field := range form.Fields {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		html, err := walker.render(field, field.Name)
		if err != nil {
			return "", fmt.Errorf("vanilla renderer: %w", err)
		}
		out.WriteString(html)
	}
	return out.String(), nil
}

// AssetURLs returns the stylesheet and runtime script URLs for opts.
func AssetURLs(opts render.RenderOptions) (stylesheet, script string) {
	return assetURL(opts, StylesheetName), assetURL(opts, RuntimeScriptName)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
