package orchestrator

import (
	"context"
	"errors"
	"fmt"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-specviz/internal/logger"
	"github.com/goliatone/go-specviz/pkg/model"
	"github.com/goliatone/go-specviz/pkg/render"
	"github.com/goliatone/go-specviz/pkg/renderers/vanilla"
	"github.com/goliatone/go-specviz/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-specviz/pkg/schema"
	"github.com/goliatone/go-specviz/pkg/specs"
	"github.com/goliatone/go-specviz/pkg/widgets"
	"github.com/goliatone/go-specviz/pkg/widgets/catalog"
)

const defaultRendererName = "vanilla"

// SpecLoader resolves a registered name to a parsed spec.
type SpecLoader interface {
	Load(ctx context.Context, name string) (specs.Spec, error)
}

// ThemeConfigFunc flattens a theme selection into renderer configuration.
type ThemeConfigFunc func(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects the spec loader used for name-based requests.
func WithLoader(loader SpecLoader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithModelBuilder injects a custom form model builder.
func WithModelBuilder(builder model.Builder) Option {
	return func(o *Orchestrator) {
		o.builder = builder
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithSchemaTransformer registers a Transformer that runs after building and
// before decorators.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithUIDecorators registers decorators that run after the component catalog
// has stamped every field.
func WithUIDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithComponentCatalog replaces the default component resolver.
func WithComponentCatalog(reg *catalog.Registry) Option {
	return func(o *Orchestrator) {
		if reg != nil {
			o.catalog = reg
		}
	}
}

// WithThemeSelector resolves theme and variant names ahead of rendering.
// config flattens the selection; nil keeps selections out of RenderOptions.
func WithThemeSelector(selector theme.ThemeSelector, config ThemeConfigFunc, defaultTheme, defaultVariant string) Option {
	return func(o *Orchestrator) {
		o.themes = selector
		o.themeConfig = config
		o.themeName = defaultTheme
		o.themeVariant = defaultVariant
	}
}

// WithPreviewCache shares a nested-schema preview cache across requests.
func WithPreviewCache(cache *widgets.PreviewCache) Option {
	return func(o *Orchestrator) {
		o.previews = cache
	}
}

// WithLogger attaches a logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *Orchestrator) {
		o.log = logger.OrNop(l)
	}
}

// Orchestrator coordinates the pipeline from a registered spec to rendered
// output. Missing dependencies default to the built-in implementations.
type Orchestrator struct {
	loader          SpecLoader
	builder         model.Builder
	registry        *render.Registry
	defaultRenderer string
	catalog         *catalog.Registry
	decorators      []model.Decorator
	transformer     Transformer
	themes          theme.ThemeSelector
	themeConfig     ThemeConfigFunc
	themeName       string
	themeVariant    string
	previews        *widgets.PreviewCache
	log             *logger.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		log:             logger.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one render.
type Request struct {
	// Name selects a registered spec. Ignored when Spec is supplied.
	Name string
	// Spec bypasses the loader when the caller already holds the document.
	Spec *specs.Spec

	// Renderer names the renderer to use; empty means the default.
	Renderer     string
	ThemeName    string
	ThemeVariant string

	RenderOptions render.RenderOptions
}

// Generate loads, builds, decorates and renders the requested spec.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	spec, err := o.resolveSpec(ctx, req)
	if err != nil {
		return nil, err
	}
	form, err := o.Form(ctx, spec)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}
	opts, err := o.Options(ctx, req)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, form, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Form builds the decorated form model for spec.
func (o *Orchestrator) Form(ctx context.Context, spec specs.Spec) (model.FormModel, error) {
	if err := o.initialiseErr; err != nil {
		return model.FormModel{}, err
	}
	form, err := o.builder.Build(spec)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("orchestrator: build form model: %w", err)
	}
	if err := o.finish(ctx, &form); err != nil {
		return model.FormModel{}, err
	}
	return form, nil
}

// Options completes req.RenderOptions with the resolved theme and, for the
// HTML renderer, the nested-schema preview hook.
func (o *Orchestrator) Options(ctx context.Context, req Request) (render.RenderOptions, error) {
	opts := req.RenderOptions
	if opts.Theme == nil {
		cfg, err := o.resolveTheme(req.ThemeName, req.ThemeVariant)
		if err != nil {
			return render.RenderOptions{}, err
		}
		opts.Theme = cfg
	}
	if opts.Nested == nil {
		opts.Nested = o.NestedPreview(ctx, opts.Theme)
	}
	return opts, nil
}

// NestedPreview renders nested schema fragments as read-only preview forms
// through the default renderer, memoised by content.
func (o *Orchestrator) NestedPreview(ctx context.Context, cfg *theme.RendererConfig) render.NestedPreview {
	if o.previews == nil {
		return nil
	}
	return func(value any) ([]byte, error) {
		return o.previews.Preview(value, func(fragment *schema.Schema) ([]byte, error) {
			form, err := o.builder.BuildFragment("nested", fragment)
			if err != nil {
				return nil, err
			}
			if err := o.finish(ctx, &form); err != nil {
				return nil, err
			}
			renderer, err := o.rendererFor("")
			if err != nil {
				return nil, err
			}
			return renderer.Render(ctx, form, render.RenderOptions{Theme: cfg})
		})
	}
}

// Renderer exposes a registered renderer.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	return o.rendererFor(name)
}

func (o *Orchestrator) finish(ctx context.Context, form *model.FormModel) error {
	if o.transformer != nil {
		if err := o.transformer.Transform(ctx, form); err != nil {
			return fmt.Errorf("orchestrator: transform form: %w", err)
		}
	}
	decorators := append([]model.Decorator{o.catalog}, o.decorators...)
	if err := model.Apply(form, decorators...); err != nil {
		return fmt.Errorf("orchestrator: decorate form: %w", err)
	}
	return nil
}

func (o *Orchestrator) resolveSpec(ctx context.Context, req Request) (specs.Spec, error) {
	if req.Spec != nil {
		return *req.Spec, nil
	}
	if req.Name == "" {
		return specs.Spec{}, errors.New("orchestrator: spec name or spec is required")
	}
	if o.loader == nil {
		return specs.Spec{}, errors.New("orchestrator: spec loader is nil")
	}
	spec, err := o.loader.Load(ctx, req.Name)
	if err != nil {
		return specs.Spec{}, fmt.Errorf("orchestrator: load spec: %w", err)
	}
	return spec, nil
}

func (o *Orchestrator) resolveTheme(name, variant string) (*theme.RendererConfig, error) {
	if o.themes == nil || o.themeConfig == nil {
		return nil, nil
	}
	if name == "" {
		name = o.themeName
		if variant == "" {
			variant = o.themeVariant
		}
	}
	selection, err := o.themes.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	return o.themeConfig(selection, defaultThemeFallbacks()), nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}
	target := name
	if target == "" {
		target = o.defaultRenderer
	}
	renderer, err := o.registry.Get(target)
	if err == nil {
		return renderer, nil
	}
	if name != "" {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
	}
	renderer, err = o.registry.Get("")
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.builder == nil {
		o.builder = model.NewBuilder()
	}
	if o.catalog == nil {
		o.catalog = catalog.NewRegistry()
	}
	if o.registry == nil {
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
			return
		}
		o.registry, err = render.NewRegistry(renderer)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: renderer registry: %w", err)
			return
		}
	}
	if o.previews == nil {
		cache, err := widgets.NewPreviewCache(widgets.DefaultPreviewCacheSize)
		if err != nil {
			o.initialiseErr = err
			return
		}
		o.previews = cache
	}
}

// defaultThemeFallbacks points every component partial at the embedded
// template so themes only need to declare the partials they replace.
func defaultThemeFallbacks() map[string]string {
	fallbacks := map[string]string{
		"forms.form":    "templates/form.tmpl",
		"forms.section": "templates/section.tmpl",
	}
	for _, name := range components.NewDefaultRegistry().Names() {
		fallbacks[components.PartialKey(name)] = "templates/components/" + name + ".tmpl"
	}
	return fallbacks
}
