// Package specviz turns spec documents into editable forms. The root package
// re-exports the pieces most callers need so a form can be produced without
// importing the pipeline packages one by one.
package specviz

import (
	"context"

	theme "github.com/goliatone/go-theme"

	internaltheme "github.com/goliatone/go-specviz/internal/theme"
	"github.com/goliatone/go-specviz/pkg/orchestrator"
	"github.com/goliatone/go-specviz/pkg/render"
	"github.com/goliatone/go-specviz/pkg/specs"
)

// RenderOptions carries the values, validation messages and theme a
// renderer works from.
type RenderOptions = render.RenderOptions

// Spec is a loaded document plus its UI hints.
type Spec = specs.Spec

// Request describes one render.
type Request = orchestrator.Request

// NewOrchestrator exposes the pipeline constructor.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML loads the named spec through loader and renders its form with
// rendererName ("" selects the default HTML renderer).
func GenerateHTML(ctx context.Context, loader orchestrator.SpecLoader, name, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	options = append([]orchestrator.Option{orchestrator.WithLoader(loader)}, options...)
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Name:     name,
		Renderer: rendererName,
	})
}

// GenerateHTMLFromSpec renders an already parsed spec, bypassing the loader.
func GenerateHTMLFromSpec(ctx context.Context, spec Spec, rendererName string, opts RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Spec:          &spec,
		Renderer:      rendererName,
		RenderOptions: opts,
	})
}

// WithThemeSelector resolves themes through selector using the built-in
// partial fallbacks.
func WithThemeSelector(selector theme.ThemeSelector, defaultTheme, defaultVariant string) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector, internaltheme.Config, defaultTheme, defaultVariant)
}

// WithThemeManifests builds a selector over the built-in theme plus
// manifests and installs it.
func WithThemeManifests(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (orchestrator.Option, error) {
	selector, err := internaltheme.NewSelector(defaultTheme, defaultVariant, manifests...)
	if err != nil {
		return nil, err
	}
	return WithThemeSelector(selector, defaultTheme, defaultVariant), nil
}
