package server

import (
	"context"
	"fmt"

	"github.com/goliatone/go-specviz/pkg/editor"
	"github.com/goliatone/go-specviz/pkg/model"
	"github.com/goliatone/go-specviz/pkg/orchestrator"
	"github.com/goliatone/go-specviz/pkg/preview"
	"github.com/goliatone/go-specviz/pkg/render"
	"github.com/goliatone/go-specviz/pkg/renderers/vanilla"
	"github.com/goliatone/go-specviz/pkg/specs"
	"github.com/goliatone/go-specviz/pkg/validation"
	"github.com/goliatone/go-specviz/pkg/widgets/collapse"
)

// view holds what one editing page needs to re-render: the decorated form
// model, the themed base options and the HTML renderer.
type view struct {
	spec     specs.Spec
	form     model.FormModel
	base     render.RenderOptions
	renderer *vanilla.Renderer
}

func (s *Server) newView(ctx context.Context, spec specs.Spec) (*view, error) {
	form, err := s.orch.Form(ctx, spec)
	if err != nil {
		return nil, err
	}
	base, err := s.orch.Options(ctx, s.themeRequest())
	if err != nil {
		return nil, err
	}
	r, err := s.orch.Renderer("vanilla")
	if err != nil {
		return nil, err
	}
	html, ok := r.(*vanilla.Renderer)
	if !ok {
		return nil, fmt.Errorf("server: renderer %q cannot render fields", r.Name())
	}
	return &view{spec: spec, form: form, base: base, renderer: html}, nil
}

func (s *Server) themeRequest() orchestrator.Request {
	return orchestrator.Request{ThemeName: s.themeName, ThemeVariant: s.themeVariant}
}

func (v *view) options(state map[string]any, issues []validation.Issue, sections *collapse.Tracker) render.RenderOptions {
	opts := v.base
	mapping := render.MapIssues(v.form, issues)
	opts.Values = state
	opts.Errors = mapping.Fields
	opts.FormErrors = mapping.Form
	opts.Sections = sections
	return opts
}

func (v *view) page(ctx context.Context, opts render.RenderOptions) (string, error) {
	out, err := v.renderer.Render(ctx, v.form, opts)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (v *view) fields(ctx context.Context, opts render.RenderOptions) (string, error) {
	return v.renderer.RenderFields(ctx, v.form, opts)
}

func (v *view) nested(value any) (string, error) {
	if v.base.Nested == nil || value == nil {
		return "", nil
	}
	out, err := v.base.Nested(value)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (s *Server) newSession(spec specs.Spec, format preview.Format) *editor.Session {
	return editor.New(spec, s.store,
		editor.WithDebounce(s.debounce),
		editor.WithWriteTimeout(s.writeTimeout),
		editor.WithLogger(s.log),
		editor.WithFormat(format),
	)
}
