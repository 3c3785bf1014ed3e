package orchestrator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	internaltheme "github.com/goliatone/go-specviz/internal/theme"
	"github.com/goliatone/go-specviz/pkg/model"
	"github.com/goliatone/go-specviz/pkg/orchestrator"
	"github.com/goliatone/go-specviz/pkg/render"
	"github.com/goliatone/go-specviz/pkg/testsupport"
	"github.com/goliatone/go-specviz/pkg/widgets"
	"github.com/goliatone/go-specviz/pkg/widgets/catalog"
)

func TestOrchestrator_GenerateByName(t *testing.T) {
	renderer := &stubRenderer{}
	orch := orchestrator.New(
		orchestrator.WithLoader(testsupport.NewLoader(t)),
		orchestrator.WithRegistry(mustRegistry(t, renderer)),
		orchestrator.WithDefaultRenderer(renderer.Name()),
	)

	output, err := orch.Generate(context.Background(), orchestrator.Request{Name: "repository"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(output) != "ok" {
		t.Fatalf("unexpected renderer output: %s", output)
	}

	env := fieldNamed(renderer.last.Fields, "env")
	if env == nil || env.Component != catalog.ComponentKeyValue {
		t.Fatalf("env not stamped as key-value: %#v", env)
	}
	jobs := fieldNamed(renderer.last.Fields, "jobs")
	if jobs == nil || jobs.Items == nil {
		t.Fatalf("jobs array missing: %#v", jobs)
	}
	if needs := fieldNamed(jobs.Items.Nested, "needs"); needs == nil || needs.Component != catalog.ComponentJobMultiSelect {
		t.Fatalf("needs not stamped as job multi-select: %#v", needs)
	}
	if renderer.opts.Nested == nil {
		t.Fatalf("expected nested preview hook to be installed")
	}
}

func TestOrchestrator_SpecBypassesLoader(t *testing.T) {
	renderer := &stubRenderer{}
	orch := orchestrator.New(
		orchestrator.WithRegistry(mustRegistry(t, renderer)),
		orchestrator.WithDefaultRenderer(renderer.Name()),
	)

	spec := testsupport.MustSpec(t, "tiny", "type: object\nproperties:\n  name: {type: string}\n", "")
	if _, err := orch.Generate(context.Background(), orchestrator.Request{Spec: &spec}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if renderer.last.Name != "tiny" {
		t.Fatalf("expected tiny form, got %q", renderer.last.Name)
	}

	if _, err := orch.Generate(context.Background(), orchestrator.Request{Name: "tiny"}); err == nil {
		t.Fatalf("expected error without a loader")
	}
}

func TestOrchestrator_TransformerRunsBeforeDecorators(t *testing.T) {
	renderer := &stubRenderer{}
	var order []string

	transformer := orchestrator.TransformerFunc(func(_ context.Context, form *model.FormModel) error {
		order = append(order, "transform")
		form.Metadata = map[string]string{"patched": "true"}
		return nil
	})
	decorator := model.DecoratorFunc(func(form *model.FormModel) error {
		order = append(order, "decorate")
		if form.Metadata["patched"] != "true" {
			return errors.New("transformer output missing")
		}
		form.Metadata["decorated"] = "true"
		return nil
	})

	orch := orchestrator.New(
		orchestrator.WithLoader(testsupport.NewLoader(t)),
		orchestrator.WithRegistry(mustRegistry(t, renderer)),
		orchestrator.WithDefaultRenderer(renderer.Name()),
		orchestrator.WithSchemaTransformer(transformer),
		orchestrator.WithUIDecorators(decorator),
	)

	if _, err := orch.Generate(context.Background(), orchestrator.Request{Name: "plain"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.Join(order, ",") != "transform,decorate" {
		t.Fatalf("unexpected pipeline order: %v", order)
	}
	if renderer.last.Metadata["decorated"] != "true" {
		t.Fatalf("decorator not applied: %#v", renderer.last.Metadata)
	}
}

func TestOrchestrator_UnknownRenderer(t *testing.T) {
	renderer := &stubRenderer{}
	orch := orchestrator.New(
		orchestrator.WithLoader(testsupport.NewLoader(t)),
		orchestrator.WithRegistry(mustRegistry(t, renderer)),
	)

	_, err := orch.Generate(context.Background(), orchestrator.Request{Name: "repository", Renderer: "pdf"})
	if !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
}

func TestOrchestrator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch := orchestrator.New(orchestrator.WithLoader(testsupport.NewLoader(t)))
	if _, err := orch.Generate(ctx, orchestrator.Request{Name: "repository"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOrchestrator_ResolvesTheme(t *testing.T) {
	selector, err := internaltheme.NewSelector(internaltheme.DefaultName, "", internaltheme.Default())
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	renderer := &stubRenderer{}
	orch := orchestrator.New(
		orchestrator.WithLoader(testsupport.NewLoader(t)),
		orchestrator.WithRegistry(mustRegistry(t, renderer)),
		orchestrator.WithDefaultRenderer(renderer.Name()),
		orchestrator.WithThemeSelector(selector, internaltheme.Config, internaltheme.DefaultName, ""),
	)

	if _, err := orch.Generate(context.Background(), orchestrator.Request{Name: "repository", ThemeVariant: "dark"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	cfg := renderer.opts.Theme
	if cfg == nil {
		t.Fatalf("expected theme config")
	}
	if cfg.Variant != "dark" {
		t.Fatalf("expected dark variant, got %q", cfg.Variant)
	}
	if got := cfg.Partials["forms.key-value"]; got != "templates/components/key-value.tmpl" {
		t.Fatalf("expected key-value fallback partial, got %q", got)
	}

	_, err = orch.Generate(context.Background(), orchestrator.Request{Name: "repository", ThemeName: "missing"})
	if !errors.Is(err, internaltheme.ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme, got %v", err)
	}
}

func TestOrchestrator_NestedPreviewRendersFragment(t *testing.T) {
	cache, err := widgets.NewPreviewCache(4)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	orch := orchestrator.New(
		orchestrator.WithLoader(testsupport.NewLoader(t)),
		orchestrator.WithPreviewCache(cache),
	)

	values := map[string]any{
		"name": "specviz",
		"jobs": []any{
			map[string]any{
				"name": "build",
				"inputs": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"target": map[string]any{"type": "string", "title": "Build target"},
					},
				},
			},
		},
	}

	output, err := orch.Generate(context.Background(), orchestrator.Request{
		Name:          "repository",
		RenderOptions: render.RenderOptions{Values: values},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(output), "Build target") {
		t.Fatalf("expected nested preview in output:\n%s", output)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected one cached preview, got %d", cache.Len())
	}

	if _, err := orch.Generate(context.Background(), orchestrator.Request{
		Name:          "repository",
		RenderOptions: render.RenderOptions{Values: values},
	}); err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected cached preview to be reused, got %d entries", cache.Len())
	}
}

func TestOrchestrator_FormReturnsDecoratedModel(t *testing.T) {
	orch := orchestrator.New()
	form, err := orch.Form(context.Background(), testsupport.MustRepositorySpec(t))
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	for _, field := range form.Fields {
		if field.Component == "" {
			t.Fatalf("field %q has no component", field.Name)
		}
	}
}

func mustRegistry(t *testing.T, renderers ...render.Renderer) *render.Registry {
	t.Helper()
	registry, err := render.NewRegistry(renderers...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return registry
}

func fieldNamed(fields []model.Field, name string) *model.Field {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i]
		}
	}
	return nil
}

type stubRenderer struct {
	last model.FormModel
	opts render.RenderOptions
}

func (s *stubRenderer) Name() string {
	return "stub"
}

func (s *stubRenderer) ContentType() string {
	return "text/plain"
}

func (s *stubRenderer) Render(_ context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	s.last = form
	s.opts = opts
	return []byte("ok"), nil
}
