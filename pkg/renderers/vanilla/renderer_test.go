package vanilla_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-specviz/pkg/model"
	"github.com/goliatone/go-specviz/pkg/render"
	"github.com/goliatone/go-specviz/pkg/renderers/vanilla"
	"github.com/goliatone/go-specviz/pkg/testsupport"
	"github.com/goliatone/go-specviz/pkg/widgets/catalog"
	"github.com/goliatone/go-specviz/pkg/widgets/collapse"
)

func buildForm(t *testing.T) model.FormModel {
	t.Helper()
	spec := testsupport.MustRepositorySpec(t)
	form, err := model.NewBuilder().Build(spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := model.Apply(&form, catalog.NewRegistry()); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	return form
}

func sampleState() map[string]any {
	return map[string]any{
		"name": "specviz",
		"env":  map[string]any{"GOFLAGS": "-mod=mod"},
		"jobs": []any{
			map[string]any{"name": "build", "permissions": []any{"contents:read"}},
			map[string]any{"name": "test", "needs": []any{"build"}, "after": "build"},
		},
	}
}

func TestRenderFormWithState(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	form := buildForm(t)

	out, err := renderer.Render(context.Background(), form, render.RenderOptions{
		Values: sampleState(),
		Errors: map[string][]string{"jobs.1.name": {"must be unique"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	for _, want := range []string{
		`data-sv-form="repository"`,
		`id="sv-name"`,
		`value="specviz"`,
		`data-sv-section="jobs.1.needs"`,
		`data-sv-intent="remove" data-sv-path="jobs.1.needs" data-sv-key="build"`,
		`data-sv-intent="toggle" data-sv-path="jobs.0.permissions" data-sv-key="contents:read"`,
		`data-sv-intent="remove-item" data-sv-path="jobs" data-sv-index="1"`,
		`must be unique`,
		`&quot;GOFLAGS&quot;`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered form missing %q", want)
		}
	}
	if strings.Contains(html, `sv-actions`) {
		t.Errorf("submit actions rendered although the hints hide them")
	}
	if strings.Contains(html, `data-sv-index="1.`) {
		t.Errorf("array item index rendered as a float")
	}
}

func TestRenderJobSelectorExcludesOwner(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := renderer.Render(context.Background(), buildForm(t), render.RenderOptions{Values: sampleState()})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	start := strings.Index(html, `data-sv-intent="select" data-sv-path="jobs.1.after"`)
	if start < 0 {
		t.Fatalf("job selector for jobs.1.after not rendered")
	}
	end := strings.Index(html[start:], "</select>")
	selector := html[start : start+end]
	if strings.Contains(selector, `value="test"`) {
		t.Fatalf("job selector offers its own job: %s", selector)
	}
	if !strings.Contains(selector, `value="build" selected`) {
		t.Fatalf("job selector lost the current job: %s", selector)
	}
}

func TestRenderSectionsCollapseOptionalFields(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	form := buildForm(t)

	out, err := renderer.Render(context.Background(), form, render.RenderOptions{Values: sampleState()})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), `id="sv-description-body" hidden`) {
		t.Fatalf("optional description should start collapsed")
	}

	sections := collapse.NewTracker()
	sections.Set("description", true)
	out, err = renderer.Render(context.Background(), form, render.RenderOptions{Values: sampleState(), Sections: sections})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(out), `id="sv-description-body" hidden`) {
		t.Fatalf("toggled section should stay expanded")
	}
}

func TestRenderStandaloneInlinesStylesheet(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := renderer.Render(context.Background(), buildForm(t), render.RenderOptions{Standalone: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	if !strings.HasPrefix(strings.TrimSpace(html), "<!DOCTYPE html>") {
		t.Fatalf("standalone output is not a document")
	}
	if !strings.Contains(html, "--sv-accent") {
		t.Fatalf("stylesheet not inlined")
	}
}

func TestRenderHonoursContextCancel(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.Render(ctx, buildForm(t), render.RenderOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}
