package template_test

import (
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-specviz/pkg/render/template"
)

func newEngine(t *testing.T) *template.Engine {
	t.Helper()
	files := fstest.MapFS{
		"hello.tmpl":       {Data: []byte("Hello {{ name }}!")},
		"use-global.tmpl":  {Data: []byte("env={{ settings.env }}")},
		"use-filter.tmpl":  {Data: []byte("{{ name|shout }}")},
		"description.tmpl": {Data: []byte("<div>{{ text|markdown }}</div>")},
		"rows.tmpl":        {Data: []byte("{% for r in rows %}{{ r.index }}:{{ r.label }} {% endfor %}{{ items.0.index }} {{ ratio|floatformat:2 }}")},
	}
	engine, err := template.New(template.WithFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngineRenderTemplateWritesToOutputs(t *testing.T) {
	engine := newEngine(t)
	var sb strings.Builder
	got, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, &sb)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Ada!" || sb.String() != got {
		t.Fatalf("unexpected output %q / %q", got, sb.String())
	}
}

func TestEngineGlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{"settings": map[string]any{"env": "staging"}}); err != nil {
		t.Fatalf("global context: %v", err)
	}
	got, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "env=staging" {
		t.Fatalf("got %q", got)
	}
}

func TestEngineRegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	got, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "ADA!" {
		t.Fatalf("got %q", got)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}
}

func TestMarkdownFilterSanitises(t *testing.T) {
	engine := newEngine(t)
	got, err := engine.RenderTemplate("description", map[string]any{
		"text": "Use **bold** <script>alert(1)</script> [docs](https://example.com)",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(got, "<strong>bold</strong>") {
		t.Fatalf("markdown not rendered: %s", got)
	}
	if strings.Contains(got, "<script>") {
		t.Fatalf("script survived sanitising: %s", got)
	}
	if !strings.Contains(got, `href="https://example.com"`) {
		t.Fatalf("link missing: %s", got)
	}
}

func TestContextKeepsIntegers(t *testing.T) {
	engine := newEngine(t)
	type row struct {
		Index int    `json:"index"`
		Label string `json:"label"`
	}
	data := map[string]any{
		"rows":  []row{{Index: 0, Label: "a"}, {Index: 1, Label: "b"}},
		"items": []map[string]any{{"index": 2}},
		"ratio": 0.5,
	}
	got, err := engine.RenderTemplate("rows", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "0:a 1:b 2 0.50" {
		t.Fatalf("got %q", got)
	}
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := template.New(); err == nil {
		t.Fatalf("expected error without templates")
	}
}
