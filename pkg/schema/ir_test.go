package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOrderedPropertiesKeepsDeclaredOrder(t *testing.T) {
	s := &Schema{
		Properties: map[string]*Schema{
			"zeta":  {Type: "string"},
			"alpha": {Type: "string"},
			"mid":   {Type: "string"},
			"extra": {Type: "string"},
		},
		PropertyOrder: []string{"zeta", "alpha", "mid"},
	}

	var names []string
	for _, prop := range s.OrderedProperties() {
		names = append(names, prop.Name)
	}
	want := []string{"zeta", "alpha", "mid", "extra"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestChoicesPreferOneOfConst(t *testing.T) {
	s := &Schema{
		Enum: []any{"ignored"},
		OneOf: []*Schema{
			{Const: "contents:read", Title: "Read contents", Description: "Clone"},
			{Const: "issues:write"},
		},
	}
	want := []Choice{
		{Value: "contents:read", Label: "Read contents", Description: "Clone"},
		{Value: "issues:write", Label: "issues:write"},
	}
	if diff := cmp.Diff(want, s.Choices()); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSource(t *testing.T) {
	src, err := ParseSource("spec/repo.yaml", "/etc/specviz")
	if err != nil {
		t.Fatalf("parse file source: %v", err)
	}
	if src.Kind() != SourceKindFile || src.Location() != "/etc/specviz/spec/repo.yaml" {
		t.Fatalf("unexpected file source %s %s", src.Kind(), src.Location())
	}

	src, err = ParseSource("fs:spec/repo.yaml", "/ignored")
	if err != nil || src.Kind() != SourceKindFS || src.Location() != "spec/repo.yaml" {
		t.Fatalf("unexpected fs source %v %v", src, err)
	}

	src, err = ParseSource("https://example.com/x.yaml", "/ignored")
	if err != nil || src.Kind() != SourceKindURL {
		t.Fatalf("unexpected url source %v %v", src, err)
	}
	if _, err := ParseSource("  ", ""); err == nil {
		t.Fatalf("expected error for empty location")
	}
}

func TestDocumentFormat(t *testing.T) {
	doc := MustNewDocument(SourceFromFile("a.txt"), []byte(` {"type":"object"}`))
	if doc.Format() != FormatJSON {
		t.Fatalf("expected json sniffing, got %s", doc.Format())
	}
	doc = MustNewDocument(SourceFromFile("a.yml"), []byte(`{}`))
	if doc.Format() != FormatYAML {
		t.Fatalf("expected yaml by extension, got %s", doc.Format())
	}
}

func TestAtWalksItems(t *testing.T) {
	needs := &Schema{Type: "array"}
	root := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"jobs": {Type: "array", Items: &Schema{
				Type:       "object",
				Properties: map[string]*Schema{"needs": needs},
			}},
		},
	}
	if got := root.At("jobs.2.needs"); got != needs {
		t.Fatalf("At(jobs.2.needs) = %+v", got)
	}
	if got := root.At("jobs.items.needs"); got != needs {
		t.Fatalf("At(jobs.items.needs) = %+v", got)
	}
	if got := root.At(""); got != root {
		t.Fatalf("At(\"\") should return the root")
	}
	if got := root.At("missing.field"); got != nil {
		t.Fatalf("expected nil for unknown path, got %+v", got)
	}
}
