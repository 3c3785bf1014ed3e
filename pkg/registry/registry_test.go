package registry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-specviz/pkg/schema"
)

func TestRegistryLookupAndList(t *testing.T) {
	reg, err := New([]Entry{
		{Name: "repository", Spec: "spec/repository/repository.spec.yaml", UISchema: "spec/repository/repository.ui.schema.yaml"},
		{Name: "compiler", Title: "Compiler", Spec: "fs:spec/compiler/compiler.spec.yaml"},
	}, "/srv/specviz")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	repo, err := reg.Lookup("repository")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if repo.Title != "Repository Spec" {
		t.Fatalf("unexpected default title %q", repo.Title)
	}
	if repo.Document.Location() != "/srv/specviz/spec/repository/repository.spec.yaml" {
		t.Fatalf("unexpected document location %q", repo.Document.Location())
	}
	if !repo.HasHints() {
		t.Fatalf("expected hints for repository")
	}

	compiler, _ := reg.Lookup("compiler")
	if compiler.HasHints() || compiler.Document.Kind() != schema.SourceKindFS {
		t.Fatalf("unexpected compiler descriptor %+v", compiler)
	}

	var names []string
	for _, desc := range reg.List() {
		names = append(names, desc.Name)
	}
	if diff := cmp.Diff([]string{"repository", "compiler"}, names); diff != "" {
		t.Fatalf("list order mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryLookupUnknown(t *testing.T) {
	reg := MustNew(nil, "")
	if _, err := reg.Lookup("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistryRejectsInvalidEntries(t *testing.T) {
	cases := map[string][]Entry{
		"empty name":   {{Spec: "a.yaml"}},
		"duplicate":    {{Name: "a", Spec: "a.yaml"}, {Name: "a", Spec: "b.yaml"}},
		"missing spec": {{Name: "a"}},
		"slash name":   {{Name: "a/b", Spec: "a.yaml"}},
	}
	for name, entries := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := New(entries, ""); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
