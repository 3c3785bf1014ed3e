// Package testsupport bundles fixtures and fakes shared by package tests.
package testsupport

import (
	"embed"
	"testing"

	"github.com/goliatone/go-specviz/pkg/registry"
	"github.com/goliatone/go-specviz/pkg/schema"
	"github.com/goliatone/go-specviz/pkg/specs"
	"github.com/goliatone/go-specviz/pkg/uihints"
)

//go:embed testdata/*.yaml
var fixtures embed.FS

// Fixtures exposes the embedded fixture bundle.
func Fixtures() embed.FS {
	return fixtures
}

// RepositoryEntries registers the repository fixture (with hints) and a
// hint-less variant of the same document.
func RepositoryEntries() []registry.Entry {
	return []registry.Entry{
		{Name: "repository", Spec: "fs:testdata/repository.spec.yaml", UISchema: "fs:testdata/repository.ui.schema.yaml"},
		{Name: "plain", Title: "Plain", Spec: "fs:testdata/repository.spec.yaml"},
	}
}

// NewLoader returns a spec loader serving the embedded fixtures.
func NewLoader(t testing.TB) *specs.Loader {
	t.Helper()
	reg, err := registry.New(RepositoryEntries(), "")
	if err != nil {
		t.Fatalf("testsupport: registry: %v", err)
	}
	return specs.NewLoader(reg, specs.WithFileSystem(fixtures))
}

// MustRepositorySpec parses the repository fixture with its hints.
func MustRepositorySpec(t testing.TB) specs.Spec {
	t.Helper()
	raw := MustReadFixture(t, "repository.spec.yaml")
	hintsRaw := MustReadFixture(t, "repository.ui.schema.yaml")
	hints, err := uihints.Parse(hintsRaw, schema.FormatYAML)
	if err != nil {
		t.Fatalf("testsupport: hints: %v", err)
	}
	spec, err := specs.FromBytes("repository", raw, schema.FormatYAML, hints)
	if err != nil {
		t.Fatalf("testsupport: spec: %v", err)
	}
	spec.Title = "Repository Spec"
	return spec
}

// MustSpec parses doc (and optional hints) as YAML.
func MustSpec(t testing.TB, name, doc, hintsDoc string) specs.Spec {
	t.Helper()
	var hints uihints.Hints
	if hintsDoc != "" {
		var err error
		if hints, err = uihints.Parse([]byte(hintsDoc), schema.FormatYAML); err != nil {
			t.Fatalf("testsupport: hints: %v", err)
		}
	}
	spec, err := specs.FromBytes(name, []byte(doc), schema.FormatYAML, hints)
	if err != nil {
		t.Fatalf("testsupport: spec: %v", err)
	}
	return spec
}

// MustReadFixture returns the bytes of a testdata file.
func MustReadFixture(t testing.TB, name string) []byte {
	t.Helper()
	data, err := fixtures.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("testsupport: read fixture %s: %v", name, err)
	}
	return data
}
