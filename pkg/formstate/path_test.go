package formstate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSetCreatesIntermediates(t *testing.T) {
	root := map[string]any{}
	if err := Set(root, "jobs.1.needs", []any{"build"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	want := map[string]any{
		"jobs": []any{nil, map[string]any{"needs": []any{"build"}}},
	}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}

	got, ok := Get(root, "jobs.1.needs.0")
	if !ok || got != "build" {
		t.Fatalf("get returned %v %v", got, ok)
	}
}

func TestSetKeepsNumericMapKeys(t *testing.T) {
	root := map[string]any{"codes": map[string]any{"1": "one", "x": "y"}}
	if err := Set(root, "codes.1", "uno"); err != nil {
		t.Fatalf("set: %v", err)
	}
	want := map[string]any{"codes": map[string]any{"1": "uno", "x": "y"}}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	if got, ok := Get(root, "codes.1"); !ok || got != "uno" {
		t.Fatalf("get returned %v %v", got, ok)
	}
	if err := Set(map[string]any{"jobs": []any{"a"}}, "jobs.name", "x"); err == nil {
		t.Fatalf("expected error for a named segment on a list")
	}
}

func TestSetRejectsScalarCrossing(t *testing.T) {
	root := map[string]any{"name": "repo"}
	if err := Set(root, "name.first", "x"); err == nil {
		t.Fatalf("expected error crossing a scalar")
	}
}

func TestDeleteSplicesSlices(t *testing.T) {
	root := map[string]any{"jobs": []any{"a", "b", "c"}, "env": map[string]any{"K": "v"}}
	if !Delete(root, "jobs.1") {
		t.Fatalf("expected delete to succeed")
	}
	if !Delete(root, "env.K") {
		t.Fatalf("expected map delete to succeed")
	}
	if Delete(root, "missing.key") {
		t.Fatalf("expected delete of missing path to fail")
	}
	want := map[string]any{"jobs": []any{"a", "c"}, "env": map[string]any{}}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestCloneIsDeep(t *testing.T) {
	src := map[string]any{"jobs": []any{map[string]any{"name": "build"}}}
	dup := CloneMap(src)
	dup["jobs"].([]any)[0].(map[string]any)["name"] = "test"
	if src["jobs"].([]any)[0].(map[string]any)["name"] != "build" {
		t.Fatalf("clone shares nested state")
	}
	if CloneMap(nil) == nil {
		t.Fatalf("CloneMap(nil) must return an empty map")
	}
}
