package widgets

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-specviz/pkg/schema"
)

func TestParseKind(t *testing.T) {
	for name, want := range map[string]Kind{
		"PermissionsWidget":       KindPermissions,
		"keyvaluepairfield":       KindKeyValue,
		"JSONSchemaWidget":        KindNestedSchema,
		"JobSelectorWidget":       KindJobSelector,
		"JobsArraySelectorWidget": KindJobMultiSelector,
		"textarea":                KindTextarea,
		"select":                  KindNone,
		"":                        KindNone,
	} {
		got, err := ParseKind(name)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	if _, err := ParseKind("Sparkles"); err == nil {
		t.Fatalf("expected error for unknown widget")
	}
}

func TestTogglePermission(t *testing.T) {
	got := TogglePermission(nil, "contents:read")
	got = TogglePermission(got, "issues:write")
	got = TogglePermission(got, "contents:read")
	if diff := cmp.Diff([]any{"issues:write"}, got); diff != "" {
		t.Fatalf("toggle mismatch (-want +got):\n%s", diff)
	}
	if !Checked(got, "issues:write") || Checked(got, "contents:read") {
		t.Fatalf("checked state wrong for %v", got)
	}
	if got := TogglePermission([]any{float64(1)}, 1); len(got) != 0 {
		t.Fatalf("numeric kinds should compare equal, got %v", got)
	}
}

func TestPermissionChoicesFromEnum(t *testing.T) {
	field := &schema.Schema{Type: "array", Items: &schema.Schema{Enum: []any{"read", "write"}}}
	choices := PermissionChoices(field)
	if len(choices) != 2 || choices[1].Label != "write" {
		t.Fatalf("unexpected choices %+v", choices)
	}
	if v, ok := FindChoice(choices, "read"); !ok || v != "read" {
		t.Fatalf("FindChoice failed: %v %v", v, ok)
	}
}

func TestKeyValueEditorStates(t *testing.T) {
	ed := NewKeyValueEditor(map[string]any{"A": "1"})

	cases := []struct {
		text    string
		message string
	}{
		{"", MsgEmptyContent},
		{"{", MsgInvalidJSON},
		{"[1,2]", MsgNotAnObject},
		{`{"a": {"b": 1}}`, `Value for key "a" must be a string, number, boolean, or null`},
		{`{"a": 1} {}`, MsgInvalidJSON},
	}
	for _, tc := range cases {
		state, changed := ed.Edit(tc.text)
		if changed || state.Valid() {
			t.Fatalf("edit %q should be rejected", tc.text)
		}
		if ed.Message() != tc.message {
			t.Fatalf("edit %q: message %q, want %q", tc.text, ed.Message(), tc.message)
		}
		if diff := cmp.Diff(map[string]any{"A": "1"}, state.Last()); diff != "" {
			t.Fatalf("last value must survive invalid edits (-want +got):\n%s", diff)
		}
	}

	state, changed := ed.Edit(`{"A": "2", "B": true, "C": null}`)
	if !changed || !state.Valid() || ed.Message() != "" {
		t.Fatalf("expected valid edit, got %+v", state)
	}
	want := "{\n  \"A\": \"2\",\n  \"B\": true,\n  \"C\": null\n}"
	if ed.Text() != want {
		t.Fatalf("formatted text mismatch:\n%s", ed.Text())
	}
}

func TestSchemaEditorIgnoresEmptyText(t *testing.T) {
	ed := NewSchemaEditor(map[string]any{"type": "string"})
	if _, changed := ed.Edit("   "); changed {
		t.Fatalf("empty text must not publish")
	}
	if !ed.State().Valid() {
		t.Fatalf("empty text must keep the valid state")
	}
	if _, changed := ed.Edit("{nope"); changed || ed.Message() != MsgInvalidJSON {
		t.Fatalf("expected invalid json state, message %q", ed.Message())
	}
	inv, ok := ed.State().(Invalid)
	if !ok || inv.Pending != "{nope" {
		t.Fatalf("expected pending text to be kept, got %#v", ed.State())
	}
	if _, changed := ed.Edit(`[1]`); !changed {
		t.Fatalf("arrays are valid nested values")
	}
	if NewKeyValueEditor(nil).Text() != "{}" {
		t.Fatalf("empty key-value editor must show {}")
	}
}

func TestJobOptionsExcludeOwner(t *testing.T) {
	state := map[string]any{
		"jobs": []any{
			map[string]any{"name": "build"},
			map[string]any{"name": "test"},
			map[string]any{"name": ""},
			map[string]any{"name": "deploy"},
		},
	}
	got := JobOptions(state, "jobs.1.needs", "")
	if diff := cmp.Diff([]string{"build", "deploy"}, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	dupes := map[string]any{
		"jobs": []any{
			map[string]any{"name": "build"},
			map[string]any{"name": "test"},
			map[string]any{"name": "build"},
		},
	}
	if diff := cmp.Diff([]string{"test"}, JobOptions(dupes, "jobs.0.needs", "")); diff != "" {
		t.Fatalf("duplicate owner name offered (-want +got):\n%s", diff)
	}
	if got := JobOptions(map[string]any{}, "jobs.0.needs", "jobs"); len(got) != 0 {
		t.Fatalf("expected no options without jobs, got %v", got)
	}
	if idx, ok := OwnerIndex("pipeline.jobs.4.needs", "pipeline.jobs"); !ok || idx != 4 {
		t.Fatalf("owner index = %d %v", idx, ok)
	}
}

func TestJobSelectionEdits(t *testing.T) {
	options := []string{"build", "deploy"}
	if _, err := SelectJob(options, "test"); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("expected ErrUnknownJob, got %v", err)
	}
	sel, err := AddJob(nil, options, "build")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	sel, _ = AddJob(sel, options, "build")
	sel, _ = AddJob(sel, options, "deploy")
	if diff := cmp.Diff([]any{"build", "deploy"}, sel); diff != "" {
		t.Fatalf("add mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"deploy"}, RemoveJob(sel, "build")); diff != "" {
		t.Fatalf("remove mismatch (-want +got):\n%s", diff)
	}
}

func TestPreviewCacheHitsByContent(t *testing.T) {
	cache, err := NewPreviewCache(4)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	calls := 0
	render := func(fragment *schema.Schema) ([]byte, error) {
		calls++
		return []byte(fragment.Type), nil
	}
	fragment := map[string]any{"type": "object"}
	for i := 0; i < 3; i++ {
		out, err := cache.Preview(fragment, render)
		if err != nil || string(out) != "object" {
			t.Fatalf("preview: %q %v", out, err)
		}
	}
	if calls != 1 || cache.Len() != 1 {
		t.Fatalf("expected one render and one entry, got %d calls %d entries", calls, cache.Len())
	}
	if _, err := cache.Preview("not a schema", render); err == nil {
		t.Fatalf("expected error for scalar fragment")
	}
}
