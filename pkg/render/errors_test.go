package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-specviz/pkg/model"
	"github.com/goliatone/go-specviz/pkg/render"
	"github.com/goliatone/go-specviz/pkg/validation"
	"github.com/goliatone/go-specviz/pkg/widgets"
)

func TestMapIssues(t *testing.T) {
	form := model.FormModel{
		Fields: []model.Field{
			{Name: "name", Path: "name", Type: model.FieldTypeString},
			{Name: "env", Path: "env", Type: model.FieldTypeObject, Widget: widgets.KindKeyValue},
			{
				Name: "jobs",
				Path: "jobs",
				Type: model.FieldTypeArray,
				Items: &model.Field{
					Name: "jobs",
					Path: "jobs.items",
					Type: model.FieldTypeObject,
					Nested: []model.Field{
						{Name: "name", Path: "jobs.items.name", Type: model.FieldTypeString},
					},
				},
			},
		},
	}

	mapped := render.MapIssues(form, []validation.Issue{
		{Path: "name", Message: "too short"},
		{Path: "name", Message: " too short "},
		{Path: "env.A", Message: "must be string"},
		{Path: "jobs.1.name", Message: "required"},
		{Path: "jobs.1.extra", Message: "not allowed"},
		{Path: "", Message: "missing property 'name'"},
		{Path: "unknown", Message: "stray"},
	})

	wantFields := map[string][]string{
		"name":        {"too short"},
		"env":         {"must be string"},
		"jobs.1.name": {"required"},
		"jobs.1":      {"not allowed"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	wantForm := []string{"missing property 'name'", "stray"}
	if diff := cmp.Diff(wantForm, mapped.Form); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
