package orchestrator_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-specviz/pkg/model"
	"github.com/goliatone/go-specviz/pkg/orchestrator"
	"github.com/goliatone/go-specviz/pkg/testsupport"
)

const repositoryPreset = `
title: Repository settings
metadata:
  owner: platform
fields:
  name:
    label: Slug
    placeholder: my-repo
  jobs.items.runner:
    hidden: false
    help: Runner label
  jobs.items.name:
    metadata:
      kind: job-id
`

func buildRepositoryForm(t *testing.T) model.FormModel {
	t.Helper()
	orch := orchestrator.New()
	form, err := orch.Form(context.Background(), testsupport.MustRepositorySpec(t))
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	return form
}

func TestPresetTransformerPatchesFields(t *testing.T) {
	form := buildRepositoryForm(t)
	transformer, err := orchestrator.NewPresetTransformer([]byte(repositoryPreset))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	if err := transformer.Transform(context.Background(), &form); err != nil {
		t.Fatalf("transform: %v", err)
	}

	if form.Title != "Repository settings" {
		t.Fatalf("title = %q", form.Title)
	}
	if diff := cmp.Diff("platform", form.Metadata["owner"]); diff != "" {
		t.Fatalf("metadata mismatch:\n%s", diff)
	}
	name := fieldNamed(form.Fields, "name")
	if name.Label != "Slug" || name.Placeholder != "my-repo" {
		t.Fatalf("name not patched: %#v", name)
	}
	jobs := fieldNamed(form.Fields, "jobs")
	runner := fieldNamed(jobs.Items.Nested, "runner")
	if runner.Hidden || runner.Help != "Runner label" {
		t.Fatalf("runner not patched: %#v", runner)
	}
	if got := fieldNamed(jobs.Items.Nested, "name").Metadata["kind"]; got != "job-id" {
		t.Fatalf("job name metadata = %q", got)
	}
}

func TestPresetTransformerRejectsUnknownPath(t *testing.T) {
	form := buildRepositoryForm(t)
	transformer, err := orchestrator.NewPresetTransformer([]byte("fields:\n  jobs.items.nope:\n    label: X\n"))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	err = transformer.Transform(context.Background(), &form)
	if err == nil || !strings.Contains(err.Error(), `"jobs.items.nope"`) {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestPresetTransformerFromFS(t *testing.T) {
	files := fstest.MapFS{"presets/repo.yaml": {Data: []byte(repositoryPreset)}}
	if _, err := orchestrator.NewPresetTransformerFromFS(files, "presets/repo.yaml"); err != nil {
		t.Fatalf("load preset: %v", err)
	}
	if _, err := orchestrator.NewPresetTransformerFromFS(files, "presets/missing.yaml"); err == nil {
		t.Fatalf("expected missing preset error")
	}
	if _, err := orchestrator.NewPresetTransformer([]byte("  \n")); err == nil {
		t.Fatalf("expected empty document error")
	}
}
