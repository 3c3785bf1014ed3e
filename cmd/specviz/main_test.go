package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-specviz/pkg/draft"
	"github.com/goliatone/go-specviz/pkg/renderers/tui"
	"github.com/goliatone/go-specviz/pkg/testsupport"
)

const serviceSpec = `type: object
title: Service
required: [name]
properties:
  name:
    type: string
    minLength: 1
  replicas:
    type: integer
    minimum: 1
`

type workspace struct {
	dir    string
	config string
	dsn    string
}

func newWorkspace(t *testing.T, hints string) workspace {
	t.Helper()
	dir := t.TempDir()
	write := func(name string, data []byte) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("service.spec.yaml", []byte(serviceSpec))
	write("repository.spec.yaml", testsupport.MustReadFixture(t, "repository.spec.yaml"))
	if hints == "" {
		hints = string(testsupport.MustReadFixture(t, "repository.ui.schema.yaml"))
	}
	write("repository.ui.schema.yaml", []byte(hints))

	dsn := "file:" + filepath.Join(dir, "drafts.db")
	write("specviz.yaml", []byte(`specs:
  - name: service
    spec: service.spec.yaml
  - name: repository
    title: Repository
    spec: repository.spec.yaml
    uiSchema: repository.ui.schema.yaml
draft:
  driver: sqlite
  dsn: "`+dsn+`"
log:
  mode: production
`))
	return workspace{dir: dir, config: filepath.Join(dir, "specviz.yaml"), dsn: dsn}
}

func (w workspace) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", w.config}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (w workspace) seed(t *testing.T, name string, value any) {
	t.Helper()
	store, err := draft.OpenSQLite(context.Background(), w.dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	if err := store.Save(context.Background(), name, value); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestListPrintsRegisteredSpecs(t *testing.T) {
	w := newWorkspace(t, "")
	out, _, err := w.run(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two specs, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[1], "service") || !strings.Contains(lines[1], "Service Spec") {
		t.Fatalf("service row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "repository.ui.schema.yaml") {
		t.Fatalf("repository row should show its hints: %q", lines[2])
	}
}

func TestExportDocument(t *testing.T) {
	w := newWorkspace(t, "")

	out, _, err := w.run(t, "export", "service")
	if err != nil {
		t.Fatalf("export yaml: %v", err)
	}
	if out != serviceSpec {
		t.Fatalf("yaml export should be the document text, got:\n%s", out)
	}

	out, _, err = w.run(t, "export", "service", "--format", "json")
	if err != nil {
		t.Fatalf("export json: %v", err)
	}
	if !strings.Contains(out, `"required": [`) || !strings.Contains(out, `"minimum": 1`) {
		t.Fatalf("json export:\n%s", out)
	}

	if _, _, err := w.run(t, "export", "missing"); err == nil {
		t.Fatalf("expected an error for an unknown spec")
	}
}

func TestExportDraft(t *testing.T) {
	w := newWorkspace(t, "")

	out, _, err := w.run(t, "export", "service", "--draft")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if strings.TrimSpace(out) != "{}" {
		t.Fatalf("missing draft should export as {}, got %q", out)
	}

	w.seed(t, "service", map[string]any{"replicas": 3, "name": "api"})
	target := filepath.Join(w.dir, "service.out.yaml")
	if _, _, err := w.run(t, "export", "service", "--draft", "-o", target); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if diff := cmp.Diff("name: api\nreplicas: 3\n", string(data)); diff != "" {
		t.Fatalf("draft export mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderStandaloneAndPreset(t *testing.T) {
	w := newWorkspace(t, "")

	out, _, err := w.run(t, "render", "repository")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "<!DOCTYPE html>") {
		t.Fatalf("expected a standalone document")
	}

	preset := filepath.Join(w.dir, "preset.yaml")
	if err := os.WriteFile(preset, []byte("fields:\n  name:\n    label: Repository slug\n"), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	out, _, err = w.run(t, "render", "repository", "--fragment", "--preset", preset)
	if err != nil {
		t.Fatalf("render with preset: %v", err)
	}
	if strings.Contains(out, "<!DOCTYPE html>") {
		t.Fatalf("fragment should not be wrapped")
	}
	if !strings.Contains(out, "Repository slug") {
		t.Fatalf("preset label missing:\n%s", out)
	}
}

func TestCheck(t *testing.T) {
	w := newWorkspace(t, "")
	out, _, err := w.run(t, "check")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	for _, want := range []string{"OK: service", "OK: repository"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}

	w.seed(t, "service", map[string]any{"name": "api", "replicas": 0})
	_, stderr, err := w.run(t, "check", "--drafts", "service")
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("expected check failure, got %v", err)
	}
	if !strings.Contains(stderr, "service: draft:replicas") {
		t.Fatalf("draft issue not reported:\n%s", stderr)
	}
}

func TestCheckReportsStrayHints(t *testing.T) {
	w := newWorkspace(t, "name:\n  ui:title: Name\nnope:\n  ui:widget: hidden\n")
	_, stderr, err := w.run(t, "check", "repository")
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("expected check failure, got %v", err)
	}
	if !strings.Contains(stderr, "repository: ui:nope") {
		t.Fatalf("stray hint not reported:\n%s", stderr)
	}
	if strings.Contains(stderr, "ui:name ") {
		t.Fatalf("declared path reported:\n%s", stderr)
	}
}

// defaultsDriver accepts every prompt's default.
type defaultsDriver struct{ info []string }

func (d *defaultsDriver) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	return cfg.Default, nil
}

func (d *defaultsDriver) Password(_ context.Context, cfg tui.InputConfig) (string, error) {
	return cfg.Default, nil
}

func (d *defaultsDriver) Confirm(_ context.Context, cfg tui.ConfirmConfig) (bool, error) {
	return cfg.Default, nil
}

func (d *defaultsDriver) Select(_ context.Context, cfg tui.SelectConfig) (int, error) {
	return cfg.DefaultIndex, nil
}

func (d *defaultsDriver) MultiSelect(_ context.Context, cfg tui.SelectConfig) ([]int, error) {
	return cfg.Defaults, nil
}

func (d *defaultsDriver) TextArea(_ context.Context, cfg tui.TextAreaConfig) (string, error) {
	return cfg.Default, nil
}

func (d *defaultsDriver) Info(_ context.Context, msg string) error {
	d.info = append(d.info, msg)
	return nil
}

func TestFillResumesAndSavesDraft(t *testing.T) {
	w := newWorkspace(t, "")
	w.seed(t, "service", map[string]any{"name": "api", "replicas": 2})

	a, err := newApp(&rootFlags{configPath: w.config, logMode: "production"})
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	driver := &defaultsDriver{}
	if err := runFill(cmd, a, "service", fillOptions{format: "yaml", resume: true, save: true, driver: driver}); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if diff := cmp.Diff("name: api\nreplicas: 2\n", stdout.String()); diff != "" {
		t.Fatalf("fill output mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(stderr.String(), "Draft saved for service") {
		t.Fatalf("save not reported: %s", stderr.String())
	}
	if len(driver.info) == 0 || driver.info[0] != "Service" {
		t.Fatalf("form title not announced: %v", driver.info)
	}
}
