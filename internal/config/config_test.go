package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-specviz/pkg/registry"
)

const sample = `
addr: ":9000"
debounce: 500ms
specs:
  - name: repository
    spec: specs/repository.yaml
    uiSchema: specs/repository.ui.yaml
draft:
  driver: sqlite
  dsn: drafts.db
theme:
  name: specviz
  variant: dark
watch: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "specviz.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, sample)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.Debounce != 500*time.Millisecond {
		t.Fatalf("unexpected addr/debounce: %s %s", cfg.Addr, cfg.Debounce)
	}
	if cfg.BaseDir != filepath.Dir(path) {
		t.Fatalf("base dir = %s", cfg.BaseDir)
	}
	want := []registry.Entry{{Name: "repository", Spec: "specs/repository.yaml", UISchema: "specs/repository.ui.yaml"}}
	if diff := cmp.Diff(want, cfg.Specs); diff != "" {
		t.Fatalf("specs mismatch (-want +got):\n%s", diff)
	}
	if cfg.Draft.Driver != "sqlite" || !cfg.Watch || cfg.Theme.Variant != "dark" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.WriteTimeout != Default().WriteTimeout {
		t.Fatalf("defaults not kept for unset keys")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, sample)
	t.Setenv("SPECVIZ_DEBOUNCE", "3s")
	t.Setenv("SPECVIZ_DRAFT_DRIVER", "redis")
	t.Setenv("SPECVIZ_REDIS_ADDR", "localhost:6379")
	t.Setenv("SPECVIZ_WATCH", "false")
	t.Setenv("PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Debounce != 3*time.Second || cfg.Draft.Driver != "redis" || cfg.Draft.Redis.Addr != "localhost:6379" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Watch {
		t.Fatalf("SPECVIZ_WATCH=false not applied")
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("PORT override = %s", cfg.Addr)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := writeConfig(t, sample)
	t.Setenv("SPECVIZ_DEBOUNCE", "soon")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected duration parse error")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}
