package editor_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-specviz/pkg/draft"
	"github.com/goliatone/go-specviz/pkg/editor"
	"github.com/goliatone/go-specviz/pkg/preview"
	"github.com/goliatone/go-specviz/pkg/testsupport"
	"github.com/goliatone/go-specviz/pkg/validation"
	"github.com/goliatone/go-specviz/pkg/widgets"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingStore struct {
	*draft.MemoryStore
	mu     sync.Mutex
	saves  []any
	failOn int
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: draft.NewMemoryStore()}
}

func (s *countingStore) Save(ctx context.Context, name string, value any) error {
	s.mu.Lock()
	s.saves = append(s.saves, value)
	fail := s.failOn > 0 && len(s.saves) == s.failOn
	s.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return s.MemoryStore.Save(ctx, name, value)
}

func (s *countingStore) Saves() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.saves...)
}

type fixture struct {
	session *editor.Session
	store   *countingStore
	clock   *testsupport.ManualClock
}

func open(t *testing.T, seed any) fixture {
	t.Helper()
	store := newCountingStore()
	if seed != nil {
		if err := store.MemoryStore.Save(context.Background(), "repository", seed); err != nil {
			t.Fatalf("seed draft: %v", err)
		}
	}
	clock := testsupport.NewManualClock()
	session := editor.New(testsupport.MustRepositorySpec(t), store, editor.WithClock(clock))
	if err := session.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(session.Close)
	return fixture{session: session, store: store, clock: clock}
}

func TestOpenSeedsFromDraft(t *testing.T) {
	f := open(t, map[string]any{"name": "svc"})
	if diff := cmp.Diff(map[string]any{"name": "svc"}, f.session.State()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	if f.session.Status() != draft.StatusIdle {
		t.Fatalf("status after open = %q", f.session.Status())
	}

	empty := open(t, nil)
	if diff := cmp.Diff(map[string]any{}, empty.session.State()); diff != "" {
		t.Fatalf("empty state mismatch:\n%s", diff)
	}
}

func TestRapidEditsCoalesceIntoOneWrite(t *testing.T) {
	f := open(t, nil)
	for _, name := range []string{"a", "ab", "abc"} {
		if err := f.session.Set("name", name); err != nil {
			t.Fatalf("set: %v", err)
		}
		if f.session.Status() != draft.StatusSaving {
			t.Fatalf("status after change = %q", f.session.Status())
		}
		f.clock.Advance(time.Second)
	}
	if got := len(f.store.Saves()); got != 0 {
		t.Fatalf("expected no writes inside the window, got %d", got)
	}

	f.clock.Advance(editor.DefaultDebounce)
	saves := f.store.Saves()
	if len(saves) != 1 {
		t.Fatalf("expected exactly one write, got %d", len(saves))
	}
	if diff := cmp.Diff(map[string]any{"name": "abc"}, saves[0]); diff != "" {
		t.Fatalf("persisted value mismatch:\n%s", diff)
	}
	if f.session.Status() != draft.StatusSaved {
		t.Fatalf("status after write = %q", f.session.Status())
	}
}

func TestClearPersistsEmptyObject(t *testing.T) {
	f := open(t, map[string]any{"name": "svc", "jobs": []any{map[string]any{"name": "build"}}})
	if err := f.session.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if diff := cmp.Diff(map[string]any{}, f.session.State()); diff != "" {
		t.Fatalf("state after clear:\n%s", diff)
	}
	f.clock.Advance(editor.DefaultDebounce)

	value, ok, err := f.store.Load(context.Background(), "repository")
	if err != nil || !ok {
		t.Fatalf("load draft: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(map[string]any{}, value); diff != "" {
		t.Fatalf("persisted draft after clear:\n%s", diff)
	}
}

func TestCloseCancelsPendingWrite(t *testing.T) {
	f := open(t, nil)
	if err := f.session.Set("name", "svc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	f.session.Close()
	f.clock.Advance(editor.DefaultDebounce * 2)
	if got := len(f.store.Saves()); got != 0 {
		t.Fatalf("expected no write after close, got %d", got)
	}
	if err := f.session.Set("name", "late"); !errors.Is(err, editor.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestFailedWriteReportsError(t *testing.T) {
	f := open(t, nil)
	f.store.failOn = 1
	_ = f.session.Set("name", "svc")
	f.clock.Advance(editor.DefaultDebounce)
	if f.session.Status() != draft.StatusError {
		t.Fatalf("status = %q, want error", f.session.Status())
	}
}

func TestPreviewRoundTripsState(t *testing.T) {
	f := open(t, map[string]any{
		"name": "svc",
		"env":  map[string]any{"A": "1"},
		"jobs": []any{map[string]any{"name": "build", "needs": []any{}}},
	})
	var decoded any
	if err := yaml.Unmarshal([]byte(f.session.Preview()), &decoded); err != nil {
		t.Fatalf("preview is not yaml: %v", err)
	}
	if diff := cmp.Diff(any(f.session.State()), decoded); diff != "" {
		t.Fatalf("preview round trip mismatch:\n%s", diff)
	}

	f.session.SetFormat(preview.FormatJSON)
	if !strings.HasPrefix(f.session.Preview(), "{") {
		t.Fatalf("expected json preview, got %q", f.session.Preview())
	}
}

func TestEditTextInvalidKeepsLastValue(t *testing.T) {
	f := open(t, map[string]any{"env": map[string]any{"A": "1"}})

	ws, err := f.session.EditText("env", `{"A": `)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if ws.Valid || ws.Message != widgets.MsgInvalidJSON {
		t.Fatalf("unexpected widget state %+v", ws)
	}
	if diff := cmp.Diff(map[string]any{"env": map[string]any{"A": "1"}}, f.session.State()); diff != "" {
		t.Fatalf("invalid edit leaked into state:\n%s", diff)
	}
	if f.session.Status() != draft.StatusIdle {
		t.Fatalf("invalid edit must not schedule a write, status %q", f.session.Status())
	}

	ws, err = f.session.EditText("env", `{"A": "2", "B": true}`)
	if err != nil || !ws.Valid {
		t.Fatalf("valid edit: %+v %v", ws, err)
	}
	got, _ := f.session.State()["env"].(map[string]any)
	if diff := cmp.Diff(map[string]any{"A": "2", "B": true}, got); diff != "" {
		t.Fatalf("env mismatch:\n%s", diff)
	}

	if _, err := f.session.EditText("name", "x"); !errors.Is(err, editor.ErrNotTextWidget) {
		t.Fatalf("expected ErrNotTextWidget, got %v", err)
	}
}

func TestJobSelectorsExcludeOwner(t *testing.T) {
	f := open(t, map[string]any{"jobs": []any{
		map[string]any{"name": "build"},
		map[string]any{"name": "test"},
		map[string]any{"name": "deploy"},
	}})

	if diff := cmp.Diff([]string{"build", "deploy"}, f.session.JobOptions("jobs.1.needs")); diff != "" {
		t.Fatalf("options mismatch:\n%s", diff)
	}
	if err := f.session.AddJob("jobs.1.needs", "test"); !errors.Is(err, widgets.ErrUnknownJob) {
		t.Fatalf("self reference must be rejected, got %v", err)
	}
	for _, key := range []string{"build", "deploy", "build"} {
		if err := f.session.AddJob("jobs.1.needs", key); err != nil {
			t.Fatalf("add %s: %v", key, err)
		}
	}
	if err := f.session.RemoveJob("jobs.1.needs", "build"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := f.session.SelectJob("jobs.2.after", "test"); err != nil {
		t.Fatalf("select: %v", err)
	}

	jobs := f.session.State()["jobs"].([]any)
	if diff := cmp.Diff([]any{"deploy"}, jobs[1].(map[string]any)["needs"]); diff != "" {
		t.Fatalf("needs mismatch:\n%s", diff)
	}
	if got := jobs[2].(map[string]any)["after"]; got != "test" {
		t.Fatalf("after = %v", got)
	}
}

func TestTogglePermission(t *testing.T) {
	f := open(t, map[string]any{"jobs": []any{map[string]any{"name": "build"}}})
	for _, raw := range []string{"contents:read", "contents:write", "contents:read"} {
		if err := f.session.TogglePermission("jobs.0.permissions", raw); err != nil {
			t.Fatalf("toggle %s: %v", raw, err)
		}
	}
	jobs := f.session.State()["jobs"].([]any)
	if diff := cmp.Diff([]any{"contents:write"}, jobs[0].(map[string]any)["permissions"]); diff != "" {
		t.Fatalf("permissions mismatch:\n%s", diff)
	}
	if err := f.session.TogglePermission("jobs.0.permissions", "root"); err == nil {
		t.Fatalf("expected error for undeclared permission")
	}
}

func TestAppendAndRemoveItems(t *testing.T) {
	f := open(t, nil)
	var structural []bool
	cancel := f.session.Subscribe(func(u editor.Update) { structural = append(structural, u.Structural) })
	defer cancel()

	if err := f.session.AppendItem("jobs"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := f.session.AppendItem("jobs"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := f.session.Set("jobs.1.name", "second"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := f.session.RemoveItem("jobs", 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	want := map[string]any{"jobs": []any{map[string]any{"name": "second"}}}
	if diff := cmp.Diff(want, f.session.State()); diff != "" {
		t.Fatalf("state mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]bool{true, true, false, true}, structural); diff != "" {
		t.Fatalf("structural flags mismatch:\n%s", diff)
	}
	if err := f.session.AppendItem("name"); !errors.Is(err, editor.ErrNotAnArray) {
		t.Fatalf("expected ErrNotAnArray, got %v", err)
	}
}

func TestCopyAcknowledgementExpires(t *testing.T) {
	f := open(t, map[string]any{"name": "svc"})
	var copied []bool
	cancel := f.session.Subscribe(func(u editor.Update) { copied = append(copied, u.Copied) })
	defer cancel()

	if text := f.session.Copy(); !strings.Contains(text, "name: svc") {
		t.Fatalf("copy text = %q", text)
	}
	if !f.session.Copied() {
		t.Fatalf("expected copied acknowledgement")
	}
	f.clock.Advance(preview.CopyAckDuration)
	if f.session.Copied() {
		t.Fatalf("acknowledgement should expire")
	}
	if diff := cmp.Diff([]bool{true, false}, copied); diff != "" {
		t.Fatalf("copied notifications mismatch:\n%s", diff)
	}
}

func TestIssuesTrackState(t *testing.T) {
	f := open(t, nil)
	if err := f.session.Set("jobs", []any{map[string]any{"name": 12}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	var found bool
	for _, issue := range f.session.Issues() {
		if issue.Path == "jobs.0.name" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an issue at jobs.0.name, got %+v", f.session.Issues())
	}
}

func TestUnsetAndSetChoice(t *testing.T) {
	f := open(t, map[string]any{
		"name":        "svc",
		"description": "demo",
		"jobs":        []any{map[string]any{"name": "build", "permissions": []any{"contents:read"}}},
	})

	if err := f.session.Unset("description"); err != nil {
		t.Fatalf("unset: %v", err)
	}
	if _, ok := f.session.State()["description"]; ok {
		t.Fatalf("description still present: %#v", f.session.State())
	}

	if err := f.session.SetChoice("jobs.0.permissions.0", "issues:write"); err != nil {
		t.Fatalf("set choice: %v", err)
	}
	jobs := f.session.State()["jobs"].([]any)
	if diff := cmp.Diff([]any{"issues:write"}, jobs[0].(map[string]any)["permissions"]); diff != "" {
		t.Fatalf("permissions mismatch:\n%s", diff)
	}
	if err := f.session.SetChoice("jobs.0.permissions.0", "admin"); err == nil {
		t.Fatalf("expected error for undeclared choice")
	}
}

func TestValidatorOverride(t *testing.T) {
	strict, err := validation.Compile("strict", map[string]any{
		"type":     "object",
		"required": []any{"owner"},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	session := editor.New(testsupport.MustRepositorySpec(t), draft.NewMemoryStore(),
		editor.WithClock(testsupport.NewManualClock()),
		editor.WithValidator(strict),
	)
	if err := session.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer session.Close()

	issues := session.Issues()
	if len(issues) != 1 || issues[0].Path != "" || !strings.Contains(issues[0].Message, "owner") {
		t.Fatalf("expected a single root issue about owner, got %+v", issues)
	}
}
