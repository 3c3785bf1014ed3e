package preview_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-specviz/pkg/preview"
	"github.com/goliatone/go-specviz/pkg/schema"
	"github.com/goliatone/go-specviz/pkg/testsupport"
)

func orderedSchema() *schema.Schema {
	return &schema.Schema{
		Type:          "object",
		PropertyOrder: []string{"name", "jobs"},
		Properties: map[string]*schema.Schema{
			"name": {Type: "string"},
			"jobs": {Type: "array", Items: &schema.Schema{
				Type:          "object",
				PropertyOrder: []string{"name", "needs"},
				Properties: map[string]*schema.Schema{
					"name":  {Type: "string"},
					"needs": {Type: "array", Items: &schema.Schema{Type: "string"}},
				},
			}},
		},
	}
}

func TestRenderYAMLFollowsSchemaOrder(t *testing.T) {
	state := map[string]any{
		"zzz":  true,
		"jobs": []any{map[string]any{"needs": []any{"build"}, "name": "test"}},
		"name": "repo",
	}
	got := preview.Render(state, preview.FormatYAML, orderedSchema())
	want := "name: repo\njobs:\n  - name: test\n    needs:\n      - build\nzzz: true"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("yaml mismatch (-want +got):\n%s", diff)
	}

	var back map[string]any
	if err := yaml.Unmarshal([]byte(got), &back); err != nil {
		t.Fatalf("preview must parse back: %v", err)
	}
	if diff := cmp.Diff(state, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderJSON(t *testing.T) {
	state := map[string]any{"jobs": []any{}, "name": "repo", "env": map[string]any{}}
	got := preview.Render(state, preview.FormatJSON, orderedSchema())
	want := "{\n  \"name\": \"repo\",\n  \"jobs\": [],\n  \"env\": {}\n}"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("json mismatch (-want +got):\n%s", diff)
	}
	var back map[string]any
	if err := json.Unmarshal([]byte(got), &back); err != nil {
		t.Fatalf("preview must parse back: %v", err)
	}
}

func TestRenderFallsBackToEmptyObject(t *testing.T) {
	for name, value := range map[string]any{
		"nil":            nil,
		"empty":          map[string]any{},
		"unserialisable": map[string]any{"f": func() {}},
	} {
		for _, format := range []preview.Format{preview.FormatYAML, preview.FormatJSON} {
			if got := preview.Render(value, format, nil); got != "{}" {
				t.Fatalf("%s/%s: got %q", name, format, got)
			}
		}
	}
}

func TestParseFormat(t *testing.T) {
	if preview.ParseFormat("application/json") != preview.FormatJSON || preview.ParseFormat("") != preview.FormatYAML {
		t.Fatalf("unexpected format mapping")
	}
}

func TestCopyAckExpires(t *testing.T) {
	clock := testsupport.NewManualClock()
	var transitions []bool
	ack := preview.NewCopyAck(func(c bool) { transitions = append(transitions, c) }, debounceClock(clock))
	defer ack.Stop()

	ack.Mark()
	if !ack.Copied() {
		t.Fatalf("expected copied immediately")
	}
	clock.Advance(time.Second)
	ack.Mark()
	clock.Advance(1500 * time.Millisecond)
	if !ack.Copied() {
		t.Fatalf("second copy should extend the window")
	}
	clock.Advance(time.Second)
	if ack.Copied() {
		t.Fatalf("acknowledgement should expire")
	}
	if diff := cmp.Diff([]bool{true, false}, transitions); diff != "" {
		t.Fatalf("transition mismatch (-want +got):\n%s", diff)
	}
}
