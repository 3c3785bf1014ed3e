package validation

import (
	"testing"

	"github.com/goliatone/go-specviz/pkg/jsonschema"
	"github.com/goliatone/go-specviz/pkg/schema"
)

const spec = `
type: object
required: [name]
properties:
  name: {type: string, minLength: 1}
  jobs:
    type: array
    items:
      type: object
      properties:
        timeout: {type: integer, minimum: 1}
`

func compile(t *testing.T) *Validator {
	t.Helper()
	parsed, err := jsonschema.Parse([]byte(spec), schema.FormatYAML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v, err := Compile("repository", parsed.Value)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return v
}

func TestValidateReportsLeafPaths(t *testing.T) {
	v := compile(t)

	issues := v.Validate(map[string]any{
		"name": "",
		"jobs": []any{map[string]any{"timeout": 0}},
	})
	grouped := Group(issues)
	if len(grouped["name"]) != 1 {
		t.Fatalf("expected a minLength issue on name, got %+v", issues)
	}
	if len(grouped["jobs.0.timeout"]) != 1 {
		t.Fatalf("expected a minimum issue on jobs.0.timeout, got %+v", issues)
	}
}

func TestValidateMissingRequired(t *testing.T) {
	issues := compile(t).Validate(map[string]any{})
	if len(issues) != 1 || issues[0].Path != "" || issues[0].Message == "" {
		t.Fatalf("expected one root issue, got %+v", issues)
	}
}

func TestValidateAcceptsValidState(t *testing.T) {
	if issues := compile(t).Validate(map[string]any{"name": "repo"}); len(issues) != 0 {
		t.Fatalf("unexpected issues %+v", issues)
	}
	var nilValidator *Validator
	if issues := nilValidator.Validate(map[string]any{}); issues != nil {
		t.Fatalf("nil validator must accept everything")
	}
}

func TestCompileRejectsBrokenSchema(t *testing.T) {
	if _, err := Compile("broken", map[string]any{"type": 12}); err == nil {
		t.Fatalf("expected compile error")
	}
}
