// Package validation checks FormState against the spec document compiled as
// a JSON Schema. Issues are advisory; editing never blocks on them.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	jsv "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-specviz/pkg/jsonschema"
)

const resourceBase = "https://specviz.local/specs/"

// Issue is one validation failure at a dotted FormState path ("" = root).
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Validator validates values against a compiled spec document.
type Validator struct {
	schema  *jsv.Schema
	printer *message.Printer
}

// Compile compiles document (the parsed spec value) under name.
func Compile(name string, document any) (*Validator, error) {
	doc, err := toJSONValue(document)
	if err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}
	url := resourceBase + name + ".json"

	c := jsv.NewCompiler()
	c.DefaultDraft(jsv.Draft2020)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("validation: add %s: %w", name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("validation: compile %s: %w", name, err)
	}
	return &Validator{schema: sch, printer: message.NewPrinter(language.English)}, nil
}

// Validate returns the leaf failures for value, sorted by path. A nil
// validator accepts everything.
func (v *Validator) Validate(value any) []Issue {
	if v == nil || v.schema == nil {
		return nil
	}
	inst, err := toJSONValue(value)
	if err != nil {
		return []Issue{{Message: err.Error()}}
	}
	err = v.schema.Validate(inst)
	if err == nil {
		return nil
	}
	var verr *jsv.ValidationError
	if !errors.As(err, &verr) {
		return []Issue{{Message: err.Error()}}
	}

	var issues []Issue
	v.collect(verr, &issues)
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
	return issues
}

func (v *Validator) collect(verr *jsv.ValidationError, out *[]Issue) {
	if len(verr.Causes) == 0 {
		*out = append(*out, Issue{
			Path:    strings.Join(verr.InstanceLocation, "."),
			Message: verr.ErrorKind.LocalizedString(v.printer),
		})
		return
	}
	for _, cause := range verr.Causes {
		v.collect(cause, out)
	}
}

// Group indexes issues by path.
func Group(issues []Issue) map[string][]string {
	out := make(map[string][]string, len(issues))
	for _, issue := range issues {
		out[issue.Path] = append(out[issue.Path], issue.Message)
	}
	return out
}

func toJSONValue(value any) (any, error) {
	raw, err := json.Marshal(jsonschema.Plain(value))
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return jsv.UnmarshalJSON(bytes.NewReader(raw))
}
