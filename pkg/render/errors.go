package render

import (
	"strings"

	"github.com/goliatone/go-specviz/pkg/formstate"
	"github.com/goliatone/go-specviz/pkg/model"
	"github.com/goliatone/go-specviz/pkg/uihints"
	"github.com/goliatone/go-specviz/pkg/validation"
)

// ErrorMapping splits validation issues into field-level messages keyed by
// concrete FormState path and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapIssues attaches each issue to the deepest rendered field on its path.
// Issues below a custom widget land on the widget; root issues and paths no
// field covers become form-level messages.
func MapIssues(form model.FormModel, issues []validation.Issue) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(issues) == 0 {
		mapping.Fields = nil
		return mapping
	}

	fieldPaths := make(map[string]struct{})
	collectFieldPaths(form.Fields, fieldPaths)

	for _, issue := range issues {
		message := strings.TrimSpace(issue.Message)
		if message == "" {
			continue
		}
		mapped := longestMatchingPath(formstate.Split(issue.Path), fieldPaths)
		if mapped == "" {
			mapping.Form = append(mapping.Form, message)
			continue
		}
		mapping.Fields[mapped] = append(mapping.Fields[mapped], message)
	}

	for path, messages := range mapping.Fields {
		mapping.Fields[path] = normalizeMessages(messages)
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// longestMatchingPath returns the longest concrete prefix of segments whose
// items-normalised form is a rendered field path.
func longestMatchingPath(segments []string, fieldPaths map[string]struct{}) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := fieldPaths[uihints.NormalizePath(candidate)]; ok {
			return candidate
		}
	}
	return ""
}

func collectFieldPaths(fields []model.Field, dest map[string]struct{}) {
	for _, field := range fields {
		if field.Path == "" {
			continue
		}
		dest[field.Path] = struct{}{}
		if field.Widget.Custom() {
			continue
		}
		collectFieldPaths(field.Nested, dest)
		if field.Items != nil {
			collectFieldPaths([]model.Field{*field.Items}, dest)
		}
	}
}
