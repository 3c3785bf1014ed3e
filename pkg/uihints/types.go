package uihints

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-specviz/pkg/widgets"
)

// Hints is the parsed presentation document for one spec. The zero value
// means "no hints" and is valid.
type Hints struct {
	SubmitHidden bool
	Root         FieldHints
	Fields       map[string]FieldHints
}

// FieldHints carries presentation directives for one field path.
type FieldHints struct {
	Widget      widgets.Kind
	Hidden      bool
	Title       string
	Description string
	Help        string
	Placeholder string
	Classes     string
	Order       []string
	Options     map[string]any
}

// Lookup returns the hints for a concrete field path. Array indices in path
// ("jobs.2.needs") match the `items` entries of the hint document.
func (h Hints) Lookup(path string) (FieldHints, bool) {
	if path == "" {
		return h.Root, true
	}
	if h.Fields == nil {
		return FieldHints{}, false
	}
	hints, ok := h.Fields[NormalizePath(path)]
	return hints, ok
}

// Option returns a string ui:options entry.
func (f FieldHints) Option(key string) string {
	if f.Options == nil {
		return ""
	}
	if value, ok := f.Options[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

// NormalizePath rewrites numeric path segments to `items`.
func NormalizePath(path string) string {
	segments := strings.Split(strings.Trim(path, "."), ".")
	for i, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			segments[i] = itemsKey
		}
	}
	return strings.Join(segments, ".")
}
