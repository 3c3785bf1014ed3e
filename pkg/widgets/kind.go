package widgets

import (
	"fmt"
	"strings"
)

// Kind enumerates the custom editors a field can be delegated to. KindNone
// leaves the field on the generic controls.
type Kind int

const (
	KindNone Kind = iota
	KindPermissions
	KindKeyValue
	KindNestedSchema
	KindJobSelector
	KindJobMultiSelector
	KindTextarea
)

var kindNames = map[Kind]string{
	KindNone:             "none",
	KindPermissions:      "permissions",
	KindKeyValue:         "key-value",
	KindNestedSchema:     "nested-schema",
	KindJobSelector:      "job-selector",
	KindJobMultiSelector: "job-multi-selector",
	KindTextarea:         "textarea",
}

// widgetAliases maps the names accepted in UI hint documents, including the
// component names used by existing hint files.
var widgetAliases = map[string]Kind{
	"permissions":             KindPermissions,
	"permissionswidget":       KindPermissions,
	"key-value":               KindKeyValue,
	"keyvalue":                KindKeyValue,
	"keyvaluepairfield":       KindKeyValue,
	"keyvaluepairwidget":      KindKeyValue,
	"nested-schema":           KindNestedSchema,
	"json-schema":             KindNestedSchema,
	"jsonschemawidget":        KindNestedSchema,
	"job-selector":            KindJobSelector,
	"jobselectorwidget":       KindJobSelector,
	"job-multi-selector":      KindJobMultiSelector,
	"jobs-selector":           KindJobMultiSelector,
	"jobsarrayselectorwidget": KindJobMultiSelector,
	"textarea":                KindTextarea,

	"text":       KindNone,
	"select":     KindNone,
	"checkbox":   KindNone,
	"checkboxes": KindNone,
	"radio":      KindNone,
	"updown":     KindNone,
}

// String returns the canonical widget name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Custom reports whether the kind replaces the generic control.
func (k Kind) Custom() bool {
	return k != KindNone
}

// ParseKind resolves a widget directive. Unknown names are an error so typos
// in hint documents surface at load time.
func ParseKind(name string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return KindNone, nil
	}
	if kind, ok := widgetAliases[key]; ok {
		return kind, nil
	}
	return KindNone, fmt.Errorf("widgets: unknown widget %q", name)
}
