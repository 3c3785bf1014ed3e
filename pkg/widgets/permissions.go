package widgets

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-specviz/pkg/schema"
)

// PermissionChoices lists the checkable values of an array field. Choices come
// from items.oneOf[{const,title,description}] or items.enum.
func PermissionChoices(field *schema.Schema) []schema.Choice {
	if field == nil {
		return nil
	}
	if field.Items != nil {
		return field.Items.Choices()
	}
	return field.Choices()
}

// FindChoice matches the string form sent by a checkbox back to the declared
// value.
func FindChoice(choices []schema.Choice, raw string) (any, bool) {
	for _, choice := range choices {
		if ChoiceKey(choice.Value) == raw {
			return choice.Value, true
		}
	}
	return nil, false
}

// ChoiceKey is the string form used for checkbox values and option ids.
func ChoiceKey(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// Checked reports whether value is part of the current selection.
func Checked(current any, value any) bool {
	for _, item := range asList(current) {
		if sameValue(item, value) {
			return true
		}
	}
	return false
}

// TogglePermission flips membership of value. The result holds exactly the
// checked values in their previous order, with new ones appended.
func TogglePermission(current any, value any) []any {
	list := asList(current)
	out := make([]any, 0, len(list)+1)
	removed := false
	for _, item := range list {
		if sameValue(item, value) {
			removed = true
			continue
		}
		out = append(out, item)
	}
	if !removed {
		out = append(out, value)
	}
	return out
}

func asList(value any) []any {
	switch typed := value.(type) {
	case []any:
		return typed
	case []string:
		out := make([]any, len(typed))
		for i, s := range typed {
			out[i] = s
		}
		return out
	}
	return nil
}

// sameValue compares decoded values, treating numeric kinds as equal when
// their float64 values match.
func sameValue(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
