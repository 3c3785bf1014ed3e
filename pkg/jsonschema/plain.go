package jsonschema

import (
	"encoding/json"
	"fmt"
)

// Plain converts decoder output into JSON-compatible values: maps keyed by
// non-string scalars are re-keyed with their string form and json.Number
// becomes float64 or int64.
func Plain(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = Plain(v)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[fmt.Sprint(k)] = Plain(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = Plain(v)
		}
		return out
	case json.Number:
		if i, err := typed.Int64(); err == nil {
			return i
		}
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return typed.String()
	default:
		return typed
	}
}

// Canonical round-trips value through encoding/json so numbers collapse to
// float64 and the tree matches what a JSON client would send.
func Canonical(value any) (any, error) {
	raw, err := json.Marshal(Plain(value))
	if err != nil {
		return nil, fmt.Errorf("jsonschema: canonicalise value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("jsonschema: canonicalise value: %w", err)
	}
	return out, nil
}
