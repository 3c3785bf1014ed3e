package components

import (
	"fmt"
	"strconv"
	"strings"
)

// ControlID derives a DOM id from a concrete field path.
func ControlID(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "sv-root"
	}
	return "sv-" + strings.ReplaceAll(trimmed, ".", "-")
}

// LabelID is the id of the label or legend describing path.
func LabelID(path string) string {
	return ControlID(path) + "-label"
}

// SanitizeClassList drops reserved sv- tokens from user supplied classes.
func SanitizeClassList(value string) string {
	tokens := strings.Fields(value)
	keep := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, "sv-") {
			continue
		}
		keep = append(keep, token)
	}
	return strings.Join(keep, " ")
}

// ScalarText renders a leaf value for an input's value attribute.
func ScalarText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
