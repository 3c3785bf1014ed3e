// Package formstate holds the helpers used to read and write FormState trees
// addressed by dotted paths ("jobs.2.needs").
package formstate

import (
	"fmt"
	"strconv"
	"strings"
)

// Clone deep-copies maps and slices; other values are shared.
func Clone(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = Clone(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = Clone(v)
		}
		return out
	default:
		return typed
	}
}

// CloneMap returns a deep copy of root, never nil.
func CloneMap(root map[string]any) map[string]any {
	if root == nil {
		return map[string]any{}
	}
	return Clone(root).(map[string]any)
}

// Split breaks a dotted path into segments.
func Split(path string) []string {
	path = strings.Trim(path, ".")
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Join builds a dotted path.
func Join(segments ...string) string {
	var parts []string
	for _, s := range segments {
		if s = strings.Trim(s, "."); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ".")
}

// Get walks root along path.
func Get(root map[string]any, path string) (any, bool) {
	segments := Split(path)
	if root == nil || len(segments) == 0 {
		return nil, false
	}
	var current any = root
	for _, segment := range segments {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Set writes value at path, creating intermediate maps and growing slices as
// needed. Numeric segments index slices and missing containers; inside an
// existing map they are plain keys.
func Set(root map[string]any, path string, value any) error {
	if root == nil {
		return fmt.Errorf("formstate: root map is nil")
	}
	segments := Split(path)
	if len(segments) == 0 {
		return fmt.Errorf("formstate: empty path")
	}
	_, err := setIn(root, segments, value, path)
	return err
}

func setIn(container any, segments []string, value any, path string) (any, error) {
	segment := segments[0]
	last := len(segments) == 1

	switch node := container.(type) {
	case map[string]any:
		return setKey(node, segments, value, path)
	case []any, nil:
		idx, err := strconv.Atoi(segment)
		if err != nil {
			if node == nil {
				return setKey(make(map[string]any), segments, value, path)
			}
			return nil, fmt.Errorf("formstate: %q indexes a list with %q", path, segment)
		}
		if idx < 0 {
			return nil, fmt.Errorf("formstate: negative index in path %q", path)
		}
		list, _ := container.([]any)
		if len(list) <= idx {
			list = append(list, make([]any, idx+1-len(list))...)
		}
		if last {
			list[idx] = value
			return list, nil
		}
		child, err := setIn(list[idx], segments[1:], value, path)
		if err != nil {
			return nil, err
		}
		list[idx] = child
		return list, nil
	default:
		return nil, fmt.Errorf("formstate: %q crosses a %T", path, container)
	}
}

// setKey treats the head segment as a map key, numeric or not.
func setKey(obj map[string]any, segments []string, value any, path string) (any, error) {
	segment := segments[0]
	if len(segments) == 1 {
		obj[segment] = value
		return obj, nil
	}
	child, err := setIn(obj[segment], segments[1:], value, path)
	if err != nil {
		return nil, err
	}
	obj[segment] = child
	return obj, nil
}

// Delete removes the entry at path. Slice elements are spliced out.
func Delete(root map[string]any, path string) bool {
	segments := Split(path)
	if root == nil || len(segments) == 0 {
		return false
	}
	parentPath := strings.Join(segments[:len(segments)-1], ".")
	key := segments[len(segments)-1]

	if parentPath == "" {
		if _, ok := root[key]; !ok {
			return false
		}
		delete(root, key)
		return true
	}
	parent, ok := Get(root, parentPath)
	if !ok {
		return false
	}
	switch node := parent.(type) {
	case map[string]any:
		if _, ok := node[key]; !ok {
			return false
		}
		delete(node, key)
		return true
	case []any:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(node) {
			return false
		}
		spliced := append(append([]any(nil), node[:idx]...), node[idx+1:]...)
		return Set(root, parentPath, spliced) == nil
	}
	return false
}
