package jsonschema

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultMaxRefDepth = 64

// resolvePointer follows a local JSON pointer ("#/$defs/job") from root.
func resolvePointer(root *yaml.Node, ref string) (*yaml.Node, error) {
	if !strings.HasPrefix(ref, "#") {
		return nil, fmt.Errorf("jsonschema resolver: only local refs are supported, got %q", ref)
	}
	pointer := strings.TrimPrefix(ref, "#")
	if pointer == "" {
		return root, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("jsonschema resolver: invalid pointer %q", ref)
	}

	current := deref(root)
	for _, raw := range strings.Split(pointer[1:], "/") {
		segment := strings.ReplaceAll(strings.ReplaceAll(raw, "~1", "/"), "~0", "~")
		switch current.Kind {
		case yaml.MappingNode:
			next := mappingValue(current, segment)
			if next == nil {
				return nil, fmt.Errorf("jsonschema resolver: %q not found", ref)
			}
			current = next
		case yaml.SequenceNode:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(current.Content) {
				return nil, fmt.Errorf("jsonschema resolver: %q not found", ref)
			}
			current = deref(current.Content[idx])
		default:
			return nil, fmt.Errorf("jsonschema resolver: %q not found", ref)
		}
	}
	return current, nil
}

func deref(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	node = deref(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return deref(node.Content[i+1])
		}
	}
	return nil
}
