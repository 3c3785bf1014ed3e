package jsonschema

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-specviz/pkg/schema"
)

var liftedKeywords = map[string]struct{}{
	"$schema": {}, "$id": {}, "$defs": {}, "definitions": {}, "$ref": {}, "$comment": {},
	"type": {}, "format": {}, "title": {}, "description": {}, "default": {}, "const": {}, "enum": {},
	"required": {}, "properties": {}, "items": {}, "oneOf": {}, "anyOf": {},
	"minimum": {}, "maximum": {}, "exclusiveMinimum": {}, "exclusiveMaximum": {},
	"minLength": {}, "maxLength": {}, "minItems": {}, "maxItems": {}, "pattern": {}, "uniqueItems": {},
}

// Normalize converts a parsed document into the schema IR, resolving local
// $ref pointers. Recursive references stop at the first repetition and leave
// a stub carrying only Ref.
func Normalize(doc *Parsed) (*schema.Schema, error) {
	if doc == nil || doc.Node == nil {
		return nil, ErrEmptyDocument
	}
	n := &normalizer{root: doc.Node, inStack: make(map[string]struct{})}
	return n.schemaFrom(doc.Node, "#")
}

// NormalizeValue builds the IR from an in-memory value, used for nested
// schema fragments edited as text. Map key order is not recoverable here so
// properties come out alphabetically.
func NormalizeValue(value any) (*schema.Schema, error) {
	var node yaml.Node
	if err := node.Encode(Plain(value)); err != nil {
		return nil, fmt.Errorf("jsonschema: encode value: %w", err)
	}
	return Normalize(&Parsed{Node: &node, Value: value})
}

type normalizer struct {
	root    *yaml.Node
	stack   []string
	inStack map[string]struct{}
}

func (n *normalizer) schemaFrom(node *yaml.Node, path string) (*schema.Schema, error) {
	node = deref(node)
	if node == nil {
		return nil, fmt.Errorf("jsonschema: schema is nil at %s", path)
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!bool" {
		return &schema.Schema{}, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("jsonschema: schema must be an object at %s", path)
	}

	if ref := scalar(mappingValue(node, "$ref")); ref != "" {
		return n.resolveRef(ref, path)
	}

	out := &schema.Schema{
		Format:      scalar(mappingValue(node, "format")),
		Title:       strings.TrimSpace(scalar(mappingValue(node, "title"))),
		Description: strings.TrimSpace(scalar(mappingValue(node, "description"))),
		Pattern:     scalar(mappingValue(node, "pattern")),
	}

	if typ := mappingValue(node, "type"); typ != nil {
		out.Type = typeName(typ)
	}

	var err error
	if out.Default, err = decodeValue(mappingValue(node, "default")); err != nil {
		return nil, fmt.Errorf("jsonschema: default at %s: %w", path, err)
	}
	if out.Const, err = decodeValue(mappingValue(node, "const")); err != nil {
		return nil, fmt.Errorf("jsonschema: const at %s: %w", path, err)
	}
	if enum := mappingValue(node, "enum"); enum != nil {
		if enum.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("jsonschema: enum must be a list at %s", path)
		}
		for _, item := range enum.Content {
			value, err := decodeValue(item)
			if err != nil {
				return nil, fmt.Errorf("jsonschema: enum at %s: %w", path, err)
			}
			out.Enum = append(out.Enum, value)
		}
	}
	if required := mappingValue(node, "required"); required != nil && required.Kind == yaml.SequenceNode {
		for _, item := range required.Content {
			out.Required = append(out.Required, deref(item).Value)
		}
	}

	if props := mappingValue(node, "properties"); props != nil {
		if props.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("jsonschema: properties must be a mapping at %s", path)
		}
		out.Properties = make(map[string]*schema.Schema, len(props.Content)/2)
		for i := 0; i+1 < len(props.Content); i += 2 {
			name := props.Content[i].Value
			child, err := n.schemaFrom(props.Content[i+1], path+"/properties/"+name)
			if err != nil {
				return nil, err
			}
			if _, dup := out.Properties[name]; !dup {
				out.PropertyOrder = append(out.PropertyOrder, name)
			}
			out.Properties[name] = child
		}
	}

	if items := mappingValue(node, "items"); items != nil {
		if out.Items, err = n.schemaFrom(items, path+"/items"); err != nil {
			return nil, err
		}
	}
	if out.OneOf, err = n.schemaList(mappingValue(node, "oneOf"), path+"/oneOf"); err != nil {
		return nil, err
	}
	if out.AnyOf, err = n.schemaList(mappingValue(node, "anyOf"), path+"/anyOf"); err != nil {
		return nil, err
	}

	out.Minimum, out.ExclusiveMinimum = bound(node, "minimum", "exclusiveMinimum")
	out.Maximum, out.ExclusiveMaximum = bound(node, "maximum", "exclusiveMaximum")
	out.MinLength = intKeyword(node, "minLength")
	out.MaxLength = intKeyword(node, "maxLength")
	out.MinItems = intKeyword(node, "minItems")
	out.MaxItems = intKeyword(node, "maxItems")
	out.UniqueItems = scalar(mappingValue(node, "uniqueItems")) == "true"

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if _, ok := liftedKeywords[key]; ok {
			continue
		}
		value, err := decodeValue(node.Content[i+1])
		if err != nil {
			continue
		}
		if out.Extensions == nil {
			out.Extensions = make(map[string]any)
		}
		out.Extensions[key] = value
	}

	return out, nil
}

func (n *normalizer) resolveRef(ref, path string) (*schema.Schema, error) {
	if _, cyclic := n.inStack[ref]; cyclic {
		return &schema.Schema{Ref: ref}, nil
	}
	if len(n.stack) >= defaultMaxRefDepth {
		return nil, fmt.Errorf("jsonschema: $ref depth exceeded at %s", path)
	}
	target, err := resolvePointer(n.root, ref)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: %s: %w", path, err)
	}

	n.stack = append(n.stack, ref)
	n.inStack[ref] = struct{}{}
	defer func() {
		n.stack = n.stack[:len(n.stack)-1]
		delete(n.inStack, ref)
	}()

	out, err := n.schemaFrom(target, ref)
	if err != nil {
		return nil, err
	}
	out.Ref = ref
	return out, nil
}

func (n *normalizer) schemaList(node *yaml.Node, path string) ([]*schema.Schema, error) {
	if node == nil {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("jsonschema: expected a list at %s", path)
	}
	out := make([]*schema.Schema, 0, len(node.Content))
	for i, item := range node.Content {
		child, err := n.schemaFrom(item, path+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

func scalar(node *yaml.Node) string {
	node = deref(node)
	if node == nil || node.Kind != yaml.ScalarNode {
		return ""
	}
	return node.Value
}

// typeName collapses ["string", "null"] style unions to the first non-null type.
func typeName(node *yaml.Node) string {
	node = deref(node)
	switch node.Kind {
	case yaml.ScalarNode:
		return strings.TrimSpace(node.Value)
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if v := scalar(item); v != "" && v != "null" {
				return v
			}
		}
	}
	return ""
}

func decodeValue(node *yaml.Node) (any, error) {
	node = deref(node)
	if node == nil {
		return nil, nil
	}
	var value any
	if err := node.Decode(&value); err != nil {
		return nil, err
	}
	return Plain(value), nil
}

func bound(node *yaml.Node, key, exclusiveKey string) (*float64, bool) {
	if v, ok := floatKeyword(node, key); ok {
		return &v, scalar(mappingValue(node, exclusiveKey)) == "true"
	}
	// draft-06+ numeric exclusive bounds
	if v, ok := floatKeyword(node, exclusiveKey); ok {
		return &v, true
	}
	return nil, false
}

func floatKeyword(node *yaml.Node, key string) (float64, bool) {
	raw := scalar(mappingValue(node, key))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func intKeyword(node *yaml.Node, key string) *int {
	raw := scalar(mappingValue(node, key))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
