// Package preview serialises FormState for the read-only preview pane.
package preview

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-specviz/pkg/jsonschema"
	"github.com/goliatone/go-specviz/pkg/schema"
)

// Format selects the preview serialisation.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

const emptyDocument = "{}"

// ParseFormat maps user input to a Format, defaulting to YAML.
func ParseFormat(raw string) Format {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json", "application/json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Render serialises value. Object keys follow the declared property order of
// node when given, then the remaining keys alphabetically. Nil or
// unserialisable values render as "{}".
func Render(value any, format Format, node *schema.Schema) string {
	if value == nil {
		return emptyDocument
	}
	value = jsonschema.Plain(value)
	if _, err := json.Marshal(value); err != nil {
		return emptyDocument
	}

	if format == FormatJSON {
		var buf bytes.Buffer
		writeJSON(&buf, value, node, "")
		return buf.String()
	}

	tree := toNode(value, node)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return emptyDocument
	}
	_ = enc.Close()
	return strings.TrimRight(buf.String(), "\n")
}

// orderedKeys lists m's keys in schema order, then the rest sorted.
func orderedKeys(m map[string]any, node *schema.Schema) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]struct{}, len(m))
	if node != nil {
		for _, prop := range node.OrderedProperties() {
			if _, ok := m[prop.Name]; ok {
				keys = append(keys, prop.Name)
				seen[prop.Name] = struct{}{}
			}
		}
	}
	var rest []string
	for k := range m {
		if _, ok := seen[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func childSchema(node *schema.Schema, key string) *schema.Schema {
	if node == nil {
		return nil
	}
	return node.Property(key)
}

func itemSchema(node *schema.Schema) *schema.Schema {
	if node == nil {
		return nil
	}
	return node.Items
}

func toNode(value any, node *schema.Schema) *yaml.Node {
	switch typed := value.(type) {
	case map[string]any:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range orderedKeys(typed, node) {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				toNode(typed[key], childSchema(node, key)),
			)
		}
		if len(out.Content) == 0 {
			out.Style = yaml.FlowStyle
		}
		return out
	case []any:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range typed {
			out.Content = append(out.Content, toNode(item, itemSchema(node)))
		}
		if len(out.Content) == 0 {
			out.Style = yaml.FlowStyle
		}
		return out
	default:
		var scalar yaml.Node
		if err := scalar.Encode(typed); err != nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		}
		return &scalar
	}
}

func writeJSON(buf *bytes.Buffer, value any, node *schema.Schema, indent string) {
	const step = "  "
	switch typed := value.(type) {
	case map[string]any:
		keys := orderedKeys(typed, node)
		if len(keys) == 0 {
			buf.WriteString("{}")
			return
		}
		buf.WriteString("{\n")
		for i, key := range keys {
			buf.WriteString(indent + step)
			k, _ := json.Marshal(key)
			buf.Write(k)
			buf.WriteString(": ")
			writeJSON(buf, typed[key], childSchema(node, key), indent+step)
			if i < len(keys)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(indent + "}")
	case []any:
		if len(typed) == 0 {
			buf.WriteString("[]")
			return
		}
		buf.WriteString("[\n")
		for i, item := range typed {
			buf.WriteString(indent + step)
			writeJSON(buf, item, itemSchema(node), indent+step)
			if i < len(typed)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(indent + "]")
	default:
		raw, err := json.Marshal(typed)
		if err != nil {
			buf.WriteString("null")
			return
		}
		buf.Write(raw)
	}
}
