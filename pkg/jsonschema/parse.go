package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-specviz/pkg/schema"
)

// Parsed keeps both views of a document: the node tree (declared key order,
// used for normalisation and ordered output) and the plain value tree (used
// for export and validation).
type Parsed struct {
	Node  *yaml.Node
	Value any
}

// ErrEmptyDocument reports a document without content.
var ErrEmptyDocument = errors.New("jsonschema: document is empty")

// Parse decodes YAML or JSON text.
func Parse(raw []byte, format schema.Format) (*Parsed, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyDocument
	}
	if format == schema.FormatJSON {
		return parseJSON(raw)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("jsonschema: decode yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, ErrEmptyDocument
	}
	var value any
	if err := root.Decode(&value); err != nil {
		return nil, fmt.Errorf("jsonschema: decode yaml value: %w", err)
	}
	return &Parsed{Node: root.Content[0], Value: Plain(value)}, nil
}

// ParseDocument parses the payload of doc using its detected format.
func ParseDocument(doc schema.Document) (*Parsed, error) {
	return Parse(doc.Raw(), doc.Format())
}

func parseJSON(raw []byte) (*Parsed, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("jsonschema: decode json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	node, err := jsonNode(dec)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: decode json: %w", err)
	}
	return &Parsed{Node: node, Value: value}, nil
}

// jsonNode rebuilds a yaml node tree from a token stream so JSON inputs keep
// their key order exactly like YAML ones.
func jsonNode(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				child, err := jsonNode(dec)
				if err != nil {
					return nil, err
				}
				node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return node, nil
		case '[':
			node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for dec.More() {
				child, err := jsonNode(dec)
				if err != nil {
					return nil, err
				}
				node.Content = append(node.Content, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return node, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", v)
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}, nil
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(v.String(), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.String()}, nil
	case bool:
		value := "false"
		if v {
			value = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: value}, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}
