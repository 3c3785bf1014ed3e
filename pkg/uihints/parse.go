package uihints

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-specviz/pkg/jsonschema"
	"github.com/goliatone/go-specviz/pkg/schema"
	"github.com/goliatone/go-specviz/pkg/widgets"
)

const (
	itemsKey     = "items"
	hiddenWidget = "hidden"
)

// Parse decodes an rjsf-style UI hint document.
func Parse(raw []byte, format schema.Format) (Hints, error) {
	parsed, err := jsonschema.Parse(raw, format)
	if err != nil {
		return Hints{}, fmt.Errorf("uihints: %w", err)
	}
	return FromValue(parsed.Value)
}

// ParseDocument parses doc using its detected format.
func ParseDocument(doc schema.Document) (Hints, error) {
	return Parse(doc.Raw(), doc.Format())
}

// FromValue walks an already decoded hint tree.
func FromValue(value any) (Hints, error) {
	root, ok := value.(map[string]any)
	if !ok {
		return Hints{}, fmt.Errorf("uihints: document must be a mapping, got %T", value)
	}
	out := Hints{Fields: make(map[string]FieldHints)}
	if err := out.walk(root, ""); err != nil {
		return Hints{}, err
	}
	return out, nil
}

func (h *Hints) walk(node map[string]any, path string) error {
	var current FieldHints
	touched := false

	for key, value := range node {
		if !strings.HasPrefix(key, "ui:") {
			child, ok := value.(map[string]any)
			if !ok {
				return fmt.Errorf("uihints: entry %q must be a mapping", joinPath(path, key))
			}
			if err := h.walk(child, joinPath(path, key)); err != nil {
				return err
			}
			continue
		}

		touched = true
		if err := current.apply(key, value, path); err != nil {
			return err
		}
		if key == "ui:submitButtonOptions" && path == "" {
			if opts, ok := value.(map[string]any); ok {
				h.SubmitHidden = truthy(opts["norender"])
			}
		}
	}

	if !touched {
		return nil
	}
	if path == "" {
		h.Root = current
		return nil
	}
	h.Fields[path] = current
	return nil
}

func (f *FieldHints) apply(key string, value any, path string) error {
	switch key {
	case "ui:widget":
		name, ok := value.(string)
		if !ok {
			return fmt.Errorf("uihints: ui:widget at %q must be a string", displayPath(path))
		}
		if strings.EqualFold(strings.TrimSpace(name), hiddenWidget) {
			f.Hidden = true
			return nil
		}
		kind, err := widgets.ParseKind(name)
		if err != nil {
			return fmt.Errorf("uihints: %s: %w", displayPath(path), err)
		}
		f.Widget = kind
	case "ui:title":
		f.Title = str(value)
	case "ui:description":
		f.Description = str(value)
	case "ui:help":
		f.Help = str(value)
	case "ui:placeholder":
		f.Placeholder = str(value)
	case "ui:classNames":
		f.Classes = str(value)
	case "ui:order":
		list, ok := value.([]any)
		if !ok {
			return fmt.Errorf("uihints: ui:order at %q must be a list", displayPath(path))
		}
		for _, item := range list {
			f.Order = append(f.Order, str(item))
		}
	case "ui:options":
		opts, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("uihints: ui:options at %q must be a mapping", displayPath(path))
		}
		f.Options = opts
	}
	return nil
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func displayPath(path string) string {
	if path == "" {
		return "root"
	}
	return path
}

func str(value any) string {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	if value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}
