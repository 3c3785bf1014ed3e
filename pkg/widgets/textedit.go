package widgets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Messages reported by the text editors.
const (
	MsgEmptyContent  = "Content cannot be empty"
	MsgInvalidJSON   = "Invalid JSON format"
	MsgNotAnObject   = "Content must be a valid object (key-value pairs)"
	msgNestedValueFm = "Value for key %q must be a string, number, boolean, or null"
)

// EditState is the two-state machine behind the text editors. Both variants
// carry the last valid value, which is the only value ever published.
type EditState interface {
	Last() any
	Valid() bool
}

// Valid is the state after an accepted edit.
type Valid struct {
	Value any
}

func (s Valid) Last() any   { return s.Value }
func (s Valid) Valid() bool { return true }

// Invalid keeps the rejected text next to the last accepted value.
type Invalid struct {
	Value   any
	Pending string
	Err     error
}

func (s Invalid) Last() any   { return s.Value }
func (s Invalid) Valid() bool { return false }

// Parser turns editor text into a value. skip reports text that should be
// ignored without leaving the current state.
type Parser func(text string) (value any, skip bool, err error)

// TextEditor drives a text area that edits a structured value.
type TextEditor struct {
	kind  Kind
	parse Parser
	state EditState
}

// NewKeyValueEditor edits a flat object whose values are scalars.
func NewKeyValueEditor(initial any) *TextEditor {
	return &TextEditor{kind: KindKeyValue, parse: parseKeyValue, state: Valid{Value: initial}}
}

// NewSchemaEditor edits an arbitrary JSON value, typically a schema fragment.
// Empty text is ignored and keeps the last value.
func NewSchemaEditor(initial any) *TextEditor {
	return &TextEditor{kind: KindNestedSchema, parse: parseAnyJSON, state: Valid{Value: initial}}
}

// Kind reports which widget the editor backs.
func (e *TextEditor) Kind() Kind { return e.kind }

// State returns the current machine state.
func (e *TextEditor) State() EditState { return e.state }

// Edit feeds new text. changed is true when the published value moved.
func (e *TextEditor) Edit(text string) (state EditState, changed bool) {
	value, skip, err := e.parse(text)
	switch {
	case skip:
		return e.state, false
	case err != nil:
		e.state = Invalid{Value: e.state.Last(), Pending: text, Err: err}
		return e.state, false
	}
	e.state = Valid{Value: value}
	return e.state, true
}

// Reset replaces the published value, dropping any pending text.
func (e *TextEditor) Reset(value any) {
	e.state = Valid{Value: value}
}

// Message returns the validation message, empty when valid.
func (e *TextEditor) Message() string {
	if inv, ok := e.state.(Invalid); ok && inv.Err != nil {
		return inv.Err.Error()
	}
	return ""
}

// Text renders the last valid value pretty-printed, the text shown when the
// editor is (re)formatted.
func (e *TextEditor) Text() string {
	return FormatJSON(e.state.Last(), e.kind == KindKeyValue)
}

// FormatJSON pretty-prints value with two-space indentation. Missing values
// render as "{}" for object editors and "" otherwise.
func FormatJSON(value any, object bool) string {
	if value == nil {
		if object {
			return "{}"
		}
		return ""
	}
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return ""
	}
	return string(raw)
}

func parseKeyValue(text string) (any, bool, error) {
	if strings.TrimSpace(text) == "" {
		return nil, false, errors.New(MsgEmptyContent)
	}
	var parsed any
	if err := decodeJSON(text, &parsed); err != nil {
		return nil, false, errors.New(MsgInvalidJSON)
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, false, errors.New(MsgNotAnObject)
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch obj[k].(type) {
		case map[string]any, []any:
			return nil, false, fmt.Errorf(msgNestedValueFm, k)
		}
	}
	return obj, false, nil
}

func parseAnyJSON(text string) (any, bool, error) {
	if strings.TrimSpace(text) == "" {
		return nil, true, nil
	}
	var parsed any
	if err := decodeJSON(text, &parsed); err != nil {
		return nil, false, errors.New(MsgInvalidJSON)
	}
	return parsed, false, nil
}

func decodeJSON(text string, out *any) error {
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(out); err != nil {
		return err
	}
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after value")
	}
	return nil
}
