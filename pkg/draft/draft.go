// Package draft persists in-progress FormState per spec name. Values are
// stored as JSON under the key `form-data-{name}`.
package draft

import (
	"context"
	"encoding/json"
	"fmt"
)

// KeyPrefix namespaces draft keys.
const KeyPrefix = "form-data-"

// Key returns the storage key for a spec name.
func Key(name string) string {
	return KeyPrefix + name
}

// Store reads and writes drafts. Load reports ok=false when no draft exists.
type Store interface {
	Load(ctx context.Context, name string) (value any, ok bool, err error)
	Save(ctx context.Context, name string, value any) error
	Delete(ctx context.Context, name string) error
	Close() error
}

// Status is the persistence indicator shown next to the form.
type Status string

const (
	StatusIdle   Status = ""
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

// Label renders the status for display.
func (s Status) Label() string {
	switch s {
	case StatusSaving:
		return "Saving..."
	case StatusSaved:
		return "Saved"
	case StatusError:
		return "Error saving"
	default:
		return ""
	}
}

func encode(value any) ([]byte, error) {
	if value == nil {
		value = map[string]any{}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("draft: encode: %w", err)
	}
	return raw, nil
}

func decode(raw []byte) (any, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("draft: decode: %w", err)
	}
	return value, nil
}
