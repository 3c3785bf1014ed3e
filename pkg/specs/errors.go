package specs

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-specviz/pkg/registry"
)

// ErrNotFound reports an unregistered spec name.
var ErrNotFound = registry.ErrNotFound

// ReadError reports a registered document that could not be read.
type ReadError struct {
	Name     string
	Location string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("specs: read %s (%s): %v", e.Name, e.Location, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Missing reports whether the document does not exist at its location.
func (e *ReadError) Missing() bool {
	return errors.Is(e.Err, fs.ErrNotExist)
}

// ParseError reports a document or hint document with malformed content.
type ParseError struct {
	Name     string
	Location string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("specs: parse %s (%s): %v", e.Name, e.Location, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
