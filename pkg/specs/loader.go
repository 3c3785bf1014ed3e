// Package specs resolves registered names to parsed spec documents. Every
// Load re-reads from the source; callers that want caching add it on top.
package specs

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-specviz/internal/specs/loader"
	"github.com/goliatone/go-specviz/pkg/jsonschema"
	"github.com/goliatone/go-specviz/pkg/registry"
	"github.com/goliatone/go-specviz/pkg/schema"
	"github.com/goliatone/go-specviz/pkg/uihints"
)

// Spec is a loaded document plus its presentation hints.
type Spec struct {
	Name   string
	Title  string
	Raw    []byte
	Format schema.Format
	Value  any
	Schema *schema.Schema
	Hints  uihints.Hints
}

// Option customises a Loader.
type Option func(*loader.Options)

// WithFileSystem serves `fs:` locations from files.
func WithFileSystem(files fs.FS) Option {
	return func(o *loader.Options) { o.FileSystem = files }
}

// WithHTTPClient enables http(s) locations through client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *loader.Options) { o.HTTPClient = client }
}

// WithHTTP enables http(s) locations with a default client.
func WithHTTP(timeout time.Duration) Option {
	return func(o *loader.Options) {
		o.AllowHTTP = true
		o.RequestTimeout = timeout
	}
}

// Loader reads specs named in a registry.
type Loader struct {
	registry *registry.Registry
	reader   *loader.Reader
}

// NewLoader builds a Loader over reg.
func NewLoader(reg *registry.Registry, options ...Option) *Loader {
	opts := loader.Options{}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	return &Loader{registry: reg, reader: loader.New(opts)}
}

// Registry exposes the backing registry.
func (l *Loader) Registry() *registry.Registry {
	return l.registry
}

// Load resolves name, reads and parses its document and optional hints.
func (l *Loader) Load(ctx context.Context, name string) (Spec, error) {
	desc, err := l.registry.Lookup(name)
	if err != nil {
		return Spec{}, err
	}

	doc, err := l.reader.Read(ctx, desc.Document)
	if err != nil {
		return Spec{}, &ReadError{Name: name, Location: desc.Document.Location(), Err: err}
	}
	parsed, err := jsonschema.ParseDocument(doc)
	if err != nil {
		return Spec{}, &ParseError{Name: name, Location: doc.Location(), Err: err}
	}
	root, err := jsonschema.Normalize(parsed)
	if err != nil {
		return Spec{}, &ParseError{Name: name, Location: doc.Location(), Err: err}
	}

	spec := Spec{
		Name:   desc.Name,
		Title:  desc.Title,
		Raw:    doc.Raw(),
		Format: doc.Format(),
		Value:  parsed.Value,
		Schema: root,
	}

	if desc.HasHints() {
		hintsDoc, err := l.reader.Read(ctx, desc.UIHints)
		if err != nil {
			return Spec{}, &ReadError{Name: name, Location: desc.UIHints.Location(), Err: err}
		}
		hints, err := uihints.ParseDocument(hintsDoc)
		if err != nil {
			return Spec{}, &ParseError{Name: name, Location: hintsDoc.Location(), Err: err}
		}
		spec.Hints = hints
	}
	return spec, nil
}

// FromBytes builds a Spec from in-memory text without consulting a registry.
func FromBytes(name string, raw []byte, format schema.Format, hints uihints.Hints) (Spec, error) {
	parsed, err := jsonschema.Parse(raw, format)
	if err != nil {
		return Spec{}, &ParseError{Name: name, Location: "memory", Err: err}
	}
	root, err := jsonschema.Normalize(parsed)
	if err != nil {
		return Spec{}, &ParseError{Name: name, Location: "memory", Err: err}
	}
	return Spec{
		Name:   name,
		Title:  name,
		Raw:    append([]byte(nil), raw...),
		Format: format,
		Value:  parsed.Value,
		Schema: root,
		Hints:  hints,
	}, nil
}
