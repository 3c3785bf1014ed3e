package specviz

import (
	"github.com/goliatone/go-specviz/pkg/registry"
	"github.com/goliatone/go-specviz/pkg/schema"
	"github.com/goliatone/go-specviz/pkg/specs"
	"github.com/goliatone/go-specviz/pkg/uihints"
)

// Entry registers one spec document under a public name.
type Entry = registry.Entry

// NewLoader builds a registry from entries and a loader over it. Relative
// file locations resolve against baseDir.
func NewLoader(entries []Entry, baseDir string, options ...specs.Option) (*specs.Loader, error) {
	reg, err := registry.New(entries, baseDir)
	if err != nil {
		return nil, err
	}
	return specs.NewLoader(reg, options...), nil
}

// ParseSpec parses an in-memory document in format. The optional hint
// document is read as YAML, which covers JSON as well.
func ParseSpec(name string, doc, hints []byte, format schema.Format) (Spec, error) {
	var parsed uihints.Hints
	if len(hints) > 0 {
		var err error
		if parsed, err = uihints.Parse(hints, schema.FormatYAML); err != nil {
			return Spec{}, err
		}
	}
	return specs.FromBytes(name, doc, format, parsed)
}
