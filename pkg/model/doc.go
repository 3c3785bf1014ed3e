// Package model defines the typed form model consumed by renderers. Builders
// live in internal/model and return the types aliased here. A FormModel keeps
// the declared property order of the spec document; fields carry their hint
// path (array elements as `items`), the resolved custom widget kind, the
// hidden flag, and the schema node they came from so custom widgets receive
// the same {value, schema, required, path} contract as generic controls.
package model
