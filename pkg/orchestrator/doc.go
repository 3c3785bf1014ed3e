// Package orchestrator wires the spec loader → form model builder →
// decorators → renderer pipeline behind a single entry point, resolving the
// theme and nested-schema previews for each render.
package orchestrator
