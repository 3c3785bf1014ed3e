package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-specviz/pkg/widgets/collapse"
)

// NestedPreview renders the preview form of a nested schema fragment typed
// into a nested-schema editor. It returns nil when value is not previewable.
type NestedPreview func(value any) ([]byte, error)

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form model pipeline.
type RenderOptions struct {
	// Values is the current FormState. Paths inside it are concrete
	// ("jobs.2.needs") while field paths use `items` for array elements.
	Values map[string]any
	// Errors carries validation messages keyed by concrete field path.
	Errors map[string][]string
	// FormErrors are messages that could not be attached to a field.
	FormErrors []string
	// Sections remembers user toggles of optional sections.
	Sections *collapse.Tracker
	// Nested renders previews for nested-schema editors. Nil disables them.
	Nested NestedPreview
	// Theme carries resolved template partials, tokens and asset URLs.
	Theme *theme.RendererConfig
	// Standalone wraps the form in a minimal document with the stylesheet
	// inlined, used by CLI exports.
	Standalone bool
}
