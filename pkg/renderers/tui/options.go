package tui

import (
	"github.com/goliatone/go-specviz/internal/logger"
	"github.com/goliatone/go-specviz/pkg/preview"
)

// Theme captures optional prefixes the driver applies to printed messages.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the document format Render emits.
func WithOutputFormat(format preview.Format) Option {
	return func(r *Renderer) {
		if format != "" {
			r.format = format
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithLogger attaches a logger for skipped or unsupported fields.
func WithLogger(l *logger.Logger) Option {
	return func(r *Renderer) {
		r.log = logger.OrNop(l)
	}
}
