package model

import (
	"github.com/goliatone/go-specviz/internal/model"
	"github.com/goliatone/go-specviz/pkg/schema"
	"github.com/goliatone/go-specviz/pkg/specs"
	"github.com/goliatone/go-specviz/pkg/uihints"
)

// Builder converts loaded specs into form models.
type Builder interface {
	Build(spec specs.Spec) (FormModel, error)
	BuildFragment(name string, fragment *schema.Schema) (FormModel, error)
}

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	labeler func(string) string
}

// WithLabeler overrides the default label generation function.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

// NewBuilder returns a Builder backed by the internal implementation.
func NewBuilder(options ...BuilderOption) Builder {
	cfg := builderOptions{}
	for _, opt := range options {
		opt(&cfg)
	}
	internalOpts := model.Options{}
	if cfg.labeler != nil {
		internalOpts.Labeler = cfg.labeler
	}
	return specBuilder{inner: model.New(internalOpts)}
}

type specBuilder struct {
	inner *model.Builder
}

func (b specBuilder) Build(spec specs.Spec) (FormModel, error) {
	return b.inner.Build(model.Input{
		Name:   spec.Name,
		Title:  spec.Title,
		Schema: spec.Schema,
		Hints:  spec.Hints,
	})
}

// BuildFragment builds a form for a nested schema fragment with no hints and
// the submit control suppressed.
func (b specBuilder) BuildFragment(name string, fragment *schema.Schema) (FormModel, error) {
	form, err := b.inner.Build(model.Input{Name: name, Schema: fragment, Hints: uihints.Hints{}})
	if err != nil {
		return FormModel{}, err
	}
	form.SubmitHidden = true
	return form, nil
}
