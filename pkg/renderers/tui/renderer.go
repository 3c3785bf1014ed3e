package tui

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-specviz/internal/logger"
	"github.com/goliatone/go-specviz/pkg/formstate"
	"github.com/goliatone/go-specviz/pkg/model"
	"github.com/goliatone/go-specviz/pkg/preview"
	"github.com/goliatone/go-specviz/pkg/render"
	"github.com/goliatone/go-specviz/pkg/widgets"
	"github.com/goliatone/go-specviz/pkg/widgets/catalog"
)

const noneOption = "(none)"

// Renderer implements render.Renderer by walking the form on the terminal and
// emitting the filled document.
type Renderer struct {
	driver PromptDriver
	format preview.Format
	theme  Theme
	log    *logger.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, YAML output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		format: preview.FormatYAML,
		log:    logger.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver()
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.format == preview.FormatJSON {
		return "application/json"
	}
	return "application/yaml"
}

// Render prompts for every visible field, seeded from opts.Values, and
// returns the resulting document.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}

	values, err := r.Fill(ctx, form, opts)
	if err != nil {
		return nil, err
	}
	return []byte(preview.Render(values, r.format, form.Schema)), nil
}

// Fill runs the prompts and returns the collected state.
func (r *Renderer) Fill(ctx context.Context, form model.FormModel, opts render.RenderOptions) (map[string]any, error) {
	state := formstate.CloneMap(opts.Values)
	if state == nil {
		state = make(map[string]any)
	}
	if form.Title != "" {
		if err := r.info(ctx, form.Title); err != nil {
			return nil, err
		}
	}
	for _, message := range opts.FormErrors {
		if err := r.warn(ctx, message); err != nil {
			return nil, err
		}
	}

	f := filler{r: r, state: state, errors: opts.Errors}
	for _, field := range form.Fields {
		if err := f.field(ctx, field, field.Name); err != nil {
			return nil, err
		}
	}
	return state, nil
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) warn(ctx context.Context, msg string) error {
	prefix := r.theme.ErrorPrefix
	if prefix == "" {
		prefix = "! "
	}
	return r.driver.Info(ctx, prefix+msg)
}

type filler struct {
	r      *Renderer
	state  map[string]any
	errors map[string][]string
}

func (f *filler) current(path string) any {
	value, _ := formstate.Get(f.state, path)
	return value
}

func (f *filler) set(path string, value any) error {
	if value == nil {
		formstate.Delete(f.state, path)
		return nil
	}
	return formstate.Set(f.state, path, value)
}

func (f *filler) field(ctx context.Context, field model.Field, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if field.Hidden {
		return nil
	}
	for _, message := range f.errors[path] {
		if err := f.r.warn(ctx, fmt.Sprintf("%s: %s", displayLabel(field), message)); err != nil {
			return err
		}
	}

	switch field.Component {
	case catalog.ComponentCheckbox:
		return f.boolean(ctx, field, path)
	case catalog.ComponentNumber:
		return f.number(ctx, field, path)
	case catalog.ComponentSelect:
		return f.choice(ctx, field, path)
	case catalog.ComponentTextarea:
		return f.textarea(ctx, field, path)
	case catalog.ComponentObject:
		return f.object(ctx, field, path)
	case catalog.ComponentArray:
		return f.array(ctx, field, path)
	case catalog.ComponentPermissions:
		return f.permissions(ctx, field, path)
	case catalog.ComponentKeyValue:
		return f.textEditor(ctx, field, path, widgets.NewKeyValueEditor(f.current(path)))
	case catalog.ComponentNestedSchema:
		return f.textEditor(ctx, field, path, widgets.NewSchemaEditor(f.current(path)))
	case catalog.ComponentJobSelect:
		return f.jobSelect(ctx, field, path)
	case catalog.ComponentJobMultiSelect:
		return f.jobMultiSelect(ctx, field, path)
	case catalog.ComponentInput, "":
		return f.text(ctx, field, path)
	default:
		f.r.log.Warn("tui: unsupported component, prompting as text", "component", field.Component, "path", path)
		return f.text(ctx, field, path)
	}
}

func (f *filler) text(ctx context.Context, field model.Field, path string) error {
	cfg := InputConfig{
		Message:   displayLabel(field),
		Help:      displayHelp(field),
		Default:   scalarDefault(f.current(path), field.Default),
		Validator: stringValidator(field),
	}
	var (
		answer string
		err    error
	)
	if field.Format == "password" {
		answer, err = f.r.driver.Password(ctx, cfg)
	} else {
		answer, err = f.r.driver.Input(ctx, cfg)
	}
	if err != nil {
		return err
	}
	if answer == "" {
		return f.set(path, nil)
	}
	return f.set(path, answer)
}

func (f *filler) textarea(ctx context.Context, field model.Field, path string) error {
	answer, err := f.r.driver.TextArea(ctx, TextAreaConfig{
		Message:   displayLabel(field),
		Help:      displayHelp(field),
		Default:   scalarDefault(f.current(path), field.Default),
		Validator: stringValidator(field),
	})
	if err != nil {
		return err
	}
	answer = strings.TrimRight(answer, "\n")
	if answer == "" {
		return f.set(path, nil)
	}
	return f.set(path, answer)
}

func (f *filler) boolean(ctx context.Context, field model.Field, path string) error {
	def, _ := f.current(path).(bool)
	if f.current(path) == nil {
		def, _ = field.Default.(bool)
	}
	answer, err := f.r.driver.Confirm(ctx, ConfirmConfig{Message: displayLabel(field), Help: displayHelp(field), Default: def})
	if err != nil {
		return err
	}
	return f.set(path, answer)
}

func (f *filler) number(ctx context.Context, field model.Field, path string) error {
	integer := field.Type == model.FieldTypeInteger
	answer, err := f.r.driver.Input(ctx, InputConfig{
		Message: displayLabel(field),
		Help:    displayHelp(field),
		Default: scalarDefault(f.current(path), field.Default),
		Validator: func(raw string) error {
			if strings.TrimSpace(raw) == "" {
				if field.Required {
					return errors.New("value is required")
				}
				return nil
			}
			value, err := parseNumber(raw, integer)
			if err != nil {
				return err
			}
			return numberInRange(field, value)
		},
	})
	if err != nil {
		return err
	}
	if strings.TrimSpace(answer) == "" {
		return f.set(path, nil)
	}
	value, err := parseNumber(answer, integer)
	if err != nil {
		return err
	}
	return f.set(path, value)
}

func (f *filler) choice(ctx context.Context, field model.Field, path string) error {
	options := make([]string, 0, len(field.Choices)+1)
	descriptions := make([]string, 0, len(field.Choices)+1)
	offset := 0
	if !field.Required {
		options = append(options, noneOption)
		descriptions = append(descriptions, "")
		offset = 1
	}
	current := f.current(path)
	if current == nil {
		current = field.Default
	}
	defaultIndex := 0
	for idx, choice := range field.Choices {
		options = append(options, choice.Label)
		descriptions = append(descriptions, choice.Description)
		if current != nil && widgets.ChoiceKey(current) == widgets.ChoiceKey(choice.Value) {
			defaultIndex = idx + offset
		}
	}
	picked, err := f.r.driver.Select(ctx, SelectConfig{
		Message:      displayLabel(field),
		Help:         displayHelp(field),
		Options:      options,
		Descriptions: descriptions,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return err
	}
	if picked < offset || picked >= len(options) {
		return f.set(path, nil)
	}
	return f.set(path, field.Choices[picked-offset].Value)
}

func (f *filler) object(ctx context.Context, field model.Field, path string) error {
	if !field.Required && path != "" {
		edit, err := f.r.driver.Confirm(ctx, ConfirmConfig{Message: "Edit " + displayLabel(field) + "?", Help: displayHelp(field)})
		if err != nil || !edit {
			return err
		}
	}
	if err := f.r.info(ctx, displayLabel(field)); err != nil {
		return err
	}
	for _, nested := range field.Nested {
		if err := f.field(ctx, nested, formstate.Join(path, nested.Name)); err != nil {
			return err
		}
	}
	return nil
}

func (f *filler) array(ctx context.Context, field model.Field, path string) error {
	if field.Items == nil {
		return nil
	}
	list, _ := f.current(path).([]any)
	if len(list) > 0 {
		if err := f.r.info(ctx, fmt.Sprintf("%s (%d)", displayLabel(field), len(list))); err != nil {
			return err
		}
	}
	for idx := range list {
		if err := f.item(ctx, field, path, idx); err != nil {
			return err
		}
	}
	for {
		more, err := f.r.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Add %s?", strings.ToLower(displayLabel(*field.Items)))})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		list, _ = f.current(path).([]any)
		if err := f.set(path, append(list, nil)); err != nil {
			return err
		}
		if err := f.item(ctx, field, path, len(list)); err != nil {
			return err
		}
	}
}

func (f *filler) item(ctx context.Context, field model.Field, path string, idx int) error {
	item := *field.Items
	item.Name = strconv.Itoa(idx)
	item.Label = fmt.Sprintf("%s %d", displayLabel(*field.Items), idx+1)
	item.Required = true
	return f.field(ctx, item, formstate.Join(path, item.Name))
}

func (f *filler) permissions(ctx context.Context, field model.Field, path string) error {
	choices := widgets.PermissionChoices(field.Schema)
	if len(choices) == 0 {
		return nil
	}
	options := make([]string, 0, len(choices))
	descriptions := make([]string, 0, len(choices))
	var defaults []int
	current := f.current(path)
	for idx, choice := range choices {
		options = append(options, choice.Label)
		descriptions = append(descriptions, choice.Description)
		if widgets.Checked(current, choice.Value) {
			defaults = append(defaults, idx)
		}
	}
	picked, err := f.r.driver.MultiSelect(ctx, SelectConfig{
		Message:      displayLabel(field),
		Help:         displayHelp(field),
		Options:      options,
		Descriptions: descriptions,
		Defaults:     defaults,
	})
	if err != nil {
		return err
	}
	out := make([]any, 0, len(picked))
	for _, idx := range picked {
		if idx >= 0 && idx < len(choices) {
			out = append(out, choices[idx].Value)
		}
	}
	return f.set(path, out)
}

func (f *filler) textEditor(ctx context.Context, field model.Field, path string, editor *widgets.TextEditor) error {
	answer, err := f.r.driver.TextArea(ctx, TextAreaConfig{
		Message: displayLabel(field),
		Help:    displayHelp(field),
		Default: editor.Text(),
		Validator: func(text string) error {
			probe := *editor
			if state, _ := probe.Edit(text); !state.Valid() {
				return errors.New(probe.Message())
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	if state, _ := editor.Edit(answer); !state.Valid() {
		if werr := f.r.warn(ctx, editor.Message()); werr != nil {
			return werr
		}
	}
	return f.set(path, editor.State().Last())
}

func (f *filler) jobSelect(ctx context.Context, field model.Field, path string) error {
	names := widgets.JobOptions(f.state, path, jobsPath(field))
	options := append([]string{noneOption}, names...)
	current, _ := f.current(path).(string)
	defaultIndex := 0
	for idx, name := range names {
		if name == current {
			defaultIndex = idx + 1
		}
	}
	picked, err := f.r.driver.Select(ctx, SelectConfig{
		Message:      displayLabel(field),
		Help:         displayHelp(field),
		Options:      options,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return err
	}
	if picked <= 0 || picked >= len(options) {
		return f.set(path, nil)
	}
	name, err := widgets.SelectJob(names, options[picked])
	if err != nil {
		return err
	}
	return f.set(path, name)
}

func (f *filler) jobMultiSelect(ctx context.Context, field model.Field, path string) error {
	names := widgets.JobOptions(f.state, path, jobsPath(field))
	if len(names) == 0 {
		return f.r.info(ctx, displayLabel(field)+": no other jobs to depend on")
	}
	current := f.current(path)
	var defaults []int
	for idx, name := range names {
		if widgets.Checked(current, name) {
			defaults = append(defaults, idx)
		}
	}
	picked, err := f.r.driver.MultiSelect(ctx, SelectConfig{
		Message:  displayLabel(field),
		Help:     displayHelp(field),
		Options:  names,
		Defaults: defaults,
	})
	if err != nil {
		return err
	}
	var out []any
	for _, idx := range picked {
		if idx < 0 || idx >= len(names) {
			continue
		}
		if out, err = widgets.AddJob(out, names, names[idx]); err != nil {
			return err
		}
	}
	if len(out) == 0 {
		return f.set(path, nil)
	}
	return f.set(path, out)
}

func jobsPath(field model.Field) string {
	if p, ok := field.Options["jobsPath"].(string); ok && strings.TrimSpace(p) != "" {
		return strings.TrimSpace(p)
	}
	return widgets.DefaultJobsPath
}

func displayLabel(field model.Field) string {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	if field.Required {
		label += " *"
	}
	return label
}

func displayHelp(field model.Field) string {
	if field.Help != "" {
		return field.Help
	}
	return field.Description
}

func scalarDefault(current, def any) string {
	value := current
	if value == nil {
		value = def
	}
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func stringValidator(field model.Field) func(string) error {
	return func(value string) error {
		if value == "" {
			if field.Required {
				return errors.New("value is required")
			}
			return nil
		}
		if rule, ok := field.Rule(model.ValidationRuleMinLength); ok {
			if n, err := strconv.Atoi(rule.Params["value"]); err == nil && len([]rune(value)) < n {
				return fmt.Errorf("must be at least %d characters", n)
			}
		}
		if rule, ok := field.Rule(model.ValidationRuleMaxLength); ok {
			if n, err := strconv.Atoi(rule.Params["value"]); err == nil && len([]rune(value)) > n {
				return fmt.Errorf("must be at most %d characters", n)
			}
		}
		if rule, ok := field.Rule(model.ValidationRulePattern); ok {
			re, err := regexp.Compile(rule.Params["pattern"])
			if err == nil && !re.MatchString(value) {
				return fmt.Errorf("must match %s", rule.Params["pattern"])
			}
		}
		return nil
	}
}

func parseNumber(raw string, integer bool) (any, error) {
	raw = strings.TrimSpace(raw)
	if integer {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return float64(n), nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", raw)
	}
	return n, nil
}

func numberInRange(field model.Field, value any) error {
	n, _ := value.(float64)
	if rule, ok := field.Rule(model.ValidationRuleMin); ok {
		if limit, err := strconv.ParseFloat(rule.Params["value"], 64); err == nil {
			if n < limit || (rule.Params["exclusive"] != "" && n == limit) {
				return fmt.Errorf("must be at least %s", rule.Params["value"])
			}
		}
	}
	if rule, ok := field.Rule(model.ValidationRuleMax); ok {
		if limit, err := strconv.ParseFloat(rule.Params["value"], 64); err == nil {
			if n > limit || (rule.Params["exclusive"] != "" && n == limit) {
				return fmt.Errorf("must be at most %s", rule.Params["value"])
			}
		}
	}
	return nil
}
