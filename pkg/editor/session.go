// Package editor owns the FormState of one editing view. A Session is the
// single writer: widgets and transports send intents, the session applies
// them, re-renders the preview, re-validates and schedules the draft write.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/goliatone/go-specviz/internal/logger"
	"github.com/goliatone/go-specviz/pkg/debounce"
	"github.com/goliatone/go-specviz/pkg/draft"
	"github.com/goliatone/go-specviz/pkg/formstate"
	"github.com/goliatone/go-specviz/pkg/jsonschema"
	"github.com/goliatone/go-specviz/pkg/preview"
	"github.com/goliatone/go-specviz/pkg/schema"
	"github.com/goliatone/go-specviz/pkg/specs"
	"github.com/goliatone/go-specviz/pkg/validation"
	"github.com/goliatone/go-specviz/pkg/widgets"
	"github.com/goliatone/go-specviz/pkg/widgets/collapse"
)

// DefaultDebounce is the quiet period before a draft write.
const DefaultDebounce = 2 * time.Second

const defaultWriteTimeout = 10 * time.Second

var (
	// ErrClosed is returned by intents sent after Close.
	ErrClosed = errors.New("editor: session closed")
	// ErrNotTextWidget reports EditText on a field without a text editor widget.
	ErrNotTextWidget = errors.New("editor: field has no text editor widget")
	// ErrNotAnArray reports item operations on a non-array field.
	ErrNotAnArray = errors.New("editor: field is not an array")
)

// Update is the notification sent to subscribers after every transition.
type Update struct {
	State      map[string]any
	Preview    string
	Format     preview.Format
	Status     draft.Status
	Issues     []validation.Issue
	Copied     bool
	Structural bool
	Widget     *WidgetState
}

// WidgetState reports the text editor behind a key-value or nested-schema
// field after an edit.
type WidgetState struct {
	Path    string
	Kind    widgets.Kind
	Valid   bool
	Message string
	Text    string
}

// Option configures a Session.
type Option func(*Session)

// WithDebounce overrides the quiet period.
func WithDebounce(delay time.Duration) Option {
	return func(s *Session) {
		if delay > 0 {
			s.delay = delay
		}
	}
}

// WithClock drives the draft and copy timers from clock.
func WithClock(clock debounce.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithLogger attaches a logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithFormat selects the initial preview format.
func WithFormat(format preview.Format) Option {
	return func(s *Session) { s.format = format }
}

// WithValidator replaces the validator compiled from the spec document.
func WithValidator(v *validation.Validator) Option {
	return func(s *Session) {
		s.validator = v
		s.validatorSet = true
	}
}

// WithWriteTimeout bounds each draft write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// Session is one live editing view over a spec.
type Session struct {
	spec  specs.Spec
	store draft.Store

	delay        time.Duration
	clock        debounce.Clock
	writeTimeout time.Duration
	logger       *logger.Logger
	validator    *validation.Validator
	validatorSet bool

	timer    *debounce.Timer
	copyAck  *preview.CopyAck
	sections *collapse.Tracker

	mu      sync.Mutex
	emitMu  sync.Mutex
	state   map[string]any
	format  preview.Format
	status  draft.Status
	issues  []validation.Issue
	editors map[string]*widgets.TextEditor
	gen     uint64
	closed  bool

	listeners map[int]func(Update)
	nextID    int
}

// New prepares a session for spec backed by store. Call Open before use.
func New(spec specs.Spec, store draft.Store, opts ...Option) *Session {
	s := &Session{
		spec:         spec,
		store:        store,
		delay:        DefaultDebounce,
		clock:        debounce.RealClock,
		writeTimeout: defaultWriteTimeout,
		format:       preview.FormatYAML,
		state:        map[string]any{},
		editors:      make(map[string]*widgets.TextEditor),
		listeners:    make(map[int]func(Update)),
		sections:     collapse.NewTracker(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = logger.OrNop(s.logger).With("spec", spec.Name)

	s.timer = debounce.New(s.delay, debounce.WithClock(s.clock))
	s.copyAck = preview.NewCopyAck(s.onCopied, debounce.WithClock(s.clock))

	if !s.validatorSet && spec.Value != nil {
		v, err := validation.Compile(spec.Name, spec.Value)
		if err != nil {
			s.logger.Warn("live validation disabled", "error", err)
		}
		s.validator = v
	}
	return s
}

// Spec returns the spec the session edits.
func (s *Session) Spec() specs.Spec {
	return s.spec
}

// Sections exposes the per-session collapse toggles.
func (s *Session) Sections() *collapse.Tracker {
	return s.sections
}

// Open seeds FormState from the latest draft, or {} when none exists or the
// stored draft is not an object.
func (s *Session) Open(ctx context.Context) error {
	value, ok, err := s.store.Load(ctx, s.spec.Name)
	if err != nil {
		return fmt.Errorf("editor: load draft %s: %w", s.spec.Name, err)
	}
	seed := map[string]any{}
	if ok {
		if m, isMap := jsonschema.Plain(value).(map[string]any); isMap {
			seed = m
		} else {
			s.logger.Warn("ignoring non-object draft", "type", fmt.Sprintf("%T", value))
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.state = seed
	s.status = draft.StatusIdle
	s.editors = make(map[string]*widgets.TextEditor)
	s.refreshLocked()
	u := s.updateLocked(true)
	s.emit(u)
	return nil
}

// State returns a copy of FormState.
func (s *Session) State() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return formstate.CloneMap(s.state)
}

// Status returns the persistence indicator.
func (s *Session) Status() draft.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Issues returns the current validation issues.
func (s *Session) Issues() []validation.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]validation.Issue(nil), s.issues...)
}

// Preview renders FormState in the current format.
func (s *Session) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return preview.Render(s.state, s.format, s.spec.Schema)
}

// Format reports the preview format.
func (s *Session) Format() preview.Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

// SetFormat switches the preview format. FormState is untouched.
func (s *Session) SetFormat(format preview.Format) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.format = format
	s.emit(s.updateLocked(false))
}

// Subscribe registers fn for updates and returns its cancel func. Listeners
// run in order on the goroutine that caused the transition and must not call
// back into the session.
func (s *Session) Subscribe(fn func(Update)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Change replaces the whole FormState.
func (s *Session) Change(value any) error {
	root, ok := jsonschema.Plain(value).(map[string]any)
	if value != nil && !ok {
		return fmt.Errorf("editor: form value must be an object, got %T", value)
	}
	return s.mutate(true, func(map[string]any) (map[string]any, error) {
		if root == nil {
			root = map[string]any{}
		}
		s.editors = make(map[string]*widgets.TextEditor)
		return formstate.CloneMap(root), nil
	})
}

// Set writes one leaf. Setting an object or array re-lays the form out.
func (s *Session) Set(path string, value any) error {
	value = jsonschema.Plain(value)
	structural := false
	switch value.(type) {
	case map[string]any, []any:
		structural = true
	}
	return s.mutate(structural, func(state map[string]any) (map[string]any, error) {
		if err := formstate.Set(state, path, value); err != nil {
			return nil, err
		}
		s.dropEditorsLocked(path)
		return state, nil
	})
}

// Unset removes the key at path; emptied inputs map back to absence.
func (s *Session) Unset(path string) error {
	return s.mutate(false, func(state map[string]any) (map[string]any, error) {
		formstate.Delete(state, path)
		s.dropEditorsLocked(path)
		return state, nil
	})
}

// SetChoice writes the enum or oneOf value whose key is key.
func (s *Session) SetChoice(path, key string) error {
	value, ok := widgets.FindChoice(s.spec.Schema.At(path).Choices(), key)
	if !ok {
		return fmt.Errorf("editor: %q is not a choice of %s", key, path)
	}
	return s.mutate(false, func(state map[string]any) (map[string]any, error) {
		return state, formstate.Set(state, path, value)
	})
}

// Clear resets FormState to {} and restarts the write window for it.
func (s *Session) Clear() error {
	return s.mutate(true, func(map[string]any) (map[string]any, error) {
		s.editors = make(map[string]*widgets.TextEditor)
		return map[string]any{}, nil
	})
}

// EditText feeds text to the key-value or nested-schema editor of path. An
// invalid edit leaves FormState untouched and reports the message.
func (s *Session) EditText(path, text string) (WidgetState, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return WidgetState{}, ErrClosed
	}
	ed, err := s.editorLocked(path)
	if err != nil {
		s.mu.Unlock()
		return WidgetState{}, err
	}
	state, changed := ed.Edit(text)
	ws := widgetState(path, ed)

	structural := false
	if changed {
		next := formstate.CloneMap(s.state)
		if err := formstate.Set(next, path, state.Last()); err != nil {
			s.mu.Unlock()
			return ws, err
		}
		s.state = next
		s.scheduleLocked()
		s.refreshLocked()
		structural = ed.Kind() == widgets.KindNestedSchema
	}
	u := s.updateLocked(structural)
	u.Widget = &ws
	s.emit(u)
	return ws, nil
}

// TogglePermission flips the checkbox whose string form is raw.
func (s *Session) TogglePermission(path, raw string) error {
	choices := widgets.PermissionChoices(s.spec.Schema.At(path))
	value, ok := widgets.FindChoice(choices, raw)
	if !ok {
		return fmt.Errorf("editor: %q is not a permission of %s", raw, path)
	}
	return s.mutate(false, func(state map[string]any) (map[string]any, error) {
		current, _ := formstate.Get(state, path)
		return state, formstate.Set(state, path, widgets.TogglePermission(current, value))
	})
}

// JobOptions lists the job names selectable from the field at path.
func (s *Session) JobOptions(path string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return widgets.JobOptions(s.state, path, s.jobsPath(path))
}

// SelectJob writes a single job reference; the empty key clears it.
func (s *Session) SelectJob(path, key string) error {
	return s.mutate(false, func(state map[string]any) (map[string]any, error) {
		selected, err := widgets.SelectJob(widgets.JobOptions(state, path, s.jobsPath(path)), key)
		if err != nil {
			return nil, err
		}
		if selected == "" {
			formstate.Delete(state, path)
			return state, nil
		}
		return state, formstate.Set(state, path, selected)
	})
}

// AddJob appends key to a multi-selection.
func (s *Session) AddJob(path, key string) error {
	return s.mutate(false, func(state map[string]any) (map[string]any, error) {
		current, _ := formstate.Get(state, path)
		next, err := widgets.AddJob(current, widgets.JobOptions(state, path, s.jobsPath(path)), key)
		if err != nil {
			return nil, err
		}
		return state, formstate.Set(state, path, next)
	})
}

// RemoveJob drops key from a multi-selection.
func (s *Session) RemoveJob(path, key string) error {
	return s.mutate(false, func(state map[string]any) (map[string]any, error) {
		current, _ := formstate.Get(state, path)
		return state, formstate.Set(state, path, widgets.RemoveJob(current, key))
	})
}

// AppendItem adds an element to the array at path, seeded from the item
// schema default.
func (s *Session) AppendItem(path string) error {
	node := s.spec.Schema.At(path)
	if node.EffectiveType() != "array" {
		return fmt.Errorf("%w: %s", ErrNotAnArray, path)
	}
	return s.mutate(true, func(state map[string]any) (map[string]any, error) {
		current, _ := formstate.Get(state, path)
		list, _ := current.([]any)
		next := append(append([]any(nil), list...), itemSeed(node.Items))
		return state, formstate.Set(state, path, next)
	})
}

// RemoveItem splices element index out of the array at path.
func (s *Session) RemoveItem(path string, index int) error {
	return s.mutate(true, func(state map[string]any) (map[string]any, error) {
		current, ok := formstate.Get(state, path)
		if _, isList := current.([]any); !ok || !isList {
			return nil, fmt.Errorf("%w: %s", ErrNotAnArray, path)
		}
		if !formstate.Delete(state, formstate.Join(path, strconv.Itoa(index))) {
			return nil, fmt.Errorf("editor: %s has no item %d", path, index)
		}
		s.editors = make(map[string]*widgets.TextEditor)
		return state, nil
	})
}

// ToggleSection records the expanded flag of an optional section.
func (s *Session) ToggleSection(path string, expanded bool) {
	s.sections.Set(path, expanded)
}

// Copy marks the transient "copied" acknowledgement and returns the text
// placed on the clipboard.
func (s *Session) Copy() string {
	text := s.Preview()
	s.copyAck.Mark()
	return text
}

// Copied reports whether the copy acknowledgement is showing.
func (s *Session) Copied() bool {
	return s.copyAck.Copied()
}

// Close cancels the pending draft write and the copy acknowledgement.
// Further intents fail with ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.listeners = map[int]func(Update){}
	s.mu.Unlock()
	s.timer.Stop()
	s.copyAck.Stop()
}

func (s *Session) mutate(structural bool, fn func(state map[string]any) (map[string]any, error)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	next, err := fn(formstate.CloneMap(s.state))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.scheduleLocked()
	s.refreshLocked()
	s.emit(s.updateLocked(structural))
	return nil
}

// scheduleLocked flips status to saving and restarts the write window.
func (s *Session) scheduleLocked() {
	s.gen++
	s.status = draft.StatusSaving
	s.timer.Arm(s.flush)
}

// flush persists the FormState current when the window elapses.
func (s *Session) flush() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	gen := s.gen
	snapshot := formstate.CloneMap(s.state)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	err := s.store.Save(ctx, s.spec.Name, snapshot)
	cancel()

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.logger.Error("draft write failed", "error", err)
		s.status = draft.StatusError
	} else {
		s.logger.Debug("draft saved", "key", draft.Key(s.spec.Name))
		s.status = draft.StatusSaved
	}
	s.emit(s.updateLocked(false))
}

func (s *Session) onCopied(bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.emit(s.updateLocked(false))
}

func (s *Session) refreshLocked() {
	s.issues = s.validator.Validate(s.state)
}

func (s *Session) updateLocked(structural bool) Update {
	return Update{
		State:      formstate.CloneMap(s.state),
		Preview:    preview.Render(s.state, s.format, s.spec.Schema),
		Format:     s.format,
		Status:     s.status,
		Issues:     append([]validation.Issue(nil), s.issues...),
		Copied:     s.copyAck.Copied(),
		Structural: structural,
	}
}

// emit must be called with s.mu held; it hands the lock over to emitMu so
// listeners observe transitions in order without holding the state lock.
func (s *Session) emit(u Update) {
	listeners := make([]func(Update), 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	s.emitMu.Lock()
	s.mu.Unlock()
	defer s.emitMu.Unlock()
	for _, fn := range listeners {
		fn(u)
	}
}

func (s *Session) editorLocked(path string) (*widgets.TextEditor, error) {
	if ed, ok := s.editors[path]; ok {
		return ed, nil
	}
	hints, _ := s.spec.Hints.Lookup(path)
	current, _ := formstate.Get(s.state, path)
	var ed *widgets.TextEditor
	switch hints.Widget {
	case widgets.KindKeyValue:
		ed = widgets.NewKeyValueEditor(current)
	case widgets.KindNestedSchema:
		ed = widgets.NewSchemaEditor(current)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotTextWidget, path)
	}
	s.editors[path] = ed
	return ed, nil
}

// dropEditorsLocked forgets editors at or below path so they re-seed from
// the new value.
func (s *Session) dropEditorsLocked(path string) {
	for key := range s.editors {
		if key == path || len(key) > len(path) && key[:len(path)+1] == path+"." {
			delete(s.editors, key)
		}
	}
}

func (s *Session) jobsPath(path string) string {
	hints, _ := s.spec.Hints.Lookup(path)
	if p := hints.Option("jobsPath"); p != "" {
		return p
	}
	return widgets.DefaultJobsPath
}

func widgetState(path string, ed *widgets.TextEditor) WidgetState {
	state := ed.State()
	ws := WidgetState{Path: path, Kind: ed.Kind(), Valid: state.Valid(), Message: ed.Message()}
	if inv, ok := state.(widgets.Invalid); ok {
		ws.Text = inv.Pending
	} else {
		ws.Text = ed.Text()
	}
	return ws
}

func itemSeed(item *schema.Schema) any {
	if item == nil {
		return nil
	}
	if item.Default != nil {
		return formstate.Clone(jsonschema.Plain(item.Default))
	}
	switch item.EffectiveType() {
	case "object":
		return map[string]any{}
	case "array":
		return []any{}
	case "boolean":
		return false
	case "string":
		return ""
	}
	return nil
}
