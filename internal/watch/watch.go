// Package watch re-reads local spec documents when they change on disk and
// tells subscribers which spec moved.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-specviz/internal/logger"
	"github.com/goliatone/go-specviz/pkg/debounce"
	"github.com/goliatone/go-specviz/pkg/registry"
	"github.com/goliatone/go-specviz/pkg/schema"
)

// DefaultQuiet is the quiet period before a burst of writes is reported.
const DefaultQuiet = 300 * time.Millisecond

// Hub fans spec change notifications out to subscribers.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func()
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]func())}
}

// Subscribe registers fn for changes of spec name; call the returned func to
// unsubscribe.
func (h *Hub) Subscribe(name string, fn func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	if h.subs[name] == nil {
		h.subs[name] = make(map[int]func())
	}
	h.subs[name][id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[name], id)
		if len(h.subs[name]) == 0 {
			delete(h.subs, name)
		}
	}
}

// Notify calls every subscriber of name.
func (h *Hub) Notify(name string) {
	h.mu.RLock()
	fns := make([]func(), 0, len(h.subs[name]))
	for _, fn := range h.subs[name] {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithQuiet overrides the debounce window.
func WithQuiet(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.quiet = d
		}
	}
}

// WithClock injects the debounce clock.
func WithClock(clock debounce.Clock) Option {
	return func(w *Watcher) {
		w.clock = clock
	}
}

// WithLogger attaches a logger.
func WithLogger(l *logger.Logger) Option {
	return func(w *Watcher) {
		w.log = logger.OrNop(l)
	}
}

// Watcher maps fsnotify events on registered spec and hint files to spec
// names and notifies the hub once per burst.
type Watcher struct {
	hub     *Hub
	watcher *fsnotify.Watcher
	files   map[string][]string
	quiet   time.Duration
	clock   debounce.Clock
	log     *logger.Logger

	mu     sync.Mutex
	timers map[string]*debounce.Timer
	done   chan struct{}
}

// New watches the directories of every file-backed document in reg.
// URL and embedded sources are skipped.
func New(reg *registry.Registry, hub *Hub, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	w := &Watcher{
		hub:     hub,
		watcher: fw,
		files:   make(map[string][]string),
		quiet:   DefaultQuiet,
		clock:   debounce.RealClock,
		log:     logger.Nop(),
		timers:  make(map[string]*debounce.Timer),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	dirs := make(map[string]struct{})
	for _, desc := range reg.List() {
		for _, src := range []schema.Source{desc.Document, desc.UIHints} {
			if src == nil || src.Kind() != schema.SourceKindFile {
				continue
			}
			path, err := filepath.Abs(src.Location())
			if err != nil {
				continue
			}
			w.files[path] = append(w.files[path], desc.Name)
			dirs[filepath.Dir(path)] = struct{}{}
		}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch: add %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run processes events until ctx is done or Close is called.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch: watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	path, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	for _, name := range w.files[path] {
		w.schedule(name)
	}
}

func (w *Watcher) schedule(name string) {
	w.mu.Lock()
	timer, ok := w.timers[name]
	if !ok {
		timer = debounce.New(w.quiet, debounce.WithClock(w.clock))
		w.timers[name] = timer
	}
	w.mu.Unlock()

	timer.Arm(func() {
		w.log.Info("watch: spec changed on disk", "spec", name)
		w.hub.Notify(name)
	})
}

// Close stops the event loop, pending notifications and the fsnotify watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	select {
	case <-w.done:
		w.mu.Unlock()
		return nil
	default:
		close(w.done)
	}
	for _, timer := range w.timers {
		timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
