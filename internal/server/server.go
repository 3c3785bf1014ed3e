// Package server exposes registered specs over HTTP: a spec list, one
// editing page per spec kept live over a websocket, and export routes for
// the source document and the edited draft.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-specviz/internal/logger"
	"github.com/goliatone/go-specviz/internal/watch"
	"github.com/goliatone/go-specviz/pkg/draft"
	"github.com/goliatone/go-specviz/pkg/editor"
	"github.com/goliatone/go-specviz/pkg/orchestrator"
	"github.com/goliatone/go-specviz/pkg/registry"
	rendertemplate "github.com/goliatone/go-specviz/pkg/render/template"
	"github.com/goliatone/go-specviz/pkg/renderers/vanilla"
	"github.com/goliatone/go-specviz/pkg/specs"
)

//go:embed templates/*.tmpl
var pageTemplates embed.FS

const shutdownTimeout = 10 * time.Second

// Loader resolves registered names to parsed specs.
type Loader interface {
	Load(ctx context.Context, name string) (specs.Spec, error)
	Registry() *registry.Registry
}

// Option configures a Server.
type Option func(*Server)

// WithOrchestrator replaces the default form pipeline.
func WithOrchestrator(o *orchestrator.Orchestrator) Option {
	return func(s *Server) {
		if o != nil {
			s.orch = o
		}
	}
}

// WithHub delivers reload notices from the spec watcher to open sessions.
func WithHub(h *watch.Hub) Option {
	return func(s *Server) {
		s.hub = h
	}
}

// WithLogger attaches a logger used for requests and sessions.
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		s.log = logger.OrNop(l)
	}
}

// WithDebounce sets the draft write window of editing sessions.
func WithDebounce(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithWriteTimeout bounds each draft write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// WithTheme selects the theme and variant pages render with.
func WithTheme(name, variant string) Option {
	return func(s *Server) {
		s.themeName = name
		s.themeVariant = variant
	}
}

// WithOriginPatterns restricts the hosts allowed to open editing sockets.
func WithOriginPatterns(patterns ...string) Option {
	return func(s *Server) {
		s.origins = append([]string(nil), patterns...)
	}
}

// Server serves the spec pages and APIs.
type Server struct {
	loader Loader
	store  draft.Store
	orch   *orchestrator.Orchestrator
	hub    *watch.Hub
	log    *logger.Logger
	pages  *rendertemplate.Engine

	debounce     time.Duration
	writeTimeout time.Duration
	themeName    string
	themeVariant string
	origins      []string
}

// New wires a Server over loader and store.
func New(loader Loader, store draft.Store, opts ...Option) (*Server, error) {
	if loader == nil {
		return nil, errors.New("server: loader is required")
	}
	if store == nil {
		return nil, errors.New("server: draft store is required")
	}
	s := &Server{
		loader:   loader,
		store:    store,
		log:      logger.Nop(),
		debounce: editor.DefaultDebounce,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.orch == nil {
		s.orch = orchestrator.New(orchestrator.WithLoader(loader), orchestrator.WithLogger(s.log))
	}

	pages, err := rendertemplate.New(
		rendertemplate.WithFS(pageTemplates),
		rendertemplate.WithExtension(".tmpl"),
		rendertemplate.WithSetName("pages"),
	)
	if err != nil {
		return nil, fmt.Errorf("server: page templates: %w", err)
	}
	s.pages = pages
	return s, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/spec/{name}", s.handleSpecPage)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(vanilla.AssetsFS())))

	r.Route("/api/spec", func(r chi.Router) {
		r.Get("/", s.handleExport)
		r.Get("/{name}", s.handleExport)
		r.Get("/{name}/draft", s.handleDraftExport)
		r.Delete("/{name}/draft", s.handleDraftClear)
		r.Get("/{name}/session", s.handleSession)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "Not found", "There is nothing at "+r.URL.Path+".")
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "specs": s.loader.Registry().Len()})
}

// specStatus maps loader failures onto HTTP statuses: unregistered names are
// 404, unreadable or malformed documents 500.
func specStatus(err error) int {
	if errors.Is(err, specs.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
