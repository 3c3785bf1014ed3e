package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-specviz/pkg/preview"
	"github.com/goliatone/go-specviz/pkg/render"
	"github.com/goliatone/go-specviz/pkg/renderers/vanilla"
)

const htmlContentType = "text/html; charset=utf-8"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	descriptors := s.loader.Registry().List()
	list := make([]map[string]any, 0, len(descriptors))
	for _, desc := range descriptors {
		list = append(list, map[string]any{
			"name":     url.PathEscape(desc.Name),
			"title":    desc.Title,
			"location": desc.Document.Location(),
			"hints":    desc.HasHints(),
		})
	}
	data := s.layoutData(r.Context(), render.RenderOptions{})
	data["specs"] = list
	s.renderPage(w, r, http.StatusOK, "templates/index.tmpl", data)
}

func (s *Server) handleSpecPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	spec, err := s.loader.Load(ctx, name)
	if err != nil {
		status := specStatus(err)
		s.log.Warn("spec page unavailable", "spec", name, "status", status, "error", err)
		if status == http.StatusNotFound {
			s.renderError(w, r, status, "Spec not found", "No spec is registered as \""+name+"\".")
			return
		}
		s.renderError(w, r, status, "Spec unavailable", err.Error())
		return
	}

	v, err := s.newView(ctx, spec)
	if err != nil {
		s.log.Error("build form", "spec", name, "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Spec unavailable", err.Error())
		return
	}

	format := preview.ParseFormat(r.URL.Query().Get("format"))
	session := s.newSession(spec, format)
	defer session.Close()
	if err := session.Open(ctx); err != nil {
		s.log.Error("open draft", "spec", name, "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Draft unavailable", err.Error())
		return
	}

	opts := v.options(session.State(), session.Issues(), session.Sections())
	form, err := v.page(ctx, opts)
	if err != nil {
		s.log.Error("render form", "spec", name, "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Render failed", err.Error())
		return
	}

	status := session.Status()
	data := s.layoutData(ctx, opts)
	data["name"] = url.PathEscape(spec.Name)
	data["title"] = firstNonEmpty(v.form.Title, spec.Title, spec.Name)
	data["socket"] = "/api/spec/" + url.PathEscape(spec.Name) + "/session?format=" + string(format)
	data["form"] = form
	data["formats"] = []string{string(preview.FormatYAML), string(preview.FormatJSON)}
	data["format"] = string(format)
	data["preview"] = session.Preview()
	data["status"] = string(status)
	data["status_label"] = status.Label()
	s.renderPage(w, r, http.StatusOK, "templates/spec.tmpl", data)
}

func (s *Server) layoutData(ctx context.Context, opts render.RenderOptions) map[string]any {
	if opts.Theme == nil {
		if base, err := s.orch.Options(ctx, s.themeRequest()); err == nil {
			opts.Theme = base.Theme
		}
	}
	stylesheet, script := vanilla.AssetURLs(opts)
	return map[string]any{
		"stylesheet": stylesheet,
		"script":     script,
		"css_vars":   vanilla.CSSVars(opts),
	}
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	html, err := s.pages.RenderTemplate(name, data)
	if err != nil {
		s.log.Error("render page", "template", name, "request_id", middleware.GetReqID(r.Context()), "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", htmlContentType)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(html))
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, heading, message string) {
	data := s.layoutData(r.Context(), render.RenderOptions{})
	data["heading"] = heading
	data["message"] = message
	s.renderPage(w, r, status, "templates/error.tmpl", data)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
