package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-specviz/pkg/jsonschema"
	"github.com/goliatone/go-specviz/pkg/preview"
)

const (
	jsonContentType = "application/json"
	yamlContentType = "text/yaml; charset=utf-8"
)

// requestedType reads the export type from the query, falling back to the
// content-type header.
func requestedType(r *http.Request) string {
	if v := strings.TrimSpace(r.URL.Query().Get("content-type")); v != "" {
		return v
	}
	return strings.TrimSpace(r.Header.Get("Content-Type"))
}

// wantsJSON matches "json" and any application/json media type; everything
// else is served as text.
func wantsJSON(contentType string) bool {
	ct := strings.ToLower(contentType)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)
	return ct == "json" || ct == jsonContentType
}

// handleExport serves the registered document: parsed and re-encoded as
// JSON, or the original text as read.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	contentType := requestedType(r)
	if contentType == "" {
		writeError(w, http.StatusBadRequest, "MISSING_CONTENT_TYPE", "content-type is required (json or yaml)")
		return
	}
	name := chi.URLParam(r, "name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "MISSING_NAME", "spec name is required")
		return
	}

	spec, err := s.loader.Load(r.Context(), name)
	if err != nil {
		status := specStatus(err)
		s.log.Warn("export failed", "spec", name, "status", status, "error", err)
		writeError(w, status, codeFor(status), err.Error())
		return
	}

	if wantsJSON(contentType) {
		writeJSON(w, http.StatusOK, jsonschema.Plain(spec.Value))
		return
	}
	w.Header().Set("Content-Type", yamlContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.Raw)
}

// handleDraftExport serves the edited result: the latest draft, or {} when
// none was saved, ordered like the form.
func (s *Server) handleDraftExport(w http.ResponseWriter, r *http.Request) {
	contentType := requestedType(r)
	if contentType == "" {
		contentType = "yaml"
	}
	name := chi.URLParam(r, "name")
	spec, err := s.loader.Load(r.Context(), name)
	if err != nil {
		status := specStatus(err)
		writeError(w, status, codeFor(status), err.Error())
		return
	}

	value, ok, err := s.store.Load(r.Context(), spec.Name)
	if err != nil {
		s.log.Error("load draft", "spec", name, "error", err)
		writeError(w, http.StatusInternalServerError, "DRAFT_UNAVAILABLE", err.Error())
		return
	}
	if !ok {
		value = map[string]any{}
	}

	format, mediaType := preview.FormatYAML, yamlContentType
	if wantsJSON(contentType) {
		format, mediaType = preview.FormatJSON, jsonContentType
	}
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+spec.Name+"."+string(format)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(preview.Render(value, format, spec.Schema)))
}

// handleDraftClear persists {} for the spec, mirroring the clear action.
func (s *Server) handleDraftClear(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, err := s.loader.Registry().Lookup(name); err != nil {
		writeError(w, specStatus(err), codeFor(specStatus(err)), err.Error())
		return
	}
	if err := s.store.Save(r.Context(), name, map[string]any{}); err != nil {
		s.log.Error("clear draft", "spec", name, "error", err)
		writeError(w, http.StatusInternalServerError, "DRAFT_UNAVAILABLE", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func codeFor(status int) string {
	switch status {
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	default:
		return "INTERNAL"
	}
}

// writeJSON marshals v as JSON and writes it with the given status code.
// Values that cannot be encoded answer 500 instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "encode response: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}
