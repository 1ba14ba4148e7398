package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tagsearch/internal/actions"
	"github.com/MrSnakeDoc/tagsearch/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tagsearch/internal/logger"
	"github.com/MrSnakeDoc/tagsearch/internal/registry"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, d deps.Deps, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, actions.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, actions.ErrEmptyInput), errors.Is(err, actions.ErrUnknownAction):
		status = http.StatusBadRequest
	case errors.Is(err, registry.ErrNotReady):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		d.Logger.Error("request failed", logger.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// tagParam returns the decoded {tag} path segment. chi hands out the raw
// segment when the path had to be escaped (e.g. a tag containing '/').
func tagParam(r *http.Request) string {
	tag := chi.URLParam(r, "tag")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(tag); err == nil {
			return unescaped
		}
	}
	return tag
}
