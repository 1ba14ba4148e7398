package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tagsearch/internal/actions"
	"github.com/MrSnakeDoc/tagsearch/internal/domain"
	"github.com/MrSnakeDoc/tagsearch/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tagsearch/internal/logger"
	"github.com/MrSnakeDoc/tagsearch/internal/registry"
)

const maxBodyBytes = 64 << 10

type searchResponse struct {
	Tag      string `json:"tag"`
	Query    string `json:"query"`
	Time     string `json:"time"`
	SavedAgo string `json:"saved_ago,omitempty"`
	URL      string `json:"url"`
}

type saveRequest struct {
	Query string `json:"query"`
}

func toResponse(d deps.Deps, e registry.Entry) searchResponse {
	resp := searchResponse{
		Tag:   e.Tag,
		Query: e.Record.Query,
		Time:  e.Record.SavedAt,
		URL:   domain.BuildSearchURL(d.Actions.Template(), e.Record.Query),
	}
	if t, err := e.Record.SavedTime(); err == nil {
		resp.SavedAgo = humanize.RelTime(t, d.Now(), "ago", "from now")
	}
	return resp
}

// ListSearches returns every saved search in list order.
func ListSearches(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.Registry.Ready() {
			writeError(w, d, registry.ErrNotReady)
			return
		}

		entries := d.Registry.Entries()
		out := make([]searchResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, toResponse(d, e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GetSearch returns one saved search.
func GetSearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.Registry.Ready() {
			writeError(w, d, registry.ErrNotReady)
			return
		}

		tag := tagParam(r)
		e, ok := d.Registry.Get(tag)
		if !ok {
			writeError(w, d, fmt.Errorf("%w: %q", actions.ErrNotFound, tag))
			return
		}
		writeJSON(w, http.StatusOK, toResponse(d, e))
	}
}

// SaveSearch creates or overwrites the search under {tag}.
// 201 when the tag is new, 200 when it was updated.
func SaveSearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag := tagParam(r)

		var req saveRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}

		e, created, err := d.Actions.Save(r.Context(), tag, req.Query)
		if err != nil {
			writeError(w, d, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, toResponse(d, e))
	}
}

// DeleteSearch removes {tag}. Unknown tags are not an error.
func DeleteSearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Actions.Delete(r.Context(), tagParam(r)); err != nil {
			writeError(w, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// OpenSearch redirects to the search results for {tag}.
func OpenSearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag := tagParam(r)
		target, err := d.Actions.Activate(tag)
		if err != nil {
			writeError(w, d, err)
			return
		}

		d.Logger.Info("opening search",
			logger.String("tag", tag),
			logger.String("url", target))
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// ShareSearch returns the share message for {tag}.
func ShareSearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, err := d.Actions.Share(tagParam(r))
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

// EditSearch returns the fields an edit form is pre-filled with.
func EditSearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := d.Actions.Edit(tagParam(r))
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, fields)
	}
}

// SearchAction runs {action} (open, share, edit, delete) against {tag}.
func SearchAction(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "action")
		action, err := domain.ParseAction(name)
		if err != nil {
			writeError(w, d, fmt.Errorf("%w: %q", actions.ErrUnknownAction, name))
			return
		}

		res, err := d.Actions.Dispatch(r.Context(), action, tagParam(r))
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
