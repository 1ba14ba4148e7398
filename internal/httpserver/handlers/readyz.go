package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/tagsearch/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready    bool `json:"ready"`
	Searches int  `json:"searches"`
}

// Readyz reports 503 until saved searches have been loaded.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := d.Registry.Ready()
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, readyzResponse{
			Ready:    ready,
			Searches: d.Registry.Len(),
		})
	}
}
