package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/tagsearch/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tagsearch/internal/logger"
	"github.com/MrSnakeDoc/tagsearch/internal/store"
)

type componentStatus struct {
	OK             bool   `json:"ok"`
	SearchesLoaded *int   `json:"searches_loaded,omitempty"`
	SearchesStored *int64 `json:"searches_stored,omitempty"`
	Backend        string `json:"backend,omitempty"`
	File           string `json:"file,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Impact         string `json:"impact,omitempty"`
	Error          string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := d.Registry.Len()

		components := map[string]componentStatus{
			"registry": {
				OK:             d.Registry.Ready(),
				SearchesLoaded: &count,
			},
			"store": checkStore(r.Context(), d),
			"seeds": seedStatus(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func determineStatus(components map[string]componentStatus) string {
	// Nothing loaded = nothing can be served
	if reg, exists := components["registry"]; exists && !reg.OK {
		return "critical"
	}

	// Store down = changes are kept in memory only
	if st, exists := components["store"]; exists && !st.OK {
		return "degraded"
	}

	return "ok"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{
			OK:      false,
			Backend: d.StoreBackend,
			Impact:  "changes-not-persisted",
			Error:   "store not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := componentStatus{OK: true, Backend: d.StoreBackend, Mode: "local"}

	if pinger, ok := d.Store.(store.Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			return componentStatus{
				OK:      false,
				Backend: d.StoreBackend,
				Mode:    "degraded",
				Impact:  "changes-not-persisted",
				Error:   err.Error(),
			}
		}
		status.Mode = "optimal"
	}

	// Stored count above the loaded one means case duplicates in the store.
	if counter, ok := d.Store.(store.Counter); ok {
		if n, err := counter.Count(ctx); err == nil {
			status.SearchesStored = &n
		} else {
			d.Logger.Warn("failed to count stored searches", logger.Error(err))
		}
	}

	return status
}

func seedStatus(d deps.Deps) componentStatus {
	if d.SeedFile == "" {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	return componentStatus{OK: true, Mode: "enabled", File: d.SeedFile}
}
