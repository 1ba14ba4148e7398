package deps

import (
	"time"

	"github.com/MrSnakeDoc/tagsearch/internal/actions"
	"github.com/MrSnakeDoc/tagsearch/internal/logger"
	"github.com/MrSnakeDoc/tagsearch/internal/registry"
	"github.com/MrSnakeDoc/tagsearch/internal/store"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time   // for testing, defaults to time.Now
	AllowedHosts   []string           // Host headers allowed on write/admin routes
	AllowedCIDRS   []string           // IPs allowed on write/admin routes
	TrustProxy     bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins    []string           // allowed CORS origins, empty = no CORS headers
	RateLimitRPS   int                // writes per second per client IP, 0 = unlimited
	RateLimitBurst int                // burst size for writes
	Registry       *registry.Registry // saved searches
	Actions        *actions.Handler   // open/share/edit/delete on a saved search
	Store          store.Store        // backing store, used for health checks
	StoreBackend   string             // "redis" | "file" | "memory"
	SeedFile       string             // seed file path, empty if seed import is disabled
	ReloadTrigger  chan struct{}      // Channel to trigger a manual seed import (nil if disabled)
}

// Now returns d.TimeNow() or time.Now() when unset.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
