// Package router sets up HTTP routes for the UI server.
package router

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	adminFeature "github.com/leapstack-labs/goadmin/internal/ui/features/admin"
	"github.com/leapstack-labs/goadmin/internal/ui/resources"
	"github.com/rcrowley/go-metrics"
	"github.com/starfederation/datastar-go/datastar"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps adminFeature.Deps, isDev bool) error {
	// Hot reload endpoint for dev mode
	if isDev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	router.Get("/debug/metrics", metricsHandler(deps.Registry.Metrics()))

	return adminFeature.SetupRoutes(router, deps)
}

// metricsHandler dumps the backend call timers and error counters.
func metricsHandler(registry metrics.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		metrics.WriteJSONOnce(registry, w)
	}
}

// reloader fans a dev rebuild signal out to every open tab.
type reloader struct {
	mu   sync.Mutex
	tabs map[chan struct{}]struct{}
}

func (rl *reloader) subscribe() (chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	rl.mu.Lock()
	rl.tabs[ch] = struct{}{}
	rl.mu.Unlock()
	return ch, func() {
		rl.mu.Lock()
		delete(rl.tabs, ch)
		rl.mu.Unlock()
	}
}

func (rl *reloader) trigger() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ch := range rl.tabs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return len(rl.tabs)
}

// setupReload serves /reload, an SSE stream that reloads the page when
// /hotreload is hit by the dev watcher.
func setupReload(router chi.Router) {
	rl := &reloader{tabs: map[chan struct{}]struct{}{}}

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		ch, done := rl.subscribe()
		defer done()

		sse := datastar.NewSSE(w, r)
		select {
		case <-ch:
			_ = sse.ExecuteScript("window.location.reload()")
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		n := rl.trigger()
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "reloaded %d\n", n)
	})
}
