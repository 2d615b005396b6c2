package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 5 * time.Second

// HealthChecker is implemented by dependencies that can be pinged
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ReadinessProbe reports whether the scoring model is usable
type ReadinessProbe interface {
	Ready() bool
}

// HealthHandler serves the liveness and readiness probes
type HealthHandler struct {
	model   ReadinessProbe
	deps    map[string]HealthChecker
	version string
}

// NewHealthHandler creates a health handler. deps maps a dependency name to
// its pinger; model may be nil.
func NewHealthHandler(model ReadinessProbe, deps map[string]HealthChecker, version string) *HealthHandler {
	return &HealthHandler{model: model, deps: deps, version: version}
}

// HealthResponse is the body of every probe
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
}

func (h *HealthHandler) respond(w http.ResponseWriter, code int, status string, services map[string]string) {
	writeJSON(w, code, HealthResponse{
		Status:    status,
		Version:   h.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
	})
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, "healthy", nil)
}

// Ready handles GET /ready. Scoring is possible once the classifier has been
// trained and every store dependency answers its ping.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var (
		mu       sync.Mutex
		services = make(map[string]string, len(h.deps)+1)
		ready    = true
	)
	mark := func(name, state string, ok bool) {
		mu.Lock()
		defer mu.Unlock()
		services[name] = state
		ready = ready && ok
	}

	if h.model != nil {
		if h.model.Ready() {
			mark("model", "healthy", true)
		} else {
			mark("model", "initializing", false)
		}
	}

	var g errgroup.Group
	for name, dep := range h.deps {
		g.Go(func() error {
			if err := dep.Ping(ctx); err != nil {
				mark(name, "unhealthy: "+err.Error(), false)
				return nil
			}
			mark(name, "healthy", true)
			return nil
		})
	}
	_ = g.Wait()

	if !ready {
		h.respond(w, http.StatusServiceUnavailable, "not ready", services)
		return
	}
	h.respond(w, http.StatusOK, "ready", services)
}

// Live handles GET /live
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}
