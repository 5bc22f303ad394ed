package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is a dependency whose liveness can be checked
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	deps    map[string]Pinger
	timeout time.Duration
}

// NewHealthHandler creates a health handler over named dependencies. Nil entries are skipped.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps, timeout: 2 * time.Second}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	type result struct {
		name string
		err  error
	}
	results := make(chan result, len(h.deps))
	pending := 0
	for name, dep := range h.deps {
		if dep == nil {
			continue
		}
		pending++
		go func() { results <- result{name: name, err: dep.Ping(ctx)} }()
	}

	status := make(map[string]string, pending)
	ready := true
wait:
	for ; pending > 0; pending-- {
		select {
		case res := <-results:
			if res.err != nil {
				status[res.name] = res.err.Error()
				ready = false
			} else {
				status[res.name] = "ok"
			}
		case <-ctx.Done():
			ready = false
			status["error"] = "readiness check timed out"
			break wait
		}
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	respondWithJSON(w, code, map[string]interface{}{
		"ready":        ready,
		"dependencies": status,
	})
}
