package handler

import (
	"context"
	"net/http"
	"time"
)

// ReadinessCheck reports whether the service can do useful work.
type ReadinessCheck func(ctx context.Context) error

// NewOps returns the mux served on the operations listener:
// GET /metrics, GET /health and GET /ready.
func NewOps(metrics http.Handler, ready ReadinessCheck) *http.ServeMux {
	mux := http.NewServeMux()
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		handleReady(w, r, ready)
	})
	return mux
}

// handleHealth handles GET /health.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready.
func handleReady(w http.ResponseWriter, r *http.Request, ready ReadinessCheck) {
	if ready != nil {
		if err := ready(r.Context()); err != nil {
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"error":  err.Error(),
				"time":   time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
