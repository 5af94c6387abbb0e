package handlers

import (
	"context"
	"net/http"
	"time"

	"slidedeck/internal/httpkit"
)

// Health reports liveness; with ?deep=true it also pings the artifact store
// and, when configured, reports the regeneration backlog.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log.FromContext(ctx)

	health := map[string]any{
		"status":  "ok",
		"service": h.service,
		"version": h.version,
	}

	if r.URL.Query().Get("deep") == "true" {
		storage := h.checkStorage(ctx)
		checks := map[string]any{"storage": storage}
		degraded := storage["status"] != "ok"

		if h.queue != nil {
			q := h.checkQueue(ctx)
			checks["queue"] = q
			degraded = degraded || q["status"] != "ok"
		}
		health["checks"] = checks

		if degraded {
			health["status"] = "degraded"
			log.Warn("health check degraded", "checks", checks)
		}
	}

	httpkit.WriteJSON(w, http.StatusOK, health)
}

func (h *Handler) checkStorage(ctx context.Context) map[string]any {
	start := time.Now()
	result := map[string]any{
		"status":   "ok",
		"provider": h.store.Provider(),
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.store.Ping(checkCtx); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}

	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}

func (h *Handler) checkQueue(ctx context.Context) map[string]any {
	result := map[string]any{"status": "ok"}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := h.queue.Len(checkCtx)
	if err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
		return result
	}
	result["pending"] = n
	return result
}
