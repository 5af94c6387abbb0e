package handlers

import (
	"net/http"
	"strings"

	"slidedeck/internal/catalog"
	"slidedeck/internal/httpkit"
	"slidedeck/internal/pkg/errors"
	"slidedeck/internal/worker/queue"
)

// RegenerateTemplate serves POST /api/template/regenerate. With ?group=<name>
// one template is rebuilt, without it every template. The job runs on the
// worker; the response only confirms it was queued.
func (h *Handler) RegenerateTemplate(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	if h.queue == nil {
		return errors.New(errors.CodeUnavailable, "Regeneration queue not configured")
	}

	group := strings.TrimSpace(r.URL.Query().Get("group"))
	if r.URL.Query().Has("group") {
		if err := catalog.CheckGroup(group); err != nil {
			return err
		}
	}

	job := queue.NewJob(group)
	if err := h.queue.Push(ctx, job); err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "jobs.push", "queue push failed")
	}

	h.log.FromContext(ctx).Info("regeneration queued", "job_id", job.ID, "template", group)

	httpkit.WriteJSON(w, http.StatusAccepted, map[string]any{
		"job": map[string]any{
			"id":           job.ID,
			"template":     group,
			"status":       "QUEUED",
			"requested_at": job.RequestedAt,
		},
	})
	return nil
}
