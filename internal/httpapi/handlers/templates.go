package handlers

import (
	"net/http"

	"slidedeck/internal/httpkit"
)

// GetTemplate serves GET /api/template?group=<name> with the generated
// artifact of that template.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) error {
	group := r.URL.Query().Get("group")

	doc, err := h.catalog.Get(r.Context(), group)
	if err != nil {
		return err
	}

	httpkit.WriteJSON(w, http.StatusOK, doc)
	return nil
}
