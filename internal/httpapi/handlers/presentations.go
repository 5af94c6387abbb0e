package handlers

import (
	"net/http"

	"slidedeck/internal/httpkit"
	"slidedeck/internal/pkg/errors"
	"slidedeck/internal/presentation"
)

// ValidatePresentation serves POST /api/presentation/validate. It checks
// every slide of an import request against its template artifact.
func (h *Handler) ValidatePresentation(w http.ResponseWriter, r *http.Request) error {
	var req presentation.ImportRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		return errors.WrapWithCode(err, errors.CodeValidation, "presentation.validate", "invalid json body")
	}

	res, err := h.validator.Validate(r.Context(), &req)
	if err != nil {
		return err
	}

	if !res.Valid {
		h.log.FromContext(r.Context()).Info("presentation content rejected",
			"template", res.Template,
			"slides", len(res.Slides),
		)
	}
	httpkit.WriteJSON(w, http.StatusOK, res)
	return nil
}
