package handler

import (
	"encoding/json"
	"net/http"

	"github.com/insurang/lead-funnel/internal/service"
)

// Track handles POST /api/track. Storage failures are swallowed by the
// service; only a malformed payload produces a non-success response.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	var input service.TrackInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.sendUserError(w, r, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}

	if err := h.service.Track.Track(r.Context(), input); err != nil {
		h.sendUserError(w, r, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}

	h.sendData(w, r, nil)
}
