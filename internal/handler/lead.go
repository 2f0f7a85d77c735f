package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/insurang/lead-funnel/internal/middleware"
	"github.com/insurang/lead-funnel/internal/models"
	"github.com/insurang/lead-funnel/internal/ratelimit"
	"github.com/insurang/lead-funnel/internal/service"
)

// SubmitLead handles POST /api/leads, the public intake endpoint.
func (h *Handler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	var input models.LeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.sendUserError(w, r, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}

	identifier := ratelimit.ClientIdentifier(r)

	result, err := h.service.Lead.Submit(r.Context(), input, identifier)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrRateLimited):
			h.sendUserError(w, r, http.StatusTooManyRequests, errorCodeRateLimited)
		case errors.As(err, &validationErr):
			h.sendFieldErrors(w, r, validationErr.Fields)
		default:
			h.logger.Error("Failed to submit lead",
				zap.String("request_id", middleware.GetRequestID(r.Context())),
				zap.String("offer_slug", input.OfferSlug),
				zap.Error(err))
			h.sendUserError(w, r, http.StatusInternalServerError, errorCodeInternal)
		}
		return
	}

	h.sendData(w, r, result)
}

// GetOffer handles GET /api/offers?slug=, the public offer lookup.
func (h *Handler) GetOffer(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		h.sendUserError(w, r, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}

	offer, err := h.service.Lead.GetOffer(r.Context(), slug)
	if err != nil {
		h.logger.Error("Failed to look up offer",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("slug", slug),
			zap.Error(err))
		h.sendUserError(w, r, http.StatusInternalServerError, errorCodeInternal)
		return
	}
	if offer == nil {
		h.sendUserError(w, r, http.StatusNotFound, errorCodeNotFound)
		return
	}

	h.sendData(w, r, offer)
}
