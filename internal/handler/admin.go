package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/insurang/lead-funnel/internal/middleware"
	"github.com/insurang/lead-funnel/internal/models"
	"github.com/insurang/lead-funnel/internal/repository"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// ListLeads handles GET /api/admin/leads. With an id parameter it returns a
// single lead detail, otherwise a paginated list annotated with the latest
// per-channel notification status.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	if rawID := r.URL.Query().Get("id"); rawID != "" {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidRequest)
			return
		}

		detail, err := h.service.Admin.GetLead(r.Context(), id)
		if err != nil {
			h.logger.Error("Failed to get lead",
				zap.String("request_id", middleware.GetRequestID(r.Context())),
				zap.Int64("lead_id", id),
				zap.Error(err))
			h.sendError(w, r, http.StatusInternalServerError, errorCodeInternal)
			return
		}
		if detail == nil {
			h.sendError(w, r, http.StatusNotFound, errorCodeNotFound)
			return
		}

		h.sendData(w, r, detail)
		return
	}

	limit := queryInt(r, "limit", defaultPageLimit, 1, maxPageLimit)
	offset := queryInt(r, "offset", 0, 0, 1<<30)

	leads, err := h.service.Admin.ListLeads(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list leads",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, errorCodeInternal)
		return
	}

	h.sendData(w, r, leads)
}

// ListSequenceLogs handles GET /api/admin/sequences/logs with optional
// sequence_id, lead_id and status filters.
func (h *Handler) ListSequenceLogs(w http.ResponseWriter, r *http.Request) {
	filter := models.SequenceLogFilter{
		Limit:  queryInt(r, "limit", defaultPageLimit, 1, maxPageLimit),
		Offset: queryInt(r, "offset", 0, 0, 1<<30),
	}

	if raw := r.URL.Query().Get("sequence_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidRequest)
			return
		}
		filter.SequenceID = &id
	}

	if raw := r.URL.Query().Get("lead_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidRequest)
			return
		}
		filter.LeadID = &id
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.SequenceLogStatus(raw)
		switch status {
		case models.SequenceLogStatusPending, models.SequenceLogStatusSent, models.SequenceLogStatusFailed:
			filter.Status = &status
		default:
			h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidRequest)
			return
		}
	}

	page, err := h.service.Admin.ListSequenceLogs(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list sequence logs",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, errorCodeInternal)
		return
	}

	h.sendData(w, r, page)
}

// ResetSequenceLog handles POST /api/admin/sequences/logs, moving a failed or
// sent log back to pending so the dispatcher picks it up again.
func (h *Handler) ResetSequenceLog(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LogID int64 `json:"log_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.LogID <= 0 {
		h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}

	if err := h.service.Admin.ResetSequenceLog(r.Context(), body.LogID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.sendError(w, r, http.StatusNotFound, errorCodeNotFound)
			return
		}
		h.logger.Error("Failed to reset sequence log",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Int64("log_id", body.LogID),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, errorCodeInternal)
		return
	}

	h.sendData(w, r, map[string]int64{"log_id": body.LogID})
}

// GetSettings handles GET /api/admin/settings. Secret values come back masked.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Settings.All(r.Context())
	if err != nil {
		h.logger.Error("Failed to list settings",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, errorCodeInternal)
		return
	}

	h.sendData(w, r, settings)
}

// UpdateSettings handles POST /api/admin/settings with a key→value map.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil || len(values) == 0 {
		h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}

	if err := h.service.Settings.Update(r.Context(), values); err != nil {
		h.logger.Error("Failed to update settings",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}

	h.sendData(w, r, nil)
}

// GetStats handles GET /api/admin/stats, the dashboard aggregate.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Admin.Stats(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute stats",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, errorCodeInternal)
		return
	}

	h.sendData(w, r, stats)
}

// TestNotifiers handles POST /api/admin/test, sending a real test message per
// channel so credentials can be verified from the dashboard.
func (h *Handler) TestNotifiers(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || (body.Email == "" && body.Phone == "") {
		h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}

	results := h.service.Admin.TestNotifiers(r.Context(), body.Email, body.Phone)
	h.sendData(w, r, results)
}

func queryInt(r *http.Request, name string, fallback, min, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return fallback
	}
	return v
}
