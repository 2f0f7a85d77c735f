package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/insurang/lead-funnel/internal/service"
)

type healthResponse struct {
	*service.HealthStatus
	Timestamp time.Time `json:"timestamp"`
}

// HealthCheck handles GET /health. Degraded states still answer 200 so the
// service stays reachable while monitoring picks up the detail fields.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := h.service.Health.GetHealth()

	if health.Status == service.HealthUnhealthy {
		render.Status(r, http.StatusServiceUnavailable)
	}

	render.JSON(w, r, healthResponse{
		HealthStatus: health,
		Timestamp:    time.Now(),
	})
}
