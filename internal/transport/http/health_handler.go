package http

import (
	"net/http"

	"github.com/go-chi/render"

	"distresscli/internal/distress"
	"distresscli/pkg/contracts"
	api "distresscli/pkg/contracts/api/v1"
)

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	calendar distress.Calendar
}

// NewHealthHandler creates a new health handler reporting calendar
func NewHealthHandler(calendar distress.Calendar) *HealthHandler {
	return &HealthHandler{calendar: calendar}
}

// HealthCheck handles GET /healthz
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	targets := h.calendar.Targets()
	quarters := make([]string, len(targets))
	for i, t := range targets {
		quarters[i] = string(t.Label)
	}

	render.JSON(w, r, api.HealthResponse{
		Status:         "ok",
		Version:        contracts.GetVersionInfo(),
		AssessmentDate: h.calendar.AssessmentDate().Format("2006-01-02"),
		Quarters:       quarters,
	})
}
