package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"auditdesk/internal/core"
)

func (h *Handler) mountPages(r chi.Router) {
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/planning", h.handlePlanning)
	r.Get("/audits", h.handleAuditsPage)
	r.Get("/exceptions", h.handleExceptionsPage)
	r.Get("/reports", h.handleReportsPage)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Dashboard(r.Context(), r.URL.Query().Get("region"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handlePlanning defaults the selected day to today and the month to the
// month of the selected day.
func (h *Handler) handlePlanning(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	day := h.now().UTC()
	if raw := q.Get("day"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid day %q", raw))
			return
		}
		day = parsed
	}
	month := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	if raw := q.Get("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid month %q", raw))
			return
		}
		month = parsed
	}

	view, err := h.svc.Planning(r.Context(), month, day)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleAuditsPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := h.svc.AuditsPage(r.Context(), core.AuditFilter{
		Search: q.Get("search"),
		Status: q.Get("status"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleExceptionsPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.ExceptionFilter{
		Search:   q.Get("search"),
		Severity: q.Get("severity"),
		Status:   q.Get("status"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		filter.Limit = limit
	}
	view, err := h.svc.ExceptionsPage(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleReportsPage(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Reports(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
