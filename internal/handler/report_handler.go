package handler

import (
	"net/http"
	"strconv"

	"paperarchive/internal/domain"
	"paperarchive/internal/repository"
	"paperarchive/internal/service"
)

type ReportHandler struct {
	reports *service.ReportService
	audit   *repository.AuditRepository
}

func NewReportHandler(reports *service.ReportService, audit *repository.AuditRepository) *ReportHandler {
	return &ReportHandler{reports: reports, audit: audit}
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.reports.Dashboard(r.Context(), actorFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dashboard)
}

// AuditLog lists recent audit entries, newest first. Admin only.
func (h *ReportHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	if !actorFrom(r).IsAdmin() {
		respondError(w, domain.ForbiddenError("administrator capability required"))
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	records, err := h.audit.List(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}
