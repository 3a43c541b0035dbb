package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"paperarchive/internal/domain"
	"paperarchive/internal/service"
)

type SemesterHandler struct {
	semesters *service.SemesterService
	archives  *service.ArchiveService
}

func NewSemesterHandler(semesters *service.SemesterService, archives *service.ArchiveService) *SemesterHandler {
	return &SemesterHandler{semesters: semesters, archives: archives}
}

type semesterPayload struct {
	Name     string `json:"name" validate:"required"`
	StartsOn string `json:"starts_on" validate:"required"`
	EndsOn   string `json:"ends_on" validate:"required"`
}

func (p semesterPayload) toDomain() (*domain.Semester, error) {
	starts, err := time.Parse("2006-01-02", p.StartsOn)
	if err != nil {
		return nil, domain.ValidationError("invalid starts_on date")
	}
	ends, err := time.Parse("2006-01-02", p.EndsOn)
	if err != nil {
		return nil, domain.ValidationError("invalid ends_on date")
	}
	return &domain.Semester{Name: p.Name, StartsOn: starts, EndsOn: ends}, nil
}

func (h *SemesterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req semesterPayload
	if err := decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}

	sem, err := req.toDomain()
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.semesters.Create(r.Context(), actorFrom(r), sem); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sem)
}

func (h *SemesterHandler) List(w http.ResponseWriter, r *http.Request) {
	semesters, err := h.semesters.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, semesters)
}

func (h *SemesterHandler) Active(w http.ResponseWriter, r *http.Request) {
	sem, err := h.semesters.Active(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sem)
}

func (h *SemesterHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := semesterID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.semesters.Activate(r.Context(), actorFrom(r), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SemesterHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := semesterID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req semesterPayload
	if err := decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}

	sem, err := req.toDomain()
	if err != nil {
		respondError(w, err)
		return
	}
	sem.ID = id
	if err := h.semesters.Update(r.Context(), actorFrom(r), sem); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sem)
}

func (h *SemesterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := semesterID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.semesters.Delete(r.Context(), actorFrom(r), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportArchive streams a ZIP of every sample PDF uploaded in the semester.
func (h *SemesterHandler) ExportArchive(w http.ResponseWriter, r *http.Request) {
	id, err := semesterID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("semester-%d.zip", id)))
	if err := h.archives.ExportSemester(r.Context(), id, w); err != nil {
		respondError(w, err)
	}
}

func semesterID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, domain.ValidationError("invalid semester id")
	}
	return id, nil
}
