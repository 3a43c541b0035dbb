package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"paperarchive/internal/domain"
	"paperarchive/internal/service"
)

type CourseHandler struct {
	courses  *service.CourseService
	files    *service.ExamFileService
	archives *service.ArchiveService
}

func NewCourseHandler(courses *service.CourseService, files *service.ExamFileService, archives *service.ArchiveService) *CourseHandler {
	return &CourseHandler{courses: courses, files: files, archives: archives}
}

type coursePayload struct {
	Code       string `json:"code" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Department string `json:"department"`
	Credits    int    `json:"credits" validate:"gte=0"`
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req coursePayload
	if err := decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}

	course := &domain.Course{
		Code:       req.Code,
		Name:       req.Name,
		Department: req.Department,
		Credits:    req.Credits,
	}
	if err := h.courses.Create(r.Context(), actorFrom(r), course); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, course)
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	course, err := h.courses.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req coursePayload
	if err := decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}

	course := &domain.Course{
		ID:         id,
		Code:       req.Code,
		Name:       req.Name,
		Department: req.Department,
		Credits:    req.Credits,
	}
	if err := h.courses.Update(r.Context(), actorFrom(r), course); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.courses.Delete(r.Context(), actorFrom(r), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type examPayload struct {
	SemesterID int64  `json:"semester_id"`
	Kind       string `json:"kind" validate:"required,oneof=midterm final makeup quiz"`
	Year       int    `json:"year" validate:"required,gte=2000"`
	Term       string `json:"term" validate:"required"`
}

func (h *CourseHandler) CreateExam(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req examPayload
	if err := decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}

	exam := &domain.Exam{
		CourseID:   id,
		SemesterID: req.SemesterID,
		Kind:       domain.ExamKind(req.Kind),
		Year:       req.Year,
		Term:       req.Term,
	}
	if err := h.courses.CreateExam(r.Context(), actorFrom(r), exam); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, exam)
}

func (h *CourseHandler) ListExams(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	exams, err := h.courses.ListExams(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, exams)
}

func (h *CourseHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	files, err := h.files.ListByCourse(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, files)
}

// ExportArchive streams a ZIP of every sample PDF in the course.
func (h *CourseHandler) ExportArchive(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("course-%d.zip", id)))
	if err := h.archives.ExportCourse(r.Context(), id, w); err != nil {
		// Headers may already be on the wire; all we can do is log via the
		// error mapper's default branch.
		respondError(w, err)
	}
}

func courseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, domain.ValidationError("invalid course id")
	}
	return id, nil
}
