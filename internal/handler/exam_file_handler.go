package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"paperarchive/internal/domain"
	"paperarchive/internal/middleware"
	"paperarchive/internal/preview"
	"paperarchive/internal/service"
)

type ExamFileHandler struct {
	files    *service.ExamFileService
	previews *preview.Service
}

func NewExamFileHandler(files *service.ExamFileService, previews *preview.Service) *ExamFileHandler {
	return &ExamFileHandler{files: files, previews: previews}
}

// Upload accepts a multipart form with exam_id, category and a single PDF
// under "file".
func (h *ExamFileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, domain.ValidationError("invalid multipart form"))
		return
	}

	examID, err := strconv.ParseInt(r.FormValue("exam_id"), 10, 64)
	if err != nil {
		respondError(w, domain.ValidationError("invalid exam_id"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, domain.ValidationError("file is required"))
		return
	}
	defer file.Close()

	uploaded, err := h.files.Upload(r.Context(), actorFrom(r), service.Upload{
		ExamID:   examID,
		Category: domain.SampleCategory(r.FormValue("category")),
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Data:     file,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	middleware.UploadsTotal.Inc()
	respondJSON(w, http.StatusCreated, uploaded)
}

// Download streams the PDF bytes.
func (h *ExamFileHandler) Download(w http.ResponseWriter, r *http.Request) {
	fileUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		respondError(w, domain.ValidationError("invalid file uuid"))
		return
	}

	download, err := h.files.Download(r.Context(), fileUUID)
	if err != nil {
		respondError(w, err)
		return
	}
	defer download.Data.Close()

	w.Header().Set("Content-Type", download.File.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.File.Name))
	io.Copy(w, download.Data)
}

func (h *ExamFileHandler) Info(w http.ResponseWriter, r *http.Request) {
	fileUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		respondError(w, domain.ValidationError("invalid file uuid"))
		return
	}

	file, err := h.files.Get(r.Context(), fileUUID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, file)
}

// Preview serves the cached first-page thumbnail.
func (h *ExamFileHandler) Preview(w http.ResponseWriter, r *http.Request) {
	fileUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		respondError(w, domain.ValidationError("invalid file uuid"))
		return
	}

	thumbnail, err := h.previews.Get(r.Context(), fileUUID)
	if err != nil {
		respondError(w, err)
		return
	}
	defer thumbnail.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	io.Copy(w, thumbnail)
}

// HardDelete removes a file immediately, bypassing the approval workflow.
func (h *ExamFileHandler) HardDelete(w http.ResponseWriter, r *http.Request) {
	fileUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		respondError(w, domain.ValidationError("invalid file uuid"))
		return
	}

	if err := h.files.HardDelete(r.Context(), actorFrom(r), fileUUID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ExamFileHandler) ListByExam(w http.ResponseWriter, r *http.Request) {
	examID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, domain.ValidationError("invalid exam id"))
		return
	}

	files, err := h.files.ListByExam(r.Context(), examID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, files)
}
