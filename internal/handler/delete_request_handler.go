package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"paperarchive/internal/domain"
	"paperarchive/internal/middleware"
	"paperarchive/internal/service"
)

type DeleteRequestHandler struct {
	requests *service.DeleteRequestService
}

func NewDeleteRequestHandler(requests *service.DeleteRequestService) *DeleteRequestHandler {
	return &DeleteRequestHandler{requests: requests}
}

type submitDeleteRequest struct {
	FileUUID string `json:"file_uuid" validate:"required,uuid"`
	Reason   string `json:"reason" validate:"required"`
}

// Submit files a delete request for a sample file.
func (h *DeleteRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitDeleteRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}

	fileUUID, err := uuid.Parse(req.FileUUID)
	if err != nil {
		respondError(w, domain.ValidationError("invalid file uuid"))
		return
	}

	created, err := h.requests.Submit(r.Context(), fileUUID, actorFrom(r), req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// ListPending returns the administrator review queue.
func (h *DeleteRequestHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	requests, err := h.requests.ListPending(r.Context(), actorFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, requests)
}

type decideRequest struct {
	Action          string `json:"action" validate:"required"`
	RejectionReason string `json:"rejection_reason"`
}

// Decide approves or rejects a pending request.
func (h *DeleteRequestHandler) Decide(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, domain.ValidationError("invalid request id"))
		return
	}

	var req decideRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}

	err = h.requests.Decide(r.Context(), requestID, actorFrom(r),
		domain.DecisionAction(req.Action), req.RejectionReason)
	if err != nil {
		respondError(w, err)
		return
	}

	middleware.DeleteRequestsTotal.WithLabelValues(req.Action).Inc()
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
