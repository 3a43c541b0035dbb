package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"paperarchive/internal/domain"
	"paperarchive/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type userPayload struct {
	Subject  string `json:"subject" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin instructor"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userPayload
	if err := decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}

	user := &domain.User{
		Subject:  req.Subject,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     domain.Role(req.Role),
	}
	if err := h.users.Create(r.Context(), actorFrom(r), user); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), actorFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

type userUpdatePayload struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin instructor"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, domain.ValidationError("invalid user id"))
		return
	}

	var req userUpdatePayload
	if err := decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}

	user := &domain.User{
		ID:       id,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     domain.Role(req.Role),
	}
	if err := h.users.Update(r.Context(), actorFrom(r), user); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, domain.ValidationError("invalid user id"))
		return
	}

	if err := h.users.Delete(r.Context(), actorFrom(r), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
