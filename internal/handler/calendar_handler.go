package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"paperarchive/internal/domain"
	"paperarchive/internal/service"
)

type CalendarHandler struct {
	calendar *service.CalendarService
}

func NewCalendarHandler(calendar *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar}
}

type eventPayload struct {
	Title    string `json:"title" validate:"required"`
	Kind     string `json:"kind" validate:"required,oneof=exam_period holiday registration deadline"`
	StartsAt string `json:"starts_at" validate:"required"`
	EndsAt   string `json:"ends_at" validate:"required"`
}

func (p eventPayload) toDomain() (*domain.AcademicEvent, error) {
	starts, err := time.Parse(time.RFC3339, p.StartsAt)
	if err != nil {
		return nil, domain.ValidationError("invalid starts_at timestamp")
	}
	ends, err := time.Parse(time.RFC3339, p.EndsAt)
	if err != nil {
		return nil, domain.ValidationError("invalid ends_at timestamp")
	}
	return &domain.AcademicEvent{
		Title:    p.Title,
		Kind:     domain.EventKind(p.Kind),
		StartsAt: starts,
		EndsAt:   ends,
	}, nil
}

func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventPayload
	if err := decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}

	ev, err := req.toDomain()
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.calendar.Create(r.Context(), actorFrom(r), ev); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ev)
}

// ListRange returns events overlapping [from, to]; defaults to the current
// academic year window when no bounds are given.
func (h *CalendarHandler) ListRange(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from := now.AddDate(0, -6, 0)
	to := now.AddDate(0, 6, 0)

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, domain.ValidationError("invalid from date"))
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, domain.ValidationError("invalid to date"))
			return
		}
		to = parsed
	}

	events, err := h.calendar.ListRange(r.Context(), from, to)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

func (h *CalendarHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, domain.ValidationError("invalid event id"))
		return
	}

	var req eventPayload
	if err := decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}

	ev, err := req.toDomain()
	if err != nil {
		respondError(w, err)
		return
	}
	ev.ID = id
	if err := h.calendar.Update(r.Context(), actorFrom(r), ev); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ev)
}

func (h *CalendarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, domain.ValidationError("invalid event id"))
		return
	}

	if err := h.calendar.Delete(r.Context(), actorFrom(r), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
