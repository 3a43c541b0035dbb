package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"paperarchive/internal/domain"
)

// validate checks request payload structs. Tag names follow the JSON field
// names so validation errors read like the wire format.
var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// respondError maps the domain error kinds to HTTP statuses. Anything
// unrecognized is logged and reported as a 500 without leaking detail.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		respondJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		respondJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		log.Printf("internal error: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

// decodeValid decodes the JSON body into v and runs struct validation.
func decodeValid(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ValidationError("invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		return domain.ValidationError("%s", err.Error())
	}
	return nil
}
