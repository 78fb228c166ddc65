package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/squadup/app/internal/apperr"
)

// respondWithError sends a JSON error payload.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends any payload as JSON.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithAppError maps the engine's error taxonomy onto HTTP statuses.
// Storage errors come through as 500s without leaking the SQL detail.
func respondWithAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		respondWithError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, apperr.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, apperr.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "not found")
	case apperr.IsValidation(err):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("body", "malformed JSON: %v", err)
	}
	return nil
}
