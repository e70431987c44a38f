package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/otcheredev/clinic-management/internal/policy"
	"github.com/otcheredev/clinic-management/internal/services"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to transport status codes. Existence is
// resolved before authorization in the service layer, so a missing row is
// reported as 404 even when access would also have been denied.
func writeError(w http.ResponseWriter, err error) {
	var deniedErr *services.ErrDenied
	var conflictErr *services.ErrConflict

	switch {
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Resource not found"})
	case errors.Is(err, services.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid credentials"})
	case errors.As(err, &deniedErr):
		if deniedErr.Reason == policy.ReasonInvalidTenantAssignment {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid clinic or branch assignment"})
			return
		}
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "Insufficient permissions"})
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: conflictErr.Message})
	default:
		log.Error().Err(err).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}
