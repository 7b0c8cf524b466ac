package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/voxgate/recordings-gateway/auth"
	"github.com/voxgate/recordings-gateway/guard"
	"github.com/voxgate/recordings-gateway/objectstore"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusForError maps domain errors to HTTP status codes and terse,
// non-distinguishing client messages. Real causes stay in server-side logs.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrAuthentication):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, auth.ErrInvalidCredential):
		return http.StatusUnauthorized, "invalid or expired credential"
	case errors.Is(err, guard.ErrAuthorization):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, objectstore.ErrNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, "unable to complete request"
	}
}

func writeDomainError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status, message := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeError(w, log, status, message)
}

func writeError(w http.ResponseWriter, log zerolog.Logger, status int, message string) {
	writeJSON(w, log, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Debug().Err(err).Msg("failed writing response body")
	}
}
