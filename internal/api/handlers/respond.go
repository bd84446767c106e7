package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/inkpost-be/internal/auth"
	"github.com/isdelr/inkpost-be/internal/media"
	"github.com/isdelr/inkpost-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

var errPayloadTooLarge = errors.New("request body too large")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps the service error taxonomy onto HTTP status codes. Internal
// failures are logged and reported without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidCredentials):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, "invalid auth token"
	case errors.Is(err, services.ErrForbidden):
		status, msg = http.StatusForbidden, "you are not the author of this post"
	case errors.Is(err, services.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, services.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, errPayloadTooLarge):
		status, msg = http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, media.ErrUploadFailed):
		msg = "failed to upload media"
	}

	logger := hlog.FromRequest(r)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
