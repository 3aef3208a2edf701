package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/inkwell-app/inkwell-be/internal/apperr"
)

// errorEnvelope is the uniform failure shape every operation reports with.
type errorEnvelope struct {
	Message string                  `json:"message"`
	Status  int                     `json:"status"`
	Data    []apperr.FieldViolation `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError normalizes any failure into the client envelope. Errors outside
// the taxonomy are logged server-side and served as a bare 500.
func writeError(w http.ResponseWriter, err error) {
	appErr := apperr.From(err)
	if appErr.Status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Unclassified operation failure")
	}
	writeJSON(w, appErr.Status, errorEnvelope{
		Message: appErr.Message,
		Status:  appErr.Status,
		Data:    appErr.Violations,
	})
}
