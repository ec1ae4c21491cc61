package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soochol/medsum/internal/medsum"
)

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError renders domain errors with their own status and message.
// Anything else is a 500 carrying fallback and the raw error text.
func (s *Server) writeError(w http.ResponseWriter, err error, fallback string) {
	var me *medsum.Error
	if errors.As(err, &me) {
		writeJSON(w, me.Status, errorResponse{Message: me.Message})
		return
	}
	s.logger.Error("http.unexpected_error", "message", fallback, "err", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Message: fallback, Error: err.Error()})
}
