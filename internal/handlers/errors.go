package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeMessage is the envelope every failure response uses.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// internalError logs the cause and hides it from the caller.
func internalError(w http.ResponseWriter, logger *slog.Logger, message string, err error) {
	logger.Error(message, "err", err)
	writeMessage(w, http.StatusInternalServerError, message)
}
