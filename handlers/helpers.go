package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

type jsonResponse map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// triggerEnvelope is the {success, result|error, timestamp} contract of the
// sync trigger endpoint.
func triggerEnvelope(success bool, key string, value interface{}) jsonResponse {
	return jsonResponse{
		"success":   success,
		key:         value,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}

func serverErrorResponse(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("request failed", slog.Any("error", err))
	env := triggerEnvelope(false, "error", "the server encountered a problem and could not process your request")
	if writeErr := writeJSON(w, http.StatusInternalServerError, env); writeErr != nil {
		logger.Error("failed to write error response", slog.Any("error", writeErr))
		w.WriteHeader(http.StatusInternalServerError)
	}
}
