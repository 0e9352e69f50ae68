package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
)

type HealthHandler struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewHealthHandler(db *sql.DB, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Error("health check failed", slog.Any("error", err))
		_ = writeJSON(w, http.StatusServiceUnavailable, jsonResponse{"status": "unavailable"})
		return
	}
	_ = writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"})
}
