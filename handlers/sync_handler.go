package handlers

import (
	"log/slog"
	"net/http"

	"github.com/beachref/livesync/services"
)

type SyncHandler struct {
	gate      services.ScheduleGate
	syncSvc   services.SyncService
	scheduler *services.PriorityScheduler
	logger    *slog.Logger
}

func NewSyncHandler(gate services.ScheduleGate, syncSvc services.SyncService, scheduler *services.PriorityScheduler, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		gate:      gate,
		syncSvc:   syncSvc,
		scheduler: scheduler,
		logger:    logger,
	}
}

// TriggerLiveScoreSync is the cron-facing entry point. The gate decides
// whether a pass runs; a skipped pass is still a success from the caller's
// point of view. Expected failures never produce a non-2xx status, they are
// folded into the result's error list.
func (h *SyncHandler) TriggerLiveScoreSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.gate.IsActiveTournamentHour(ctx) {
		h.logger.Info("sync pass skipped, no active tournament window")
		env := triggerEnvelope(true, "result", jsonResponse{
			"skipped": true,
			"reason":  "no active tournament window",
		})
		if err := writeJSON(w, http.StatusOK, env); err != nil {
			serverErrorResponse(w, h.logger, err)
		}
		return
	}

	result := h.syncSvc.ExecuteLiveScoreSync(ctx)

	env := triggerEnvelope(true, "result", result)
	if err := writeJSON(w, http.StatusOK, env); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}

// Diagnostics exposes the scheduler's advisory bottleneck report and the
// current trailing-window resource usage. Read-only.
func (h *SyncHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	report := jsonResponse{
		"bottlenecks": h.scheduler.Diagnose(),
		"usage":       h.scheduler.Usage(),
	}
	if err := writeJSON(w, http.StatusOK, report); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}
