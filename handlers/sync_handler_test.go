package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/beachref/livesync/models"
	"github.com/beachref/livesync/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGate struct{ active bool }

func (g stubGate) IsActiveTournamentHour(ctx context.Context) bool { return g.active }

type stubSyncService struct {
	result *models.SyncResult
	called bool
}

func (s *stubSyncService) ExecuteLiveScoreSync(ctx context.Context) *models.SyncResult {
	s.called = true
	return s.result
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSyncHandler(active bool, result *models.SyncResult) (*SyncHandler, *stubSyncService) {
	svc := &stubSyncService{result: result}
	scheduler := services.NewPriorityScheduler(services.NewPerformanceTracker())
	return NewSyncHandler(stubGate{active: active}, svc, scheduler, testLogger()), svc
}

func TestTriggerLiveScoreSync(t *testing.T) {
	t.Run("runs a pass inside an active window", func(t *testing.T) {
		result := &models.SyncResult{
			TotalTournaments: 2,
			TotalMatches:     5,
			UpdatedMatches:   3,
			Errors:           []models.SyncError{},
			Duration:         1200 * time.Millisecond,
		}
		handler, svc := newTestSyncHandler(true, result)

		req := httptest.NewRequest(http.MethodPost, "/sync/live-scores", nil)
		rec := httptest.NewRecorder()
		handler.TriggerLiveScoreSync(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, svc.called)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])
		assert.NotEmpty(t, body["timestamp"])

		payload, ok := body["result"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(3), payload["updated_matches"])
	})

	t.Run("skips the pass outside an active window", func(t *testing.T) {
		handler, svc := newTestSyncHandler(false, nil)

		req := httptest.NewRequest(http.MethodPost, "/sync/live-scores", nil)
		rec := httptest.NewRecorder()
		handler.TriggerLiveScoreSync(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, svc.called, "no pass runs when the gate is closed")

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])

		payload, ok := body["result"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, true, payload["skipped"])
	})
}

func TestDiagnostics(t *testing.T) {
	handler, _ := newTestSyncHandler(true, nil)

	req := httptest.NewRequest(http.MethodGet, "/sync/diagnostics", nil)
	rec := httptest.NewRecorder()
	handler.Diagnostics(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "bottlenecks")
	assert.Contains(t, body, "usage")
}
