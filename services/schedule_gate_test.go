package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/beachref/livesync/models"
	"github.com/stretchr/testify/assert"
)

type fakeTournamentRepo struct {
	tournaments []models.Tournament
	activeCount int
	listErr     error
	countErr    error
	countedDay  time.Time
}

func (f *fakeTournamentRepo) ListByStatus(ctx context.Context, status models.TournamentStatus) ([]models.Tournament, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Tournament, 0)
	for _, t := range f.tournaments {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTournamentRepo) CountActiveWithin(ctx context.Context, day time.Time) (int, error) {
	f.countedDay = day
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.activeCount, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIsActiveTournamentHour(t *testing.T) {
	t.Run("running tournament within window", func(t *testing.T) {
		gate := NewScheduleGate(&fakeTournamentRepo{activeCount: 1}, discardLogger())
		assert.True(t, gate.IsActiveTournamentHour(context.Background()))
	})

	t.Run("no running tournament", func(t *testing.T) {
		gate := NewScheduleGate(&fakeTournamentRepo{activeCount: 0}, discardLogger())
		assert.False(t, gate.IsActiveTournamentHour(context.Background()))
	})

	t.Run("store error fails open", func(t *testing.T) {
		gate := NewScheduleGate(&fakeTournamentRepo{countErr: errors.New("connection refused")}, discardLogger())
		assert.True(t, gate.IsActiveTournamentHour(context.Background()),
			"a store error must not silently suspend synchronization")
	})

	t.Run("gate stays open through the whole final day", func(t *testing.T) {
		repo := &fakeTournamentRepo{activeCount: 1}
		gate := NewScheduleGate(repo, discardLogger()).(*scheduleGate)

		// Mid-afternoon on finals day. end_date is a date column, so the
		// store must be asked about the day, not the instant: an instant
		// comparison would close the gate at 00:01 of the last day.
		finalsAfternoon := time.Date(2026, time.August, 26, 14, 37, 12, 0, time.UTC)
		gate.now = func() time.Time { return finalsAfternoon }

		assert.True(t, gate.IsActiveTournamentHour(context.Background()))

		wantDay := time.Date(2026, time.August, 26, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, wantDay, repo.countedDay,
			"the store comparison must happen at date granularity")
	})
}
