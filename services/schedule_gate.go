package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/beachref/livesync/repositories"
)

// ScheduleGate decides whether a sync pass should run at all.
type ScheduleGate interface {
	IsActiveTournamentHour(ctx context.Context) bool
}

type scheduleGate struct {
	tournamentRepo repositories.TournamentRepository
	logger         *slog.Logger
	now            func() time.Time
}

func NewScheduleGate(tournamentRepo repositories.TournamentRepository, logger *slog.Logger) ScheduleGate {
	return &scheduleGate{
		tournamentRepo: tournamentRepo,
		logger:         logger,
		now:            time.Now,
	}
}

// IsActiveTournamentHour reports whether at least one Running tournament's
// window covers the current day. The check runs at date granularity — a
// tournament whose end_date is today stays active until midnight, not just
// at the first tick of the day. A store error fails open: a wasted pass is
// cheaper than a missed live update, so the gate answers true and lets the
// orchestrator decide.
func (g *scheduleGate) IsActiveTournamentHour(ctx context.Context) bool {
	now := g.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	count, err := g.tournamentRepo.CountActiveWithin(ctx, today)
	if err != nil {
		g.logger.Warn("schedule gate store check failed, failing open", slog.Any("error", err))
		return true
	}
	return count > 0
}
