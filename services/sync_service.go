package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/beachref/livesync/models"
	"github.com/beachref/livesync/repositories"
	"github.com/beachref/livesync/storage"
	"github.com/beachref/livesync/vis"
	"golang.org/x/sync/errgroup"
)

// SyncService runs one full live-score synchronization pass.
type SyncService interface {
	// ExecuteLiveScoreSync never returns an error for expected failure
	// modes; every failed unit is folded into the result's error list.
	ExecuteLiveScoreSync(ctx context.Context) *models.SyncResult
}

type syncService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	perfLogRepo    repositories.PerformanceLogRepository
	visClient      vis.Client
	scheduler      *PriorityScheduler
	archiver       storage.FileUploader // nil when archiving is disabled
	logger         *slog.Logger
	now            func() time.Time
}

func NewSyncService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	perfLogRepo repositories.PerformanceLogRepository,
	visClient vis.Client,
	scheduler *PriorityScheduler,
	archiver storage.FileUploader,
	logger *slog.Logger,
) SyncService {
	return &syncService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		perfLogRepo:    perfLogRepo,
		visClient:      visClient,
		scheduler:      scheduler,
		archiver:       archiver,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *syncService) ExecuteLiveScoreSync(ctx context.Context) *models.SyncResult {
	start := s.now()
	result := &models.SyncResult{
		StartedAt: start,
		Errors:    []models.SyncError{},
	}

	tournaments, err := s.tournamentRepo.ListByStatus(ctx, models.TournamentStatusRunning)
	if err != nil {
		// Pass-level failure: nothing to iterate, record and return a
		// structured summary instead of surfacing the error.
		result.Errors = append(result.Errors, HandleSyncError(err, models.ErrorContext{
			Function:  "ListTournaments",
			Timestamp: s.now(),
		}))
		result.Duration = time.Since(start)
		return result
	}

	if len(tournaments) == 0 {
		// Short-circuit: no external call may happen outside a tournament.
		result.Duration = time.Since(start)
		return result
	}

	result.TotalTournaments = len(tournaments)
	prioritized := s.scheduler.PrioritizeTournaments(tournaments)

	batchSize := s.scheduler.GetOptimalBatchSize()
	if len(prioritized) > batchSize {
		s.logger.Info("deferring lower-priority tournaments to next pass",
			slog.Int("running", len(prioritized)),
			slog.Int("batch_size", batchSize),
		)
		prioritized = prioritized[:batchSize]
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(batchSize)

	for _, tp := range prioritized {
		tp := tp
		g.Go(func() error {
			s.syncTournament(gCtx, tp, result, &mu)
			return nil
		})
	}
	// Goroutines never return errors; failures land in result.Errors.
	_ = g.Wait()

	result.Duration = time.Since(start)

	s.logger.Info("live score sync pass finished",
		slog.Int("tournaments", result.TotalTournaments),
		slog.Int("matches", result.TotalMatches),
		slog.Int("updated", result.UpdatedMatches),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("duration", result.Duration),
	)

	s.logPerformance(ctx, result, batchSize)
	s.archiveResult(ctx, result)

	return result
}

// syncTournament lists a tournament's live-eligible matches and synchronizes
// each one, respecting the tournament's call budget. All outcome writes go
// through mu.
func (s *syncService) syncTournament(ctx context.Context, tp models.TournamentPriority, result *models.SyncResult, mu *sync.Mutex) {
	tournamentNo := tp.Tournament.No

	matches, err := s.matchRepo.ListLiveByTournament(ctx, tournamentNo)
	if err != nil {
		// Pass-level: this tournament contributes zero matches, siblings
		// keep going.
		syncErr := HandleSyncError(err, models.ErrorContext{
			Function:     "ListLiveMatches",
			TournamentNo: tournamentNo,
			Timestamp:    s.now(),
		})
		mu.Lock()
		result.Errors = append(result.Errors, syncErr)
		mu.Unlock()
		return
	}

	mu.Lock()
	result.TotalMatches += len(matches)
	mu.Unlock()

	for i := range matches {
		if !s.scheduler.CanProcessTournament(tournamentNo) {
			// Budget exhausted: the remaining matches wait for the next
			// pass rather than blocking sibling tournaments.
			s.logger.Info("rate limit reached, deferring remaining matches",
				slog.Int("tournament_no", tournamentNo),
				slog.String("tier", string(tp.Tier)),
				slog.Int("deferred", len(matches)-i),
			)
			return
		}

		updated, err := s.syncMatch(ctx, &matches[i])
		mu.Lock()
		if err != nil {
			result.Errors = append(result.Errors, HandleMatchError(s.logger, err, models.ErrorContext{
				Function:     "SyncMatch",
				TournamentNo: tournamentNo,
				MatchNo:      matches[i].No,
				Timestamp:    s.now(),
			}))
		} else if updated {
			result.UpdatedMatches++
		}
		mu.Unlock()
	}
}

// syncMatch fetches the current upstream score for one match and writes it
// back only when it genuinely differs from the stored fields.
func (s *syncService) syncMatch(ctx context.Context, match *models.Match) (bool, error) {
	s.scheduler.RecordAPICall(match.TournamentNo)

	callStart := s.now()
	live, err := s.visClient.FetchLiveScore(ctx, match.No)
	s.scheduler.RecordOperation(time.Since(callStart), err == nil)
	if err != nil {
		return false, err
	}

	if live.Score.Equal(match.Score) && live.Status == match.Status {
		// Unchanged upstream: no write, live_updated_at stays put.
		return false, nil
	}

	match.Score = live.Score
	if live.Status != "" {
		match.Status = live.Status
	}

	updated, err := s.matchRepo.UpsertScore(ctx, nil, match)
	if err != nil {
		return false, err
	}
	return updated, nil
}

// logPerformance persists a best-effort row to sync_performance_logs. Its
// failure is logged and never affects the pass outcome.
func (s *syncService) logPerformance(ctx context.Context, result *models.SyncResult, batchSize int) {
	usage := s.scheduler.Usage()

	errorRate := 0.0
	if result.TotalMatches > 0 {
		errorRate = float64(len(result.Errors)) / float64(result.TotalMatches)
	}

	entry := &models.PerformanceLog{
		Timestamp:             result.StartedAt,
		ConcurrentTournaments: batchSize,
		TotalMatches:          result.TotalMatches,
		APICallsPerMinute:     usage.APICallsPerMinute,
		AverageResponseTime:   usage.AverageLatency,
		ErrorRate:             errorRate,
		FunctionType:          "live_score_sync",
	}
	if err := s.perfLogRepo.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to persist performance log", slog.Any("error", err))
	}
}

// archiveResult uploads the pass result as a JSON object when an archive
// uploader is configured. Best-effort by design.
func (s *syncService) archiveResult(ctx context.Context, result *models.SyncResult) {
	if s.archiver == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("failed to marshal sync result for archive", slog.Any("error", err))
		return
	}

	key := fmt.Sprintf("sync-results/%s.json", result.StartedAt.UTC().Format(time.RFC3339))
	if _, err := s.archiver.Upload(ctx, key, "application/json", bytes.NewReader(payload)); err != nil {
		s.logger.Warn("failed to archive sync result", slog.String("key", key), slog.Any("error", err))
		return
	}
	s.logger.Debug("sync result archived", slog.String("url", s.archiver.GetPublicURL(key)))
}
