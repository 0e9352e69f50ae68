package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/beachref/livesync/models"
)

const (
	defaultBatchSize = 5
	minBatchSize     = 1
	maxBatchSize     = 8

	rateLimitWindow    = 60 * time.Second
	rateLimitPerWindow = 10

	highLatencyThreshold = 3000 * time.Millisecond
	lowLatencyThreshold  = 1000 * time.Millisecond
	lowSuccessRate       = 0.85
	highSuccessRate      = 0.95
)

// Tier scores. Ties keep discovery order, so equal-score tournaments are
// processed in the order the store returned them.
const (
	scoreFIVB  = 100
	scoreCEV   = 85
	scoreBPT   = 75
	scoreLocal = 65
)

// Bottleneck is one advisory finding of the scheduler's self-diagnosis. It
// never feeds back into scheduling decisions.
type Bottleneck struct {
	Flag string `json:"flag"`
	Hint string `json:"hint"`
}

// ResourceUsage is a read-only snapshot of the scheduler's trailing-window
// state, exposed for diagnostics.
type ResourceUsage struct {
	AverageLatency    time.Duration `json:"average_latency"`
	SuccessRate       float64       `json:"success_rate"`
	APICallsPerMinute float64       `json:"api_calls_per_minute"`
	BatchSize         int           `json:"batch_size"`
}

// PriorityScheduler ranks tournaments, enforces per-tournament call budgets
// and adapts the per-pass concurrency ceiling from rolling performance
// metrics. All state is held in the struct and shared by reference; nothing
// lives at package level, so reused execution environments never see hidden
// leftovers.
type PriorityScheduler struct {
	mu       sync.Mutex
	apiCalls map[int][]time.Time
	metrics  *PerformanceTracker
	now      func() time.Time
}

func NewPriorityScheduler(metrics *PerformanceTracker) *PriorityScheduler {
	return &PriorityScheduler{
		apiCalls: make(map[int][]time.Time),
		metrics:  metrics,
		now:      time.Now,
	}
}

// ClassifyTournament maps a tournament onto a tier by substring heuristics
// over its name and code. Pure function; exhaustive samples live in the
// tests.
func ClassifyTournament(t models.Tournament) (models.TournamentTier, int) {
	label := strings.ToLower(t.Name + " " + t.Code)
	switch {
	case strings.Contains(label, "world tour"),
		strings.Contains(label, "world championship"),
		strings.Contains(label, "fivb"):
		return models.TierFIVB, scoreFIVB
	case strings.Contains(label, "cev"),
		strings.Contains(label, "european"):
		return models.TierCEV, scoreCEV
	case strings.Contains(label, "bpt"),
		strings.Contains(label, "beach pro tour"),
		strings.Contains(label, "elite16"):
		return models.TierBPT, scoreBPT
	default:
		return models.TierLocal, scoreLocal
	}
}

// PrioritizeTournaments returns the tournaments wrapped with their tier and
// score, sorted by descending score. The sort is stable: ties preserve
// discovery order.
func (s *PriorityScheduler) PrioritizeTournaments(tournaments []models.Tournament) []models.TournamentPriority {
	prioritized := make([]models.TournamentPriority, 0, len(tournaments))
	for _, t := range tournaments {
		tier, score := ClassifyTournament(t)
		prioritized = append(prioritized, models.TournamentPriority{
			Tournament: t,
			Priority:   score,
			Tier:       tier,
		})
	}
	sort.SliceStable(prioritized, func(i, j int) bool {
		return prioritized[i].Priority > prioritized[j].Priority
	})
	return prioritized
}

// CanProcessTournament reports whether the tournament still has budget in its
// sliding 60-second call window. When the budget is exhausted the caller
// defers the tournament's remaining matches to the next pass instead of
// blocking.
func (s *PriorityScheduler) CanProcessTournament(tournamentNo int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pruneCallsLocked(tournamentNo)) < rateLimitPerWindow
}

// RecordAPICall charges one call against the tournament's window.
func (s *PriorityScheduler) RecordAPICall(tournamentNo int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	calls := s.pruneCallsLocked(tournamentNo)
	s.apiCalls[tournamentNo] = append(calls, s.now())
}

func (s *PriorityScheduler) pruneCallsLocked(tournamentNo int) []time.Time {
	cutoff := s.now().Add(-rateLimitWindow)
	calls := s.apiCalls[tournamentNo][:0]
	for _, at := range s.apiCalls[tournamentNo] {
		if at.After(cutoff) {
			calls = append(calls, at)
		}
	}
	s.apiCalls[tournamentNo] = calls
	return calls
}

// RecordOperation feeds one external-call sample into the rolling metrics.
func (s *PriorityScheduler) RecordOperation(duration time.Duration, success bool) {
	s.metrics.RecordOperation(duration, success)
}

// GetOptimalBatchSize recomputes the per-pass concurrency ceiling from the
// trailing-window metrics. The rule is recomputed from the default every
// pass, so it is monotonic in the inputs and carries no oscillation state:
// high latency shrinks the ceiling by 30%, a low success rate shrinks it by
// a further 20%, and only a clearly healthy window grows it by one step.
// The result is clamped to [1, 8].
func (s *PriorityScheduler) GetOptimalBatchSize() int {
	latency := s.metrics.AverageLatency()
	successRate := s.metrics.SuccessRate()

	size := float64(defaultBatchSize)
	if latency > highLatencyThreshold {
		size *= 0.7
	}
	if successRate < lowSuccessRate {
		size *= 0.8
	}
	if latency > 0 && latency < lowLatencyThreshold && successRate > highSuccessRate {
		size++
	}

	batch := int(size)
	if batch < minBatchSize {
		batch = minBatchSize
	}
	if batch > maxBatchSize {
		batch = maxBatchSize
	}
	return batch
}

// Diagnose reports advisory bottleneck findings with remediation hints. The
// report never alters scheduler behavior.
func (s *PriorityScheduler) Diagnose() []Bottleneck {
	findings := make([]Bottleneck, 0)

	if latency := s.metrics.AverageLatency(); latency > highLatencyThreshold {
		findings = append(findings, Bottleneck{
			Flag: "high API latency",
			Hint: "upstream responses are slow; the batch size has been reduced, verify upstream availability",
		})
	}
	if rate := s.metrics.SuccessRate(); rate < lowSuccessRate {
		findings = append(findings, Bottleneck{
			Flag: "low success rate",
			Hint: "more than 15% of upstream calls fail; check credentials and upstream status",
		})
	}

	s.mu.Lock()
	approaching := false
	cutoff := s.now().Add(-rateLimitWindow)
	for _, calls := range s.apiCalls {
		recent := 0
		for _, at := range calls {
			if at.After(cutoff) {
				recent++
			}
		}
		if float64(recent) >= 0.8*float64(rateLimitPerWindow) {
			approaching = true
			break
		}
	}
	s.mu.Unlock()

	if approaching {
		findings = append(findings, Bottleneck{
			Flag: "approaching rate limit",
			Hint: "a tournament is near its per-minute call budget; remaining matches will defer to the next pass",
		})
	}
	return findings
}

// Usage returns the current trailing-window snapshot.
func (s *PriorityScheduler) Usage() ResourceUsage {
	return ResourceUsage{
		AverageLatency:    s.metrics.AverageLatency(),
		SuccessRate:       s.metrics.SuccessRate(),
		APICallsPerMinute: s.metrics.CallsPerMinute(),
		BatchSize:         s.GetOptimalBatchSize(),
	}
}
