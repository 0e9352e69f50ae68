package models

import "time"

// SyncResult is the aggregate outcome of one sync pass. It is returned to the
// trigger caller and optionally persisted as a performance log; it is never
// stored as domain state.
type SyncResult struct {
	TotalTournaments int           `json:"total_tournaments"`
	TotalMatches     int           `json:"total_matches"`
	UpdatedMatches   int           `json:"updated_matches"`
	Errors           []SyncError   `json:"errors"`
	Duration         time.Duration `json:"duration"`
	StartedAt        time.Time     `json:"started_at"`
}

// SyncError describes one failed unit of work inside a pass. ShouldRetry
// signals whether the next scheduled invocation is expected to succeed; no
// in-process retry is ever attempted.
type SyncError struct {
	Message     string       `json:"message"`
	ShouldRetry bool         `json:"should_retry"`
	Context     ErrorContext `json:"context"`
}

// ErrorContext identifies the failing unit of work.
type ErrorContext struct {
	Function     string    `json:"function"`
	TournamentNo int       `json:"tournament_no,omitempty"`
	MatchNo      int       `json:"match_no,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// PerformanceLog is one row of sync_performance_logs, the best-effort record
// of how a pass behaved.
type PerformanceLog struct {
	Timestamp             time.Time     `json:"timestamp" db:"timestamp"`
	ConcurrentTournaments int           `json:"concurrent_tournaments" db:"concurrent_tournaments"`
	TotalMatches          int           `json:"total_matches" db:"total_matches"`
	APICallsPerMinute     float64       `json:"api_calls_per_minute" db:"api_calls_per_minute"`
	AverageResponseTime   time.Duration `json:"average_response_time" db:"average_response_time"`
	ErrorRate             float64       `json:"error_rate" db:"error_rate"`
	FunctionType          string        `json:"function_type" db:"function_type"`
}
