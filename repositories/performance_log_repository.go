package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/beachref/livesync/models"
)

type PerformanceLogRepository interface {
	Insert(ctx context.Context, log *models.PerformanceLog) error
}

type postgresPerformanceLogRepository struct {
	db *sql.DB
}

func NewPostgresPerformanceLogRepository(db *sql.DB) PerformanceLogRepository {
	return &postgresPerformanceLogRepository{db: db}
}

func (r *postgresPerformanceLogRepository) Insert(ctx context.Context, log *models.PerformanceLog) error {
	query := `
		INSERT INTO sync_performance_logs (
			timestamp, concurrent_tournaments, total_matches,
			api_calls_per_minute, average_response_time, error_rate, function_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		log.Timestamp, log.ConcurrentTournaments, log.TotalMatches,
		log.APICallsPerMinute, log.AverageResponseTime.Milliseconds(), log.ErrorRate, log.FunctionType,
	)
	if err != nil {
		return fmt.Errorf("failed to insert performance log: %w", err)
	}
	return nil
}
