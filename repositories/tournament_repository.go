package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/beachref/livesync/models"
)

type TournamentRepository interface {
	ListByStatus(ctx context.Context, status models.TournamentStatus) ([]models.Tournament, error)
	CountActiveWithin(ctx context.Context, day time.Time) (int, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) ListByStatus(ctx context.Context, status models.TournamentStatus) ([]models.Tournament, error) {
	query := `
		SELECT no, code, name, status, start_date, end_date
		FROM tournaments
		WHERE status = $1
		ORDER BY start_date, no`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments with status %s: %w", status, err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(&t.No, &t.Code, &t.Name, &t.Status, &t.StartDate, &t.EndDate); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

// CountActiveWithin counts Running tournaments whose window still covers the
// given day. end_date is a date column, so the comparison happens at date
// granularity: a tournament stays active through the whole of its final day,
// inclusive on both ends.
func (r *postgresTournamentRepository) CountActiveWithin(ctx context.Context, day time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM tournaments
		WHERE status = $1 AND end_date >= $2`

	var count int
	err := r.db.QueryRowContext(ctx, query, models.TournamentStatusRunning, day.Format("2006-01-02")).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active tournaments: %w", err)
	}
	return count, nil
}
