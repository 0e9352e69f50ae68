package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/beachref/livesync/models"
	"github.com/lib/pq"
)

var ErrMatchInvalidTournament = errors.New("invalid tournament reference")

type MatchRepository interface {
	ListLiveByTournament(ctx context.Context, tournamentNo int) ([]models.Match, error)
	// UpsertScore writes the status and score columns of a match only when
	// they differ from what is stored, so the live_updated_at trigger fires
	// only on a genuine score change. Returns true when a row was written.
	UpsertScore(ctx context.Context, exec SQLExecutor, match *models.Match) (bool, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	no, tournament_no, no_in_tournament, team_a_name, team_b_name, status,
	match_points_a, match_points_b,
	points_team_a_set1, points_team_a_set2, points_team_a_set3,
	points_team_b_set1, points_team_b_set2, points_team_b_set3,
	live_updated_at`

func scanMatch(scanner interface {
	Scan(dest ...interface{}) error
}, m *models.Match) error {
	return scanner.Scan(
		&m.No, &m.TournamentNo, &m.NoInTournament, &m.TeamAName, &m.TeamBName, &m.Status,
		&m.Score.MatchPointsA, &m.Score.MatchPointsB,
		&m.Score.PointsTeamASet[0], &m.Score.PointsTeamASet[1], &m.Score.PointsTeamASet[2],
		&m.Score.PointsTeamBSet[0], &m.Score.PointsTeamBSet[1], &m.Score.PointsTeamBSet[2],
		&m.LiveUpdatedAt,
	)
}

func (r *postgresMatchRepository) ListLiveByTournament(ctx context.Context, tournamentNo int) ([]models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE tournament_no = $1 AND lower(status) = ANY($2)
		ORDER BY no_in_tournament, no`

	statuses := make([]string, 0, len(models.LiveEligibleStatuses))
	for _, s := range models.LiveEligibleStatuses {
		statuses = append(statuses, string(s))
	}

	rows, err := r.db.QueryContext(ctx, query, tournamentNo, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("failed to list live matches for tournament %d: %w", tournamentNo, err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := scanMatch(rows, &m); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpsertScore(ctx context.Context, exec SQLExecutor, match *models.Match) (bool, error) {
	executor := r.getExecutor(exec)
	// IS DISTINCT FROM makes an identical re-write a no-op, which keeps
	// live_updated_at untouched and the pass idempotent under overlapping
	// invocations.
	query := `
		INSERT INTO matches (
			no, tournament_no, no_in_tournament, team_a_name, team_b_name, status,
			match_points_a, match_points_b,
			points_team_a_set1, points_team_a_set2, points_team_a_set3,
			points_team_b_set1, points_team_b_set2, points_team_b_set3
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (no) DO UPDATE SET
			status = EXCLUDED.status,
			match_points_a = EXCLUDED.match_points_a,
			match_points_b = EXCLUDED.match_points_b,
			points_team_a_set1 = EXCLUDED.points_team_a_set1,
			points_team_a_set2 = EXCLUDED.points_team_a_set2,
			points_team_a_set3 = EXCLUDED.points_team_a_set3,
			points_team_b_set1 = EXCLUDED.points_team_b_set1,
			points_team_b_set2 = EXCLUDED.points_team_b_set2,
			points_team_b_set3 = EXCLUDED.points_team_b_set3
		WHERE (
			matches.status,
			matches.match_points_a, matches.match_points_b,
			matches.points_team_a_set1, matches.points_team_a_set2, matches.points_team_a_set3,
			matches.points_team_b_set1, matches.points_team_b_set2, matches.points_team_b_set3
		) IS DISTINCT FROM (
			EXCLUDED.status,
			EXCLUDED.match_points_a, EXCLUDED.match_points_b,
			EXCLUDED.points_team_a_set1, EXCLUDED.points_team_a_set2, EXCLUDED.points_team_a_set3,
			EXCLUDED.points_team_b_set1, EXCLUDED.points_team_b_set2, EXCLUDED.points_team_b_set3
		)`

	result, err := executor.ExecContext(ctx, query,
		match.No, match.TournamentNo, match.NoInTournament, match.TeamAName, match.TeamBName, match.Status,
		match.Score.MatchPointsA, match.Score.MatchPointsB,
		match.Score.PointsTeamASet[0], match.Score.PointsTeamASet[1], match.Score.PointsTeamASet[2],
		match.Score.PointsTeamBSet[0], match.Score.PointsTeamBSet[1], match.Score.PointsTeamBSet[2],
	)
	if err != nil {
		return false, r.handleMatchError(match.No, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows for match %d: %w", match.No, err)
	}
	return rowsAffected > 0, nil
}

func (r *postgresMatchRepository) handleMatchError(matchNo int, err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" {
			return fmt.Errorf("match %d: %w", matchNo, ErrMatchInvalidTournament)
		}
	}
	return fmt.Errorf("failed to upsert score for match %d: %w", matchNo, err)
}
