package models

import (
	"strings"
	"time"
)

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusLive       MatchStatus = "live"
	MatchStatusRunning    MatchStatus = "running"
	MatchStatusInProgress MatchStatus = "inprogress"
	MatchStatusFinished   MatchStatus = "finished"
	MatchStatusCanceled   MatchStatus = "canceled"
)

// LiveEligibleStatuses are the statuses that mark a match as actively played
// and therefore a candidate for score synchronization.
var LiveEligibleStatuses = []MatchStatus{
	MatchStatusLive,
	MatchStatusRunning,
	MatchStatusInProgress,
}

// IsLiveEligible reports whether a status string (case-insensitive) marks a
// match as actively played.
func IsLiveEligible(status MatchStatus) bool {
	s := MatchStatus(strings.ToLower(string(status)))
	for _, live := range LiveEligibleStatuses {
		if s == live {
			return true
		}
	}
	return false
}

// Match mirrors a row of the matches table. live_updated_at is stamped by a
// storage trigger on any score-field change, so score columns must only be
// written when they actually differ.
type Match struct {
	No             int         `json:"no" db:"no"`
	TournamentNo   int         `json:"tournament_no" db:"tournament_no"`
	NoInTournament int         `json:"no_in_tournament" db:"no_in_tournament"`
	TeamAName      string      `json:"team_a_name" db:"team_a_name"`
	TeamBName      string      `json:"team_b_name" db:"team_b_name"`
	Status         MatchStatus `json:"status" db:"status"`
	Score          MatchScore  `json:"score"`
	LiveUpdatedAt  *time.Time  `json:"live_updated_at,omitempty" db:"live_updated_at"`
}

// MatchScore groups every column the storage trigger watches. Comparing two
// MatchScore values field-wise is the authoritative "score changed" check.
type MatchScore struct {
	MatchPointsA   int    `json:"match_points_a" db:"match_points_a"`
	MatchPointsB   int    `json:"match_points_b" db:"match_points_b"`
	PointsTeamASet [3]int `json:"points_team_a_sets"`
	PointsTeamBSet [3]int `json:"points_team_b_sets"`
}

// Equal reports whether no watched score column differs.
func (s MatchScore) Equal(other MatchScore) bool {
	return s == other
}
