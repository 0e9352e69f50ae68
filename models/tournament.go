package models

import "time"

// TournamentStatus mirrors the status ENUM of the tournaments table.
type TournamentStatus string

const (
	TournamentStatusUpcoming TournamentStatus = "Upcoming"
	TournamentStatusRunning  TournamentStatus = "Running"
	TournamentStatusFinished TournamentStatus = "Finished"
	TournamentStatusCanceled TournamentStatus = "Canceled"
)

// Tournament is a read-only mirror of a tournament row kept in sync from the
// federation data source. This service never mutates tournaments.
type Tournament struct {
	No        int              `json:"no" db:"no"`
	Code      string           `json:"code" db:"code"`
	Name      string           `json:"name" db:"name"`
	Status    TournamentStatus `json:"status" db:"status"`
	StartDate time.Time        `json:"start_date" db:"start_date"`
	EndDate   time.Time        `json:"end_date" db:"end_date"`
}

// TournamentTier classifies a tournament by federation level. Derived from
// name/code substrings, never stored.
type TournamentTier string

const (
	TierFIVB  TournamentTier = "FIVB"
	TierCEV   TournamentTier = "CEV"
	TierBPT   TournamentTier = "BPT"
	TierLocal TournamentTier = "LOCAL"
)

// TournamentPriority wraps a tournament with its computed processing
// priority for a single sync pass.
type TournamentPriority struct {
	Tournament Tournament     `json:"tournament"`
	Priority   int            `json:"priority"`
	Tier       TournamentTier `json:"tier"`
}
