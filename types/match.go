package types

import "time"

// Match statuses.
const (
	MatchScheduled = "scheduled"
	MatchPlayed    = "played"
	MatchCancelled = "cancelled"
)

// Match is a fixture on the club schedule. Scores are only meaningful once
// Status is "played".
type Match struct {
	ID          string    `json:"id" db:"id"`
	Competition string    `json:"competition" db:"competition"`
	Opponent    string    `json:"opponent" db:"opponent"`
	Venue       string    `json:"venue" db:"venue"`
	KickoffAt   time.Time `json:"kickoff_at" db:"kickoff_at"`
	Home        bool      `json:"home" db:"home"`
	HomeScore   int       `json:"home_score" db:"home_score"`
	AwayScore   int       `json:"away_score" db:"away_score"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
