package models

import "time"

type MatchKind string

const (
	KindSingles MatchKind = "singles"
	KindDoubles MatchKind = "doubles"
	KindMixed   MatchKind = "mixed"
)

type MatchSide string

const (
	SideTeamA MatchSide = "teamA"
	SideTeamB MatchSide = "teamB"
)

// MatchResult is the outcome of a match from the recording user's
// perspective. It is derived once when the match is written and is the
// only field consumers should use for win/loss decisions.
type MatchResult string

const (
	ResultWin  MatchResult = "win"
	ResultLoss MatchResult = "loss"
)

type MatchMedia struct {
	Photos []string `json:"photos"`
	Videos []string `json:"videos"`
}

// Match is a single recorded game. Team A is always the side of the
// recording user; Winner must correspond to the strictly higher score,
// which the match service guarantees at creation time.
type Match struct {
	ID              int         `json:"id" db:"id"`
	Kind            MatchKind   `json:"kind" db:"kind"`
	TeamA           []string    `json:"team_a" db:"team_a"`
	TeamB           []string    `json:"team_b" db:"team_b"`
	ScoreA          int         `json:"score_a" db:"score_a"`
	ScoreB          int         `json:"score_b" db:"score_b"`
	Winner          MatchSide   `json:"winner" db:"winner"`
	Result          MatchResult `json:"result" db:"result"`
	DurationMinutes int         `json:"duration_minutes" db:"duration_minutes"`
	Venue           string      `json:"venue" db:"venue"`
	PlayedAt        time.Time   `json:"played_at" db:"played_at"`
	Notes           string      `json:"notes,omitempty" db:"notes"`
	Tags            []string    `json:"tags" db:"tags"`
	Media           MatchMedia  `json:"media" db:"-"`
	CreatedBy       int         `json:"created_by" db:"created_by"`
	ConfirmedBy     []int64     `json:"confirmed_by" db:"confirmed_by"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// IsConfirmedBy reports whether the given user already confirmed the result.
func (m *Match) IsConfirmedBy(userID int) bool {
	for _, id := range m.ConfirmedBy {
		if id == int64(userID) {
			return true
		}
	}
	return false
}
