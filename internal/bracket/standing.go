package bracket

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Standing is a cached, fully recomputable table row for one participant in
// one tournament, either overall (nil group) or within a group.
type Standing struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	TournamentID    uuid.UUID       `db:"tournament_id" json:"tournament_id"`
	ParticipantID   uuid.UUID       `db:"participant_id" json:"participant_id"`
	GroupName       *string         `db:"group_name" json:"group_name,omitempty"`
	MatchesPlayed   int             `db:"matches_played" json:"matches_played"`
	MatchesWon      int             `db:"matches_won" json:"matches_won"`
	MatchesDrawn    int             `db:"matches_drawn" json:"matches_drawn"`
	MatchesLost     int             `db:"matches_lost" json:"matches_lost"`
	Points          int             `db:"points" json:"points"`
	ScoreFor        decimal.Decimal `db:"score_for" json:"score_for"`
	ScoreAgainst    decimal.Decimal `db:"score_against" json:"score_against"`
	ScoreDifference decimal.Decimal `db:"score_difference" json:"score_difference"`
	CurrentRank     *int            `db:"current_rank" json:"current_rank,omitempty"`
	PreviousRank    *int            `db:"previous_rank" json:"previous_rank,omitempty"`
	RecentForm      string          `db:"recent_form" json:"recent_form"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`

	ParticipantName string `db:"participant_name" json:"participant_name,omitempty"`
}

// Reset zeroes the counters while keeping identity and rank history.
func (s *Standing) Reset() {
	s.MatchesPlayed = 0
	s.MatchesWon = 0
	s.MatchesDrawn = 0
	s.MatchesLost = 0
	s.Points = 0
	s.ScoreFor = decimal.Zero
	s.ScoreAgainst = decimal.Zero
	s.ScoreDifference = decimal.Zero
	s.RecentForm = ""
}

// RankMovement is positive when the participant climbed since the previous
// recomputation.
func (s *Standing) RankMovement() int {
	if s.CurrentRank == nil || s.PreviousRank == nil {
		return 0
	}
	return *s.PreviousRank - *s.CurrentRank
}
