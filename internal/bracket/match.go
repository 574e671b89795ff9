package bracket

import (
	"time"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseKnockout   Phase = "knockout"
	PhaseRoundRobin Phase = "round_robin"
	PhaseGroupStage Phase = "group_stage"
)

type TeamSide string

const (
	HomeSide TeamSide = "home"
	AwaySide TeamSide = "away"
)

// SideForSlot tags the first two slots of a head-to-head match.
func SideForSlot(slot, slotCount int) *TeamSide {
	if slotCount != 2 {
		return nil
	}
	side := HomeSide
	if slot == 2 {
		side = AwaySide
	}
	return &side
}

type Match struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`

	// Position in the schedule
	RoundNumber int     `db:"round_number" json:"round_number"`
	MatchNumber int     `db:"match_number" json:"match_number"`
	RoundName   string  `db:"round_name" json:"round_name"`
	GroupName   *string `db:"group_name" json:"group_name,omitempty"`
	Phase       Phase   `db:"phase" json:"phase"`

	Status              MatchStatus  `db:"status" json:"status"`
	IsBye               bool         `db:"is_bye" json:"is_bye"`
	IsFinished          bool         `db:"is_finished" json:"is_finished"`
	WinnerParticipantID *uuid.UUID   `db:"winner_participant_id" json:"winner_participant_id,omitempty"`
	ScoreData           ScorePayload `db:"score_data" json:"score_data,omitempty"`

	DependentOnMatchIDs MatchIDs   `db:"dependent_on_match_ids" json:"dependent_on_match_ids,omitempty"`
	FeedsIntoMatchID    *uuid.UUID `db:"feeds_into_match_id" json:"feeds_into_match_id,omitempty"`

	ActualStart *time.Time `db:"actual_start" json:"actual_start,omitempty"`
	ActualEnd   *time.Time `db:"actual_end" json:"actual_end,omitempty"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Participants []MatchParticipant `db:"-" json:"participants"`
}

type MatchParticipant struct {
	ID             uuid.UUID    `db:"id" json:"id"`
	MatchID        uuid.UUID    `db:"match_id" json:"match_id"`
	ParticipantID  uuid.UUID    `db:"participant_id" json:"participant_id"`
	SlotNumber     int          `db:"slot_number" json:"slot_number"`
	TeamSide       *TeamSide    `db:"team_side" json:"team_side,omitempty"`
	FinalPosition  *int         `db:"final_position" json:"final_position,omitempty"`
	ScoreValue     Score        `db:"score_value" json:"score_value"`
	ResultTimeMS   *int64       `db:"result_time_ms" json:"result_time_ms,omitempty"`
	IsWinner       bool         `db:"is_winner" json:"is_winner"`
	IsDisqualified bool         `db:"is_disqualified" json:"is_disqualified"`
	DetailedScore  ScorePayload `db:"detailed_score" json:"detailed_score,omitempty"`
}

func (m *Match) Slot(participantID uuid.UUID) *MatchParticipant {
	for i := range m.Participants {
		if m.Participants[i].ParticipantID == participantID {
			return &m.Participants[i]
		}
	}
	return nil
}

func (m *Match) IsWinner(participantID uuid.UUID) bool {
	return m.IsFinished && m.WinnerParticipantID != nil && *m.WinnerParticipantID == participantID
}

func (m *Match) IsLoser(participantID uuid.UUID) bool {
	return m.IsFinished && m.WinnerParticipantID != nil && *m.WinnerParticipantID != participantID && m.Slot(participantID) != nil
}

// FeederSlot returns the 1-based slot an upstream match's winner occupies in
// this match, or 0 when upstreamID is not a dependency.
func (m *Match) FeederSlot(upstreamID uuid.UUID) int {
	for i, id := range m.DependentOnMatchIDs {
		if id == upstreamID {
			return i + 1
		}
	}
	return 0
}
