package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentDraft            TournamentStatus = "draft"
	TournamentPublished        TournamentStatus = "published"
	TournamentRegistrationOpen TournamentStatus = "registration_open"
	TournamentActive           TournamentStatus = "active"
	TournamentCompleted        TournamentStatus = "completed"
	TournamentCancelled        TournamentStatus = "cancelled"
)

// AcceptsSchedule reports whether matches may still be generated for the tournament.
func (s TournamentStatus) AcceptsSchedule() bool {
	switch s {
	case TournamentDraft, TournamentPublished, TournamentRegistrationOpen, TournamentActive:
		return true
	}
	return false
}

type TournamentType string

const (
	Knockout   TournamentType = "knockout"
	RoundRobin TournamentType = "round_robin"
	GroupStage TournamentType = "group_stage"
	Swiss      TournamentType = "swiss"
	Custom     TournamentType = "custom"
)

func (t TournamentType) Valid() bool {
	switch t {
	case Knockout, RoundRobin, GroupStage, Swiss, Custom:
		return true
	}
	return false
}

type Tournament struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	OwnerID         uuid.UUID        `db:"owner_id" json:"owner_id"`
	Name            string           `db:"name" json:"name"`
	Status          TournamentStatus `db:"status" json:"status"`
	Type            TournamentType   `db:"tournament_type" json:"tournament_type"`
	MaxParticipants int              `db:"max_participants" json:"max_participants"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
}
