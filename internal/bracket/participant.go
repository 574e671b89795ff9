package bracket

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type ParticipantStatus string

const (
	ParticipantPending   ParticipantStatus = "pending"
	ParticipantConfirmed ParticipantStatus = "confirmed"
	ParticipantCancelled ParticipantStatus = "cancelled"
	ParticipantWaitlist  ParticipantStatus = "waitlist"
)

func (s ParticipantStatus) Valid() bool {
	switch s {
	case ParticipantPending, ParticipantConfirmed, ParticipantCancelled, ParticipantWaitlist:
		return true
	}
	return false
}

type Participant struct {
	ID              uuid.UUID         `db:"id" json:"id"`
	TournamentID    uuid.UUID         `db:"tournament_id" json:"tournament_id"`
	Name            string            `db:"name" json:"name"`
	Seed            *int              `db:"seed" json:"seed,omitempty"`
	GroupAssignment *string           `db:"group_assignment" json:"group_assignment,omitempty"`
	Status          ParticipantStatus `db:"status" json:"status"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
}

// SortForSeeding orders participants by seed ascending with unseeded entries
// last, falling back to registration order.
func SortForSeeding(participants []Participant) {
	sort.SliceStable(participants, func(i, j int) bool {
		a, b := participants[i], participants[j]
		switch {
		case a.Seed != nil && b.Seed != nil && *a.Seed != *b.Seed:
			return *a.Seed < *b.Seed
		case a.Seed != nil && b.Seed == nil:
			return true
		case a.Seed == nil && b.Seed != nil:
			return false
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
