package views

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/AdamBeresnev/tournament-engine/internal/middleware"
	"github.com/AdamBeresnev/tournament-engine/internal/service"
	users "github.com/AdamBeresnev/tournament-engine/internal/user"
)

func GetUser(ctx context.Context) *users.User {
	return middleware.GetAuthenticatedUser(ctx)
}

func tournamentMeta(data *service.TournamentData) string {
	t := data.Tournament
	return fmt.Sprintf("%s · %s · %d confirmed", t.Type, t.Status, data.ConfirmedCount)
}

func stageTitle(stage StageView) string {
	switch stage.Phase {
	case bracket.PhaseGroupStage:
		return "Group " + stage.Group
	case bracket.PhaseRoundRobin:
		return "League"
	}
	return "Knockout"
}

func scoreText(slot bracket.MatchParticipant) string {
	if !slot.ScoreValue.Valid {
		return "-"
	}
	return slot.ScoreValue.Decimal.String()
}

func rankText(rank *int) string {
	if rank == nil {
		return "-"
	}
	return fmt.Sprint(*rank)
}

// movementText renders rank movement as an arrow and the number of places.
func movementText(s bracket.Standing) string {
	switch move := s.RankMovement(); {
	case move > 0:
		return fmt.Sprintf("▲%d", move)
	case move < 0:
		return fmt.Sprintf("▼%d", -move)
	}
	return ""
}
