package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/AdamBeresnev/tournament-engine/internal/middleware"
	"github.com/AdamBeresnev/tournament-engine/internal/store"
	"github.com/google/uuid"
)

// authorize lets the owner through. Calls without a signed in user come from
// the operator CLI and are trusted.
func authorize(ctx context.Context, tournament *bracket.Tournament) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil
	}
	if userID != tournament.OwnerID {
		return ErrForbidden
	}
	return nil
}

func loadTournament(ctx context.Context, tournaments *store.TournamentStore, q store.DBTX, id uuid.UUID) (*bracket.Tournament, error) {
	tournament, err := tournaments.GetTournament(ctx, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	return tournament, nil
}
