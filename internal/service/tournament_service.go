package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/AdamBeresnev/tournament-engine/internal/middleware"
	"github.com/AdamBeresnev/tournament-engine/internal/store"
	"github.com/AdamBeresnev/tournament-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type TournamentService struct {
	db        *sqlx.DB
	store     *store.TournamentStore
	matches   *store.MatchStore
	standings *store.StandingStore
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, matches *store.MatchStore, standings *store.StandingStore) *TournamentService {
	return &TournamentService{db: db, store: store, matches: matches, standings: standings}
}

type ParticipantInput struct {
	Name  string  `json:"name"`
	Seed  *int    `json:"seed,omitempty"`
	Group *string `json:"group_assignment,omitempty"`
	// Confirmed skips the pending state for entries added by the organiser
	Confirmed bool `json:"confirmed"`
}

type TournamentInput struct {
	Name            string                 `json:"name"`
	Type            bracket.TournamentType `json:"tournament_type"`
	MaxParticipants int                    `json:"max_participants"`
	Participants    []ParticipantInput     `json:"participants"`
}

type TournamentData struct {
	Tournament     *bracket.Tournament   `json:"tournament"`
	Participants   []bracket.Participant `json:"participants"`
	Matches        []bracket.Match       `json:"matches"`
	Standings      []bracket.Standing    `json:"standings"`
	ConfirmedCount int                   `json:"confirmed_count"`
	NextMatchID    *uuid.UUID            `json:"next_match_id,omitempty"`
}

func (s *TournamentService) CreateTournament(ctx context.Context, input TournamentInput) (*bracket.Tournament, error) {
	ownerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrValidation)
	}
	if input.Type == "" {
		input.Type = bracket.Knockout
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown tournament type %q", ErrValidation, input.Type)
	}
	if input.MaxParticipants < 0 {
		return nil, fmt.Errorf("%w: max participants cannot be negative", ErrValidation)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	tournament := &bracket.Tournament{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		Name:            name,
		Status:          bracket.TournamentDraft,
		Type:            input.Type,
		MaxParticipants: input.MaxParticipants,
		CreatedAt:       now,
	}
	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, err
	}

	participants := make([]bracket.Participant, 0, len(input.Participants))
	confirmed := 0
	for i, in := range input.Participants {
		p, err := newParticipant(tournament, in, confirmed, now.Add(time.Duration(i)*time.Microsecond))
		if err != nil {
			return nil, err
		}
		if p.Status == bracket.ParticipantConfirmed {
			confirmed++
		}
		participants = append(participants, p)
	}
	if err := s.store.CreateParticipants(ctx, tx, participants); err != nil {
		return nil, err
	}

	return tournament, tx.Commit()
}

// newParticipant places an entry on the waitlist once the confirmed entries
// fill max_participants.
func newParticipant(tournament *bracket.Tournament, in ParticipantInput, confirmed int, createdAt time.Time) (bracket.Participant, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return bracket.Participant{}, fmt.Errorf("%w: participant name is required", ErrValidation)
	}
	if in.Seed != nil && *in.Seed < 1 {
		return bracket.Participant{}, fmt.Errorf("%w: seed must be positive", ErrValidation)
	}

	status := bracket.ParticipantPending
	if in.Confirmed {
		status = bracket.ParticipantConfirmed
	}
	if isFull(tournament, confirmed) {
		status = bracket.ParticipantWaitlist
	}

	return bracket.Participant{
		ID:              uuid.New(),
		TournamentID:    tournament.ID,
		Name:            name,
		Seed:            in.Seed,
		GroupAssignment: utils.TrimmedOrNil(in.Group),
		Status:          status,
		CreatedAt:       createdAt,
	}, nil
}

func isFull(tournament *bracket.Tournament, confirmed int) bool {
	return tournament.MaxParticipants > 0 && confirmed >= tournament.MaxParticipants
}

func (s *TournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return loadTournament(ctx, s.store, nil, id)
}

func (s *TournamentService) ListForOwner(ctx context.Context) ([]bracket.Tournament, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("user ID not found in the context")
	}
	return s.store.GetTournamentsByOwner(ctx, userID)
}

func (s *TournamentService) RegisterParticipant(ctx context.Context, tournamentID uuid.UUID, input ParticipantInput) (*bracket.Participant, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := loadTournament(ctx, s.store, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, tournament); err != nil {
		return nil, err
	}

	counts, err := s.store.CountParticipantsByStatus(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	p, err := newParticipant(tournament, input, counts[bracket.ParticipantConfirmed], time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateParticipants(ctx, tx, []bracket.Participant{p}); err != nil {
		return nil, err
	}

	return &p, tx.Commit()
}

func (s *TournamentService) SetParticipantStatus(ctx context.Context, participantID uuid.UUID, status bracket.ParticipantStatus) (*bracket.Participant, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown participant status %q", ErrValidation, status)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := s.store.GetParticipant(ctx, tx, participantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	tournament, err := loadTournament(ctx, s.store, tx, p.TournamentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, tournament); err != nil {
		return nil, err
	}

	if status == bracket.ParticipantConfirmed && p.Status != bracket.ParticipantConfirmed {
		counts, err := s.store.CountParticipantsByStatus(ctx, tx, p.TournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to count participants: %w", err)
		}
		if isFull(tournament, counts[bracket.ParticipantConfirmed]) {
			return nil, fmt.Errorf("%w: tournament is full", ErrValidation)
		}
	}

	if err := s.store.UpdateParticipantStatus(ctx, tx, participantID, status); err != nil {
		return nil, err
	}
	p.Status = status

	return p, tx.Commit()
}

// GetTournamentData loads everything the tournament page shows.
func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	tournament, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	data := &TournamentData{Tournament: tournament}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.Participants, err = s.store.ListParticipants(gctx, nil, id, store.ParticipantFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		data.Matches, err = s.matches.ListMatches(gctx, nil, id, store.MatchFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		data.Standings, err = s.standings.ListStandings(gctx, nil, id, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load tournament data: %w", err)
	}

	for _, p := range data.Participants {
		if p.Status == bracket.ParticipantConfirmed {
			data.ConfirmedCount++
		}
	}
	for _, m := range data.Matches {
		if !m.IsFinished && m.Status != bracket.MatchCancelled {
			id := m.ID
			data.NextMatchID = &id
			break
		}
	}

	return data, nil
}
