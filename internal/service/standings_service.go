package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/AdamBeresnev/tournament-engine/internal/standings"
	"github.com/AdamBeresnev/tournament-engine/internal/store"
	"github.com/AdamBeresnev/tournament-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type StandingsService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	matches     *store.MatchStore
	standings   *store.StandingStore
	policy      standings.Policy
	metrics     Recorder
}

type StandingsOption func(*StandingsService)

// WithPolicy swaps the scoring rules, for example position points for racing.
func WithPolicy(policy standings.Policy) StandingsOption {
	return func(s *StandingsService) {
		s.policy = policy
	}
}

func WithStandingsRecorder(r Recorder) StandingsOption {
	return func(s *StandingsService) {
		s.metrics = recorderOrNop(r)
	}
}

func NewStandingsService(db *sqlx.DB, tournaments *store.TournamentStore, matches *store.MatchStore, standingStore *store.StandingStore, opts ...StandingsOption) *StandingsService {
	s := &StandingsService{
		db:          db,
		tournaments: tournaments,
		matches:     matches,
		standings:   standingStore,
		policy:      standings.DefaultPolicy(),
		metrics:     nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compute rebuilds the standings of a tournament, or of one of its groups,
// from every finished match. A missing tournament yields an empty table.
func (s *StandingsService) Compute(ctx context.Context, tournamentID uuid.UUID, group *string) ([]bracket.Standing, error) {
	group = utils.TrimmedOrNil(group)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := loadTournament(ctx, s.tournaments, tx, tournamentID)
	if errors.Is(err, ErrTournamentNotFound) {
		return []bracket.Standing{}, nil
	}
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, tournament); err != nil {
		return nil, err
	}

	table, err := s.recompute(ctx, tx, tournamentID, group)
	if err != nil {
		return nil, err
	}
	return table, tx.Commit()
}

// recompute runs inside the caller's transaction so score entry and the
// table it produces commit together.
func (s *StandingsService) recompute(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, group *string) ([]bracket.Standing, error) {
	start := time.Now()

	participants, err := s.tournaments.ListParticipants(ctx, tx, tournamentID, store.ParticipantFilter{Group: group})
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	rows, err := s.standings.EnsureStandings(ctx, tx, tournamentID, group, participants)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings: %w", err)
	}

	matches, err := s.matches.ListMatches(ctx, tx, tournamentID, store.MatchFilter{Group: group, FinishedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list finished matches: %w", err)
	}

	table := standings.Calculate(rows, matches, s.policy)
	if err := s.standings.UpdateStandings(ctx, tx, table); err != nil {
		return nil, err
	}

	s.metrics.StandingsComputed(len(table), time.Since(start))
	slog.Info("Standings recomputed",
		"tournament_id", tournamentID,
		"group", utils.OrZero(group),
		"rows", len(table),
		"matches", len(matches),
	)
	return table, nil
}

// Get returns the cached table without recomputing it.
func (s *StandingsService) Get(ctx context.Context, tournamentID uuid.UUID, group *string) ([]bracket.Standing, error) {
	return s.standings.ListStandings(ctx, nil, tournamentID, utils.TrimmedOrNil(group))
}
