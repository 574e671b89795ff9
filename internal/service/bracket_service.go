package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/AdamBeresnev/tournament-engine/internal/pairing"
	"github.com/AdamBeresnev/tournament-engine/internal/store"
	"github.com/AdamBeresnev/tournament-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// BracketService turns a tournament's confirmed participants into a
// persisted match schedule.
type BracketService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	matches     *store.MatchStore
	metrics     Recorder
}

func NewBracketService(db *sqlx.DB, tournaments *store.TournamentStore, matches *store.MatchStore, metrics Recorder) *BracketService {
	return &BracketService{db: db, tournaments: tournaments, matches: matches, metrics: recorderOrNop(metrics)}
}

type KnockoutOptions struct {
	// Shuffle randomises the seeded order before pairing
	Shuffle bool
	Layout  pairing.Layout
	// Rand drives the shuffle, the global source is used when nil
	Rand *rand.Rand
	// Replace drops an existing knockout schedule instead of failing with ErrScheduleConflict
	Replace bool
}

type RoundRobinOptions struct {
	HomeAndAway bool
	Group       *string
	Replace     bool
}

const (
	kindKnockout   = "knockout"
	kindRoundRobin = "round_robin"
)

// GenerateKnockout builds the whole single elimination tree up front. Byes are
// stored finished with the lone participant as winner. Later rounds are empty
// and only record which matches feed them.
func (s *BracketService) GenerateKnockout(ctx context.Context, tournamentID uuid.UUID, opts KnockoutOptions) ([]bracket.Match, error) {
	layout := opts.Layout
	if layout == "" {
		layout = pairing.LayoutSequential
	}

	return s.generate(ctx, tournamentID, kindKnockout, bracket.PhaseKnockout, nil, opts.Replace,
		func(participants []bracket.Participant, now time.Time) ([]bracket.Match, error) {
			if opts.Shuffle {
				shuffle(participants, opts.Rand)
			}

			plan, err := pairing.Knockout(len(participants), layout)
			if err != nil {
				return nil, err
			}
			slog.Debug("Knockout planned",
				"tournament_id", tournamentID,
				"bracket_size", plan.BracketSize,
				"bye_matches", plan.ByeMatches(),
			)
			return buildKnockout(tournamentID, participants, plan, now), nil
		})
}

// GenerateRoundRobin schedules every confirmed participant (of the group, when
// one is given) against every other once, or twice with HomeAndAway.
func (s *BracketService) GenerateRoundRobin(ctx context.Context, tournamentID uuid.UUID, opts RoundRobinOptions) ([]bracket.Match, error) {
	group := utils.TrimmedOrNil(opts.Group)
	phase := bracket.PhaseRoundRobin
	if group != nil {
		phase = bracket.PhaseGroupStage
	}

	return s.generate(ctx, tournamentID, kindRoundRobin, phase, group, opts.Replace,
		func(participants []bracket.Participant, now time.Time) ([]bracket.Match, error) {
			rounds := pairing.RoundRobin(len(participants))
			if opts.HomeAndAway {
				rounds = append(rounds, pairing.SecondLeg(rounds)...)
			}
			return buildRoundRobin(tournamentID, participants, rounds, phase, group, now), nil
		})
}

type buildFunc func(participants []bracket.Participant, now time.Time) ([]bracket.Match, error)

func (s *BracketService) generate(ctx context.Context, tournamentID uuid.UUID, kind string, phase bracket.Phase, group *string, replace bool, build buildFunc) ([]bracket.Match, error) {
	start := time.Now()

	matches, err := s.generateTx(ctx, tournamentID, phase, group, replace, build)
	if err != nil {
		s.metrics.ScheduleFailed(kind, failureReason(err))
		return nil, err
	}

	s.metrics.ScheduleGenerated(kind, len(matches), time.Since(start))
	slog.Info("Schedule generated",
		"tournament_id", tournamentID,
		"kind", kind,
		"group", utils.OrZero(group),
		"matches", len(matches),
	)
	return matches, nil
}

func (s *BracketService) generateTx(ctx context.Context, tournamentID uuid.UUID, phase bracket.Phase, group *string, replace bool, build buildFunc) ([]bracket.Match, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := loadTournament(ctx, s.tournaments, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, tournament); err != nil {
		return nil, err
	}
	if !tournament.Status.AcceptsSchedule() {
		return nil, ErrTournamentClosed
	}

	if !replace {
		existing, err := s.matches.CountMatches(ctx, tx, tournamentID, phase, group)
		if err != nil {
			return nil, fmt.Errorf("failed to count matches: %w", err)
		}
		if existing > 0 {
			return nil, fmt.Errorf("%w: %d matches already scheduled", ErrScheduleConflict, existing)
		}
	}

	confirmed := bracket.ParticipantConfirmed
	participants, err := s.tournaments.ListParticipants(ctx, tx, tournamentID, store.ParticipantFilter{Status: &confirmed, Group: group})
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	if len(participants) < 2 {
		return nil, ErrNotEnoughParticipants
	}

	matches, err := build(participants, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if replace {
		if _, err := s.matches.DeleteMatches(ctx, tx, tournamentID, phase, group); err != nil {
			return nil, fmt.Errorf("failed to clear previous schedule: %w", err)
		}
	}

	if err := s.matches.CreateMatches(ctx, tx, matches); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("%w: %v", ErrScheduleConflict, err)
		}
		return nil, fmt.Errorf("failed to create matches: %w", err)
	}

	if tournament.Status != bracket.TournamentActive {
		if err := s.tournaments.UpdateTournamentStatus(ctx, tx, tournamentID, bracket.TournamentActive); err != nil {
			return nil, err
		}
	}

	return matches, tx.Commit()
}

func shuffle(participants []bracket.Participant, r *rand.Rand) {
	swap := func(i, j int) { participants[i], participants[j] = participants[j], participants[i] }
	if r == nil {
		rand.Shuffle(len(participants), swap)
		return
	}
	r.Shuffle(len(participants), swap)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrTournamentNotFound):
		return "not_found"
	case errors.Is(err, ErrNotEnoughParticipants):
		return "not_enough_participants"
	case errors.Is(err, ErrScheduleConflict):
		return "conflict"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrTournamentClosed):
		return "closed"
	}
	return "error"
}

func newScheduledMatch(tournamentID uuid.UUID, phase bracket.Phase, round, number int, roundName string, now time.Time) bracket.Match {
	return bracket.Match{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		RoundNumber:  round,
		MatchNumber:  number,
		RoundName:    roundName,
		Phase:        phase,
		Status:       bracket.MatchScheduled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func addSlots(m *bracket.Match, participantIDs ...uuid.UUID) {
	for i, pid := range participantIDs {
		m.Participants = append(m.Participants, bracket.MatchParticipant{
			ID:            uuid.New(),
			MatchID:       m.ID,
			ParticipantID: pid,
			SlotNumber:    i + 1,
			TeamSide:      bracket.SideForSlot(i+1, len(participantIDs)),
		})
	}
}

func buildKnockout(tournamentID uuid.UUID, participants []bracket.Participant, plan pairing.Plan, now time.Time) []bracket.Match {
	roundName := func(round int) string {
		if round <= len(plan.RoundNames) {
			return plan.RoundNames[round-1]
		}
		return fmt.Sprintf("Round %d", round)
	}

	round := make([]bracket.Match, 0, len(plan.FirstRound))
	for i, pair := range plan.FirstRound {
		m := newScheduledMatch(tournamentID, bracket.PhaseKnockout, 1, i+1, roundName(1), now)
		home := participants[pair.Home].ID

		if pair.IsBye() {
			m.Status = bracket.MatchCompleted
			m.IsBye = true
			m.IsFinished = true
			m.WinnerParticipantID = utils.Ptr(home)
			addSlots(&m, home)
			m.Participants[0].IsWinner = true
		} else {
			addSlots(&m, home, participants[pair.Away].ID)
		}
		round = append(round, m)
	}

	var all []bracket.Match
	for r := 2; len(round) > 1; r++ {
		next := make([]bracket.Match, 0, (len(round)+1)/2)
		for i, pair := range pairing.Sequential(len(round)) {
			m := newScheduledMatch(tournamentID, bracket.PhaseKnockout, r, i+1, roundName(r), now)

			m.DependentOnMatchIDs = bracket.MatchIDs{round[pair.Home].ID}
			round[pair.Home].FeedsIntoMatchID = utils.Ptr(m.ID)
			if !pair.IsBye() {
				m.DependentOnMatchIDs = append(m.DependentOnMatchIDs, round[pair.Away].ID)
				round[pair.Away].FeedsIntoMatchID = utils.Ptr(m.ID)
			}
			next = append(next, m)
		}
		all = append(all, round...)
		round = next
	}

	return append(all, round...)
}

func buildRoundRobin(tournamentID uuid.UUID, participants []bracket.Participant, rounds [][]pairing.Pair, phase bracket.Phase, group *string, now time.Time) []bracket.Match {
	var matches []bracket.Match
	number := 0
	for r, round := range rounds {
		for _, pair := range round {
			number++
			m := newScheduledMatch(tournamentID, phase, r+1, number, fmt.Sprintf("Round %d", r+1), now)
			m.GroupName = group
			addSlots(&m, participants[pair.Home].ID, participants[pair.Away].ID)
			matches = append(matches, m)
		}
	}
	return matches
}
