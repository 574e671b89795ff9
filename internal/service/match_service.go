package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/AdamBeresnev/tournament-engine/internal/standings"
	"github.com/AdamBeresnev/tournament-engine/internal/store"
	"github.com/AdamBeresnev/tournament-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	matches     *store.MatchStore
	standings   *StandingsService
}

func NewMatchService(db *sqlx.DB, tournaments *store.TournamentStore, matches *store.MatchStore, standingsService *StandingsService) *MatchService {
	return &MatchService{db: db, tournaments: tournaments, matches: matches, standings: standingsService}
}

type StatusUpdate struct {
	Status bracket.MatchStatus `json:"status"`
	Notes  *string             `json:"notes,omitempty"`
}

type ParticipantScore struct {
	ParticipantID  uuid.UUID            `json:"participant_id"`
	ScoreValue     bracket.Score        `json:"score_value"`
	FinalPosition  *int                 `json:"final_position,omitempty"`
	ResultTime     string               `json:"result_time,omitempty"`
	IsWinner       bool                 `json:"is_winner"`
	IsDisqualified bool                 `json:"is_disqualified"`
	DetailedScore  bracket.ScorePayload `json:"detailed_score,omitempty"`
}

type ScoreUpdate struct {
	Participants        []ParticipantScore   `json:"participant_scores"`
	ScoreData           bracket.ScorePayload `json:"score_data,omitempty"`
	WinnerParticipantID *uuid.UUID           `json:"winner_participant_id,omitempty"`
}

// AdvanceResult describes where a winner went. Next is nil when the advanced
// match was the final.
type AdvanceResult struct {
	Next                *bracket.Match `json:"next,omitempty"`
	TournamentCompleted bool           `json:"tournament_completed"`
}

func (s *MatchService) Get(ctx context.Context, matchID uuid.UUID) (*bracket.Match, error) {
	return s.getMatch(ctx, nil, matchID)
}

func (s *MatchService) List(ctx context.Context, tournamentID uuid.UUID, filter store.MatchFilter) ([]bracket.Match, error) {
	filter.Group = utils.TrimmedOrNil(filter.Group)
	return s.matches.ListMatches(ctx, nil, tournamentID, filter)
}

func (s *MatchService) getMatch(ctx context.Context, q store.DBTX, matchID uuid.UUID) (*bracket.Match, error) {
	match, err := s.matches.GetMatch(ctx, q, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return match, nil
}

// begin opens a transaction, loads the match and checks the caller owns its
// tournament.
func (s *MatchService) begin(ctx context.Context, matchID uuid.UUID) (*sqlx.Tx, *bracket.Match, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}

	match, err := s.getMatch(ctx, tx, matchID)
	if err != nil {
		tx.Rollback()
		return nil, nil, err
	}

	tournament, err := loadTournament(ctx, s.tournaments, tx, match.TournamentID)
	if err == nil {
		err = authorize(ctx, tournament)
	}
	if err != nil {
		tx.Rollback()
		return nil, nil, err
	}

	return tx, match, nil
}

// UpdateStatus moves a match through its lifecycle. Finishing a match
// recomputes the standings it counts towards.
func (s *MatchService) UpdateStatus(ctx context.Context, matchID uuid.UUID, update StatusUpdate) (*bracket.Match, error) {
	tx, match, err := s.begin(ctx, matchID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if !match.Status.CanTransitionTo(update.Status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, match.Status, update.Status)
	}

	now := time.Now().UTC()
	applyStatus(match, update.Status, now)
	if match.IsFinished && match.WinnerParticipantID == nil {
		match.WinnerParticipantID = s.resolveWinner(match)
	}
	if notes := utils.TrimmedOrNil(update.Notes); notes != nil {
		match.Notes = notes
	}
	match.UpdatedAt = now

	if err := s.matches.UpdateMatch(ctx, tx, match); err != nil {
		return nil, err
	}

	if match.IsFinished {
		if err := s.recomputeFor(ctx, tx, match); err != nil {
			return nil, err
		}
	}

	return match, tx.Commit()
}

func applyStatus(match *bracket.Match, status bracket.MatchStatus, now time.Time) {
	match.Status = status
	switch {
	case status == bracket.MatchInProgress:
		match.ActualStart = &now
	case status.Finishes():
		match.IsFinished = true
		if match.ActualEnd == nil {
			match.ActualEnd = &now
		}
	}
}

// RecordScore stores per participant results. Naming a winner completes the
// match.
func (s *MatchService) RecordScore(ctx context.Context, matchID uuid.UUID, update ScoreUpdate) (*bracket.Match, error) {
	tx, match, err := s.begin(ctx, matchID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if match.IsBye {
		return nil, fmt.Errorf("%w: bye matches are not scored", ErrValidation)
	}
	if err := validateScores(match, update); err != nil {
		return nil, err
	}

	var flagged *uuid.UUID
	for _, entry := range update.Participants {
		if entry.IsWinner {
			flagged = utils.Ptr(entry.ParticipantID)
		}
	}

	for _, entry := range update.Participants {
		slot := match.Slot(entry.ParticipantID)
		if entry.ScoreValue.Valid {
			slot.ScoreValue = entry.ScoreValue
		}
		if entry.FinalPosition != nil {
			slot.FinalPosition = entry.FinalPosition
		}
		if entry.ResultTime != "" {
			slot.ResultTimeMS = utils.Ptr(ParseResultTime(entry.ResultTime))
		}
		slot.IsWinner = entry.IsWinner
		slot.IsDisqualified = entry.IsDisqualified
		if len(entry.DetailedScore) > 0 {
			slot.DetailedScore = entry.DetailedScore
		}
	}

	if len(update.ScoreData) > 0 {
		match.ScoreData = update.ScoreData
	}

	now := time.Now().UTC()
	if update.WinnerParticipantID != nil {
		winner := *update.WinnerParticipantID
		for i := range match.Participants {
			match.Participants[i].IsWinner = match.Participants[i].ParticipantID == winner
		}
		match.WinnerParticipantID = &winner

		if !match.IsFinished {
			if match.Status != bracket.MatchScheduled && match.Status != bracket.MatchInProgress {
				return nil, fmt.Errorf("%w: cannot complete a %s match", ErrInvalidStatusTransition, match.Status)
			}
			applyStatus(match, bracket.MatchCompleted, now)
		}
	} else {
		if flagged != nil {
			for i := range match.Participants {
				match.Participants[i].IsWinner = match.Participants[i].ParticipantID == *flagged
			}
		}
		match.WinnerParticipantID = s.resolveWinner(match)
	}
	match.UpdatedAt = now

	if err := s.matches.UpdateMatch(ctx, tx, match); err != nil {
		return nil, err
	}
	for i := range match.Participants {
		if err := s.matches.UpdateMatchParticipant(ctx, tx, &match.Participants[i]); err != nil {
			return nil, err
		}
	}

	if match.IsFinished {
		if err := s.recomputeFor(ctx, tx, match); err != nil {
			return nil, err
		}
	}

	return match, tx.Commit()
}

func validateScores(match *bracket.Match, update ScoreUpdate) error {
	seen := make(map[uuid.UUID]bool, len(update.Participants))
	for _, entry := range update.Participants {
		if seen[entry.ParticipantID] {
			return fmt.Errorf("%w: participant %s listed twice", ErrValidation, entry.ParticipantID)
		}
		seen[entry.ParticipantID] = true

		if match.Slot(entry.ParticipantID) == nil {
			return fmt.Errorf("%w: participant %s is not in this match", ErrValidation, entry.ParticipantID)
		}
	}

	winners := 0
	for _, entry := range update.Participants {
		if entry.IsWinner {
			winners++
		}
	}
	if winners > 1 {
		return fmt.Errorf("%w: only one participant can be flagged as winner", ErrValidation)
	}

	if update.WinnerParticipantID != nil && match.Slot(*update.WinnerParticipantID) == nil {
		return fmt.Errorf("%w: winner %s is not in this match", ErrValidation, *update.WinnerParticipantID)
	}
	return nil
}

// resolveWinner picks the participant the standings credit with the win: a
// flagged slot, otherwise the decided side of a finished head-to-head match or
// the first place of a finished multi-party one.
func (s *MatchService) resolveWinner(match *bracket.Match) *uuid.UUID {
	for _, slot := range match.Participants {
		if slot.IsWinner {
			return utils.Ptr(slot.ParticipantID)
		}
	}
	if !match.IsFinished {
		return nil
	}

	slots := slices.Clone(match.Participants)
	slices.SortFunc(slots, func(a, b bracket.MatchParticipant) int {
		return a.SlotNumber - b.SlotNumber
	})

	policy := s.standings.policy
	switch {
	case len(slots) == 2:
		decide := policy.Decide
		if decide == nil {
			decide = standings.ScoreFallback
		}
		switch decide(slots[0], slots[1]) {
		case standings.HomeWin:
			return utils.Ptr(slots[0].ParticipantID)
		case standings.AwayWin:
			return utils.Ptr(slots[1].ParticipantID)
		}
	case len(slots) > 2:
		for _, slot := range slots {
			if policy.ForfeitDisqualified && slot.IsDisqualified {
				continue
			}
			if slot.FinalPosition != nil && *slot.FinalPosition == 1 {
				return utils.Ptr(slot.ParticipantID)
			}
		}
	}
	return nil
}

func (s *MatchService) recomputeFor(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	if _, err := s.standings.recompute(ctx, tx, match.TournamentID, nil); err != nil {
		return fmt.Errorf("failed to recompute standings: %w", err)
	}
	if match.GroupName != nil {
		if _, err := s.standings.recompute(ctx, tx, match.TournamentID, match.GroupName); err != nil {
			return fmt.Errorf("failed to recompute group standings: %w", err)
		}
	}
	return nil
}

// AdvanceWinner copies a finished match's winner into the slot it feeds in
// the next round. Advancing the final completes the tournament. Calling it
// again for the same winner changes nothing.
func (s *MatchService) AdvanceWinner(ctx context.Context, matchID uuid.UUID) (*AdvanceResult, error) {
	tx, match, err := s.begin(ctx, matchID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if !match.IsFinished || match.WinnerParticipantID == nil {
		return nil, fmt.Errorf("%w: match has no winner yet", ErrNotAdvanceable)
	}
	winner := *match.WinnerParticipantID

	if match.FeedsIntoMatchID == nil {
		if match.Phase != bracket.PhaseKnockout {
			return nil, fmt.Errorf("%w: match does not feed another match", ErrNotAdvanceable)
		}
		if err := s.tournaments.UpdateTournamentStatus(ctx, tx, match.TournamentID, bracket.TournamentCompleted); err != nil {
			return nil, fmt.Errorf("failed to update tournament status: %w", err)
		}
		return &AdvanceResult{TournamentCompleted: true}, tx.Commit()
	}

	next, err := s.getMatch(ctx, tx, *match.FeedsIntoMatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get next match: %w", err)
	}

	slotNumber := next.FeederSlot(match.ID)
	if slotNumber == 0 {
		return nil, fmt.Errorf("%w: next match does not depend on this one", ErrNotAdvanceable)
	}

	var existing *bracket.MatchParticipant
	for i := range next.Participants {
		if next.Participants[i].SlotNumber == slotNumber {
			existing = &next.Participants[i]
		}
	}

	switch {
	case existing != nil && existing.ParticipantID == winner:
		return &AdvanceResult{Next: next}, tx.Commit()

	case existing != nil:
		if next.IsFinished {
			return nil, fmt.Errorf("%w: next match is already finished", ErrNotAdvanceable)
		}
		existing.ParticipantID = winner
		if err := s.matches.UpdateMatchParticipant(ctx, tx, existing); err != nil {
			return nil, fmt.Errorf("failed to update next match: %w", err)
		}

	default:
		slot := bracket.MatchParticipant{
			ID:            uuid.New(),
			MatchID:       next.ID,
			ParticipantID: winner,
			SlotNumber:    slotNumber,
			TeamSide:      bracket.SideForSlot(slotNumber, len(next.DependentOnMatchIDs)),
		}
		if err := s.matches.CreateMatchParticipants(ctx, tx, []bracket.MatchParticipant{slot}); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return nil, fmt.Errorf("%w: participant already placed in next match", ErrNotAdvanceable)
			}
			return nil, fmt.Errorf("failed to update next match: %w", err)
		}
		next.Participants = append(next.Participants, slot)
		slices.SortFunc(next.Participants, func(a, b bracket.MatchParticipant) int {
			return a.SlotNumber - b.SlotNumber
		})
	}

	return &AdvanceResult{Next: next}, tx.Commit()
}
