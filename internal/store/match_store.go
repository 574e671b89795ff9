package store

import (
	"context"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchStore struct {
	db *sqlx.DB
}

func NewMatchStore(db *sqlx.DB) *MatchStore {
	return &MatchStore{db: db}
}

const (
	matchColumns = `id, tournament_id, round_number, match_number, round_name, group_name, phase, status,
		is_bye, is_finished, winner_participant_id, score_data, dependent_on_match_ids, feeds_into_match_id,
		actual_start, actual_end, notes, created_at, updated_at`

	createMatchQuery = `
		INSERT INTO matches (id, tournament_id, round_number, match_number, round_name, group_name, phase, status,
			is_bye, is_finished, winner_participant_id, score_data, dependent_on_match_ids, feeds_into_match_id,
			created_at, updated_at)
		VALUES (:id, :tournament_id, :round_number, :match_number, :round_name, :group_name, :phase, :status,
			:is_bye, :is_finished, :winner_participant_id, :score_data, :dependent_on_match_ids, :feeds_into_match_id,
			:created_at, :updated_at)
	`
	createMatchParticipantQuery = `
		INSERT INTO match_participants (id, match_id, participant_id, slot_number, team_side, final_position,
			score_value, result_time_ms, is_winner, is_disqualified, detailed_score)
		VALUES (:id, :match_id, :participant_id, :slot_number, :team_side, :final_position,
			:score_value, :result_time_ms, :is_winner, :is_disqualified, :detailed_score)
	`
	updateMatchQuery = `
		UPDATE matches SET
			status = :status,
			is_finished = :is_finished,
			winner_participant_id = :winner_participant_id,
			score_data = :score_data,
			feeds_into_match_id = :feeds_into_match_id,
			actual_start = :actual_start,
			actual_end = :actual_end,
			notes = :notes,
			updated_at = :updated_at
		WHERE id = :id
	`
	updateMatchParticipantQuery = `
		UPDATE match_participants SET
			participant_id = :participant_id,
			team_side = :team_side,
			final_position = :final_position,
			score_value = :score_value,
			result_time_ms = :result_time_ms,
			is_winner = :is_winner,
			is_disqualified = :is_disqualified,
			detailed_score = :detailed_score
		WHERE id = :id
	`
)

// CreateMatches bulk inserts matches and then every slot they carry.
func (s *MatchStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}

	var slots []bracket.MatchParticipant
	for _, batch := range chunk(matches, insertChunkSize) {
		if _, err := tx.NamedExecContext(ctx, createMatchQuery, batch); err != nil {
			return mapWriteError("create matches", err)
		}
		for _, m := range batch {
			slots = append(slots, m.Participants...)
		}
	}

	return s.CreateMatchParticipants(ctx, tx, slots)
}

func (s *MatchStore) CreateMatchParticipants(ctx context.Context, tx *sqlx.Tx, slots []bracket.MatchParticipant) error {
	for _, batch := range chunk(slots, insertChunkSize) {
		if _, err := tx.NamedExecContext(ctx, createMatchParticipantQuery, batch); err != nil {
			return mapWriteError("create match participants", err)
		}
	}
	return nil
}

// DeleteMatches drops a whole phase (and group) of a tournament's schedule.
func (s *MatchStore) DeleteMatches(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, phase bracket.Phase, group *string) (int64, error) {
	query := "DELETE FROM matches WHERE tournament_id = ? AND phase = ?"
	args := []any{tournamentID, phase}
	if group != nil {
		query += " AND group_name = ?"
		args = append(args, *group)
	} else {
		query += " AND group_name IS NULL"
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return 0, mapWriteError("delete matches", err)
	}
	return res.RowsAffected()
}

func (s *MatchStore) CountMatches(ctx context.Context, q DBTX, tournamentID uuid.UUID, phase bracket.Phase, group *string) (int, error) {
	query := "SELECT COUNT(*) FROM matches WHERE tournament_id = ? AND phase = ?"
	args := []any{tournamentID, phase}
	if group != nil {
		query += " AND group_name = ?"
		args = append(args, *group)
	} else {
		query += " AND group_name IS NULL"
	}

	var count int
	exec := executor(s.db, q)
	err := sqlx.GetContext(ctx, exec, &count, exec.Rebind(query), args...)
	return count, err
}

// GetMatch loads a match together with its slots.
func (s *MatchStore) GetMatch(ctx context.Context, q DBTX, id uuid.UUID) (*bracket.Match, error) {
	exec := executor(s.db, q)

	var m bracket.Match
	err := sqlx.GetContext(ctx, exec, &m, exec.Rebind("SELECT "+matchColumns+" FROM matches WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}

	err = sqlx.SelectContext(ctx, exec, &m.Participants,
		exec.Rebind("SELECT * FROM match_participants WHERE match_id = ? ORDER BY slot_number ASC"), id)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

type MatchFilter struct {
	Round        *int
	Group        *string
	Status       *bracket.MatchStatus
	Phase        *bracket.Phase
	FinishedOnly bool
}

// ListMatches returns matches ordered by round and match number with their
// slots attached.
func (s *MatchStore) ListMatches(ctx context.Context, q DBTX, tournamentID uuid.UUID, filter MatchFilter) ([]bracket.Match, error) {
	where := " WHERE m.tournament_id = ?"
	args := []any{tournamentID}
	if filter.Round != nil {
		where += " AND m.round_number = ?"
		args = append(args, *filter.Round)
	}
	if filter.Group != nil {
		where += " AND m.group_name = ?"
		args = append(args, *filter.Group)
	}
	if filter.Status != nil {
		where += " AND m.status = ?"
		args = append(args, *filter.Status)
	}
	if filter.Phase != nil {
		where += " AND m.phase = ?"
		args = append(args, *filter.Phase)
	}
	if filter.FinishedOnly {
		where += " AND m.is_finished = ? AND m.is_bye = ?"
		args = append(args, true, false)
	}

	exec := executor(s.db, q)

	var matches []bracket.Match
	err := sqlx.SelectContext(ctx, exec, &matches,
		exec.Rebind("SELECT "+prefixed("m.", matchColumns)+" FROM matches m"+where+" ORDER BY m.phase ASC, m.round_number ASC, m.match_number ASC"), args...)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return matches, nil
	}

	var slots []bracket.MatchParticipant
	err = sqlx.SelectContext(ctx, exec, &slots,
		exec.Rebind("SELECT mp.* FROM match_participants mp JOIN matches m ON m.id = mp.match_id"+where+" ORDER BY mp.match_id, mp.slot_number ASC"), args...)
	if err != nil {
		return nil, err
	}

	byMatch := make(map[uuid.UUID][]bracket.MatchParticipant, len(matches))
	for _, slot := range slots {
		byMatch[slot.MatchID] = append(byMatch[slot.MatchID], slot)
	}
	for i := range matches {
		matches[i].Participants = byMatch[matches[i].ID]
	}

	return matches, nil
}

func (s *MatchStore) UpdateMatch(ctx context.Context, tx *sqlx.Tx, m *bracket.Match) error {
	_, err := tx.NamedExecContext(ctx, updateMatchQuery, m)
	return mapWriteError("update match", err)
}

func (s *MatchStore) UpdateMatchParticipant(ctx context.Context, tx *sqlx.Tx, slot *bracket.MatchParticipant) error {
	_, err := tx.NamedExecContext(ctx, updateMatchParticipantQuery, slot)
	return mapWriteError("update match participant", err)
}
