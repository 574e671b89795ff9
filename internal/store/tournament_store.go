package store

import (
	"context"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

const (
	createTournamentQuery = `
		INSERT INTO tournaments (id, owner_id, name, status, tournament_type, max_participants, created_at)
		VALUES (:id, :owner_id, :name, :status, :tournament_type, :max_participants, :created_at)
	`
	createParticipantQuery = `
		INSERT INTO participants (id, tournament_id, name, seed, group_assignment, status, created_at)
		VALUES (:id, :tournament_id, :name, :seed, :group_assignment, :status, :created_at)
	`
	participantColumns = "id, tournament_id, name, seed, group_assignment, status, created_at"
)

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, createTournamentQuery, tournament)
	return mapWriteError("create tournament", err)
}

func (s *TournamentStore) GetTournament(ctx context.Context, q DBTX, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	exec := executor(s.db, q)
	err := sqlx.GetContext(ctx, exec, &tournament, exec.Rebind("SELECT * FROM tournaments WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentsByOwner(ctx context.Context, ownerID uuid.UUID) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, s.db.Rebind("SELECT * FROM tournaments WHERE owner_id = ? ORDER BY created_at DESC"), ownerID)
	return tournaments, err
}

func (s *TournamentStore) UpdateTournamentStatus(ctx context.Context, q DBTX, id uuid.UUID, status bracket.TournamentStatus) error {
	exec := executor(s.db, q)
	_, err := exec.ExecContext(ctx, exec.Rebind("UPDATE tournaments SET status = ? WHERE id = ?"), status, id)
	return mapWriteError("update tournament status", err)
}

func (s *TournamentStore) CreateParticipants(ctx context.Context, tx *sqlx.Tx, participants []bracket.Participant) error {
	for _, batch := range chunk(participants, insertChunkSize) {
		if _, err := tx.NamedExecContext(ctx, createParticipantQuery, batch); err != nil {
			return mapWriteError("create participants", err)
		}
	}
	return nil
}

func (s *TournamentStore) GetParticipant(ctx context.Context, q DBTX, id uuid.UUID) (*bracket.Participant, error) {
	var p bracket.Participant
	exec := executor(s.db, q)
	err := sqlx.GetContext(ctx, exec, &p, exec.Rebind("SELECT "+participantColumns+" FROM participants WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type ParticipantFilter struct {
	Status *bracket.ParticipantStatus
	Group  *string
}

// ListParticipants returns participants in seeding order: seed ascending with
// unseeded last, then registration order.
func (s *TournamentStore) ListParticipants(ctx context.Context, q DBTX, tournamentID uuid.UUID, filter ParticipantFilter) ([]bracket.Participant, error) {
	query := "SELECT " + participantColumns + " FROM participants WHERE tournament_id = ?"
	args := []any{tournamentID}
	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, *filter.Status)
	}
	if filter.Group != nil {
		query += " AND group_assignment = ?"
		args = append(args, *filter.Group)
	}
	query += " ORDER BY created_at ASC, id ASC"

	var participants []bracket.Participant
	exec := executor(s.db, q)
	if err := sqlx.SelectContext(ctx, exec, &participants, exec.Rebind(query), args...); err != nil {
		return nil, err
	}
	bracket.SortForSeeding(participants)
	return participants, nil
}

func (s *TournamentStore) UpdateParticipantStatus(ctx context.Context, q DBTX, id uuid.UUID, status bracket.ParticipantStatus) error {
	exec := executor(s.db, q)
	_, err := exec.ExecContext(ctx, exec.Rebind("UPDATE participants SET status = ? WHERE id = ?"), status, id)
	return mapWriteError("update participant status", err)
}

// CountParticipantsByStatus is the live replacement for a stored participant counter.
func (s *TournamentStore) CountParticipantsByStatus(ctx context.Context, q DBTX, tournamentID uuid.UUID) (map[bracket.ParticipantStatus]int, error) {
	var rows []struct {
		Status bracket.ParticipantStatus `db:"status"`
		Count  int                       `db:"count"`
	}
	exec := executor(s.db, q)
	err := sqlx.SelectContext(ctx, exec, &rows,
		exec.Rebind("SELECT status, COUNT(*) AS count FROM participants WHERE tournament_id = ? GROUP BY status"), tournamentID)
	if err != nil {
		return nil, err
	}

	counts := make(map[bracket.ParticipantStatus]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
