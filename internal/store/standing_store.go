package store

import (
	"context"
	"time"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type StandingStore struct {
	db *sqlx.DB
}

func NewStandingStore(db *sqlx.DB) *StandingStore {
	return &StandingStore{db: db}
}

const (
	standingColumns = `id, tournament_id, participant_id, group_name, matches_played, matches_won, matches_drawn,
		matches_lost, points, score_for, score_against, score_difference, current_rank, previous_rank,
		recent_form, updated_at`

	createStandingQuery = `
		INSERT INTO standings (id, tournament_id, participant_id, group_name, matches_played, matches_won,
			matches_drawn, matches_lost, points, score_for, score_against, score_difference, current_rank,
			previous_rank, recent_form, updated_at)
		VALUES (:id, :tournament_id, :participant_id, :group_name, :matches_played, :matches_won,
			:matches_drawn, :matches_lost, :points, :score_for, :score_against, :score_difference, :current_rank,
			:previous_rank, :recent_form, :updated_at)
	`
	updateStandingQuery = `
		UPDATE standings SET
			matches_played = :matches_played,
			matches_won = :matches_won,
			matches_drawn = :matches_drawn,
			matches_lost = :matches_lost,
			points = :points,
			score_for = :score_for,
			score_against = :score_against,
			score_difference = :score_difference,
			current_rank = :current_rank,
			previous_rank = :previous_rank,
			recent_form = :recent_form,
			updated_at = :updated_at
		WHERE id = :id
	`
)

func groupClause(column string, group *string, args []any) (string, []any) {
	if group == nil {
		return " AND " + column + " IS NULL", args
	}
	return " AND " + column + " = ?", append(args, *group)
}

// EnsureStandings returns one row per participant for the tournament and
// group, inserting zeroed rows for participants that have none yet. Rows come
// back in participant order.
func (s *StandingStore) EnsureStandings(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, group *string, participants []bracket.Participant) ([]bracket.Standing, error) {
	where, args := groupClause("group_name", group, []any{tournamentID})

	var existing []bracket.Standing
	err := tx.SelectContext(ctx, &existing,
		tx.Rebind("SELECT "+standingColumns+" FROM standings WHERE tournament_id = ?"+where), args...)
	if err != nil {
		return nil, err
	}

	byParticipant := make(map[uuid.UUID]bracket.Standing, len(existing))
	for _, row := range existing {
		byParticipant[row.ParticipantID] = row
	}

	now := time.Now().UTC()
	rows := make([]bracket.Standing, 0, len(participants))
	var missing []bracket.Standing
	for _, p := range participants {
		row, ok := byParticipant[p.ID]
		if !ok {
			row = bracket.Standing{
				ID:              uuid.New(),
				TournamentID:    tournamentID,
				ParticipantID:   p.ID,
				GroupName:       group,
				ScoreFor:        decimal.Zero,
				ScoreAgainst:    decimal.Zero,
				ScoreDifference: decimal.Zero,
				UpdatedAt:       now,
			}
			missing = append(missing, row)
		}
		row.ParticipantName = p.Name
		rows = append(rows, row)
	}

	for _, batch := range chunk(missing, insertChunkSize) {
		if _, err := tx.NamedExecContext(ctx, createStandingQuery, batch); err != nil {
			return nil, mapWriteError("create standings", err)
		}
	}

	return rows, nil
}

func (s *StandingStore) UpdateStandings(ctx context.Context, tx *sqlx.Tx, rows []bracket.Standing) error {
	now := time.Now().UTC()
	for i := range rows {
		rows[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, updateStandingQuery, rows[i]); err != nil {
			return mapWriteError("update standing", err)
		}
	}
	return nil
}

// ListStandings returns the stored table ordered by rank, unranked rows last.
func (s *StandingStore) ListStandings(ctx context.Context, q DBTX, tournamentID uuid.UUID, group *string) ([]bracket.Standing, error) {
	where, args := groupClause("s.group_name", group, []any{tournamentID})
	query := "SELECT " + prefixed("s.", standingColumns) + `, p.name AS participant_name
		FROM standings s
		JOIN participants p ON p.id = s.participant_id
		WHERE s.tournament_id = ?` + where + `
		ORDER BY s.current_rank IS NULL, s.current_rank ASC, p.name ASC`

	exec := executor(s.db, q)
	standings := []bracket.Standing{}
	err := sqlx.SelectContext(ctx, exec, &standings, exec.Rebind(query), args...)
	return standings, err
}
