package store

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/AdamBeresnev/tournament-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMatch(tournamentID uuid.UUID, round, number int, players ...uuid.UUID) bracket.Match {
	now := time.Now().UTC()
	m := bracket.Match{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		RoundNumber:  round,
		MatchNumber:  number,
		RoundName:    "Round",
		Phase:        bracket.PhaseKnockout,
		Status:       bracket.MatchScheduled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for i, pid := range players {
		m.Participants = append(m.Participants, bracket.MatchParticipant{
			ID:            uuid.New(),
			MatchID:       m.ID,
			ParticipantID: pid,
			SlotNumber:    i + 1,
			TeamSide:      bracket.SideForSlot(i+1, len(players)),
		})
	}
	return m
}

func TestCreateMatchesWithForwardLinks(t *testing.T) {
	database := setupTestDB(t)
	tournament, p := seedTournament(t, database, "Ada", "Brook", "Cyd", "Dee")
	ctx := context.Background()
	store := NewMatchStore(database)

	first := newMatch(tournament.ID, 1, 1, p[0].ID, p[1].ID)
	second := newMatch(tournament.ID, 1, 2, p[2].ID, p[3].ID)
	final := newMatch(tournament.ID, 2, 1)
	final.DependentOnMatchIDs = bracket.MatchIDs{first.ID, second.ID}
	first.FeedsIntoMatchID = &final.ID
	second.FeedsIntoMatchID = &final.ID

	require.NoError(t, withTx(t, database, func(tx *sqlx.Tx) error {
		return store.CreateMatches(ctx, tx, []bracket.Match{first, second, final})
	}))

	fetched, err := store.GetMatch(ctx, nil, final.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchIDs{first.ID, second.ID}, fetched.DependentOnMatchIDs)
	assert.Nil(t, fetched.FeedsIntoMatchID)
	assert.Empty(t, fetched.Participants)

	matches, err := store.ListMatches(ctx, nil, tournament.ID, MatchFilter{})
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, first.ID, matches[0].ID)
	assert.Equal(t, final.ID, *matches[0].FeedsIntoMatchID)
	require.Len(t, matches[0].Participants, 2)
	assert.Equal(t, p[0].ID, matches[0].Participants[0].ParticipantID)
	assert.Equal(t, bracket.HomeSide, *matches[0].Participants[0].TeamSide)
	assert.Equal(t, bracket.AwaySide, *matches[0].Participants[1].TeamSide)

	round := 2
	finals, err := store.ListMatches(ctx, nil, tournament.ID, MatchFilter{Round: &round})
	require.NoError(t, err)
	require.Len(t, finals, 1)
	assert.Equal(t, final.ID, finals[0].ID)
}

func TestCreateMatchesConflict(t *testing.T) {
	database := setupTestDB(t)
	tournament, p := seedTournament(t, database, "Ada", "Brook")
	ctx := context.Background()
	store := NewMatchStore(database)

	require.NoError(t, withTx(t, database, func(tx *sqlx.Tx) error {
		return store.CreateMatches(ctx, tx, []bracket.Match{newMatch(tournament.ID, 1, 1, p[0].ID, p[1].ID)})
	}))

	err := withTx(t, database, func(tx *sqlx.Tx) error {
		return store.CreateMatches(ctx, tx, []bracket.Match{newMatch(tournament.ID, 1, 1, p[0].ID, p[1].ID)})
	})
	assert.ErrorIs(t, err, ErrConflict)

	count, err := store.CountMatches(ctx, nil, tournament.ID, bracket.PhaseKnockout, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestListMatchesFinishedOnly(t *testing.T) {
	database := setupTestDB(t)
	tournament, p := seedTournament(t, database, "Ada", "Brook", "Cyd")
	ctx := context.Background()
	store := NewMatchStore(database)

	played := newMatch(tournament.ID, 1, 1, p[0].ID, p[1].ID)
	played.IsFinished = true
	played.Status = bracket.MatchCompleted
	played.Participants[0].ScoreValue = bracket.NewScore(decimal.NewFromInt(3))
	played.Participants[1].ScoreValue = bracket.NewScore(decimal.NewFromInt(1))

	bye := newMatch(tournament.ID, 1, 2, p[2].ID)
	bye.IsBye = true
	bye.IsFinished = true
	bye.Status = bracket.MatchCompleted

	pending := newMatch(tournament.ID, 2, 1)

	require.NoError(t, withTx(t, database, func(tx *sqlx.Tx) error {
		return store.CreateMatches(ctx, tx, []bracket.Match{played, bye, pending})
	}))

	finished, err := store.ListMatches(ctx, nil, tournament.ID, MatchFilter{FinishedOnly: true})
	require.NoError(t, err)
	require.Len(t, finished, 1)
	assert.Equal(t, played.ID, finished[0].ID)
	assert.Equal(t, "3", finished[0].Participants[0].ScoreValue.OrZero().String())
	assert.False(t, finished[0].Participants[0].ScoreValue.OrZero().IsZero())

	completed := bracket.MatchCompleted
	byStatus, err := store.ListMatches(ctx, nil, tournament.ID, MatchFilter{Status: &completed})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)
}

func TestDeleteMatchesScopedToGroup(t *testing.T) {
	database := setupTestDB(t)
	tournament, p := seedTournament(t, database, "Ada", "Brook")
	ctx := context.Background()
	store := NewMatchStore(database)

	groupA := newMatch(tournament.ID, 1, 1, p[0].ID, p[1].ID)
	groupA.Phase = bracket.PhaseGroupStage
	groupA.GroupName = utils.Ptr("A")
	groupB := newMatch(tournament.ID, 1, 1, p[1].ID, p[0].ID)
	groupB.Phase = bracket.PhaseGroupStage
	groupB.GroupName = utils.Ptr("B")

	require.NoError(t, withTx(t, database, func(tx *sqlx.Tx) error {
		return store.CreateMatches(ctx, tx, []bracket.Match{groupA, groupB})
	}))

	var deleted int64
	require.NoError(t, withTx(t, database, func(tx *sqlx.Tx) error {
		var err error
		deleted, err = store.DeleteMatches(ctx, tx, tournament.ID, bracket.PhaseGroupStage, utils.Ptr("A"))
		return err
	}))
	assert.Equal(t, int64(1), deleted)

	remaining, err := store.ListMatches(ctx, nil, tournament.ID, MatchFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, groupB.ID, remaining[0].ID)
	require.Len(t, remaining[0].Participants, 2)
}

func TestUpdateMatchAndSlot(t *testing.T) {
	database := setupTestDB(t)
	tournament, p := seedTournament(t, database, "Ada", "Brook")
	ctx := context.Background()
	store := NewMatchStore(database)

	m := newMatch(tournament.ID, 1, 1, p[0].ID, p[1].ID)
	require.NoError(t, withTx(t, database, func(tx *sqlx.Tx) error {
		return store.CreateMatches(ctx, tx, []bracket.Match{m})
	}))

	end := time.Now().UTC()
	m.Status = bracket.MatchCompleted
	m.IsFinished = true
	m.WinnerParticipantID = &p[1].ID
	m.ActualEnd = &end
	m.ScoreData = bracket.ScorePayload(`{"sets":[6,4]}`)
	m.Participants[1].IsWinner = true
	m.Participants[1].ScoreValue = bracket.NewScore(decimal.NewFromInt(2))
	m.Participants[1].ResultTimeMS = utils.Ptr(int64(61500))

	require.NoError(t, withTx(t, database, func(tx *sqlx.Tx) error {
		if err := store.UpdateMatch(ctx, tx, &m); err != nil {
			return err
		}
		return store.UpdateMatchParticipant(ctx, tx, &m.Participants[1])
	}))

	fetched, err := store.GetMatch(ctx, nil, m.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchCompleted, fetched.Status)
	assert.True(t, fetched.IsFinished)
	assert.Equal(t, p[1].ID, *fetched.WinnerParticipantID)
	assert.JSONEq(t, `{"sets":[6,4]}`, string(fetched.ScoreData))
	require.NotNil(t, fetched.ActualEnd)
	assert.WithinDuration(t, end, *fetched.ActualEnd, time.Second)

	slot := fetched.Slot(p[1].ID)
	require.NotNil(t, slot)
	assert.True(t, slot.IsWinner)
	assert.Equal(t, int64(61500), *slot.ResultTimeMS)
	assert.False(t, fetched.Slot(p[0].ID).ScoreValue.Valid)
}
