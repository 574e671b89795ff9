package service

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/AdamBeresnev/tournament-engine/internal/db"
	"github.com/AdamBeresnev/tournament-engine/internal/middleware"
	"github.com/AdamBeresnev/tournament-engine/internal/store"
	users "github.com/AdamBeresnev/tournament-engine/internal/user"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Open(context.Background(), db.DriverSQLite, "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	require.NoError(t, db.RunMigrations(database), "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

type fixture struct {
	db *sqlx.DB

	tournamentStore *store.TournamentStore
	matchStore      *store.MatchStore
	standingStore   *store.StandingStore

	tournaments *TournamentService
	brackets    *BracketService
	standings   *StandingsService
	matches     *MatchService

	ownerID uuid.UUID
	ctx     context.Context
}

func newFixture(t *testing.T, opts ...StandingsOption) *fixture {
	t.Helper()
	return fixtureFor(t, setupTestDB(t), opts...)
}

func fixtureFor(t *testing.T, database *sqlx.DB, opts ...StandingsOption) *fixture {
	t.Helper()

	f := &fixture{
		db:              database,
		tournamentStore: store.NewTournamentStore(database),
		matchStore:      store.NewMatchStore(database),
		standingStore:   store.NewStandingStore(database),
	}
	f.tournaments = NewTournamentService(database, f.tournamentStore, f.matchStore, f.standingStore)
	f.brackets = NewBracketService(database, f.tournamentStore, f.matchStore, nil)
	f.standings = NewStandingsService(database, f.tournamentStore, f.matchStore, f.standingStore, opts...)
	f.matches = NewMatchService(database, f.tournamentStore, f.matchStore, f.standings)

	f.ownerID = f.createUser(t)
	f.ctx = context.WithValue(context.Background(), middleware.UserIDKey, f.ownerID)
	return f
}

func (f *fixture) createUser(t *testing.T) uuid.UUID {
	t.Helper()
	user := &users.User{
		ID:        uuid.New(),
		Email:     gofakeit.Email(),
		Username:  gofakeit.Username(),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.NewUserStore(f.db).CreateUser(context.Background(), user))
	return user.ID
}

func confirmedEntries(n int) []ParticipantInput {
	inputs := make([]ParticipantInput, n)
	for i := range inputs {
		inputs[i] = ParticipantInput{Name: gofakeit.Name(), Confirmed: true}
	}
	return inputs
}

// seed creates a tournament and returns its participants in seeding order.
func (f *fixture) seed(t *testing.T, inputs []ParticipantInput) (uuid.UUID, []bracket.Participant) {
	t.Helper()

	tournament, err := f.tournaments.CreateTournament(f.ctx, TournamentInput{
		Name:         gofakeit.Company() + " Open",
		Type:         bracket.Knockout,
		Participants: inputs,
	})
	require.NoError(t, err)

	participants, err := f.tournamentStore.ListParticipants(f.ctx, nil, tournament.ID, store.ParticipantFilter{})
	require.NoError(t, err)
	return tournament.ID, participants
}

func (f *fixture) listMatches(t *testing.T, tournamentID uuid.UUID) []bracket.Match {
	t.Helper()
	matches, err := f.matches.List(f.ctx, tournamentID, store.MatchFilter{})
	require.NoError(t, err)
	return matches
}

func findMatch(t *testing.T, matches []bracket.Match, round, number int) bracket.Match {
	t.Helper()
	for _, m := range matches {
		if m.RoundNumber == round && m.MatchNumber == number {
			return m
		}
	}
	require.FailNow(t, "match not found", "round %d match %d", round, number)
	return bracket.Match{}
}

func slotIDs(m bracket.Match) []uuid.UUID {
	ids := make([]uuid.UUID, len(m.Participants))
	for i, slot := range m.Participants {
		ids[i] = slot.ParticipantID
	}
	return ids
}
