//go:build integration

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/AdamBeresnev/tournament-engine/internal/db"
	"github.com/AdamBeresnev/tournament-engine/internal/utils"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("brackets"),
		postgres.WithUsername("brackets"),
		postgres.WithPassword("brackets"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "Failed to start postgres container")
	t.Cleanup(func() { container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	database, err := db.Open(ctx, db.DriverPostgres, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database), "Failed to apply migrations")
	return database
}

func TestPostgresScheduleAndStandings(t *testing.T) {
	f := fixtureFor(t, setupPostgresDB(t))

	tournamentID, p := f.seed(t, confirmedEntries(4))
	_, err := f.brackets.GenerateRoundRobin(f.ctx, tournamentID, RoundRobinOptions{HomeAndAway: true})
	require.NoError(t, err)

	matches := f.listMatches(t, tournamentID)
	require.Len(t, matches, 12)

	opener := findMatch(t, matches, 1, 1)
	_, err = f.matches.RecordScore(f.ctx, opener.ID, ScoreUpdate{
		Participants: []ParticipantScore{
			{ParticipantID: opener.Participants[0].ParticipantID, ScoreValue: bracket.NewScore(decimal.NewFromInt(2)), ResultTime: "1:02.500"},
			{ParticipantID: opener.Participants[1].ParticipantID, ScoreValue: bracket.NewScore(decimal.NewFromInt(1))},
		},
		WinnerParticipantID: utils.Ptr(opener.Participants[0].ParticipantID),
	})
	require.NoError(t, err)

	table, err := f.standings.Get(f.ctx, tournamentID, nil)
	require.NoError(t, err)
	require.Len(t, table, len(p))
	assert.Equal(t, opener.Participants[0].ParticipantID, table[0].ParticipantID)
	assert.Equal(t, 3, table[0].Points)

	stored, err := f.matches.Get(f.ctx, opener.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(62_500), *stored.Participants[0].ResultTimeMS)
}

func TestPostgresConcurrentGenerationConflicts(t *testing.T) {
	f := fixtureFor(t, setupPostgresDB(t))
	tournamentID, _ := f.seed(t, confirmedEntries(8))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.brackets.GenerateKnockout(f.ctx, tournamentID, KnockoutOptions{})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrScheduleConflict)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.listMatches(t, tournamentID), 7)
}
