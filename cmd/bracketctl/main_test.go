package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AdamBeresnev/tournament-engine/internal/db"
	"github.com/AdamBeresnev/tournament-engine/internal/middleware"
	"github.com/AdamBeresnev/tournament-engine/internal/service"
	"github.com/AdamBeresnev/tournament-engine/internal/store"
	users "github.com/AdamBeresnev/tournament-engine/internal/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := fmt.Sprintf("database:\n  driver: sqlite3\n  dsn: %s\n", filepath.Join(dir, "brackets.db"))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"bracketctl"}, args...))
	return out.String(), err
}

func seedTournament(t *testing.T, configPath string, names ...string) uuid.UUID {
	t.Helper()

	dsn := filepath.Join(filepath.Dir(configPath), "brackets.db")
	database, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	defer database.Close()

	owner := &users.User{ID: uuid.New(), Email: "owner@example.com", Username: "owner", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.NewUserStore(database).CreateUser(context.Background(), owner))

	tournaments := service.NewTournamentService(database, store.NewTournamentStore(database), store.NewMatchStore(database), store.NewStandingStore(database))
	var inputs []service.ParticipantInput
	for _, name := range names {
		inputs = append(inputs, service.ParticipantInput{Name: name, Confirmed: true})
	}

	ctx := context.WithValue(context.Background(), middleware.UserIDKey, owner.ID)
	tournament, err := tournaments.CreateTournament(ctx, service.TournamentInput{Name: "CLI Cup", Participants: inputs})
	require.NoError(t, err)
	return tournament.ID
}

func TestGenerateAndPrintStandings(t *testing.T) {
	configPath := writeConfig(t)

	out, err := run(t, "--config", configPath, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrations applied.")

	id := seedTournament(t, configPath, "Ada", "Brook", "Cyd")

	out, err = run(t, "--config", configPath, "generate", "round-robin", "--tournament", id.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Round 1")
	assert.Contains(t, out, "3 matches")

	_, err = run(t, "--config", configPath, "generate", "round-robin", "--tournament", id.String())
	assert.ErrorIs(t, err, service.ErrScheduleConflict)

	out, err = run(t, "--config", configPath, "standings", "--tournament", id.String(), "--recalculate")
	require.NoError(t, err)
	assert.Contains(t, out, "PARTICIPANT")
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "Cyd")
}

func TestGenerateRejectsBadInput(t *testing.T) {
	configPath := writeConfig(t)

	_, err := run(t, "--config", configPath, "generate", "knockout", "--tournament", "nope")
	assert.ErrorContains(t, err, "invalid tournament ID")

	_, err = run(t, "--config", configPath, "generate", "knockout", "--tournament", uuid.NewString(), "--layout", "spiral")
	assert.ErrorContains(t, err, "unknown bracket layout")
}
