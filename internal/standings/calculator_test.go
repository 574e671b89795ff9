package standings

import (
	"testing"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/AdamBeresnev/tournament-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRows(n int) ([]bracket.Standing, []uuid.UUID) {
	tournamentID := uuid.New()
	rows := make([]bracket.Standing, n)
	ids := make([]uuid.UUID, n)
	for i := range rows {
		ids[i] = uuid.New()
		rows[i] = bracket.Standing{ID: uuid.New(), TournamentID: tournamentID, ParticipantID: ids[i]}
	}
	return rows, ids
}

func headToHead(round, number int, home, away uuid.UUID, homeScore, awayScore int64) bracket.Match {
	return bracket.Match{
		ID:          uuid.New(),
		RoundNumber: round,
		MatchNumber: number,
		IsFinished:  true,
		Status:      bracket.MatchCompleted,
		Participants: []bracket.MatchParticipant{
			{ParticipantID: home, SlotNumber: 1, ScoreValue: bracket.NewScore(decimal.NewFromInt(homeScore))},
			{ParticipantID: away, SlotNumber: 2, ScoreValue: bracket.NewScore(decimal.NewFromInt(awayScore))},
		},
	}
}

func rowFor(t *testing.T, table []bracket.Standing, id uuid.UUID) bracket.Standing {
	t.Helper()
	for _, s := range table {
		if s.ParticipantID == id {
			return s
		}
	}
	require.FailNow(t, "no standing for participant", id.String())
	return bracket.Standing{}
}

func TestCalculateHomeWinByScore(t *testing.T) {
	rows, ids := newRows(2)

	table := Calculate(rows, []bracket.Match{headToHead(1, 1, ids[0], ids[1], 3, 1)}, DefaultPolicy())

	home := rowFor(t, table, ids[0])
	away := rowFor(t, table, ids[1])

	assert.Equal(t, 1, home.MatchesPlayed)
	assert.Equal(t, 1, home.MatchesWon)
	assert.Equal(t, 3, home.Points)
	assert.True(t, home.ScoreDifference.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, 1, *home.CurrentRank)

	assert.Equal(t, 1, away.MatchesLost)
	assert.Equal(t, 0, away.Points)
	assert.True(t, away.ScoreDifference.Equal(decimal.NewFromInt(-2)))
	assert.Equal(t, 2, *away.CurrentRank)
}

func TestCalculateDraw(t *testing.T) {
	rows, ids := newRows(2)

	table := Calculate(rows, []bracket.Match{headToHead(1, 1, ids[0], ids[1], 2, 2)}, DefaultPolicy())

	for _, s := range table {
		assert.Equal(t, 1, s.MatchesDrawn)
		assert.Equal(t, 1, s.Points)
		assert.Equal(t, "D", s.RecentForm)
	}
}

func TestCalculateExplicitWinnerBeatsScore(t *testing.T) {
	rows, ids := newRows(2)
	m := headToHead(1, 1, ids[0], ids[1], 0, 1)
	// Home won on penalties
	m.Participants[0].IsWinner = true

	table := Calculate(rows, []bracket.Match{m}, DefaultPolicy())

	assert.Equal(t, 3, rowFor(t, table, ids[0]).Points)
	assert.Equal(t, 1, rowFor(t, table, ids[1]).MatchesLost)
}

func TestCalculateExplicitWinnerOnlyPolicy(t *testing.T) {
	rows, ids := newRows(2)
	policy := DefaultPolicy()
	policy.Decide = ExplicitWinnerOnly

	table := Calculate(rows, []bracket.Match{headToHead(1, 1, ids[0], ids[1], 3, 1)}, policy)

	home := rowFor(t, table, ids[0])
	assert.Equal(t, 1, home.MatchesPlayed)
	assert.Equal(t, 0, home.MatchesWon)
	assert.Equal(t, 0, home.Points)
	assert.True(t, home.ScoreFor.Equal(decimal.NewFromInt(3)))
}

func TestCalculateSkipsByesAndUnfinished(t *testing.T) {
	rows, ids := newRows(2)

	bye := bracket.Match{
		IsBye:      true,
		IsFinished: true,
		Participants: []bracket.MatchParticipant{
			{ParticipantID: ids[0], SlotNumber: 1, IsWinner: true},
		},
	}
	unfinished := headToHead(1, 2, ids[0], ids[1], 5, 0)
	unfinished.IsFinished = false

	table := Calculate(rows, []bracket.Match{bye, unfinished}, DefaultPolicy())

	for _, s := range table {
		assert.Zero(t, s.MatchesPlayed)
		assert.Zero(t, s.Points)
	}
}

func TestCalculateMissingScoresDefaultToZero(t *testing.T) {
	rows, ids := newRows(2)
	m := headToHead(1, 1, ids[0], ids[1], 0, 0)
	m.Participants[0].ScoreValue = bracket.Score{}
	m.Participants[1].ScoreValue = bracket.Score{}

	table := Calculate(rows, []bracket.Match{m}, DefaultPolicy())

	for _, s := range table {
		assert.Equal(t, 1, s.MatchesDrawn)
		assert.True(t, s.ScoreFor.IsZero())
	}
}

func TestCalculateMultiParty(t *testing.T) {
	rows, ids := newRows(4)
	race := bracket.Match{
		IsFinished: true,
		Participants: []bracket.MatchParticipant{
			{ParticipantID: ids[0], SlotNumber: 1, FinalPosition: utils.Ptr(2), ScoreValue: bracket.NewScore(decimal.NewFromInt(10))},
			{ParticipantID: ids[1], SlotNumber: 2, FinalPosition: utils.Ptr(1)},
			{ParticipantID: ids[2], SlotNumber: 3, FinalPosition: utils.Ptr(11)},
			{ParticipantID: ids[3], SlotNumber: 4, FinalPosition: utils.Ptr(3), IsDisqualified: true},
			{ParticipantID: uuid.New(), SlotNumber: 5, FinalPosition: utils.Ptr(4)},
		},
	}

	table := Calculate(rows, []bracket.Match{race}, DefaultPolicy())

	first := rowFor(t, table, ids[1])
	assert.Equal(t, 25, first.Points)
	assert.Equal(t, 1, first.MatchesWon)
	assert.Equal(t, 1, *first.CurrentRank)

	second := rowFor(t, table, ids[0])
	assert.Equal(t, 18, second.Points)
	assert.True(t, second.ScoreFor.Equal(decimal.NewFromInt(10)))
	assert.True(t, second.ScoreAgainst.IsZero())

	assert.Equal(t, 0, rowFor(t, table, ids[2]).Points)
	assert.Equal(t, 15, rowFor(t, table, ids[3]).Points)
	for _, s := range table {
		assert.Equal(t, 1, s.MatchesPlayed)
	}
}

func TestCalculateSkipsHeadToHeadWithUnknownSide(t *testing.T) {
	rows, ids := newRows(1)

	table := Calculate(rows, []bracket.Match{headToHead(1, 1, ids[0], uuid.New(), 4, 0)}, DefaultPolicy())

	require.Len(t, table, 1)
	assert.Zero(t, table[0].MatchesPlayed)
}

func TestCalculateStableTies(t *testing.T) {
	rows, ids := newRows(4)
	matches := []bracket.Match{
		headToHead(1, 1, ids[0], ids[1], 1, 1),
		headToHead(1, 2, ids[2], ids[3], 1, 1),
	}

	for i := 0; i < 5; i++ {
		table := Calculate(rows, matches, DefaultPolicy())
		for pos, s := range table {
			assert.Equal(t, ids[pos], s.ParticipantID)
		}
	}
}

func TestCalculateTieBreakOrder(t *testing.T) {
	rows, ids := newRows(3)
	matches := []bracket.Match{
		// ids[0] and ids[1] both win once, ids[1] by more
		headToHead(1, 1, ids[0], ids[2], 1, 0),
		headToHead(2, 1, ids[1], ids[2], 4, 0),
	}

	table := Calculate(rows, matches, DefaultPolicy())

	assert.Equal(t, ids[1], table[0].ParticipantID)
	assert.Equal(t, ids[0], table[1].ParticipantID)
	assert.Equal(t, ids[2], table[2].ParticipantID)
	assert.Equal(t, "LL", table[2].RecentForm)
}

func TestCalculateIsIdempotent(t *testing.T) {
	rows, ids := newRows(4)
	matches := []bracket.Match{
		headToHead(1, 1, ids[0], ids[3], 0, 2),
		headToHead(1, 2, ids[1], ids[2], 1, 1),
		headToHead(2, 1, ids[3], ids[1], 3, 3),
	}

	first := Calculate(rows, matches, DefaultPolicy())
	second := Calculate(first, matches, DefaultPolicy())

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ParticipantID, second[i].ParticipantID)
		assert.Equal(t, first[i].Points, second[i].Points)
		assert.Equal(t, first[i].MatchesPlayed, second[i].MatchesPlayed)
		assert.True(t, first[i].ScoreDifference.Equal(second[i].ScoreDifference))
		assert.Equal(t, *first[i].CurrentRank, *second[i].CurrentRank)
		assert.Equal(t, *first[i].CurrentRank, *second[i].PreviousRank)
	}
}

func TestCalculatePreviousRankMovesBack(t *testing.T) {
	rows, ids := newRows(2)
	rows[0].CurrentRank = utils.Ptr(1)
	rows[1].CurrentRank = utils.Ptr(2)

	table := Calculate(rows, []bracket.Match{headToHead(1, 1, ids[0], ids[1], 0, 1)}, DefaultPolicy())

	climber := rowFor(t, table, ids[1])
	assert.Equal(t, 1, *climber.CurrentRank)
	assert.Equal(t, 2, *climber.PreviousRank)
	assert.Equal(t, 1, climber.RankMovement())
}

func TestCalculateRecentFormKeepsLastFive(t *testing.T) {
	rows, ids := newRows(2)
	var matches []bracket.Match
	for round := 1; round <= 7; round++ {
		score := int64(0)
		if round > 2 {
			score = 2
		}
		matches = append(matches, headToHead(round, 1, ids[0], ids[1], score, 1))
	}

	table := Calculate(rows, matches, DefaultPolicy())

	assert.Equal(t, "WWWWW", rowFor(t, table, ids[0]).RecentForm)
	assert.Equal(t, "LLLLL", rowFor(t, table, ids[1]).RecentForm)
}

func TestCalculateEmpty(t *testing.T) {
	assert.Empty(t, Calculate(nil, nil, DefaultPolicy()))
}

func TestCalculateMultiPartyDisqualified(t *testing.T) {
	rows, ids := newRows(3)
	race := bracket.Match{
		IsFinished: true,
		Participants: []bracket.MatchParticipant{
			{ParticipantID: ids[0], SlotNumber: 1, FinalPosition: utils.Ptr(1), IsDisqualified: true},
			{ParticipantID: ids[1], SlotNumber: 2, FinalPosition: utils.Ptr(2)},
			{ParticipantID: ids[2], SlotNumber: 3, FinalPosition: utils.Ptr(3)},
		},
	}

	testCases := []struct {
		name    string
		forfeit bool
		points  int
		won     int
	}{
		{name: "positions count by default", points: 25, won: 1},
		{name: "forfeit policy", forfeit: true, points: 0, won: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			policy := DefaultPolicy()
			policy.ForfeitDisqualified = tc.forfeit

			table := Calculate(rows, []bracket.Match{race}, policy)

			dq := rowFor(t, table, ids[0])
			assert.Equal(t, tc.points, dq.Points)
			assert.Equal(t, tc.won, dq.MatchesWon)
			assert.Equal(t, 1, dq.MatchesPlayed)
			assert.Equal(t, 18, rowFor(t, table, ids[1]).Points)
		})
	}
}
