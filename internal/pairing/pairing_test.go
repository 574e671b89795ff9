package pairing

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobinCircle(t *testing.T) {
	testCases := []struct {
		name     string
		n        int
		expected [][]Pair
	}{
		{
			name:     "2 participants",
			n:        2,
			expected: [][]Pair{{{0, 1}}},
		},
		{
			name: "3 participants sit out in turn",
			n:    3,
			expected: [][]Pair{
				{{1, 2}},
				{{0, 2}},
				{{0, 1}},
			},
		},
		{
			name: "4 participants",
			n:    4,
			expected: [][]Pair{
				{{0, 3}, {1, 2}},
				{{0, 2}, {3, 1}},
				{{0, 1}, {2, 3}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.expected, RoundRobin(tc.n)); diff != "" {
				t.Errorf("RoundRobin(%d) mismatch (-want +got):\n%s", tc.n, diff)
			}
		})
	}
}

func TestRoundRobinEveryPairOnce(t *testing.T) {
	for n := 2; n <= 13; n++ {
		t.Run(fmt.Sprintf("%d participants", n), func(t *testing.T) {
			rounds := RoundRobin(n)

			expectedRounds := n - 1
			if n%2 == 1 {
				expectedRounds = n
			}
			require.Len(t, rounds, expectedRounds)

			seen := make(map[[2]int]int)
			for r, round := range rounds {
				inRound := make(map[int]bool)
				for _, p := range round {
					assert.False(t, inRound[p.Home], "round %d: %d plays twice", r+1, p.Home)
					assert.False(t, inRound[p.Away], "round %d: %d plays twice", r+1, p.Away)
					inRound[p.Home] = true
					inRound[p.Away] = true

					assert.Less(t, p.Home, n)
					assert.Less(t, p.Away, n)

					key := [2]int{min(p.Home, p.Away), max(p.Home, p.Away)}
					seen[key]++
				}
				if n%2 == 1 {
					assert.Len(t, round, (n-1)/2, "exactly one participant sits out")
				}
			}

			assert.Len(t, seen, n*(n-1)/2)
			for pair, count := range seen {
				assert.Equal(t, 1, count, "pair %v", pair)
			}
		})
	}
}

func TestRoundRobinTooSmall(t *testing.T) {
	assert.Nil(t, RoundRobin(1))
	assert.Nil(t, RoundRobin(0))
}

func TestSecondLeg(t *testing.T) {
	first := RoundRobin(4)
	second := SecondLeg(first)

	require.Len(t, second, len(first))
	for r := range first {
		for i := range first[r] {
			assert.Equal(t, first[r][i].Home, second[r][i].Away)
			assert.Equal(t, first[r][i].Away, second[r][i].Home)
		}
	}
}

func TestKnockoutSequential(t *testing.T) {
	testCases := []struct {
		n            int
		rounds       int
		bracketSize  int
		byes         int
		firstRound   []Pair
		byeMatchesNo int
	}{
		{n: 2, rounds: 1, bracketSize: 2, byes: 0, firstRound: []Pair{{0, 1}}},
		{n: 3, rounds: 2, bracketSize: 4, byes: 1, firstRound: []Pair{{0, 1}, {2, Bye}}, byeMatchesNo: 1},
		{n: 4, rounds: 2, bracketSize: 4, byes: 0, firstRound: []Pair{{0, 1}, {2, 3}}},
		{n: 5, rounds: 3, bracketSize: 8, byes: 3, firstRound: []Pair{{0, 1}, {2, 3}, {4, Bye}}, byeMatchesNo: 1},
		{n: 6, rounds: 3, bracketSize: 8, byes: 2, firstRound: []Pair{{0, 1}, {2, 3}, {4, 5}}},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d participants", tc.n), func(t *testing.T) {
			plan, err := Knockout(tc.n, LayoutSequential)
			require.NoError(t, err)

			assert.Equal(t, tc.rounds, plan.Rounds)
			assert.Equal(t, tc.bracketSize, plan.BracketSize)
			assert.Equal(t, tc.byes, plan.Byes)
			assert.Equal(t, tc.firstRound, plan.FirstRound)
			assert.Equal(t, tc.byeMatchesNo, plan.ByeMatches())
			assert.Len(t, plan.RoundNames, tc.rounds)
		})
	}
}

func TestKnockoutSeeded(t *testing.T) {
	plan, err := Knockout(5, LayoutSeeded)
	require.NoError(t, err)

	assert.Equal(t, []Pair{{0, Bye}, {3, 4}, {1, Bye}, {2, Bye}}, plan.FirstRound)
	assert.Equal(t, plan.Byes, plan.ByeMatches())

	for n := 2; n <= 40; n++ {
		plan, err := Knockout(n, LayoutSeeded)
		require.NoError(t, err)
		assert.Len(t, plan.FirstRound, plan.BracketSize/2)
		assert.Equal(t, plan.BracketSize-n, plan.ByeMatches(), "n=%d", n)
	}
}

func TestKnockoutTooFewParticipants(t *testing.T) {
	_, err := Knockout(1, LayoutSequential)
	assert.ErrorIs(t, err, ErrTooFewParticipants)
}

func TestSeededPairsOrder(t *testing.T) {
	testCases := []struct {
		name        string
		bracketSize int
		expected    [][2]int
	}{
		{name: "2 slots", bracketSize: 2, expected: [][2]int{{0, 1}}},
		{name: "4 slots", bracketSize: 4, expected: [][2]int{{0, 3}, {1, 2}}},
		{name: "8 slots", bracketSize: 8, expected: [][2]int{{0, 7}, {3, 4}, {1, 6}, {2, 5}}},
		{name: "empty", bracketSize: 0, expected: [][2]int{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, seededPairs(tc.bracketSize))
		})
	}
}

func TestBracketSize(t *testing.T) {
	assert.Equal(t, 0, BracketSize(0))
	assert.Equal(t, 2, BracketSize(2))
	assert.Equal(t, 8, BracketSize(5))
	assert.Equal(t, 16, BracketSize(16))
	assert.Equal(t, 32, BracketSize(17))
}

func TestRoundNames(t *testing.T) {
	assert.Equal(t, []string{"Final"}, RoundNames(1))
	assert.Equal(t, []string{"Semifinal", "Final"}, RoundNames(2))
	assert.Equal(t, []string{"Quarterfinal", "Semifinal", "Final"}, RoundNames(3))
	assert.Equal(t, []string{"Round of 16", "Quarterfinal", "Semifinal", "Final"}, RoundNames(4))
	assert.Equal(t, []string{"Round of 32", "Round of 16", "Quarterfinal", "Semifinal", "Final"}, RoundNames(5))
	assert.Equal(t, []string{"Round 1", "Round 2", "Round 3", "Quarterfinal", "Semifinal", "Final"}, RoundNames(6))
	assert.Len(t, RoundNames(8), 8)
}

func TestParseLayout(t *testing.T) {
	layout, err := ParseLayout("")
	require.NoError(t, err)
	assert.Equal(t, LayoutSequential, layout)

	layout, err = ParseLayout("seeded")
	require.NoError(t, err)
	assert.Equal(t, LayoutSeeded, layout)

	_, err = ParseLayout("swiss")
	assert.Error(t, err)
}
