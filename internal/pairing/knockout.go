package pairing

import (
	"errors"
	"fmt"
	"math"
)

var ErrTooFewParticipants = errors.New("knockout needs at least 2 participants")

type Layout string

const (
	// LayoutSequential pairs neighbours in list order, an odd leftover gets a bye.
	LayoutSequential Layout = "sequential"
	// LayoutSeeded spreads seeds over a full power of two bracket so the top
	// seeds receive every bye.
	LayoutSeeded Layout = "seeded"
)

func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case "", LayoutSequential:
		return LayoutSequential, nil
	case LayoutSeeded:
		return LayoutSeeded, nil
	}
	return "", fmt.Errorf("unknown bracket layout %q", s)
}

type Plan struct {
	Rounds      int
	BracketSize int
	// Byes counts the empty slots of the power of two bracket.
	Byes       int
	FirstRound []Pair
	RoundNames []string
}

func (p Plan) ByeMatches() int {
	count := 0
	for _, pair := range p.FirstRound {
		if pair.IsBye() {
			count++
		}
	}
	return count
}

func Knockout(n int, layout Layout) (Plan, error) {
	if n < 2 {
		return Plan{}, ErrTooFewParticipants
	}

	size := BracketSize(n)
	rounds := int(math.Log2(float64(size)))

	plan := Plan{
		Rounds:      rounds,
		BracketSize: size,
		Byes:        size - n,
		RoundNames:  RoundNames(rounds),
	}

	switch layout {
	case LayoutSeeded:
		for _, pair := range seededPairs(size) {
			away := pair[1]
			if away >= n {
				away = Bye
			}
			plan.FirstRound = append(plan.FirstRound, Pair{Home: pair[0], Away: away})
		}
	default:
		plan.FirstRound = Sequential(n)
	}

	return plan, nil
}

// Sequential pairs (0,1), (2,3), ... leaving a trailing odd index with a bye.
// Later knockout rounds use it to pair up the previous round's matches.
func Sequential(n int) []Pair {
	pairs := make([]Pair, 0, (n+1)/2)
	for i := 0; i < n; i += 2 {
		if i+1 < n {
			pairs = append(pairs, Pair{Home: i, Away: i + 1})
		} else {
			pairs = append(pairs, Pair{Home: i, Away: Bye})
		}
	}
	return pairs
}

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func BracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// Standard seeding order: 1 v 8, 4 v 5, 2 v 7, 3 v 6 for a bracket of 8.
func seededPairs(bracketSize int) [][2]int {
	if bracketSize == 0 {
		return [][2]int{}
	}

	order := []int{0}
	for len(order) < bracketSize {
		var next []int
		currentCount := len(order) * 2

		for _, seed := range order {
			next = append(next, seed)
			next = append(next, (currentCount-1)-seed)
		}
		order = next
	}

	pairs := make([][2]int, 0, bracketSize/2)
	for i := 0; i < len(order); i += 2 {
		pairs = append(pairs, [2]int{order[i], order[i+1]})
	}

	return pairs
}

func RoundNames(rounds int) []string {
	switch rounds {
	case 0:
		return nil
	case 1:
		return []string{"Final"}
	case 2:
		return []string{"Semifinal", "Final"}
	case 3:
		return []string{"Quarterfinal", "Semifinal", "Final"}
	case 4:
		return []string{"Round of 16", "Quarterfinal", "Semifinal", "Final"}
	case 5:
		return []string{"Round of 32", "Round of 16", "Quarterfinal", "Semifinal", "Final"}
	}

	names := make([]string, 0, rounds)
	for i := 1; i <= rounds-3; i++ {
		names = append(names, fmt.Sprintf("Round %d", i))
	}
	return append(names, "Quarterfinal", "Semifinal", "Final")
}
