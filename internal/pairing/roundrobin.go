// Package pairing holds the pure combinatorial parts of schedule generation.
// Everything here works on indexes into a caller-ordered participant list.
package pairing

// Bye marks the empty side of a pair.
const Bye = -1

type Pair struct {
	Home int
	Away int
}

func (p Pair) IsBye() bool {
	return p.Away == Bye
}

func (p Pair) Swapped() Pair {
	return Pair{Home: p.Away, Away: p.Home}
}

// RoundRobin schedules n participants with the circle method. Index 0 stays
// fixed while the others rotate one place per round. For odd n a phantom
// index n is added and its pairings are dropped, so the participant drawn
// against it sits that round out.
func RoundRobin(n int) [][]Pair {
	if n < 2 {
		return nil
	}

	m := n
	if m%2 == 1 {
		m++
	}

	circle := make([]int, m)
	for i := range circle {
		circle[i] = i
	}

	rounds := make([][]Pair, 0, m-1)
	for r := 0; r < m-1; r++ {
		round := make([]Pair, 0, m/2)
		for i := 0; i < m/2; i++ {
			home, away := circle[i], circle[m-1-i]
			if home >= n || away >= n {
				continue
			}
			round = append(round, Pair{Home: home, Away: away})
		}
		rounds = append(rounds, round)

		rotated := make([]int, 0, m)
		rotated = append(rotated, circle[0], circle[m-1])
		rotated = append(rotated, circle[1:m-1]...)
		circle = rotated
	}

	return rounds
}

// SecondLeg mirrors a schedule with home and away swapped.
func SecondLeg(rounds [][]Pair) [][]Pair {
	out := make([][]Pair, len(rounds))
	for r, round := range rounds {
		out[r] = make([]Pair, len(round))
		for i, p := range round {
			out[r][i] = p.Swapped()
		}
	}
	return out
}
