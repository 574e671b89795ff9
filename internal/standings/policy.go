package standings

import "github.com/AdamBeresnev/tournament-engine/internal/bracket"

type Outcome int

const (
	NoResult Outcome = iota
	HomeWin
	AwayWin
	Draw
)

// Decider resolves a finished head-to-head match from its two slots.
type Decider func(home, away bracket.MatchParticipant) Outcome

// ScoreFallback trusts an explicit winner flag and otherwise lets the higher
// score win, equal scores being a draw.
func ScoreFallback(home, away bracket.MatchParticipant) Outcome {
	if outcome, ok := explicitWinner(home, away); ok {
		return outcome
	}
	switch home.ScoreValue.OrZero().Cmp(away.ScoreValue.OrZero()) {
	case 1:
		return HomeWin
	case -1:
		return AwayWin
	}
	return Draw
}

// ExplicitWinnerOnly never infers a winner from scores. Unflagged matches with
// equal scores are draws, anything else is left without a result.
func ExplicitWinnerOnly(home, away bracket.MatchParticipant) Outcome {
	if outcome, ok := explicitWinner(home, away); ok {
		return outcome
	}
	if home.ScoreValue.OrZero().Equal(away.ScoreValue.OrZero()) {
		return Draw
	}
	return NoResult
}

func explicitWinner(home, away bracket.MatchParticipant) (Outcome, bool) {
	if home.IsWinner {
		return HomeWin, true
	}
	if away.IsWinner {
		return AwayWin, true
	}
	return NoResult, false
}

// DefaultPositionPoints is the points table for races and other multi-party matches.
var DefaultPositionPoints = map[int]int{
	1: 25, 2: 18, 3: 15, 4: 12, 5: 10,
	6: 8, 7: 6, 8: 4, 9: 2, 10: 1,
}

type Policy struct {
	WinPoints      int
	DrawPoints     int
	LossPoints     int
	Decide         Decider
	PositionPoints map[int]int
	FormLength     int
	// ForfeitDisqualified withholds position points and the win from
	// disqualified slots of multi-party matches.
	ForfeitDisqualified bool
}

func DefaultPolicy() Policy {
	return Policy{
		WinPoints:      3,
		DrawPoints:     1,
		LossPoints:     0,
		Decide:         ScoreFallback,
		PositionPoints: DefaultPositionPoints,
		FormLength:     5,
	}
}
