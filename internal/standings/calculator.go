// Package standings aggregates finished matches into a ranked table. It does
// no I/O: callers load the current rows and the finished matches, and persist
// what Calculate returns.
package standings

import (
	"sort"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/google/uuid"
)

// Calculate resets every row, replays all finished non-bye matches into it
// and returns the rows ranked by points, score difference and score for.
// Rows keep their input order on full ties. Slots whose participant has no
// row are ignored, and a head-to-head match missing either side is skipped.
func Calculate(rows []bracket.Standing, matches []bracket.Match, policy Policy) []bracket.Standing {
	if policy.Decide == nil {
		policy.Decide = ScoreFallback
	}

	table := make([]bracket.Standing, len(rows))
	copy(table, rows)

	byParticipant := make(map[uuid.UUID]*bracket.Standing, len(table))
	for i := range table {
		table[i].Reset()
		byParticipant[table[i].ParticipantID] = &table[i]
	}

	for _, m := range playedInOrder(matches) {
		slots := orderedSlots(m.Participants)
		if len(slots) == 2 {
			applyHeadToHead(byParticipant, slots[0], slots[1], policy)
		} else {
			applyMultiParty(byParticipant, slots, policy)
		}
	}

	for i := range table {
		table[i].ScoreDifference = table[i].ScoreFor.Sub(table[i].ScoreAgainst)
		table[i].RecentForm = trimForm(table[i].RecentForm, policy.FormLength)
	}

	sort.SliceStable(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if c := a.ScoreDifference.Cmp(b.ScoreDifference); c != 0 {
			return c > 0
		}
		return a.ScoreFor.GreaterThan(b.ScoreFor)
	})

	for i := range table {
		table[i].PreviousRank = table[i].CurrentRank
		rank := i + 1
		table[i].CurrentRank = &rank
	}

	return table
}

func applyHeadToHead(rows map[uuid.UUID]*bracket.Standing, home, away bracket.MatchParticipant, policy Policy) {
	h, a := rows[home.ParticipantID], rows[away.ParticipantID]
	if h == nil || a == nil {
		return
	}

	h.MatchesPlayed++
	a.MatchesPlayed++

	homeScore, awayScore := home.ScoreValue.OrZero(), away.ScoreValue.OrZero()
	h.ScoreFor = h.ScoreFor.Add(homeScore)
	h.ScoreAgainst = h.ScoreAgainst.Add(awayScore)
	a.ScoreFor = a.ScoreFor.Add(awayScore)
	a.ScoreAgainst = a.ScoreAgainst.Add(homeScore)

	switch policy.Decide(home, away) {
	case HomeWin:
		win(h, policy)
		loss(a, policy)
	case AwayWin:
		win(a, policy)
		loss(h, policy)
	case Draw:
		draw(h, policy)
		draw(a, policy)
	}
}

func applyMultiParty(rows map[uuid.UUID]*bracket.Standing, slots []bracket.MatchParticipant, policy Policy) {
	for _, slot := range slots {
		row := rows[slot.ParticipantID]
		if row == nil {
			continue
		}

		row.MatchesPlayed++
		if slot.ScoreValue.Valid {
			row.ScoreFor = row.ScoreFor.Add(slot.ScoreValue.Decimal)
		}
		if policy.ForfeitDisqualified && slot.IsDisqualified {
			continue
		}

		if slot.FinalPosition != nil {
			row.Points += policy.PositionPoints[*slot.FinalPosition]
		}
		if (slot.FinalPosition != nil && *slot.FinalPosition == 1) || slot.IsWinner {
			row.MatchesWon++
		}
	}
}

func win(s *bracket.Standing, policy Policy) {
	s.MatchesWon++
	s.Points += policy.WinPoints
	s.RecentForm += "W"
}

func loss(s *bracket.Standing, policy Policy) {
	s.MatchesLost++
	s.Points += policy.LossPoints
	s.RecentForm += "L"
}

func draw(s *bracket.Standing, policy Policy) {
	s.MatchesDrawn++
	s.Points += policy.DrawPoints
	s.RecentForm += "D"
}

func trimForm(form string, length int) string {
	if length <= 0 {
		return ""
	}
	if len(form) > length {
		return form[len(form)-length:]
	}
	return form
}

func playedInOrder(matches []bracket.Match) []bracket.Match {
	played := make([]bracket.Match, 0, len(matches))
	for _, m := range matches {
		if m.IsFinished && !m.IsBye {
			played = append(played, m)
		}
	}
	sort.SliceStable(played, func(i, j int) bool {
		if played[i].RoundNumber != played[j].RoundNumber {
			return played[i].RoundNumber < played[j].RoundNumber
		}
		return played[i].MatchNumber < played[j].MatchNumber
	})
	return played
}

func orderedSlots(slots []bracket.MatchParticipant) []bracket.MatchParticipant {
	out := make([]bracket.MatchParticipant, len(slots))
	copy(out, slots)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SlotNumber < out[j].SlotNumber
	})
	return out
}
