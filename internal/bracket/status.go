package bracket

import "fmt"

type MatchStatus string

const (
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
	MatchCancelled  MatchStatus = "cancelled"
	MatchPostponed  MatchStatus = "postponed"
	MatchWalkover   MatchStatus = "walkover"
)

var matchTransitions = map[MatchStatus][]MatchStatus{
	MatchScheduled:  {MatchInProgress, MatchCancelled, MatchPostponed, MatchWalkover},
	MatchInProgress: {MatchCompleted},
	MatchPostponed:  {MatchScheduled},
	MatchCompleted:  nil,
	MatchCancelled:  nil,
	MatchWalkover:   nil,
}

func ParseMatchStatus(s string) (MatchStatus, error) {
	status := MatchStatus(s)
	if _, ok := matchTransitions[status]; !ok {
		return "", fmt.Errorf("unknown match status %q", s)
	}
	return status, nil
}

func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	for _, allowed := range matchTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal is true for statuses with no outgoing transitions.
func (s MatchStatus) IsTerminal() bool {
	allowed, ok := matchTransitions[s]
	return ok && len(allowed) == 0
}

// Finishes reports whether entering this status marks the match as played.
func (s MatchStatus) Finishes() bool {
	return s == MatchCompleted || s == MatchWalkover
}
