package views

import (
	"cmp"
	"slices"

	"github.com/AdamBeresnev/tournament-engine/internal/bracket"
	"github.com/AdamBeresnev/tournament-engine/internal/utils"
	"github.com/google/uuid"
)

type RoundView struct {
	Number  int
	Name    string
	Matches []bracket.Match
}

// StageView is one phase of the schedule, split per group for group stages.
type StageView struct {
	Phase  bracket.Phase
	Group  string
	Rounds []RoundView
}

type BracketData struct {
	Stages         []StageView
	ParticipantMap map[uuid.UUID]bracket.Participant
}

var phaseOrder = map[bracket.Phase]int{
	bracket.PhaseGroupStage: 0,
	bracket.PhaseRoundRobin: 1,
	bracket.PhaseKnockout:   2,
}

func PrepareBracketData(participants []bracket.Participant, matches []bracket.Match) BracketData {
	participantMap := make(map[uuid.UUID]bracket.Participant, len(participants))
	for _, p := range participants {
		participantMap[p.ID] = p
	}

	type stageKey struct {
		phase bracket.Phase
		group string
	}
	stages := make(map[stageKey]map[int]*RoundView)
	var keys []stageKey

	for _, m := range matches {
		key := stageKey{phase: m.Phase, group: utils.OrZero(m.GroupName)}
		rounds, exists := stages[key]
		if !exists {
			rounds = make(map[int]*RoundView)
			stages[key] = rounds
			keys = append(keys, key)
		}
		round, exists := rounds[m.RoundNumber]
		if !exists {
			round = &RoundView{Number: m.RoundNumber, Name: m.RoundName}
			rounds[m.RoundNumber] = round
		}
		round.Matches = append(round.Matches, m)
	}

	slices.SortFunc(keys, func(a, b stageKey) int {
		return cmp.Or(
			cmp.Compare(phaseOrder[a.phase], phaseOrder[b.phase]),
			cmp.Compare(a.group, b.group),
		)
	})

	data := BracketData{ParticipantMap: participantMap}
	for _, key := range keys {
		stage := StageView{Phase: key.phase, Group: key.group}
		for _, round := range stages[key] {
			slices.SortFunc(round.Matches, func(a, b bracket.Match) int {
				return cmp.Compare(a.MatchNumber, b.MatchNumber)
			})
			stage.Rounds = append(stage.Rounds, *round)
		}
		slices.SortFunc(stage.Rounds, func(a, b RoundView) int {
			return cmp.Compare(a.Number, b.Number)
		})
		data.Stages = append(data.Stages, stage)
	}
	return data
}

// SlotLabel names the participant in a slot, or TBD for unknown entries.
func (d BracketData) SlotLabel(slot bracket.MatchParticipant) string {
	if p, ok := d.ParticipantMap[slot.ParticipantID]; ok {
		return p.Name
	}
	return "TBD"
}
