// Package tally is the pure vote-counting engine. Given the same position,
// roster, and ballot log it produces byte-identical results regardless of
// input order.
package tally

import (
	"math"
	"sort"
	"strings"

	"campuselect/contexts/election-operations/results-service/domain/entities"
	domainerrors "campuselect/contexts/election-operations/results-service/domain/errors"
)

// Tally counts the position's ballots under the given scope. Every roster
// candidate appears in the result, zero-ballot candidates included. A ballot
// naming a candidate outside the roster aborts the tally with
// ErrDataIntegrity; nothing partial is returned.
func Tally(
	position entities.Position,
	candidates []entities.Candidate,
	ballots []entities.BallotRecord,
	scope entities.TallyScope,
) (entities.PositionResult, error) {
	if position.MaxVotes <= 0 {
		return entities.PositionResult{}, domainerrors.ErrPositionMisconfigured
	}

	counts := make(map[string]int, len(candidates))
	for _, candidate := range candidates {
		counts[candidate.CandidateID] = 0
	}

	total := 0
	for _, ballot := range ballots {
		if ballot.PositionID != position.PositionID {
			continue
		}
		if !scope.IsGlobal() && ballot.VoterDepartmentID != strings.TrimSpace(scope.DepartmentID) {
			continue
		}
		if _, onRoster := counts[ballot.CandidateID]; !onRoster {
			return entities.PositionResult{}, domainerrors.ErrDataIntegrity
		}
		counts[ballot.CandidateID]++
		total++
	}

	tallies := make([]entities.CandidateTally, 0, len(candidates))
	for _, candidate := range candidates {
		tallies = append(tallies, entities.CandidateTally{
			CandidateID:     candidate.CandidateID,
			CandidateNumber: candidate.CandidateNumber,
			FullName:        candidate.FullName,
			PartylistLabel:  candidate.PartylistLabel,
			VoteCount:       counts[candidate.CandidateID],
		})
	}
	sort.SliceStable(tallies, func(i, j int) bool {
		if tallies[i].VoteCount != tallies[j].VoteCount {
			return tallies[i].VoteCount > tallies[j].VoteCount
		}
		if tallies[i].CandidateNumber != tallies[j].CandidateNumber {
			return tallies[i].CandidateNumber < tallies[j].CandidateNumber
		}
		return tallies[i].CandidateID < tallies[j].CandidateID
	})

	winnerCutoff := position.MaxVotes
	if winnerCutoff > len(tallies) {
		winnerCutoff = len(tallies)
	}
	for i := range tallies {
		tallies[i].Rank = i + 1
		tallies[i].IsWinner = i < winnerCutoff
		if total > 0 {
			tallies[i].VotePercentage = roundPercentage(float64(tallies[i].VoteCount) / float64(total) * 100)
		}
	}

	return entities.PositionResult{
		PositionID:   position.PositionID,
		PositionName: position.Name,
		ElectionID:   position.ElectionID,
		Order:        position.Order,
		MaxVotes:     position.MaxVotes,
		TotalVotes:   total,
		Scope:        scope,
		Tallies:      tallies,
	}, nil
}

func roundPercentage(v float64) float64 {
	return math.Round(v*100) / 100
}
