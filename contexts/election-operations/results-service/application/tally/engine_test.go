package tally

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"campuselect/contexts/election-operations/results-service/domain/entities"
	domainerrors "campuselect/contexts/election-operations/results-service/domain/errors"
)

func senatorPosition(maxVotes int) entities.Position {
	return entities.Position{
		PositionID: "position-senator",
		ElectionID: "election-1",
		Name:       "Senator",
		Order:      2,
		MaxVotes:   maxVotes,
	}
}

func roster() []entities.Candidate {
	return []entities.Candidate{
		{CandidateID: "candidate-a", PositionID: "position-senator", CandidateNumber: 1, FullName: "Alice Ramos", PartylistLabel: "Unity", IsActive: true},
		{CandidateID: "candidate-b", PositionID: "position-senator", CandidateNumber: 2, FullName: "Ben Cruz", PartylistLabel: "Independent", IsActive: true},
		{CandidateID: "candidate-c", PositionID: "position-senator", CandidateNumber: 3, FullName: "Carla Dizon", PartylistLabel: "Progress", IsActive: true},
		{CandidateID: "candidate-d", PositionID: "position-senator", CandidateNumber: 4, FullName: "Dan Ong", PartylistLabel: "Unity", IsActive: false},
	}
}

func ballotsFor(counts map[string]int) []entities.BallotRecord {
	var out []entities.BallotRecord
	i := 0
	for candidateID, n := range counts {
		for j := 0; j < n; j++ {
			out = append(out, entities.BallotRecord{
				BallotID:    fmt.Sprintf("ballot-%s-%d", candidateID, j),
				ElectionID:  "election-1",
				PositionID:  "position-senator",
				CandidateID: candidateID,
				VoterID:     fmt.Sprintf("voter-%d", i),
			})
			i++
		}
	}
	return out
}

func TestTallyRanksWinnersAndPercentages(t *testing.T) {
	ballots := ballotsFor(map[string]int{
		"candidate-a": 10,
		"candidate-b": 7,
		"candidate-c": 15,
		"candidate-d": 3,
	})

	result, err := Tally(senatorPosition(2), roster(), ballots, entities.GlobalScope())
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if result.TotalVotes != 35 {
		t.Fatalf("expected 35 total votes, got %d", result.TotalVotes)
	}

	wantOrder := []string{"candidate-c", "candidate-a", "candidate-b", "candidate-d"}
	for i, id := range wantOrder {
		if result.Tallies[i].CandidateID != id {
			t.Fatalf("rank %d: expected %s, got %s", i+1, id, result.Tallies[i].CandidateID)
		}
		if result.Tallies[i].Rank != i+1 {
			t.Fatalf("expected rank %d, got %d", i+1, result.Tallies[i].Rank)
		}
	}

	// Two seats: only the top two carry the winner flag.
	for i, tally := range result.Tallies {
		wantWinner := i < 2
		if tally.IsWinner != wantWinner {
			t.Fatalf("candidate %s: expected winner=%v", tally.CandidateID, wantWinner)
		}
	}

	if got := result.Tallies[0].VotePercentage; got != 42.86 {
		t.Fatalf("expected 42.86%% for the top candidate, got %v", got)
	}
	if got := result.Tallies[3].VotePercentage; got != 8.57 {
		t.Fatalf("expected 8.57%% for the last candidate, got %v", got)
	}
}

func TestTallyDeterministicUnderInputPermutation(t *testing.T) {
	base := ballotsFor(map[string]int{
		"candidate-a": 10,
		"candidate-b": 7,
		"candidate-c": 15,
		"candidate-d": 3,
	})
	want, err := Tally(senatorPosition(2), roster(), base, entities.GlobalScope())
	if err != nil {
		t.Fatalf("tally: %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 5; round++ {
		shuffledBallots := append([]entities.BallotRecord(nil), base...)
		rng.Shuffle(len(shuffledBallots), func(i, j int) {
			shuffledBallots[i], shuffledBallots[j] = shuffledBallots[j], shuffledBallots[i]
		})
		shuffledRoster := append([]entities.Candidate(nil), roster()...)
		rng.Shuffle(len(shuffledRoster), func(i, j int) {
			shuffledRoster[i], shuffledRoster[j] = shuffledRoster[j], shuffledRoster[i]
		})

		got, err := Tally(senatorPosition(2), shuffledRoster, shuffledBallots, entities.GlobalScope())
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		for i := range want.Tallies {
			if got.Tallies[i] != want.Tallies[i] {
				t.Fatalf("round %d rank %d: expected %+v, got %+v",
					round, i+1, want.Tallies[i], got.Tallies[i])
			}
		}
	}
}

func TestTallyTieBreaksByCandidateNumber(t *testing.T) {
	ballots := ballotsFor(map[string]int{
		"candidate-a": 5,
		"candidate-b": 5,
		"candidate-c": 5,
		"candidate-d": 5,
	})
	result, err := Tally(senatorPosition(1), roster(), ballots, entities.GlobalScope())
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	wantOrder := []string{"candidate-a", "candidate-b", "candidate-c", "candidate-d"}
	for i, id := range wantOrder {
		if result.Tallies[i].CandidateID != id {
			t.Fatalf("rank %d: expected %s, got %s", i+1, id, result.Tallies[i].CandidateID)
		}
	}
	if !result.Tallies[0].IsWinner || result.Tallies[1].IsWinner {
		t.Fatalf("expected exactly the lowest candidate number to win the tie")
	}
}

func TestTallyIncludesZeroBallotCandidates(t *testing.T) {
	result, err := Tally(senatorPosition(2), roster(), nil, entities.GlobalScope())
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if len(result.Tallies) != 4 {
		t.Fatalf("expected every roster candidate in the result, got %d", len(result.Tallies))
	}
	for _, tally := range result.Tallies {
		if tally.VoteCount != 0 || tally.VotePercentage != 0 {
			t.Fatalf("candidate %s: expected zero count and percentage", tally.CandidateID)
		}
	}
	// Seats still get flagged even with no ballots cast.
	if !result.Tallies[0].IsWinner || !result.Tallies[1].IsWinner || result.Tallies[2].IsWinner {
		t.Fatalf("expected the first two seats flagged as winners")
	}
}

func TestTallyWinnerCutoffCappedByRosterSize(t *testing.T) {
	result, err := Tally(senatorPosition(12), roster(), nil, entities.GlobalScope())
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	for _, tally := range result.Tallies {
		if !tally.IsWinner {
			t.Fatalf("candidate %s: expected winner when seats exceed roster", tally.CandidateID)
		}
	}
}

func TestTallyOrphanBallotAborts(t *testing.T) {
	ballots := []entities.BallotRecord{{
		BallotID:    "ballot-1",
		ElectionID:  "election-1",
		PositionID:  "position-senator",
		CandidateID: "candidate-ghost",
		VoterID:     "voter-1",
	}}
	_, err := Tally(senatorPosition(2), roster(), ballots, entities.GlobalScope())
	if !errors.Is(err, domainerrors.ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}
}

func TestTallyRejectsMisconfiguredPosition(t *testing.T) {
	_, err := Tally(senatorPosition(0), roster(), nil, entities.GlobalScope())
	if !errors.Is(err, domainerrors.ErrPositionMisconfigured) {
		t.Fatalf("expected ErrPositionMisconfigured, got %v", err)
	}
}

func TestTallyDepartmentScope(t *testing.T) {
	ballots := []entities.BallotRecord{
		{BallotID: "ballot-1", PositionID: "position-senator", CandidateID: "candidate-a", VoterID: "voter-1", VoterDepartmentID: "dept-cs"},
		{BallotID: "ballot-2", PositionID: "position-senator", CandidateID: "candidate-a", VoterID: "voter-2", VoterDepartmentID: "dept-eng"},
		{BallotID: "ballot-3", PositionID: "position-senator", CandidateID: "candidate-b", VoterID: "voter-3", VoterDepartmentID: "dept-cs"},
	}

	result, err := Tally(senatorPosition(1), roster(), ballots, entities.DepartmentScope("dept-cs"))
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if result.TotalVotes != 2 {
		t.Fatalf("expected 2 in-department votes, got %d", result.TotalVotes)
	}
	for _, tally := range result.Tallies {
		switch tally.CandidateID {
		case "candidate-a", "candidate-b":
			if tally.VoteCount != 1 {
				t.Fatalf("candidate %s: expected 1 scoped vote, got %d", tally.CandidateID, tally.VoteCount)
			}
		default:
			if tally.VoteCount != 0 {
				t.Fatalf("candidate %s: expected no scoped votes", tally.CandidateID)
			}
		}
	}
	if result.Scope.Key() != "department:dept-cs" {
		t.Fatalf("expected scoped result key, got %s", result.Scope.Key())
	}
}
