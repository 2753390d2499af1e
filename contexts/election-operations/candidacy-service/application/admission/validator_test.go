package admission

import (
	"fmt"
	"testing"

	"campuselect/contexts/election-operations/candidacy-service/domain/entities"
)

func openElection() entities.Election {
	return entities.Election{
		ElectionID: "election-1",
		Type:       entities.ElectionTypeSSG,
		Status:     entities.ElectionStatusUpcoming,
	}
}

func senatorPosition() entities.Position {
	return entities.Position{
		PositionID:                "position-senator",
		ElectionID:                "election-1",
		Name:                      "Senator",
		MaxCandidates:             4,
		MaxCandidatesPerPartylist: 2,
	}
}

func eligibleVoter(id string) entities.Voter {
	return entities.Voter{
		VoterID:  id,
		FullName: "Voter " + id,
		IsActive: true,
	}
}

func rosterCandidate(id string, voterID string, positionID string, partylistID string) entities.Candidate {
	return entities.Candidate{
		CandidateID: id,
		ElectionID:  "election-1",
		PositionID:  positionID,
		VoterID:     voterID,
		PartylistID: partylistID,
		IsActive:    true,
	}
}

func kinds(result ValidationResult) []RuleViolationKind {
	out := make([]RuleViolationKind, 0, len(result.Violations))
	for _, violation := range result.Violations {
		out = append(out, violation.Kind)
	}
	return out
}

func TestValidateAdmitsCleanDraft(t *testing.T) {
	draft := entities.CandidateDraft{
		ElectionID: "election-1",
		PositionID: "position-senator",
		VoterID:    "voter-1",
	}
	result := Validate(draft, openElection(), senatorPosition(), eligibleVoter("voter-1"), Snapshot{})
	if !result.Admitted() {
		t.Fatalf("expected admission, got violations %v", kinds(result))
	}
	if _, ok := result.Primary(); ok {
		t.Fatalf("admitted result must have no primary violation")
	}
}

func TestValidateDuplicateCandidacy(t *testing.T) {
	draft := entities.CandidateDraft{
		ElectionID: "election-1",
		PositionID: "position-senator",
		VoterID:    "voter-1",
	}
	existing := Snapshot{
		VoterCandidacies: []entities.Candidate{
			rosterCandidate("candidate-1", "voter-1", "position-senator", ""),
		},
		PositionCandidates: []entities.Candidate{
			rosterCandidate("candidate-1", "voter-1", "position-senator", ""),
		},
	}
	result := Validate(draft, openElection(), senatorPosition(), eligibleVoter("voter-1"), existing)
	if result.Admitted() {
		t.Fatalf("expected duplicate rejection")
	}
	primary, _ := result.Primary()
	if primary.Kind != ViolationDuplicateCandidacy {
		t.Fatalf("expected duplicate_candidacy primary, got %s", primary.Kind)
	}
}

func TestValidatePositionCapacityBoundary(t *testing.T) {
	position := senatorPosition()
	position.MaxCandidates = 4
	position.MaxCandidatesPerPartylist = 0

	seed := func(n int) Snapshot {
		snapshot := Snapshot{}
		for i := 0; i < n; i++ {
			snapshot.PositionCandidates = append(snapshot.PositionCandidates,
				rosterCandidate(fmt.Sprintf("candidate-%d", i), fmt.Sprintf("voter-%d", i), position.PositionID, ""))
		}
		return snapshot
	}
	draft := entities.CandidateDraft{
		ElectionID: "election-1",
		PositionID: position.PositionID,
		VoterID:    "voter-new",
	}

	// Three filed, cap four: the fourth filing fits exactly.
	result := Validate(draft, openElection(), position, eligibleVoter("voter-new"), seed(3))
	if !result.Admitted() {
		t.Fatalf("expected filing at exactly the cap to pass, got %v", kinds(result))
	}

	// Four filed: the fifth filing overflows.
	result = Validate(draft, openElection(), position, eligibleVoter("voter-new"), seed(4))
	primary, _ := result.Primary()
	if primary.Kind != ViolationPositionCapacityExceeded {
		t.Fatalf("expected position_capacity_exceeded, got %v", kinds(result))
	}
}

func TestValidatePartylistCapacityCountsIndependentsTogether(t *testing.T) {
	position := senatorPosition()
	position.MaxCandidates = 10
	position.MaxCandidatesPerPartylist = 2

	existing := Snapshot{
		PositionCandidates: []entities.Candidate{
			rosterCandidate("candidate-1", "voter-1", position.PositionID, ""),
			rosterCandidate("candidate-2", "voter-2", position.PositionID, ""),
			rosterCandidate("candidate-3", "voter-3", position.PositionID, "partylist-red"),
		},
	}

	// A third independent overflows the reserved independent key.
	draft := entities.CandidateDraft{
		ElectionID: "election-1",
		PositionID: position.PositionID,
		VoterID:    "voter-new",
	}
	result := Validate(draft, openElection(), position, eligibleVoter("voter-new"), existing)
	primary, _ := result.Primary()
	if primary.Kind != ViolationPartylistCapacityExceeded {
		t.Fatalf("expected partylist_capacity_exceeded for third independent, got %v", kinds(result))
	}

	// A second red candidate still fits.
	draft.PartylistID = "partylist-red"
	result = Validate(draft, openElection(), position, eligibleVoter("voter-new"), existing)
	if !result.Admitted() {
		t.Fatalf("expected second partylist candidate to pass, got %v", kinds(result))
	}
}

func TestValidatePartylistExclusivity(t *testing.T) {
	existing := Snapshot{
		VoterCandidacies: []entities.Candidate{
			rosterCandidate("candidate-1", "voter-1", "position-president", "partylist-red"),
		},
	}
	draft := entities.CandidateDraft{
		ElectionID:  "election-1",
		PositionID:  "position-senator",
		VoterID:     "voter-1",
		PartylistID: "partylist-blue",
	}
	result := Validate(draft, openElection(), senatorPosition(), eligibleVoter("voter-1"), existing)
	primary, _ := result.Primary()
	if primary.Kind != ViolationPartylistConflict {
		t.Fatalf("expected partylist_conflict for cross-partylist filing, got %v", kinds(result))
	}

	// Filing independent while already under a partylist also conflicts.
	draft.PartylistID = ""
	result = Validate(draft, openElection(), senatorPosition(), eligibleVoter("voter-1"), existing)
	primary, _ = result.Primary()
	if primary.Kind != ViolationPartylistConflict {
		t.Fatalf("expected partylist_conflict for independent filing, got %v", kinds(result))
	}

	// Staying with the same partylist is fine.
	draft.PartylistID = "partylist-red"
	result = Validate(draft, openElection(), senatorPosition(), eligibleVoter("voter-1"), existing)
	if !result.Admitted() {
		t.Fatalf("expected same-partylist filing to pass, got %v", kinds(result))
	}
}

func TestValidateEditExcludesOwnRecord(t *testing.T) {
	position := senatorPosition()
	position.MaxCandidates = 2
	position.MaxCandidatesPerPartylist = 0

	existing := Snapshot{
		PositionCandidates: []entities.Candidate{
			rosterCandidate("candidate-1", "voter-1", position.PositionID, "partylist-red"),
			rosterCandidate("candidate-2", "voter-2", position.PositionID, ""),
		},
		VoterCandidacies: []entities.Candidate{
			rosterCandidate("candidate-1", "voter-1", position.PositionID, "partylist-red"),
		},
	}

	// Editing candidate-1 in a full position must not count itself.
	draft := entities.CandidateDraft{
		EditingID:   "candidate-1",
		ElectionID:  "election-1",
		PositionID:  position.PositionID,
		VoterID:     "voter-1",
		PartylistID: "partylist-blue",
	}
	result := Validate(draft, openElection(), position, eligibleVoter("voter-1"), existing)
	if !result.Admitted() {
		t.Fatalf("expected edit of own record to pass, got %v", kinds(result))
	}
}

func TestValidateEligibilityEcho(t *testing.T) {
	departmental := entities.Election{
		ElectionID:   "election-2",
		Type:         entities.ElectionTypeDepartmental,
		DepartmentID: "dept-cs",
		Status:       entities.ElectionStatusUpcoming,
	}
	position := senatorPosition()
	position.ElectionID = departmental.ElectionID

	voter := eligibleVoter("voter-1")
	voter.DepartmentID = "dept-cs"

	draft := entities.CandidateDraft{
		ElectionID: departmental.ElectionID,
		PositionID: position.PositionID,
		VoterID:    voter.VoterID,
	}
	result := Validate(draft, departmental, position, voter, Snapshot{})
	primary, _ := result.Primary()
	if primary.Kind != ViolationVoterNotEligible {
		t.Fatalf("expected non-officer rejection for departmental election, got %v", kinds(result))
	}

	voter.IsClassOfficer = true
	result = Validate(draft, departmental, position, voter, Snapshot{})
	if !result.Admitted() {
		t.Fatalf("expected officer to be admitted, got %v", kinds(result))
	}

	voter.IsActive = false
	result = Validate(draft, departmental, position, voter, Snapshot{})
	primary, _ = result.Primary()
	if primary.Kind != ViolationVoterNotEligible {
		t.Fatalf("expected inactive voter rejection, got %v", kinds(result))
	}
}

func TestValidateCollectsAllViolationsInOrder(t *testing.T) {
	position := senatorPosition()
	position.MaxCandidates = 1
	position.MaxCandidatesPerPartylist = 1

	existing := Snapshot{
		PositionCandidates: []entities.Candidate{
			rosterCandidate("candidate-1", "voter-1", position.PositionID, ""),
		},
		VoterCandidacies: []entities.Candidate{
			rosterCandidate("candidate-1", "voter-1", position.PositionID, ""),
			rosterCandidate("candidate-2", "voter-1", "position-president", ""),
		},
	}
	voter := eligibleVoter("voter-1")
	voter.IsActive = false

	draft := entities.CandidateDraft{
		ElectionID:  "election-1",
		PositionID:  position.PositionID,
		VoterID:     "voter-1",
		PartylistID: "partylist-red",
	}
	result := Validate(draft, openElection(), position, voter, existing)
	got := kinds(result)
	want := []RuleViolationKind{
		ViolationDuplicateCandidacy,
		ViolationPositionCapacityExceeded,
		ViolationPartylistConflict,
		ViolationVoterNotEligible,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d violations, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected violation order %v, got %v", want, got)
		}
	}
}
