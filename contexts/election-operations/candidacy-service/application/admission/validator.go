// Package admission is the pure candidacy rule engine. Create, edit, and
// dry-run callers all pass through Validate so a filing never gets a
// different verdict depending on which door it came in.
package admission

import (
	"fmt"
	"strings"

	"campuselect/contexts/election-operations/candidacy-service/domain/entities"
)

type RuleViolationKind string

const (
	ViolationDuplicateCandidacy        RuleViolationKind = "duplicate_candidacy"
	ViolationPositionCapacityExceeded  RuleViolationKind = "position_capacity_exceeded"
	ViolationPartylistCapacityExceeded RuleViolationKind = "partylist_capacity_exceeded"
	ViolationPartylistConflict         RuleViolationKind = "partylist_conflict"
	ViolationVoterNotEligible          RuleViolationKind = "voter_not_eligible"
)

type RuleViolation struct {
	Kind    RuleViolationKind
	Message string
}

// ValidationResult carries every violated rule in evaluation order. The
// first entry is the primary verdict shown to the filer.
type ValidationResult struct {
	Violations []RuleViolation
}

func (r ValidationResult) Admitted() bool {
	return len(r.Violations) == 0
}

func (r ValidationResult) Primary() (RuleViolation, bool) {
	if len(r.Violations) == 0 {
		return RuleViolation{}, false
	}
	return r.Violations[0], true
}

// Snapshot is the state the rules count against. PositionCandidates holds
// the active candidates of the draft's position; VoterCandidacies holds the
// voter's active candidacies across the whole election.
type Snapshot struct {
	PositionCandidates []entities.Candidate
	VoterCandidacies   []entities.Candidate
}

// Validate evaluates every admission rule and collects all violations.
// Edits are judged against the would-be state: the record named by
// draft.EditingID is excluded from every count, and the draft itself is
// counted in its place.
func Validate(
	draft entities.CandidateDraft,
	election entities.Election,
	position entities.Position,
	voter entities.Voter,
	existing Snapshot,
) ValidationResult {
	var result ValidationResult
	editingID := strings.TrimSpace(draft.EditingID)

	// Rule 1: one candidacy per voter per position.
	for _, candidate := range existing.VoterCandidacies {
		if !candidate.IsActive || candidate.CandidateID == editingID {
			continue
		}
		if candidate.PositionID == strings.TrimSpace(draft.PositionID) {
			result.Violations = append(result.Violations, RuleViolation{
				Kind:    ViolationDuplicateCandidacy,
				Message: "voter has already filed a candidacy for this position",
			})
			break
		}
	}

	// Rule 2: the position's seat count after the draft must stay within
	// max candidates.
	positionCount := 0
	partylistCount := 0
	draftKey := draft.PartylistKey()
	for _, candidate := range existing.PositionCandidates {
		if !candidate.IsActive || candidate.CandidateID == editingID {
			continue
		}
		positionCount++
		if candidate.PartylistKey() == draftKey {
			partylistCount++
		}
	}
	if position.MaxCandidates > 0 && positionCount+1 > position.MaxCandidates {
		result.Violations = append(result.Violations, RuleViolation{
			Kind: ViolationPositionCapacityExceeded,
			Message: fmt.Sprintf("position already has the maximum of %d candidates",
				position.MaxCandidates),
		})
	}

	// Rule 3: per-partylist cap within the position; independents share the
	// reserved key.
	if position.MaxCandidatesPerPartylist > 0 && partylistCount+1 > position.MaxCandidatesPerPartylist {
		result.Violations = append(result.Violations, RuleViolation{
			Kind: ViolationPartylistCapacityExceeded,
			Message: fmt.Sprintf("partylist %q already has the maximum of %d candidates for this position",
				draftKey, position.MaxCandidatesPerPartylist),
		})
	}

	// Rule 4: one partylist affiliation per voter across the election.
	for _, candidate := range existing.VoterCandidacies {
		if !candidate.IsActive || candidate.CandidateID == editingID {
			continue
		}
		if candidate.PartylistKey() != draftKey {
			result.Violations = append(result.Violations, RuleViolation{
				Kind: ViolationPartylistConflict,
				Message: fmt.Sprintf("voter already runs under %q and cannot also file under %q",
					candidate.PartylistKey(), draftKey),
			})
			break
		}
	}

	// Rule 5: eligibility echo of the ballot rules.
	if !voterEligible(voter, election) {
		result.Violations = append(result.Violations, RuleViolation{
			Kind:    ViolationVoterNotEligible,
			Message: "voter is not eligible to run in this election",
		})
	}

	return result
}

func voterEligible(voter entities.Voter, election entities.Election) bool {
	if !voter.IsActive {
		return false
	}
	if election.IsOfficerRestricted() {
		if !voter.IsClassOfficer {
			return false
		}
		if strings.TrimSpace(election.DepartmentID) != "" &&
			voter.DepartmentID != election.DepartmentID {
			return false
		}
	}
	return true
}
