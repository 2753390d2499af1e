// Package eligibility computes the ballot state a voter sees for one position
// at one instant. It is a pure decision package: no clock, no storage, no
// logging. Callers persist participation records and ballots separately.
package eligibility

import (
	"time"

	"campuselect/contexts/election-operations/ballot-service/domain/entities"
	domainerrors "campuselect/contexts/election-operations/ballot-service/domain/errors"
)

// Evaluate applies the ballot-state rules in strict precedence order:
// eligibility, then an existing ballot, then election liveness, then
// participation confirmation, then the position's time window. First match
// wins. A voter who already voted always sees Voted even after the window
// closes, and an ineligible voter is never told anything about timing.
//
// participation and existingBallot are nil when absent. A malformed window
// (close at or before open) returns ErrBallotWindowMisconfigured so the
// position is blocked instead of defaulting to always-open or always-closed.
func Evaluate(
	voter entities.Voter,
	election entities.Election,
	position entities.Position,
	participation *entities.ParticipationRecord,
	existingBallot *entities.Ballot,
	now time.Time,
) (entities.BallotState, error) {
	if !position.BallotCloseAt.After(position.BallotOpenAt) {
		return "", domainerrors.ErrBallotWindowMisconfigured
	}

	if !VoterEligible(voter, election) || !position.AllowsYearLevel(voter.YearLevel) {
		return entities.BallotStateNotEligible, nil
	}

	if existingBallot != nil {
		return entities.BallotStateVoted, nil
	}

	if election.Status == entities.ElectionStatusCompleted ||
		election.Status == entities.ElectionStatusCancelled {
		return entities.BallotStateClosed, nil
	}

	if election.RequiresParticipation() && participation == nil {
		return entities.BallotStateNeedsParticipationConfirm, nil
	}

	instant := now.UTC()
	switch {
	case instant.Before(position.BallotOpenAt.UTC()):
		return entities.BallotStateNotOpenYet, nil
	case instant.Before(position.BallotCloseAt.UTC()):
		return entities.BallotStateOpen, nil
	default:
		return entities.BallotStateClosed, nil
	}
}

// VoterEligible checks the election-level eligibility attributes that do not
// depend on a position: the voter must be active, departmental elections are
// restricted to class officers of the election's own department.
func VoterEligible(voter entities.Voter, election entities.Election) bool {
	if !voter.IsActive {
		return false
	}
	if election.IsOfficerRestricted() && !voter.IsClassOfficer {
		return false
	}
	if election.Type == entities.ElectionTypeDepartmental &&
		election.DepartmentID != "" &&
		voter.DepartmentID != election.DepartmentID {
		return false
	}
	return true
}
