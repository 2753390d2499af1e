package errors

import "errors"

var (
	ErrInvalidBallotInput        = errors.New("invalid ballot input")
	ErrVoterNotFound             = errors.New("voter not found")
	ErrElectionNotFound          = errors.New("election not found")
	ErrPositionNotFound          = errors.New("position not found")
	ErrCandidateNotOnBallot      = errors.New("candidate is not on this position's ballot")
	ErrBallotWindowMisconfigured = errors.New("ballot window is misconfigured")
	ErrVoterNotEligible          = errors.New("voter is not eligible for this ballot")
	ErrParticipationRequired     = errors.New("participation confirmation is required")
	ErrParticipationNotRequired  = errors.New("participation confirmation is not part of this election")
	ErrElectionNotVotable        = errors.New("election is not accepting ballots")
	ErrBallotNotYetOpen          = errors.New("ballot window has not opened")
	ErrBallotClosed              = errors.New("ballot window is closed")
	ErrAlreadyVoted              = errors.New("voter has already cast a ballot for this position")
)
