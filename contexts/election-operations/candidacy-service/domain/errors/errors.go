package errors

import "errors"

var (
	ErrInvalidCandidateInput     = errors.New("invalid candidate input")
	ErrCandidateNotFound         = errors.New("candidate not found")
	ErrElectionNotFound          = errors.New("election not found")
	ErrPositionNotFound          = errors.New("position not found")
	ErrVoterNotFound             = errors.New("voter not found")
	ErrPartylistNotFound         = errors.New("partylist not found")
	ErrElectionLocked            = errors.New("election is no longer accepting candidacies")
	ErrDuplicateCandidacy        = errors.New("voter already filed for this position")
	ErrPositionCapacityExceeded  = errors.New("position candidate capacity exceeded")
	ErrPartylistCapacityExceeded = errors.New("partylist candidate capacity exceeded for this position")
	ErrPartylistConflict         = errors.New("voter candidacies must share one partylist affiliation")
	ErrVoterNotEligible          = errors.New("voter is not eligible to run in this election")
)
