package ports

import (
	"context"
	"time"

	"campuselect/contexts/election-operations/candidacy-service/domain/entities"
)

// SnapshotRepository reads the registrar/election projections the admission
// rules run against. Candidacy never mutates these records.
type SnapshotRepository interface {
	GetVoter(ctx context.Context, voterID string) (entities.Voter, error)
	GetElection(ctx context.Context, electionID string) (entities.Election, error)
	GetPosition(ctx context.Context, positionID string) (entities.Position, error)
	GetPartylist(ctx context.Context, partylistID string) (entities.Partylist, error)
}

// CapacityLimits carries the position's occupancy caps into the guarded
// writes so the adapter re-check uses the same numbers as the rule engine.
type CapacityLimits struct {
	MaxCandidates             int
	MaxCandidatesPerPartylist int
}

// CandidateRepository owns candidate records. The guarded writes are atomic:
// the adapter re-validates duplicates and capacity under a position-level
// lock and reports losses of a race as the corresponding domain sentinel
// (ErrDuplicateCandidacy, ErrPositionCapacityExceeded,
// ErrPartylistCapacityExceeded, ErrPartylistConflict).
type CandidateRepository interface {
	GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error)
	ListCandidatesByPosition(ctx context.Context, positionID string) ([]entities.Candidate, error)
	ListCandidatesByElectionVoter(ctx context.Context, electionID string, voterID string) ([]entities.Candidate, error)

	// InsertCandidateGuarded assigns the next candidate number within the
	// position and returns the stored record.
	InsertCandidateGuarded(ctx context.Context, candidate entities.Candidate, limits CapacityLimits) (entities.Candidate, error)
	UpdateCandidateGuarded(ctx context.Context, candidate entities.Candidate, limits CapacityLimits) (entities.Candidate, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
