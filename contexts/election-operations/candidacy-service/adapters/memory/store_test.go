package memory

import (
	"context"
	"errors"
	"testing"

	"campuselect/contexts/election-operations/candidacy-service/domain/entities"
	domainerrors "campuselect/contexts/election-operations/candidacy-service/domain/errors"
	"campuselect/contexts/election-operations/candidacy-service/ports"
)

func activeCandidate(id string, voterID string, positionID string, partylistID string) entities.Candidate {
	return entities.Candidate{
		CandidateID: id,
		ElectionID:  "election-1",
		PositionID:  positionID,
		VoterID:     voterID,
		PartylistID: partylistID,
		IsActive:    true,
	}
}

func TestStoreGuardedInsertAssignsSequentialNumbers(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	limits := ports.CapacityLimits{MaxCandidates: 10}

	first, err := store.InsertCandidateGuarded(ctx, activeCandidate("candidate-1", "voter-1", "position-senator", ""), limits)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	second, err := store.InsertCandidateGuarded(ctx, activeCandidate("candidate-2", "voter-2", "position-senator", ""), limits)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	other, err := store.InsertCandidateGuarded(ctx, activeCandidate("candidate-3", "voter-3", "position-president", ""), limits)
	if err != nil {
		t.Fatalf("other-position insert: %v", err)
	}

	if first.CandidateNumber != 1 || second.CandidateNumber != 2 {
		t.Fatalf("expected numbers 1 and 2, got %d and %d", first.CandidateNumber, second.CandidateNumber)
	}
	// Numbering is per position, not global.
	if other.CandidateNumber != 1 {
		t.Fatalf("expected number 1 for a fresh position, got %d", other.CandidateNumber)
	}
}

func TestStoreGuardedInsertRechecksOccupancy(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	seedLimits := ports.CapacityLimits{MaxCandidates: 10}
	if _, err := store.InsertCandidateGuarded(ctx, activeCandidate("candidate-1", "voter-1", "position-senator", "partylist-red"), seedLimits); err != nil {
		t.Fatalf("seed insert: %v", err)
	}

	cases := []struct {
		name      string
		candidate entities.Candidate
		limits    ports.CapacityLimits
		want      error
	}{
		{
			name:      "duplicate position filing",
			candidate: activeCandidate("candidate-dup", "voter-1", "position-senator", "partylist-red"),
			limits:    seedLimits,
			want:      domainerrors.ErrDuplicateCandidacy,
		},
		{
			name:      "partylist conflict on second filing",
			candidate: activeCandidate("candidate-cross", "voter-1", "position-president", "partylist-blue"),
			limits:    seedLimits,
			want:      domainerrors.ErrPartylistConflict,
		},
		{
			name:      "position at capacity",
			candidate: activeCandidate("candidate-full", "voter-2", "position-senator", ""),
			limits:    ports.CapacityLimits{MaxCandidates: 1},
			want:      domainerrors.ErrPositionCapacityExceeded,
		},
		{
			name:      "partylist at capacity",
			candidate: activeCandidate("candidate-party", "voter-2", "position-senator", "partylist-red"),
			limits:    ports.CapacityLimits{MaxCandidates: 10, MaxCandidatesPerPartylist: 1},
			want:      domainerrors.ErrPartylistCapacityExceeded,
		},
	}
	for _, tc := range cases {
		if _, err := store.InsertCandidateGuarded(ctx, tc.candidate, tc.limits); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	// None of the rejected writes may have landed.
	roster, err := store.ListCandidatesByPosition(ctx, "position-senator")
	if err != nil {
		t.Fatalf("list roster: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("expected only the seeded candidate, got %d", len(roster))
	}
}

func TestStoreGuardedUpdateKeepsNumberWithinPosition(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	limits := ports.CapacityLimits{MaxCandidates: 10}

	seeded, err := store.InsertCandidateGuarded(ctx, activeCandidate("candidate-1", "voter-1", "position-senator", ""), limits)
	if err != nil {
		t.Fatalf("seed insert: %v", err)
	}

	revised := seeded
	revised.Platform = "updated platform"
	updated, err := store.UpdateCandidateGuarded(ctx, revised, limits)
	if err != nil {
		t.Fatalf("same-position update: %v", err)
	}
	if updated.CandidateNumber != seeded.CandidateNumber {
		t.Fatalf("expected the number to survive a same-position edit, got %d", updated.CandidateNumber)
	}

	// Occupy the target position so the move gets a fresh number after it.
	if _, err := store.InsertCandidateGuarded(ctx, activeCandidate("candidate-2", "voter-2", "position-president", ""), limits); err != nil {
		t.Fatalf("occupy insert: %v", err)
	}
	moved := updated
	moved.PositionID = "position-president"
	moved, err = store.UpdateCandidateGuarded(ctx, moved, limits)
	if err != nil {
		t.Fatalf("position move: %v", err)
	}
	if moved.CandidateNumber != 2 {
		t.Fatalf("expected number 2 in the new position, got %d", moved.CandidateNumber)
	}

	unknown := activeCandidate("candidate-ghost", "voter-9", "position-senator", "")
	if _, err := store.UpdateCandidateGuarded(ctx, unknown, limits); !errors.Is(err, domainerrors.ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}
}
