package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"campuselect/contexts/election-operations/ballot-service/domain/entities"
	domainerrors "campuselect/contexts/election-operations/ballot-service/domain/errors"
	"campuselect/contexts/election-operations/ballot-service/ports"
)

func TestStoreInsertBallotRejectsDuplicateIdentity(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	first := entities.Ballot{
		BallotID:    "ballot-1",
		ElectionID:  "election-1",
		PositionID:  "position-president",
		VoterID:     "voter-1",
		CandidateID: "candidate-1",
		SubmittedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	if err := store.InsertBallot(ctx, first); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	// Same voter, position, and election with a different candidate must
	// hit the identity guard, not overwrite the first choice.
	second := first
	second.BallotID = "ballot-2"
	second.CandidateID = "candidate-2"
	if err := store.InsertBallot(ctx, second); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	ballot, found, err := store.GetBallotByIdentity(ctx, "voter-1", "position-president", "election-1")
	if err != nil || !found {
		t.Fatalf("expected stored ballot, found=%v err=%v", found, err)
	}
	if ballot.CandidateID != "candidate-1" {
		t.Fatalf("expected the first choice to survive, got %s", ballot.CandidateID)
	}

	// The same voter may still vote for another position.
	third := first
	third.BallotID = "ballot-3"
	third.PositionID = "position-senator"
	if err := store.InsertBallot(ctx, third); err != nil {
		t.Fatalf("other-position insert: %v", err)
	}
}

func TestStorePutParticipationIsIdempotent(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	first := entities.ParticipationRecord{
		VoterID:     "voter-1",
		ElectionID:  "election-1",
		ConfirmedAt: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}
	if err := store.PutParticipation(ctx, first); err != nil {
		t.Fatalf("first confirm: %v", err)
	}

	repeat := first
	repeat.ConfirmedAt = first.ConfirmedAt.Add(time.Hour)
	if err := store.PutParticipation(ctx, repeat); err != nil {
		t.Fatalf("repeat confirm: %v", err)
	}

	stored, found, err := store.GetParticipation(ctx, "voter-1", "election-1")
	if err != nil || !found {
		t.Fatalf("expected stored record, found=%v err=%v", found, err)
	}
	if !stored.ConfirmedAt.Equal(first.ConfirmedAt) {
		t.Fatalf("expected the first confirmation timestamp to win, got %v", stored.ConfirmedAt)
	}
}

func TestStoreOutboxLifecycle(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	older := ports.EventEnvelope{
		EventID:      "event-1",
		EventType:    "ballot.cast",
		PartitionKey: "election-1",
		OccurredAt:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	newer := older
	newer.EventID = "event-2"
	newer.OccurredAt = older.OccurredAt.Add(time.Minute)

	if err := store.AppendOutbox(ctx, newer); err != nil {
		t.Fatalf("append newer: %v", err)
	}
	if err := store.AppendOutbox(ctx, older); err != nil {
		t.Fatalf("append older: %v", err)
	}
	// Replaying the same envelope is a no-op.
	if err := store.AppendOutbox(ctx, older); err != nil {
		t.Fatalf("replay append: %v", err)
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending messages, got %d", len(pending))
	}
	if pending[0].OutboxID != "event-1" || pending[1].OutboxID != "event-2" {
		t.Fatalf("expected oldest-first order, got %s then %s", pending[0].OutboxID, pending[1].OutboxID)
	}

	if err := store.MarkOutboxPublished(ctx, "event-1", time.Now().UTC()); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	pending, err = store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending after publish: %v", err)
	}
	if len(pending) != 1 || pending[0].OutboxID != "event-2" {
		t.Fatalf("expected only event-2 pending, got %+v", pending)
	}

	if err := store.MarkOutboxPublished(ctx, "event-missing", time.Now().UTC()); !errors.Is(err, domainerrors.ErrInvalidBallotInput) {
		t.Fatalf("expected invalid input for unknown outbox id, got %v", err)
	}
}
