package unit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	ballotmemory "campuselect/contexts/election-operations/ballot-service/adapters/memory"
	ballotworkers "campuselect/contexts/election-operations/ballot-service/application/workers"
	ballotports "campuselect/contexts/election-operations/ballot-service/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now.UTC()
}

type stubPublisher struct {
	published []ballotports.EventEnvelope
	failAfter int
}

func (p *stubPublisher) Publish(_ context.Context, _ string, event ballotports.EventEnvelope) error {
	if p.failAfter > 0 && len(p.published) >= p.failAfter {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

func appendBallotOutbox(t *testing.T, store *ballotmemory.Store, eventID string, occurredAt time.Time) {
	t.Helper()
	payload, _ := json.Marshal(map[string]any{"position_id": "position-1"})
	if err := store.AppendOutbox(context.Background(), ballotports.EventEnvelope{
		EventID:       eventID,
		EventType:     "ballot.cast",
		OccurredAt:    occurredAt,
		SourceService: "ballot-service",
		SchemaVersion: 1,
		PartitionKey:  "position-1",
		Data:          payload,
	}); err != nil {
		t.Fatalf("append outbox failed: %v", err)
	}
}

func TestBallotOutboxRelayPublishesAndMarks(t *testing.T) {
	now := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	store := ballotmemory.NewStore(nil)
	appendBallotOutbox(t, store, "event-1", now.Add(-2*time.Minute))
	appendBallotOutbox(t, store, "event-2", now.Add(-time.Minute))

	publisher := &stubPublisher{}
	relay := ballotworkers.OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     fixedClock{now: now},
		BatchSize: 10,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}

	if len(publisher.published) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.published))
	}
	if publisher.published[0].EventID != "event-1" || publisher.published[1].EventID != "event-2" {
		t.Fatalf("expected oldest-first publish order, got %s then %s",
			publisher.published[0].EventID, publisher.published[1].EventID)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty outbox after relay, got %d pending", len(pending))
	}
}

func TestBallotOutboxRelayStopsOnPublishFailure(t *testing.T) {
	now := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	store := ballotmemory.NewStore(nil)
	appendBallotOutbox(t, store, "event-1", now.Add(-2*time.Minute))
	appendBallotOutbox(t, store, "event-2", now.Add(-time.Minute))

	publisher := &stubPublisher{failAfter: 1}
	relay := ballotworkers.OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     fixedClock{now: now},
	}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected relay error on publish failure")
	}

	// The published row is marked; the failed one stays pending for the
	// next cycle.
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 || pending[0].OutboxID != "event-2" {
		t.Fatalf("expected only event-2 pending after failure, got %+v", pending)
	}
}
