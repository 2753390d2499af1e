package unit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	resultsservice "campuselect/contexts/election-operations/results-service"
	resultsworkers "campuselect/contexts/election-operations/results-service/application/workers"
	"campuselect/contexts/election-operations/results-service/domain/entities"
	resultsports "campuselect/contexts/election-operations/results-service/ports"
)

type resultsStubSubscriber struct {
	handlers map[string]func(context.Context, resultsports.EventEnvelope) error
}

func (s *resultsStubSubscriber) Subscribe(
	_ context.Context,
	topic string,
	_ string,
	handler func(context.Context, resultsports.EventEnvelope) error,
) error {
	if s.handlers == nil {
		s.handlers = map[string]func(context.Context, resultsports.EventEnvelope) error{}
	}
	s.handlers[topic] = handler
	return nil
}

func TestResultsBallotCastConsumerInvalidatesCache(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	module := resultsservice.NewInMemoryModule(nil)
	module.Store.SetNow(func() time.Time { return now })
	module.Store.SetPosition(entities.Position{
		PositionID: "position-president",
		ElectionID: "election-1",
		Name:       "President",
		MaxVotes:   1,
	})
	module.Store.SetCandidate(entities.Candidate{
		CandidateID: "candidate-a", PositionID: "position-president",
		CandidateNumber: 1, FullName: "Alice Ramos", IsActive: true,
	})

	// Warm the cache before the event arrives.
	if _, err := module.Handler.PositionResultsHandler(context.Background(), "position-president", ""); err != nil {
		t.Fatalf("warm cache failed: %v", err)
	}
	if module.Store.CachedResultCount() != 1 {
		t.Fatalf("expected warmed cache, got %d entries", module.Store.CachedResultCount())
	}

	sub := &resultsStubSubscriber{}
	consumer := resultsworkers.BallotCastConsumer{
		Subscriber: sub,
		Dedup:      module.Store,
		Cache:      module.Store,
		Clock:      module.Store,
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start ballot cast consumer failed: %v", err)
	}
	handler := sub.handlers["ballot.cast"]
	if handler == nil {
		t.Fatalf("expected ballot.cast handler registration")
	}

	payload, _ := json.Marshal(map[string]any{
		"ballot_id":   "ballot-1",
		"position_id": "position-president",
	})
	event := resultsports.EventEnvelope{
		EventID:   "event-ballot-cast-1",
		EventType: "ballot.cast",
		Data:      payload,
	}
	if err := handler(context.Background(), event); err != nil {
		t.Fatalf("ballot.cast handler failed: %v", err)
	}
	if module.Store.CachedResultCount() != 0 {
		t.Fatalf("expected cache invalidated, got %d entries", module.Store.CachedResultCount())
	}

	// Redelivery of the same event must not touch the rebuilt cache.
	if _, err := module.Handler.PositionResultsHandler(context.Background(), "position-president", ""); err != nil {
		t.Fatalf("rebuild cache failed: %v", err)
	}
	if err := handler(context.Background(), event); err != nil {
		t.Fatalf("redelivered ballot.cast handler failed: %v", err)
	}
	if module.Store.CachedResultCount() != 1 {
		t.Fatalf("expected replay to be deduplicated, got %d entries", module.Store.CachedResultCount())
	}
}

func TestResultsBallotCastConsumerToleratesMissingPosition(t *testing.T) {
	module := resultsservice.NewInMemoryModule(nil)
	sub := &resultsStubSubscriber{}
	consumer := resultsworkers.BallotCastConsumer{
		Subscriber: sub,
		Dedup:      module.Store,
		Cache:      module.Store,
		Clock:      module.Store,
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start ballot cast consumer failed: %v", err)
	}

	payload, _ := json.Marshal(map[string]any{"ballot_id": "ballot-1"})
	if err := sub.handlers["ballot.cast"](context.Background(), resultsports.EventEnvelope{
		EventID:   "event-ballot-cast-2",
		EventType: "ballot.cast",
		Data:      payload,
	}); err != nil {
		t.Fatalf("expected malformed payload to be dropped, got %v", err)
	}
}

func TestResultsBallotCastConsumerDisabledByFlag(t *testing.T) {
	sub := &resultsStubSubscriber{}
	consumer := resultsworkers.BallotCastConsumer{
		Subscriber: sub,
		Disabled:   true,
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("disabled consumer start failed: %v", err)
	}
	if len(sub.handlers) != 0 {
		t.Fatalf("disabled consumer must not subscribe, got %d handlers", len(sub.handlers))
	}
}
