package ports

import (
	"context"
	"time"

	contractsv1 "campuselect/contracts/gen/events/v1"
	"campuselect/contexts/election-operations/results-service/domain/entities"
)

// ResultsReadModel reads the projections a tally runs against. The ballot
// log is append-only; this port never writes it.
type ResultsReadModel interface {
	GetPosition(ctx context.Context, positionID string) (entities.Position, error)
	ListPositionsByElection(ctx context.Context, electionID string) ([]entities.Position, error)
	ListCandidatesByPosition(ctx context.Context, positionID string) ([]entities.Candidate, error)
	ListBallotsByPosition(ctx context.Context, positionID string) ([]entities.BallotRecord, error)
}

// ResultCache memoizes computed position results per (position, scope).
type ResultCache interface {
	Get(ctx context.Context, positionID string, scopeKey string) (entities.PositionResult, bool, error)
	Put(ctx context.Context, positionID string, scopeKey string, result entities.PositionResult) error
	// InvalidatePosition drops every scope's entry for the position.
	InvalidatePosition(ctx context.Context, positionID string) error
}

type EventEnvelope = contractsv1.Envelope

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

// EventDedupStore makes event handling idempotent under at-least-once
// delivery. ReserveEvent reports true when the event id was already
// reserved; the expiry bounds how long replays are remembered.
type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

type Clock interface {
	Now() time.Time
}
