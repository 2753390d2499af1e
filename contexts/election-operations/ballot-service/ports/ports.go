package ports

import (
	"context"
	"time"

	"campuselect/contexts/election-operations/ballot-service/domain/entities"
	contractsv1 "campuselect/contracts/gen/events/v1"
)

// BallotCandidate is the read-side projection of a candidacy as it appears on
// a ballot. Candidacy records are owned by the candidacy service; this module
// only checks that a chosen candidate is actually electable.
type BallotCandidate struct {
	CandidateID     string
	ElectionID      string
	PositionID      string
	CandidateNumber int
	IsActive        bool
}

// SnapshotRepository reads committed voter/election/position data. The ballot
// engine never mutates these entities; administration happens elsewhere.
type SnapshotRepository interface {
	GetVoter(ctx context.Context, voterID string) (entities.Voter, error)
	GetElection(ctx context.Context, electionID string) (entities.Election, error)
	GetPosition(ctx context.Context, positionID string) (entities.Position, error)
	ListPositionsByElection(ctx context.Context, electionID string) ([]entities.Position, error)
	GetBallotCandidate(ctx context.Context, positionID string, candidateID string) (BallotCandidate, error)
}

// BallotRepository persists cast ballots. InsertBallot must be atomic with
// respect to the (voter, position, election) uniqueness guarantee and return
// ErrAlreadyVoted when the constraint rejects the row.
type BallotRepository interface {
	InsertBallot(ctx context.Context, ballot entities.Ballot) error
	GetBallotByIdentity(ctx context.Context, voterID string, positionID string, electionID string) (entities.Ballot, bool, error)
	ListBallotsByVoterElection(ctx context.Context, voterID string, electionID string) ([]entities.Ballot, error)
}

type ParticipationStore interface {
	GetParticipation(ctx context.Context, voterID string, electionID string) (entities.ParticipationRecord, bool, error)
	PutParticipation(ctx context.Context, record entities.ParticipationRecord) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
