package commands

import (
	"context"
	"encoding/json"
	"time"

	"campuselect/contexts/election-operations/ballot-service/ports"
)

// appendBallotEvent writes a canonical envelope through the outbox. Ballot
// events are partitioned by position so position-scoped consumers see a
// stable order. Outbox is optional for pure read/test wiring.
func (uc BallotUseCase) appendBallotEvent(
	ctx context.Context,
	eventType string,
	positionKey string,
	occurredAt time.Time,
	data map[string]any,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "ballot-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "position_id",
		PartitionKey:     positionKey,
		Data:             payload,
	})
}
