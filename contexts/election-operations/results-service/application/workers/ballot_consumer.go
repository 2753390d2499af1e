package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "campuselect/contexts/election-operations/results-service/application"
	"campuselect/contexts/election-operations/results-service/ports"
)

const (
	ballotCastTopic       = "ballot.cast"
	defaultBallotCastCG   = "results-service-ballot-cg"
	defaultBallotDedupTTL = 7 * 24 * time.Hour
)

// BallotCastConsumer invalidates cached position results when a ballot lands.
// Delivery is at-least-once; the dedup store makes replays harmless.
type BallotCastConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Cache         ports.ResultCache
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

func (c BallotCastConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("ballot cast consumer disabled by feature flag",
			"event", "results_ballot_consumer_disabled",
			"module", "election-operations/results-service",
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultBallotCastCG
	}
	if err := c.Subscriber.Subscribe(ctx, ballotCastTopic, group, c.handleBallotCast); err != nil {
		logger.Error("ballot cast consumer subscribe failed",
			"event", "results_ballot_consumer_subscribe_failed",
			"module", "election-operations/results-service",
			"layer", "worker",
			"topic", ballotCastTopic,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("ballot cast consumer subscription active",
		"event", "results_ballot_consumer_started",
		"module", "election-operations/results-service",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (c BallotCastConsumer) handleBallotCast(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)

	alreadyProcessed, err := c.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), c.now().Add(c.dedupTTL()))
	if err != nil {
		logger.Error("ballot cast dedupe failed",
			"event", "results_ballot_cast_dedupe_failed",
			"module", "election-operations/results-service",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if alreadyProcessed {
		logger.Debug("ballot.cast replay skipped",
			"event", "results_ballot_cast_replayed",
			"module", "election-operations/results-service",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	var payload struct {
		PositionID string `json:"position_id"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("ballot.cast payload decode failed",
			"event", "results_ballot_cast_decode_failed",
			"module", "election-operations/results-service",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	positionID := strings.TrimSpace(payload.PositionID)
	if positionID == "" {
		logger.Warn("ballot.cast event missing position id",
			"event", "results_ballot_cast_missing_position",
			"module", "election-operations/results-service",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	if err := c.Cache.InvalidatePosition(ctx, positionID); err != nil {
		logger.Error("result cache invalidation failed",
			"event", "results_cache_invalidate_failed",
			"module", "election-operations/results-service",
			"layer", "worker",
			"event_id", event.EventID,
			"position_id", positionID,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("position results invalidated",
		"event", "results_position_invalidated",
		"module", "election-operations/results-service",
		"layer", "worker",
		"event_id", event.EventID,
		"position_id", positionID,
	)
	return nil
}

func (c BallotCastConsumer) now() time.Time {
	if c.Clock != nil {
		return c.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (c BallotCastConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return defaultBallotDedupTTL
	}
	return c.DedupTTL
}

func hashPayload(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
