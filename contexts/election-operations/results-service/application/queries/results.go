package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	application "campuselect/contexts/election-operations/results-service/application"
	"campuselect/contexts/election-operations/results-service/application/tally"
	"campuselect/contexts/election-operations/results-service/domain/entities"
	domainerrors "campuselect/contexts/election-operations/results-service/domain/errors"
	"campuselect/contexts/election-operations/results-service/ports"
)

type ElectionResults struct {
	ElectionID string
	Scope      entities.TallyScope
	Positions  []entities.PositionResult
}

// ResultsUseCase serves tallies through the cache: hit returns the memoized
// result, miss recomputes from the ballot log and stores it. Cache is
// optional; a nil cache degrades to recomputation on every call.
type ResultsUseCase struct {
	ReadModel ports.ResultsReadModel
	Cache     ports.ResultCache
	Logger    *slog.Logger
}

func (uc ResultsUseCase) PositionResults(
	ctx context.Context,
	positionID string,
	scope entities.TallyScope,
) (entities.PositionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	positionID = strings.TrimSpace(positionID)
	if positionID == "" {
		return entities.PositionResult{}, domainerrors.ErrInvalidResultsInput
	}

	if uc.Cache != nil {
		cached, hit, err := uc.Cache.Get(ctx, positionID, scope.Key())
		if err == nil && hit {
			return cached, nil
		}
	}

	result, err := uc.computePosition(ctx, positionID, scope)
	if err != nil {
		return entities.PositionResult{}, err
	}

	if uc.Cache != nil {
		if err := uc.Cache.Put(ctx, positionID, scope.Key(), result); err != nil {
			logger.Warn("result cache store failed",
				"event", "results_cache_put_failed",
				"module", "election-operations/results-service",
				"layer", "application",
				"position_id", positionID,
				"scope", scope.Key(),
				"error", err.Error(),
			)
		}
	}
	return result, nil
}

// ElectionResults tallies every position of the election, ordered by
// position display order.
func (uc ResultsUseCase) ElectionResults(
	ctx context.Context,
	electionID string,
	scope entities.TallyScope,
) (ElectionResults, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID = strings.TrimSpace(electionID)
	if electionID == "" {
		return ElectionResults{}, domainerrors.ErrInvalidResultsInput
	}

	positions, err := uc.ReadModel.ListPositionsByElection(ctx, electionID)
	if err != nil {
		return ElectionResults{}, err
	}
	if len(positions) == 0 {
		return ElectionResults{}, domainerrors.ErrElectionNotFound
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Order != positions[j].Order {
			return positions[i].Order < positions[j].Order
		}
		return positions[i].PositionID < positions[j].PositionID
	})

	results := ElectionResults{
		ElectionID: electionID,
		Scope:      scope,
		Positions:  make([]entities.PositionResult, 0, len(positions)),
	}
	for _, position := range positions {
		result, err := uc.PositionResults(ctx, position.PositionID, scope)
		if err != nil {
			return ElectionResults{}, err
		}
		results.Positions = append(results.Positions, result)
	}

	logger.Info("election results assembled",
		"event", "results_election_assembled",
		"module", "election-operations/results-service",
		"layer", "application",
		"election_id", electionID,
		"scope", scope.Key(),
		"position_count", len(results.Positions),
	)
	return results, nil
}

func (uc ResultsUseCase) computePosition(
	ctx context.Context,
	positionID string,
	scope entities.TallyScope,
) (entities.PositionResult, error) {
	position, err := uc.ReadModel.GetPosition(ctx, positionID)
	if err != nil {
		return entities.PositionResult{}, err
	}
	candidates, err := uc.ReadModel.ListCandidatesByPosition(ctx, positionID)
	if err != nil {
		return entities.PositionResult{}, err
	}
	ballots, err := uc.ReadModel.ListBallotsByPosition(ctx, positionID)
	if err != nil {
		return entities.PositionResult{}, err
	}
	return tally.Tally(position, candidates, ballots, scope)
}
