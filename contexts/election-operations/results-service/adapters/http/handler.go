package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	application "campuselect/contexts/election-operations/results-service/application"
	"campuselect/contexts/election-operations/results-service/application/queries"
	"campuselect/contexts/election-operations/results-service/domain/entities"
	httptransport "campuselect/contexts/election-operations/results-service/transport/http"
)

type Handler struct {
	Results queries.ResultsUseCase
	Logger  *slog.Logger
}

// PositionResultsHandler godoc
// @Summary Get a position's results
// @Description Tallies the position's ballots: vote counts, percentages, ranks, and winner flags. An optional department id scopes the tally.
// @Tags results-service
// @Produce json
// @Param position_id path string true "Position id"
// @Param department_id query string false "Department scope"
// @Success 200 {object} httptransport.PositionResultResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /api/v1/positions/{position_id}/results [get]
func (h Handler) PositionResultsHandler(
	ctx context.Context,
	positionID string,
	departmentID string,
) (httptransport.PositionResultResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	scope := scopeFrom(departmentID)
	logger.Info("position results request received",
		"event", "http_position_results_received",
		"module", "election-operations/results-service",
		"layer", "transport",
		"position_id", positionID,
		"scope", scope.Key(),
	)

	result, err := h.Results.PositionResults(ctx, positionID, scope)
	if err != nil {
		return httptransport.PositionResultResponse{}, err
	}
	return mapPositionResult(result), nil
}

// ElectionResultsHandler godoc
// @Summary Get an election's results
// @Description Tallies every position of the election in display order. An optional department id scopes the tally.
// @Tags results-service
// @Produce json
// @Param election_id path string true "Election id"
// @Param department_id query string false "Department scope"
// @Success 200 {object} httptransport.ElectionResultsResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /api/v1/elections/{election_id}/results [get]
func (h Handler) ElectionResultsHandler(
	ctx context.Context,
	electionID string,
	departmentID string,
) (httptransport.ElectionResultsResponse, error) {
	results, err := h.Results.ElectionResults(ctx, electionID, scopeFrom(departmentID))
	if err != nil {
		return httptransport.ElectionResultsResponse{}, err
	}
	positions := make([]httptransport.PositionResultResponse, 0, len(results.Positions))
	for _, result := range results.Positions {
		positions = append(positions, mapPositionResult(result))
	}
	return httptransport.ElectionResultsResponse{
		ElectionID: results.ElectionID,
		Scope:      results.Scope.Key(),
		Positions:  positions,
	}, nil
}

func scopeFrom(departmentID string) entities.TallyScope {
	if strings.TrimSpace(departmentID) == "" {
		return entities.GlobalScope()
	}
	return entities.DepartmentScope(departmentID)
}

func mapPositionResult(result entities.PositionResult) httptransport.PositionResultResponse {
	tallies := make([]httptransport.CandidateTallyItem, 0, len(result.Tallies))
	for _, tally := range result.Tallies {
		tallies = append(tallies, httptransport.CandidateTallyItem{
			CandidateID:     tally.CandidateID,
			CandidateNumber: tally.CandidateNumber,
			FullName:        tally.FullName,
			PartylistLabel:  tally.PartylistLabel,
			VoteCount:       tally.VoteCount,
			VotePercentage:  tally.VotePercentage,
			Rank:            tally.Rank,
			IsWinner:        tally.IsWinner,
		})
	}
	return httptransport.PositionResultResponse{
		PositionID:   result.PositionID,
		PositionName: result.PositionName,
		ElectionID:   result.ElectionID,
		MaxVotes:     result.MaxVotes,
		TotalVotes:   result.TotalVotes,
		Scope:        result.Scope.Key(),
		Tallies:      tallies,
	}
}
