package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "campuselect/contexts/election-operations/ballot-service/application"
	"campuselect/contexts/election-operations/ballot-service/application/commands"
	"campuselect/contexts/election-operations/ballot-service/application/queries"
	httptransport "campuselect/contexts/election-operations/ballot-service/transport/http"
)

type Handler struct {
	Ballots commands.BallotUseCase
	Status  queries.BallotStatusUseCase
	Logger  *slog.Logger
}

// ConfirmParticipationHandler godoc
// @Summary Confirm election participation
// @Description Records the voter's one-time decision to take part in a participation-gated election. Repeating the call is a no-op success.
// @Tags ballot-service
// @Accept json
// @Produce json
// @Param X-Voter-Id header string true "Authenticated voter id"
// @Param election_id path string true "Election id"
// @Success 200 {object} httptransport.ConfirmParticipationResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/v1/elections/{election_id}/participation [post]
func (h Handler) ConfirmParticipationHandler(
	ctx context.Context,
	voterID string,
	electionID string,
) (httptransport.ConfirmParticipationResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("confirm participation request received",
		"event", "http_confirm_participation_received",
		"module", "election-operations/ballot-service",
		"layer", "transport",
		"election_id", electionID,
	)

	result, err := h.Ballots.ConfirmParticipation(ctx, commands.ConfirmParticipationCommand{
		VoterID:    voterID,
		ElectionID: electionID,
	})
	if err != nil {
		return httptransport.ConfirmParticipationResponse{}, err
	}
	return httptransport.ConfirmParticipationResponse{
		ElectionID:       result.Record.ElectionID,
		VoterID:          result.Record.VoterID,
		Status:           "confirmed",
		ConfirmedAt:      result.Record.ConfirmedAt.UTC().Format(time.RFC3339),
		AlreadyConfirmed: result.AlreadyConfirmed,
	}, nil
}

// ParticipationStatusHandler godoc
// @Summary Get participation status
// @Description Reports whether the voter has confirmed participation in the election, or whether no confirmation is required.
// @Tags ballot-service
// @Produce json
// @Param X-Voter-Id header string true "Authenticated voter id"
// @Param election_id path string true "Election id"
// @Success 200 {object} httptransport.ParticipationStatusResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/v1/elections/{election_id}/participation [get]
func (h Handler) ParticipationStatusHandler(
	ctx context.Context,
	voterID string,
	electionID string,
) (httptransport.ParticipationStatusResponse, error) {
	status, err := h.Status.ParticipationStatus(ctx, voterID, electionID)
	if err != nil {
		return httptransport.ParticipationStatusResponse{}, err
	}
	return httptransport.ParticipationStatusResponse{
		ElectionID: electionID,
		VoterID:    voterID,
		Status:     string(status),
	}, nil
}

// BallotStatusHandler godoc
// @Summary Get ballot status for an election
// @Description Evaluates every position of the election for the authenticated voter and returns one voting state per position.
// @Tags ballot-service
// @Produce json
// @Param X-Voter-Id header string true "Authenticated voter id"
// @Param election_id path string true "Election id"
// @Success 200 {object} httptransport.BallotStatusResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/v1/elections/{election_id}/ballot-status [get]
func (h Handler) BallotStatusHandler(
	ctx context.Context,
	voterID string,
	electionID string,
) (httptransport.BallotStatusResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("ballot status request received",
		"event", "http_ballot_status_received",
		"module", "election-operations/ballot-service",
		"layer", "transport",
		"election_id", electionID,
	)

	status, err := h.Status.ElectionBallotStatus(ctx, voterID, electionID)
	if err != nil {
		return httptransport.BallotStatusResponse{}, err
	}

	items := make([]httptransport.PositionStatusItem, 0, len(status.Positions))
	for _, position := range status.Positions {
		items = append(items, httptransport.PositionStatusItem{
			PositionID:    position.PositionID,
			Name:          position.Name,
			Order:         position.Order,
			MaxVotes:      position.MaxVotes,
			State:         string(position.State),
			Blocked:       position.Blocked,
			BallotOpenAt:  position.BallotOpenAt.UTC().Format(time.RFC3339),
			BallotCloseAt: position.BallotCloseAt.UTC().Format(time.RFC3339),
		})
	}
	return httptransport.BallotStatusResponse{
		ElectionID:     status.ElectionID,
		ElectionType:   string(status.Type),
		ElectionStatus: string(status.Status),
		Participation:  string(status.Participation),
		Positions:      items,
	}, nil
}

// CastBallotHandler godoc
// @Summary Cast a ballot
// @Description Casts the voter's single ballot for one position. The write is atomic; a second ballot for the same position is rejected.
// @Tags ballot-service
// @Accept json
// @Produce json
// @Param X-Voter-Id header string true "Authenticated voter id"
// @Param election_id path string true "Election id"
// @Param position_id path string true "Position id"
// @Param request body httptransport.CastBallotRequest true "Ballot payload"
// @Success 201 {object} httptransport.CastBallotResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /api/v1/elections/{election_id}/positions/{position_id}/ballots [post]
func (h Handler) CastBallotHandler(
	ctx context.Context,
	voterID string,
	electionID string,
	positionID string,
	req httptransport.CastBallotRequest,
) (httptransport.CastBallotResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("cast ballot request received",
		"event", "http_cast_ballot_received",
		"module", "election-operations/ballot-service",
		"layer", "transport",
		"election_id", electionID,
		"position_id", positionID,
	)

	result, err := h.Ballots.CastBallot(ctx, commands.CastBallotCommand{
		VoterID:     voterID,
		ElectionID:  electionID,
		PositionID:  positionID,
		CandidateID: req.CandidateID,
	})
	if err != nil {
		return httptransport.CastBallotResponse{}, err
	}
	return httptransport.CastBallotResponse{
		BallotID:    result.Ballot.BallotID,
		ElectionID:  result.Ballot.ElectionID,
		PositionID:  result.Ballot.PositionID,
		CandidateID: result.Ballot.CandidateID,
		SubmittedAt: result.Ballot.SubmittedAt.UTC().Format(time.RFC3339),
	}, nil
}
