package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "campuselect/contexts/election-operations/candidacy-service/application"
	"campuselect/contexts/election-operations/candidacy-service/application/admission"
	"campuselect/contexts/election-operations/candidacy-service/application/commands"
	"campuselect/contexts/election-operations/candidacy-service/application/queries"
	"campuselect/contexts/election-operations/candidacy-service/domain/entities"
	httptransport "campuselect/contexts/election-operations/candidacy-service/transport/http"
)

type Handler struct {
	Candidates commands.CandidateUseCase
	Roster     queries.RosterUseCase
	Logger     *slog.Logger
}

// AdmitCandidateHandler godoc
// @Summary File a candidacy
// @Description Runs the admission rules and, when every rule passes, records the candidacy with the next candidate number.
// @Tags candidacy-service
// @Accept json
// @Produce json
// @Param request body httptransport.AdmitCandidateRequest true "Candidacy filing"
// @Success 201 {object} httptransport.AdmissionResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.AdmissionResponse
// @Router /api/v1/candidates [post]
func (h Handler) AdmitCandidateHandler(
	ctx context.Context,
	req httptransport.AdmitCandidateRequest,
) (httptransport.AdmissionResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("admit candidate request received",
		"event", "http_admit_candidate_received",
		"module", "election-operations/candidacy-service",
		"layer", "transport",
		"election_id", req.ElectionID,
		"position_id", req.PositionID,
	)

	result, err := h.Candidates.AdmitCandidate(ctx, commands.AdmitCandidateCommand{
		ElectionID:  req.ElectionID,
		PositionID:  req.PositionID,
		VoterID:     req.VoterID,
		PartylistID: req.PartylistID,
		Platform:    req.Platform,
	})
	if err != nil {
		return httptransport.AdmissionResponse{}, err
	}
	return mapAdmission(result), nil
}

// ReviseCandidateHandler godoc
// @Summary Revise a candidacy
// @Description Re-runs the admission rules against the would-be state after the edit and applies the change when admitted.
// @Tags candidacy-service
// @Accept json
// @Produce json
// @Param candidate_id path string true "Candidate id"
// @Param request body httptransport.ReviseCandidateRequest true "Candidacy changes"
// @Success 200 {object} httptransport.AdmissionResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.AdmissionResponse
// @Router /api/v1/candidates/{candidate_id} [put]
func (h Handler) ReviseCandidateHandler(
	ctx context.Context,
	candidateID string,
	req httptransport.ReviseCandidateRequest,
) (httptransport.AdmissionResponse, error) {
	result, err := h.Candidates.ReviseCandidate(ctx, commands.ReviseCandidateCommand{
		CandidateID: candidateID,
		PositionID:  req.PositionID,
		PartylistID: req.PartylistID,
		Platform:    req.Platform,
	})
	if err != nil {
		return httptransport.AdmissionResponse{}, err
	}
	return mapAdmission(result), nil
}

// ValidateCandidateHandler godoc
// @Summary Dry-run an admission check
// @Description Evaluates the admission rules without writing anything, for UI pre-checks. Same rule engine as filing.
// @Tags candidacy-service
// @Accept json
// @Produce json
// @Param request body httptransport.ValidateCandidateRequest true "Draft candidacy"
// @Success 200 {object} httptransport.AdmissionResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/v1/candidates/validate [post]
func (h Handler) ValidateCandidateHandler(
	ctx context.Context,
	req httptransport.ValidateCandidateRequest,
) (httptransport.AdmissionResponse, error) {
	validation, err := h.Candidates.ValidateCandidate(ctx, commands.ValidateCandidateCommand{
		EditingID:   req.EditingID,
		ElectionID:  req.ElectionID,
		PositionID:  req.PositionID,
		VoterID:     req.VoterID,
		PartylistID: req.PartylistID,
	})
	if err != nil {
		return httptransport.AdmissionResponse{}, err
	}
	return httptransport.AdmissionResponse{
		Admitted:   validation.Admitted(),
		Violations: mapViolations(validation),
	}, nil
}

// PositionRosterHandler godoc
// @Summary List a position's candidates
// @Description Returns the position's active candidates ordered by candidate number, with partylist names resolved.
// @Tags candidacy-service
// @Produce json
// @Param position_id path string true "Position id"
// @Success 200 {object} httptransport.RosterResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/v1/positions/{position_id}/candidates [get]
func (h Handler) PositionRosterHandler(
	ctx context.Context,
	positionID string,
) (httptransport.RosterResponse, error) {
	roster, err := h.Roster.PositionRoster(ctx, positionID)
	if err != nil {
		return httptransport.RosterResponse{}, err
	}
	items := make([]httptransport.RosterItemResponse, 0, len(roster.Items))
	for _, item := range roster.Items {
		items = append(items, httptransport.RosterItemResponse{
			CandidateID:     item.CandidateID,
			VoterID:         item.VoterID,
			FullName:        item.FullName,
			CandidateNumber: item.CandidateNumber,
			PartylistID:     item.PartylistID,
			PartylistName:   item.PartylistName,
			Platform:        item.Platform,
		})
	}
	return httptransport.RosterResponse{
		PositionID:   roster.PositionID,
		PositionName: roster.PositionName,
		ElectionID:   roster.ElectionID,
		Items:        items,
	}, nil
}

func mapAdmission(result commands.AdmissionResult) httptransport.AdmissionResponse {
	resp := httptransport.AdmissionResponse{
		Admitted:   result.Validation.Admitted(),
		Violations: mapViolations(result.Validation),
	}
	if resp.Admitted {
		resp.Candidate = mapCandidate(result.Candidate)
	}
	return resp
}

func mapCandidate(candidate entities.Candidate) *httptransport.CandidateResponse {
	return &httptransport.CandidateResponse{
		CandidateID:     candidate.CandidateID,
		ElectionID:      candidate.ElectionID,
		PositionID:      candidate.PositionID,
		VoterID:         candidate.VoterID,
		PartylistID:     candidate.PartylistID,
		PartylistKey:    candidate.PartylistKey(),
		CandidateNumber: candidate.CandidateNumber,
		Platform:        candidate.Platform,
		FiledAt:         candidate.FiledAt.UTC().Format(time.RFC3339),
	}
}

func mapViolations(validation admission.ValidationResult) []httptransport.RuleViolationItem {
	if len(validation.Violations) == 0 {
		return nil
	}
	items := make([]httptransport.RuleViolationItem, 0, len(validation.Violations))
	for _, violation := range validation.Violations {
		items = append(items, httptransport.RuleViolationItem{
			Kind:    string(violation.Kind),
			Message: violation.Message,
		})
	}
	return items
}
