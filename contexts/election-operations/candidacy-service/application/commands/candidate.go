package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "campuselect/contexts/election-operations/candidacy-service/application"
	"campuselect/contexts/election-operations/candidacy-service/application/admission"
	"campuselect/contexts/election-operations/candidacy-service/domain/entities"
	domainerrors "campuselect/contexts/election-operations/candidacy-service/domain/errors"
	"campuselect/contexts/election-operations/candidacy-service/ports"
)

type AdmitCandidateCommand struct {
	ElectionID  string
	PositionID  string
	VoterID     string
	PartylistID string
	Platform    string
}

type ReviseCandidateCommand struct {
	CandidateID string
	PositionID  string
	PartylistID string
	Platform    string
}

type ValidateCandidateCommand struct {
	EditingID   string
	ElectionID  string
	PositionID  string
	VoterID     string
	PartylistID string
}

// AdmissionResult is the verdict of a filing attempt. When Validation is not
// admitted, Candidate is zero and no write happened.
type AdmissionResult struct {
	Candidate  entities.Candidate
	Validation admission.ValidationResult
}

// CandidateUseCase runs the admission rule engine over a fresh snapshot and
// performs the guarded write. Races that slip past the snapshot are caught by
// the repository's re-check and translated back into the same rule
// violations, so concurrent filers see one consistent vocabulary.
type CandidateUseCase struct {
	Snapshots  ports.SnapshotRepository
	Candidates ports.CandidateRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc CandidateUseCase) AdmitCandidate(
	ctx context.Context,
	cmd AdmitCandidateCommand,
) (AdmissionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	draft := entities.CandidateDraft{
		ElectionID:  strings.TrimSpace(cmd.ElectionID),
		PositionID:  strings.TrimSpace(cmd.PositionID),
		VoterID:     strings.TrimSpace(cmd.VoterID),
		PartylistID: strings.TrimSpace(cmd.PartylistID),
		Platform:    strings.TrimSpace(cmd.Platform),
	}
	if draft.ElectionID == "" || draft.PositionID == "" || draft.VoterID == "" {
		return AdmissionResult{}, domainerrors.ErrInvalidCandidateInput
	}

	election, position, voter, err := uc.loadFilingContext(ctx, draft)
	if err != nil {
		return AdmissionResult{}, err
	}
	result, err := uc.validateDraft(ctx, draft, election, position, voter)
	if err != nil {
		return AdmissionResult{}, err
	}
	if !result.Admitted() {
		logRejection(logger, "candidacy_admission_rejected", draft, result)
		return AdmissionResult{Validation: result}, nil
	}

	candidateID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return AdmissionResult{}, err
	}
	candidate := entities.Candidate{
		CandidateID: candidateID,
		ElectionID:  draft.ElectionID,
		PositionID:  draft.PositionID,
		VoterID:     draft.VoterID,
		PartylistID: draft.PartylistID,
		Platform:    draft.Platform,
		IsActive:    true,
		FiledAt:     uc.now(),
	}
	stored, err := uc.Candidates.InsertCandidateGuarded(ctx, candidate, capacityLimits(position))
	if err != nil {
		if violation, ok := violationFromSentinel(err); ok {
			result := admission.ValidationResult{Violations: []admission.RuleViolation{violation}}
			logRejection(logger, "candidacy_admission_lost_race", draft, result)
			return AdmissionResult{Validation: result}, nil
		}
		return AdmissionResult{}, err
	}

	logger.Info("candidate admitted",
		"event", "candidacy_admitted",
		"module", "election-operations/candidacy-service",
		"layer", "application",
		"candidate_id", stored.CandidateID,
		"election_id", stored.ElectionID,
		"position_id", stored.PositionID,
		"candidate_number", stored.CandidateNumber,
		"partylist_key", stored.PartylistKey(),
	)
	return AdmissionResult{Candidate: stored, Validation: result}, nil
}

// ReviseCandidate re-runs admission against the would-be state after the
// edit: the record being revised never counts against its own capacity.
func (uc CandidateUseCase) ReviseCandidate(
	ctx context.Context,
	cmd ReviseCandidateCommand,
) (AdmissionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	candidateID := strings.TrimSpace(cmd.CandidateID)
	if candidateID == "" {
		return AdmissionResult{}, domainerrors.ErrInvalidCandidateInput
	}

	current, err := uc.Candidates.GetCandidate(ctx, candidateID)
	if err != nil {
		return AdmissionResult{}, err
	}
	draft := entities.CandidateDraft{
		EditingID:   current.CandidateID,
		ElectionID:  current.ElectionID,
		PositionID:  strings.TrimSpace(cmd.PositionID),
		VoterID:     current.VoterID,
		PartylistID: strings.TrimSpace(cmd.PartylistID),
		Platform:    strings.TrimSpace(cmd.Platform),
	}
	if draft.PositionID == "" {
		draft.PositionID = current.PositionID
	}
	if draft.Platform == "" {
		draft.Platform = current.Platform
	}

	election, position, voter, err := uc.loadFilingContext(ctx, draft)
	if err != nil {
		return AdmissionResult{}, err
	}
	result, err := uc.validateDraft(ctx, draft, election, position, voter)
	if err != nil {
		return AdmissionResult{}, err
	}
	if !result.Admitted() {
		logRejection(logger, "candidacy_revision_rejected", draft, result)
		return AdmissionResult{Validation: result}, nil
	}

	revised := current
	revised.PositionID = draft.PositionID
	revised.PartylistID = draft.PartylistID
	revised.Platform = draft.Platform
	stored, err := uc.Candidates.UpdateCandidateGuarded(ctx, revised, capacityLimits(position))
	if err != nil {
		if violation, ok := violationFromSentinel(err); ok {
			result := admission.ValidationResult{Violations: []admission.RuleViolation{violation}}
			logRejection(logger, "candidacy_revision_lost_race", draft, result)
			return AdmissionResult{Validation: result}, nil
		}
		return AdmissionResult{}, err
	}

	logger.Info("candidate revised",
		"event", "candidacy_revised",
		"module", "election-operations/candidacy-service",
		"layer", "application",
		"candidate_id", stored.CandidateID,
		"position_id", stored.PositionID,
		"partylist_key", stored.PartylistKey(),
	)
	return AdmissionResult{Candidate: stored, Validation: result}, nil
}

// ValidateCandidate is the dry-run entry point for UI pre-checks. Same rule
// engine, no write.
func (uc CandidateUseCase) ValidateCandidate(
	ctx context.Context,
	cmd ValidateCandidateCommand,
) (admission.ValidationResult, error) {
	draft := entities.CandidateDraft{
		EditingID:   strings.TrimSpace(cmd.EditingID),
		ElectionID:  strings.TrimSpace(cmd.ElectionID),
		PositionID:  strings.TrimSpace(cmd.PositionID),
		VoterID:     strings.TrimSpace(cmd.VoterID),
		PartylistID: strings.TrimSpace(cmd.PartylistID),
	}
	if draft.ElectionID == "" || draft.PositionID == "" || draft.VoterID == "" {
		return admission.ValidationResult{}, domainerrors.ErrInvalidCandidateInput
	}
	election, position, voter, err := uc.loadFilingContext(ctx, draft)
	if err != nil {
		return admission.ValidationResult{}, err
	}
	return uc.validateDraft(ctx, draft, election, position, voter)
}

func (uc CandidateUseCase) loadFilingContext(
	ctx context.Context,
	draft entities.CandidateDraft,
) (entities.Election, entities.Position, entities.Voter, error) {
	election, err := uc.Snapshots.GetElection(ctx, draft.ElectionID)
	if err != nil {
		return entities.Election{}, entities.Position{}, entities.Voter{}, err
	}
	if !election.AcceptsCandidacy() {
		return entities.Election{}, entities.Position{}, entities.Voter{}, domainerrors.ErrElectionLocked
	}
	position, err := uc.Snapshots.GetPosition(ctx, draft.PositionID)
	if err != nil {
		return entities.Election{}, entities.Position{}, entities.Voter{}, err
	}
	if position.ElectionID != draft.ElectionID {
		return entities.Election{}, entities.Position{}, entities.Voter{}, domainerrors.ErrPositionNotFound
	}
	voter, err := uc.Snapshots.GetVoter(ctx, draft.VoterID)
	if err != nil {
		return entities.Election{}, entities.Position{}, entities.Voter{}, err
	}
	if draft.PartylistID != "" {
		partylist, err := uc.Snapshots.GetPartylist(ctx, draft.PartylistID)
		if err != nil {
			return entities.Election{}, entities.Position{}, entities.Voter{}, err
		}
		if partylist.ElectionID != draft.ElectionID {
			return entities.Election{}, entities.Position{}, entities.Voter{}, domainerrors.ErrPartylistNotFound
		}
	}
	return election, position, voter, nil
}

func (uc CandidateUseCase) validateDraft(
	ctx context.Context,
	draft entities.CandidateDraft,
	election entities.Election,
	position entities.Position,
	voter entities.Voter,
) (admission.ValidationResult, error) {
	positionCandidates, err := uc.Candidates.ListCandidatesByPosition(ctx, draft.PositionID)
	if err != nil {
		return admission.ValidationResult{}, err
	}
	voterCandidacies, err := uc.Candidates.ListCandidatesByElectionVoter(ctx, draft.ElectionID, draft.VoterID)
	if err != nil {
		return admission.ValidationResult{}, err
	}
	return admission.Validate(draft, election, position, voter, admission.Snapshot{
		PositionCandidates: positionCandidates,
		VoterCandidacies:   voterCandidacies,
	}), nil
}

func (uc CandidateUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func capacityLimits(position entities.Position) ports.CapacityLimits {
	return ports.CapacityLimits{
		MaxCandidates:             position.MaxCandidates,
		MaxCandidatesPerPartylist: position.MaxCandidatesPerPartylist,
	}
}

func violationFromSentinel(err error) (admission.RuleViolation, bool) {
	switch {
	case errors.Is(err, domainerrors.ErrDuplicateCandidacy):
		return admission.RuleViolation{
			Kind:    admission.ViolationDuplicateCandidacy,
			Message: "voter has already filed a candidacy for this position",
		}, true
	case errors.Is(err, domainerrors.ErrPositionCapacityExceeded):
		return admission.RuleViolation{
			Kind:    admission.ViolationPositionCapacityExceeded,
			Message: "position candidate capacity was reached by a concurrent filing",
		}, true
	case errors.Is(err, domainerrors.ErrPartylistCapacityExceeded):
		return admission.RuleViolation{
			Kind:    admission.ViolationPartylistCapacityExceeded,
			Message: "partylist capacity for this position was reached by a concurrent filing",
		}, true
	case errors.Is(err, domainerrors.ErrPartylistConflict):
		return admission.RuleViolation{
			Kind:    admission.ViolationPartylistConflict,
			Message: "a concurrent filing fixed the voter's partylist affiliation",
		}, true
	default:
		return admission.RuleViolation{}, false
	}
}

func logRejection(
	logger *slog.Logger,
	event string,
	draft entities.CandidateDraft,
	result admission.ValidationResult,
) {
	primary, _ := result.Primary()
	logger.Info("candidacy rejected",
		"event", event,
		"module", "election-operations/candidacy-service",
		"layer", "application",
		"election_id", draft.ElectionID,
		"position_id", draft.PositionID,
		"voter_id", draft.VoterID,
		"primary_violation", string(primary.Kind),
		"violation_count", len(result.Violations),
	)
}
