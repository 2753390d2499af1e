package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "campuselect/contexts/election-operations/ballot-service/application"
	"campuselect/contexts/election-operations/ballot-service/application/eligibility"
	"campuselect/contexts/election-operations/ballot-service/domain/entities"
	domainerrors "campuselect/contexts/election-operations/ballot-service/domain/errors"
	"campuselect/contexts/election-operations/ballot-service/ports"
)

// ConfirmParticipationCommand records a voter's one-time decision to take
// part in an officer/departmental election.
type ConfirmParticipationCommand struct {
	VoterID    string
	ElectionID string
}

type ConfirmParticipationResult struct {
	Record           entities.ParticipationRecord
	AlreadyConfirmed bool
}

// CastBallotCommand is the write-model input for vote casting.
type CastBallotCommand struct {
	VoterID     string
	ElectionID  string
	PositionID  string
	CandidateID string
}

type CastBallotResult struct {
	Ballot entities.Ballot
}

// BallotUseCase orchestrates participation confirmation and ballot casting
// while enforcing the one-ballot-per-(voter, position, election) invariant.
type BallotUseCase struct {
	Snapshots     ports.SnapshotRepository
	Ballots       ports.BallotRepository
	Participation ports.ParticipationStore
	Outbox        ports.OutboxWriter
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Logger        *slog.Logger
}

// ConfirmParticipation creates the participation record lazily. Confirming an
// already-confirmed pair is a no-op success so client retries stay harmless.
func (uc BallotUseCase) ConfirmParticipation(
	ctx context.Context,
	cmd ConfirmParticipationCommand,
) (ConfirmParticipationResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID := strings.TrimSpace(cmd.VoterID)
	electionID := strings.TrimSpace(cmd.ElectionID)
	if voterID == "" || electionID == "" {
		return ConfirmParticipationResult{}, domainerrors.ErrInvalidBallotInput
	}

	voter, err := uc.Snapshots.GetVoter(ctx, voterID)
	if err != nil {
		return ConfirmParticipationResult{}, err
	}
	election, err := uc.Snapshots.GetElection(ctx, electionID)
	if err != nil {
		return ConfirmParticipationResult{}, err
	}
	if !election.RequiresParticipation() {
		return ConfirmParticipationResult{}, domainerrors.ErrParticipationNotRequired
	}
	if election.Status != entities.ElectionStatusUpcoming &&
		election.Status != entities.ElectionStatusActive {
		return ConfirmParticipationResult{}, domainerrors.ErrElectionNotVotable
	}
	if !eligibility.VoterEligible(voter, election) {
		logger.Warn("participation confirm rejected for ineligible voter",
			"event", "ballot_participation_confirm_rejected",
			"module", "election-operations/ballot-service",
			"layer", "application",
			"voter_id", voterID,
			"election_id", electionID,
		)
		return ConfirmParticipationResult{}, domainerrors.ErrVoterNotEligible
	}

	if existing, found, err := uc.Participation.GetParticipation(ctx, voterID, electionID); err != nil {
		return ConfirmParticipationResult{}, err
	} else if found {
		return ConfirmParticipationResult{Record: existing, AlreadyConfirmed: true}, nil
	}

	record := entities.ParticipationRecord{
		VoterID:     voterID,
		ElectionID:  electionID,
		ConfirmedAt: uc.now(),
	}
	if err := uc.Participation.PutParticipation(ctx, record); err != nil {
		return ConfirmParticipationResult{}, err
	}
	if err := uc.appendBallotEvent(ctx, "participation.confirmed", electionID, record.ConfirmedAt, map[string]any{
		"voter_id":     voterID,
		"election_id":  electionID,
		"confirmed_at": record.ConfirmedAt.Format(time.RFC3339),
	}); err != nil {
		return ConfirmParticipationResult{}, err
	}

	logger.Info("participation confirmed",
		"event", "ballot_participation_confirmed",
		"module", "election-operations/ballot-service",
		"layer", "application",
		"voter_id", voterID,
		"election_id", electionID,
	)
	return ConfirmParticipationResult{Record: record}, nil
}

// CastBallot re-evaluates the voter's ballot state and performs the single
// atomic insert. A uniqueness-constraint rejection from the repository is
// surfaced as ErrAlreadyVoted, never as a generic storage failure.
func (uc BallotUseCase) CastBallot(ctx context.Context, cmd CastBallotCommand) (CastBallotResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID := strings.TrimSpace(cmd.VoterID)
	electionID := strings.TrimSpace(cmd.ElectionID)
	positionID := strings.TrimSpace(cmd.PositionID)
	candidateID := strings.TrimSpace(cmd.CandidateID)
	if voterID == "" || electionID == "" || positionID == "" || candidateID == "" {
		return CastBallotResult{}, domainerrors.ErrInvalidBallotInput
	}

	voter, err := uc.Snapshots.GetVoter(ctx, voterID)
	if err != nil {
		return CastBallotResult{}, err
	}
	election, err := uc.Snapshots.GetElection(ctx, electionID)
	if err != nil {
		return CastBallotResult{}, err
	}
	position, err := uc.Snapshots.GetPosition(ctx, positionID)
	if err != nil {
		return CastBallotResult{}, err
	}
	if position.ElectionID != election.ElectionID {
		return CastBallotResult{}, domainerrors.ErrInvalidBallotInput
	}

	state, err := uc.evaluateState(ctx, voter, election, position)
	if err != nil {
		return CastBallotResult{}, err
	}
	if state != entities.BallotStateOpen {
		logger.Warn("ballot cast rejected by state",
			"event", "ballot_cast_rejected",
			"module", "election-operations/ballot-service",
			"layer", "application",
			"voter_id", voterID,
			"position_id", positionID,
			"ballot_state", string(state),
		)
		return CastBallotResult{}, stateRejection(state)
	}

	candidate, err := uc.Snapshots.GetBallotCandidate(ctx, positionID, candidateID)
	if err != nil {
		return CastBallotResult{}, err
	}
	if !candidate.IsActive || candidate.PositionID != position.PositionID {
		return CastBallotResult{}, domainerrors.ErrCandidateNotOnBallot
	}

	ballotID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastBallotResult{}, err
	}
	ballot := entities.Ballot{
		BallotID:    ballotID,
		ElectionID:  electionID,
		PositionID:  positionID,
		VoterID:     voterID,
		CandidateID: candidateID,
		SubmittedAt: uc.now(),
	}
	if err := uc.Ballots.InsertBallot(ctx, ballot); err != nil {
		// A concurrent cast won the unique constraint; the voter's truth is
		// simply "already voted".
		return CastBallotResult{}, err
	}
	if err := uc.appendBallotEvent(ctx, "ballot.cast", positionID, ballot.SubmittedAt, map[string]any{
		"ballot_id":    ballot.BallotID,
		"election_id":  ballot.ElectionID,
		"position_id":  ballot.PositionID,
		"voter_id":     ballot.VoterID,
		"candidate_id": ballot.CandidateID,
		"submitted_at": ballot.SubmittedAt.Format(time.RFC3339),
	}); err != nil {
		return CastBallotResult{}, err
	}

	logger.Info("ballot cast",
		"event", "ballot_cast",
		"module", "election-operations/ballot-service",
		"layer", "application",
		"ballot_id", ballot.BallotID,
		"voter_id", voterID,
		"election_id", electionID,
		"position_id", positionID,
		"candidate_id", candidateID,
	)
	return CastBallotResult{Ballot: ballot}, nil
}

func (uc BallotUseCase) evaluateState(
	ctx context.Context,
	voter entities.Voter,
	election entities.Election,
	position entities.Position,
) (entities.BallotState, error) {
	var participation *entities.ParticipationRecord
	if record, found, err := uc.Participation.GetParticipation(ctx, voter.VoterID, election.ElectionID); err != nil {
		return "", err
	} else if found {
		participation = &record
	}

	var existing *entities.Ballot
	if ballot, found, err := uc.Ballots.GetBallotByIdentity(ctx, voter.VoterID, position.PositionID, election.ElectionID); err != nil {
		return "", err
	} else if found {
		existing = &ballot
	}

	return eligibility.Evaluate(voter, election, position, participation, existing, uc.now())
}

func (uc BallotUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func stateRejection(state entities.BallotState) error {
	switch state {
	case entities.BallotStateNotEligible:
		return domainerrors.ErrVoterNotEligible
	case entities.BallotStateNeedsParticipationConfirm:
		return domainerrors.ErrParticipationRequired
	case entities.BallotStateNotOpenYet:
		return domainerrors.ErrBallotNotYetOpen
	case entities.BallotStateVoted:
		return domainerrors.ErrAlreadyVoted
	case entities.BallotStateClosed:
		return domainerrors.ErrBallotClosed
	default:
		return domainerrors.ErrInvalidBallotInput
	}
}
