package queries

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	application "campuselect/contexts/election-operations/ballot-service/application"
	"campuselect/contexts/election-operations/ballot-service/application/eligibility"
	"campuselect/contexts/election-operations/ballot-service/domain/entities"
	domainerrors "campuselect/contexts/election-operations/ballot-service/domain/errors"
	"campuselect/contexts/election-operations/ballot-service/ports"
)

// PositionStatus is one row of the voter's ballot view. Blocked marks a
// position withheld because its voting window is misconfigured; it carries no
// state so the UI renders an operator problem, not a voter-facing verdict.
type PositionStatus struct {
	PositionID    string
	Name          string
	Order         int
	MaxVotes      int
	State         entities.BallotState
	Blocked       bool
	BallotOpenAt  time.Time
	BallotCloseAt time.Time
}

type ElectionBallotStatus struct {
	ElectionID    string
	Type          entities.ElectionType
	Status        entities.ElectionStatus
	Participation entities.ParticipationStatus
	Positions     []PositionStatus
}

type BallotStatusUseCase struct {
	Snapshots     ports.SnapshotRepository
	Ballots       ports.BallotRepository
	Participation ports.ParticipationStore
	Clock         ports.Clock
	Logger        *slog.Logger
}

// ElectionBallotStatus evaluates every position of the election for one voter
// at the current instant, ordered by the positions' display order.
func (uc BallotStatusUseCase) ElectionBallotStatus(
	ctx context.Context,
	voterID string,
	electionID string,
) (ElectionBallotStatus, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID = strings.TrimSpace(voterID)
	electionID = strings.TrimSpace(electionID)
	if voterID == "" || electionID == "" {
		return ElectionBallotStatus{}, domainerrors.ErrInvalidBallotInput
	}

	voter, err := uc.Snapshots.GetVoter(ctx, voterID)
	if err != nil {
		return ElectionBallotStatus{}, err
	}
	election, err := uc.Snapshots.GetElection(ctx, electionID)
	if err != nil {
		return ElectionBallotStatus{}, err
	}
	positions, err := uc.Snapshots.ListPositionsByElection(ctx, electionID)
	if err != nil {
		return ElectionBallotStatus{}, err
	}
	sort.SliceStable(positions, func(i, j int) bool {
		if positions[i].Order == positions[j].Order {
			return positions[i].PositionID < positions[j].PositionID
		}
		return positions[i].Order < positions[j].Order
	})

	var participation *entities.ParticipationRecord
	if record, found, err := uc.Participation.GetParticipation(ctx, voterID, electionID); err != nil {
		return ElectionBallotStatus{}, err
	} else if found {
		participation = &record
	}

	now := uc.now()
	result := ElectionBallotStatus{
		ElectionID:    election.ElectionID,
		Type:          election.Type,
		Status:        election.Status,
		Participation: participationStatus(election, participation),
		Positions:     make([]PositionStatus, 0, len(positions)),
	}

	for _, position := range positions {
		entry := PositionStatus{
			PositionID:    position.PositionID,
			Name:          position.Name,
			Order:         position.Order,
			MaxVotes:      position.MaxVotes,
			BallotOpenAt:  position.BallotOpenAt.UTC(),
			BallotCloseAt: position.BallotCloseAt.UTC(),
		}

		var existing *entities.Ballot
		if ballot, found, err := uc.Ballots.GetBallotByIdentity(ctx, voterID, position.PositionID, electionID); err != nil {
			return ElectionBallotStatus{}, err
		} else if found {
			existing = &ballot
		}

		state, err := eligibility.Evaluate(voter, election, position, participation, existing, now)
		if err != nil {
			if errors.Is(err, domainerrors.ErrBallotWindowMisconfigured) {
				logger.Warn("position withheld from ballot view",
					"event", "ballot_status_position_blocked",
					"module", "election-operations/ballot-service",
					"layer", "application",
					"position_id", position.PositionID,
					"election_id", electionID,
					"error", err.Error(),
				)
				entry.Blocked = true
				result.Positions = append(result.Positions, entry)
				continue
			}
			return ElectionBallotStatus{}, err
		}
		entry.State = state
		result.Positions = append(result.Positions, entry)
	}
	return result, nil
}

// ParticipationStatus reports the gate's view of one (voter, election) pair.
func (uc BallotStatusUseCase) ParticipationStatus(
	ctx context.Context,
	voterID string,
	electionID string,
) (entities.ParticipationStatus, error) {
	voterID = strings.TrimSpace(voterID)
	electionID = strings.TrimSpace(electionID)
	if voterID == "" || electionID == "" {
		return "", domainerrors.ErrInvalidBallotInput
	}
	election, err := uc.Snapshots.GetElection(ctx, electionID)
	if err != nil {
		return "", err
	}
	var participation *entities.ParticipationRecord
	if record, found, err := uc.Participation.GetParticipation(ctx, voterID, electionID); err != nil {
		return "", err
	} else if found {
		participation = &record
	}
	return participationStatus(election, participation), nil
}

func (uc BallotStatusUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func participationStatus(
	election entities.Election,
	participation *entities.ParticipationRecord,
) entities.ParticipationStatus {
	if !election.RequiresParticipation() {
		return entities.ParticipationStatusNotRequired
	}
	if participation != nil {
		return entities.ParticipationStatusConfirmed
	}
	return entities.ParticipationStatusNotConfirmed
}
