package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	ballotservice "campuselect/contexts/election-operations/ballot-service"
	"campuselect/contexts/election-operations/ballot-service/domain/entities"
	ballotdomainerrors "campuselect/contexts/election-operations/ballot-service/domain/errors"
	ballotports "campuselect/contexts/election-operations/ballot-service/ports"
	ballottransport "campuselect/contexts/election-operations/ballot-service/transport/http"
)

func seedDepartmentalBallot(module ballotservice.Module, now time.Time) {
	module.Store.SetNow(func() time.Time { return now })
	module.Store.SetVoter(entities.Voter{
		VoterID:        "voter-1",
		SchoolID:       "2023-00123",
		YearLevel:      3,
		DepartmentID:   "dept-cs",
		IsClassOfficer: true,
		IsActive:       true,
	})
	module.Store.SetElection(entities.Election{
		ElectionID:   "election-dept",
		Type:         entities.ElectionTypeDepartmental,
		DepartmentID: "dept-cs",
		Status:       entities.ElectionStatusActive,
		ElectionDate: now,
	})
	module.Store.SetPosition(entities.Position{
		PositionID:    "position-governor",
		ElectionID:    "election-dept",
		Name:          "Governor",
		Order:         1,
		MaxVotes:      1,
		BallotOpenAt:  now.Add(-time.Hour),
		BallotCloseAt: now.Add(time.Hour),
	})
	module.Store.SetBallotCandidate(ballotports.BallotCandidate{
		CandidateID:     "candidate-1",
		ElectionID:      "election-dept",
		PositionID:      "position-governor",
		CandidateNumber: 1,
		IsActive:        true,
	})
}

func TestBallotDepartmentalConfirmThenCastFlow(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	module := ballotservice.NewInMemoryModule(nil, nil)
	seedDepartmentalBallot(module, now)
	ctx := context.Background()

	// Casting before confirming participation is blocked.
	_, err := module.Handler.CastBallotHandler(ctx, "voter-1", "election-dept", "position-governor", ballottransport.CastBallotRequest{
		CandidateID: "candidate-1",
	})
	if !errors.Is(err, ballotdomainerrors.ErrParticipationRequired) {
		t.Fatalf("expected ErrParticipationRequired before confirmation, got %v", err)
	}

	participation, err := module.Handler.ParticipationStatusHandler(ctx, "voter-1", "election-dept")
	if err != nil {
		t.Fatalf("participation status failed: %v", err)
	}
	if participation.Status != string(entities.ParticipationStatusNotConfirmed) {
		t.Fatalf("expected not_confirmed, got %s", participation.Status)
	}

	confirmed, err := module.Handler.ConfirmParticipationHandler(ctx, "voter-1", "election-dept")
	if err != nil {
		t.Fatalf("confirm participation failed: %v", err)
	}
	if confirmed.AlreadyConfirmed {
		t.Fatalf("first confirmation must not report already confirmed")
	}
	replayed, err := module.Handler.ConfirmParticipationHandler(ctx, "voter-1", "election-dept")
	if err != nil {
		t.Fatalf("repeat confirmation failed: %v", err)
	}
	if !replayed.AlreadyConfirmed {
		t.Fatalf("expected already confirmed on repeat")
	}
	if replayed.ConfirmedAt != confirmed.ConfirmedAt {
		t.Fatalf("repeat confirmation must keep the original timestamp")
	}

	status, err := module.Handler.BallotStatusHandler(ctx, "voter-1", "election-dept")
	if err != nil {
		t.Fatalf("ballot status failed: %v", err)
	}
	if len(status.Positions) != 1 || status.Positions[0].State != string(entities.BallotStateOpen) {
		t.Fatalf("expected one open position, got %+v", status.Positions)
	}

	cast, err := module.Handler.CastBallotHandler(ctx, "voter-1", "election-dept", "position-governor", ballottransport.CastBallotRequest{
		CandidateID: "candidate-1",
	})
	if err != nil {
		t.Fatalf("cast ballot failed: %v", err)
	}
	if cast.CandidateID != "candidate-1" || cast.BallotID == "" {
		t.Fatalf("unexpected cast response %+v", cast)
	}

	_, err = module.Handler.CastBallotHandler(ctx, "voter-1", "election-dept", "position-governor", ballottransport.CastBallotRequest{
		CandidateID: "candidate-1",
	})
	if !errors.Is(err, ballotdomainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted on second cast, got %v", err)
	}

	status, err = module.Handler.BallotStatusHandler(ctx, "voter-1", "election-dept")
	if err != nil {
		t.Fatalf("ballot status after cast failed: %v", err)
	}
	if status.Positions[0].State != string(entities.BallotStateVoted) {
		t.Fatalf("expected voted state after cast, got %s", status.Positions[0].State)
	}

	outbox, err := module.Store.ListPendingOutbox(ctx, 20)
	if err != nil {
		t.Fatalf("list ballot outbox failed: %v", err)
	}
	found := map[string]bool{}
	for _, message := range outbox {
		found[message.EventType] = true
	}
	if !found["participation.confirmed"] || !found["ballot.cast"] {
		t.Fatalf("expected participation.confirmed and ballot.cast events in outbox, got %v", found)
	}
}

func TestBallotSSGVotesWithoutParticipation(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	module := ballotservice.NewInMemoryModule(nil, nil)
	module.Store.SetNow(func() time.Time { return now })
	module.Store.SetVoter(entities.Voter{
		VoterID:      "voter-2",
		YearLevel:    1,
		DepartmentID: "dept-eng",
		IsActive:     true,
	})
	module.Store.SetElection(entities.Election{
		ElectionID: "election-ssg",
		Type:       entities.ElectionTypeSSG,
		Status:     entities.ElectionStatusActive,
	})
	module.Store.SetPosition(entities.Position{
		PositionID:    "position-president",
		ElectionID:    "election-ssg",
		Name:          "President",
		Order:         1,
		MaxVotes:      1,
		BallotOpenAt:  now.Add(-time.Hour),
		BallotCloseAt: now.Add(time.Hour),
	})
	module.Store.SetBallotCandidate(ballotports.BallotCandidate{
		CandidateID: "candidate-9",
		ElectionID:  "election-ssg",
		PositionID:  "position-president",
		IsActive:    true,
	})
	ctx := context.Background()

	// General elections have no participation gate to confirm.
	_, err := module.Handler.ConfirmParticipationHandler(ctx, "voter-2", "election-ssg")
	if !errors.Is(err, ballotdomainerrors.ErrParticipationNotRequired) {
		t.Fatalf("expected ErrParticipationNotRequired for ssg election, got %v", err)
	}

	participation, err := module.Handler.ParticipationStatusHandler(ctx, "voter-2", "election-ssg")
	if err != nil {
		t.Fatalf("participation status failed: %v", err)
	}
	if participation.Status != string(entities.ParticipationStatusNotRequired) {
		t.Fatalf("expected not_required, got %s", participation.Status)
	}

	if _, err := module.Handler.CastBallotHandler(ctx, "voter-2", "election-ssg", "position-president", ballottransport.CastBallotRequest{
		CandidateID: "candidate-9",
	}); err != nil {
		t.Fatalf("ssg cast failed: %v", err)
	}
}

func TestBallotRejectsInactiveCandidate(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	module := ballotservice.NewInMemoryModule(nil, nil)
	seedDepartmentalBallot(module, now)
	module.Store.SetBallotCandidate(ballotports.BallotCandidate{
		CandidateID: "candidate-withdrawn",
		ElectionID:  "election-dept",
		PositionID:  "position-governor",
		IsActive:    false,
	})
	ctx := context.Background()

	if _, err := module.Handler.ConfirmParticipationHandler(ctx, "voter-1", "election-dept"); err != nil {
		t.Fatalf("confirm participation failed: %v", err)
	}
	_, err := module.Handler.CastBallotHandler(ctx, "voter-1", "election-dept", "position-governor", ballottransport.CastBallotRequest{
		CandidateID: "candidate-withdrawn",
	})
	if !errors.Is(err, ballotdomainerrors.ErrCandidateNotOnBallot) {
		t.Fatalf("expected ErrCandidateNotOnBallot, got %v", err)
	}
}
