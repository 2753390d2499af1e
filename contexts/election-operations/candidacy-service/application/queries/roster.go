package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	application "campuselect/contexts/election-operations/candidacy-service/application"
	domainerrors "campuselect/contexts/election-operations/candidacy-service/domain/errors"
	"campuselect/contexts/election-operations/candidacy-service/ports"
)

type RosterItem struct {
	CandidateID     string
	VoterID         string
	FullName        string
	CandidateNumber int
	PartylistID     string
	PartylistName   string
	Platform        string
}

type PositionRoster struct {
	PositionID   string
	PositionName string
	ElectionID   string
	Items        []RosterItem
}

type RosterUseCase struct {
	Snapshots  ports.SnapshotRepository
	Candidates ports.CandidateRepository
	Logger     *slog.Logger
}

// PositionRoster lists the position's active candidates ordered by candidate
// number. Independents carry an empty partylist id and name.
func (uc RosterUseCase) PositionRoster(ctx context.Context, positionID string) (PositionRoster, error) {
	logger := application.ResolveLogger(uc.Logger)
	positionID = strings.TrimSpace(positionID)
	if positionID == "" {
		return PositionRoster{}, domainerrors.ErrInvalidCandidateInput
	}

	position, err := uc.Snapshots.GetPosition(ctx, positionID)
	if err != nil {
		return PositionRoster{}, err
	}
	candidates, err := uc.Candidates.ListCandidatesByPosition(ctx, positionID)
	if err != nil {
		return PositionRoster{}, err
	}

	roster := PositionRoster{
		PositionID:   position.PositionID,
		PositionName: position.Name,
		ElectionID:   position.ElectionID,
		Items:        make([]RosterItem, 0, len(candidates)),
	}
	partylistNames := map[string]string{}
	for _, candidate := range candidates {
		if !candidate.IsActive {
			continue
		}
		item := RosterItem{
			CandidateID:     candidate.CandidateID,
			VoterID:         candidate.VoterID,
			CandidateNumber: candidate.CandidateNumber,
			PartylistID:     strings.TrimSpace(candidate.PartylistID),
			Platform:        candidate.Platform,
		}
		voter, err := uc.Snapshots.GetVoter(ctx, candidate.VoterID)
		if err == nil {
			item.FullName = voter.FullName
		}
		if item.PartylistID != "" {
			name, cached := partylistNames[item.PartylistID]
			if !cached {
				partylist, err := uc.Snapshots.GetPartylist(ctx, item.PartylistID)
				if err == nil {
					name = partylist.Name
				}
				partylistNames[item.PartylistID] = name
			}
			item.PartylistName = name
		}
		roster.Items = append(roster.Items, item)
	}

	sort.Slice(roster.Items, func(i, j int) bool {
		if roster.Items[i].CandidateNumber != roster.Items[j].CandidateNumber {
			return roster.Items[i].CandidateNumber < roster.Items[j].CandidateNumber
		}
		return roster.Items[i].CandidateID < roster.Items[j].CandidateID
	})

	logger.Info("position roster assembled",
		"event", "candidacy_roster_assembled",
		"module", "election-operations/candidacy-service",
		"layer", "application",
		"position_id", positionID,
		"candidate_count", len(roster.Items),
	)
	return roster, nil
}
