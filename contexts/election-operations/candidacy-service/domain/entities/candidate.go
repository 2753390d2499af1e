package entities

import (
	"strings"
	"time"
)

// IndependentPartylistKey is the reserved capacity-accounting key for
// candidates filing without a partylist. A real partylist may not use it.
const IndependentPartylistKey = "independent"

type ElectionType string

const (
	ElectionTypeSSG          ElectionType = "ssg"
	ElectionTypeDepartmental ElectionType = "departmental"
)

type ElectionStatus string

const (
	ElectionStatusUpcoming  ElectionStatus = "upcoming"
	ElectionStatusActive    ElectionStatus = "active"
	ElectionStatusCompleted ElectionStatus = "completed"
	ElectionStatusCancelled ElectionStatus = "cancelled"
)

type Election struct {
	ElectionID   string
	Type         ElectionType
	DepartmentID string
	Status       ElectionStatus
	ElectionDate time.Time
}

// IsOfficerRestricted reports whether only class officers may run.
// Departmental elections are officer ballots; SSG elections are school-wide.
func (e Election) IsOfficerRestricted() bool {
	return e.Type == ElectionTypeDepartmental
}

// AcceptsCandidacy reports whether the filing window is open. Candidacies are
// frozen once the election leaves the upcoming state.
func (e Election) AcceptsCandidacy() bool {
	return e.Status == ElectionStatusUpcoming
}

type Position struct {
	PositionID                string
	ElectionID                string
	Name                      string
	Order                     int
	MaxCandidates             int
	MaxCandidatesPerPartylist int
}

type Voter struct {
	VoterID        string
	FullName       string
	YearLevel      int
	DepartmentID   string
	IsClassOfficer bool
	IsActive       bool
}

type Partylist struct {
	PartylistID string
	ElectionID  string
	Name        string
}

type Candidate struct {
	CandidateID     string
	ElectionID      string
	PositionID      string
	VoterID         string
	PartylistID     string
	CandidateNumber int
	Platform        string
	IsActive        bool
	FiledAt         time.Time
}

// PartylistKey resolves the capacity-accounting key: the partylist id, or the
// reserved independent key when the candidate has none.
func (c Candidate) PartylistKey() string {
	if strings.TrimSpace(c.PartylistID) == "" {
		return IndependentPartylistKey
	}
	return strings.TrimSpace(c.PartylistID)
}

// CandidateDraft is a proposed filing. EditingID names the existing candidate
// record being revised; it is empty for a new filing.
type CandidateDraft struct {
	EditingID   string
	ElectionID  string
	PositionID  string
	VoterID     string
	PartylistID string
	Platform    string
}

func (d CandidateDraft) IsEdit() bool {
	return strings.TrimSpace(d.EditingID) != ""
}

func (d CandidateDraft) PartylistKey() string {
	if strings.TrimSpace(d.PartylistID) == "" {
		return IndependentPartylistKey
	}
	return strings.TrimSpace(d.PartylistID)
}
