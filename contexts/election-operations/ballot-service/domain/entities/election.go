package entities

import "time"

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

// BallotState is the per-(voter, position) verdict rendered to the ballot UI.
type BallotState string

const (
	BallotStateNotEligible               BallotState = "not_eligible"
	BallotStateNeedsParticipationConfirm BallotState = "needs_participation_confirm"
	BallotStateNotOpenYet                BallotState = "not_open_yet"
	BallotStateOpen                      BallotState = "open"
	BallotStateVoted                     BallotState = "voted"
	BallotStateClosed                    BallotState = "closed"
)

type ParticipationStatus string

const (
	ParticipationStatusConfirmed    ParticipationStatus = "confirmed"
	ParticipationStatusNotConfirmed ParticipationStatus = "not_confirmed"
	ParticipationStatusNotRequired  ParticipationStatus = "not_required"
)

type Voter struct {
	VoterID        string
	SchoolID       string
	YearLevel      int
	DepartmentID   string
	IsClassOfficer bool
	IsActive       bool
}

type Election struct {
	ElectionID   string
	Type         ElectionType
	DepartmentID string
	Status       ElectionStatus
	ElectionDate time.Time
}

// RequiresParticipation reports whether the election workflow demands an
// explicit one-time participation confirmation before any position opens.
// SSG (general) elections vote directly; departmental officer elections gate.
func (e Election) RequiresParticipation() bool {
	return e.Type == ElectionTypeDepartmental
}

// IsOfficerRestricted reports whether only class officers may take part.
func (e Election) IsOfficerRestricted() bool {
	return e.Type == ElectionTypeDepartmental
}

type Position struct {
	PositionID                string
	ElectionID                string
	Name                      string
	Order                     int
	MaxVotes                  int
	MaxCandidates             int
	MaxCandidatesPerPartylist int
	EligibleYearLevels        []int
	BallotOpenAt              time.Time
	BallotCloseAt             time.Time
}

// AllowsYearLevel reports whether a voter of the given year level may vote
// for this position. An empty restriction set admits every year level.
func (p Position) AllowsYearLevel(level int) bool {
	if len(p.EligibleYearLevels) == 0 {
		return true
	}
	for _, allowed := range p.EligibleYearLevels {
		if allowed == level {
			return true
		}
	}
	return false
}

type ParticipationRecord struct {
	VoterID     string
	ElectionID  string
	ConfirmedAt time.Time
}

// Ballot is append-only: casting creates it exactly once and nothing edits or
// deletes it afterwards. Tally integrity depends on that.
type Ballot struct {
	BallotID    string
	ElectionID  string
	PositionID  string
	VoterID     string
	CandidateID string
	SubmittedAt time.Time
}
