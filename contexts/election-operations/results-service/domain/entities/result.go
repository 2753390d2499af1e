package entities

import (
	"strings"
	"time"
)

// TallyScope selects which ballots count. The zero value is the global
// scope; a department id narrows the tally to that department's voters.
type TallyScope struct {
	DepartmentID string
}

func GlobalScope() TallyScope {
	return TallyScope{}
}

func DepartmentScope(departmentID string) TallyScope {
	return TallyScope{DepartmentID: strings.TrimSpace(departmentID)}
}

func (s TallyScope) IsGlobal() bool {
	return strings.TrimSpace(s.DepartmentID) == ""
}

// Key is the cache-key fragment for this scope.
func (s TallyScope) Key() string {
	if s.IsGlobal() {
		return "global"
	}
	return "department:" + strings.TrimSpace(s.DepartmentID)
}

// Position is the read-model projection the tally runs against.
type Position struct {
	PositionID string
	ElectionID string
	Name       string
	Order      int
	MaxVotes   int
}

// Candidate is the roster entry as the results side sees it. Withdrawn
// candidates stay on the roster so their historical ballots keep counting.
type Candidate struct {
	CandidateID     string
	PositionID      string
	CandidateNumber int
	FullName        string
	PartylistLabel  string
	IsActive        bool
}

// BallotRecord is one row of the append-only ballot log joined with the
// voter's department for scoped tallies.
type BallotRecord struct {
	BallotID          string
	ElectionID        string
	PositionID        string
	CandidateID       string
	VoterID           string
	VoterDepartmentID string
	SubmittedAt       time.Time
}

type CandidateTally struct {
	CandidateID     string
	CandidateNumber int
	FullName        string
	PartylistLabel  string
	VoteCount       int
	VotePercentage  float64
	Rank            int
	IsWinner        bool
}

type PositionResult struct {
	PositionID   string
	PositionName string
	ElectionID   string
	Order        int
	MaxVotes     int
	TotalVotes   int
	Scope        TallyScope
	Tallies      []CandidateTally
}
