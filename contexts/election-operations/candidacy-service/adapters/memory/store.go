package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"campuselect/contexts/election-operations/candidacy-service/domain/entities"
	domainerrors "campuselect/contexts/election-operations/candidacy-service/domain/errors"
	"campuselect/contexts/election-operations/candidacy-service/ports"

	"github.com/google/uuid"
)

// Store is the in-memory adapter used by tests and local wiring. The mutex
// makes the guarded writes atomic the way the postgres adapter's position
// row lock does.
type Store struct {
	mu sync.RWMutex

	voters     map[string]entities.Voter
	elections  map[string]entities.Election
	positions  map[string]entities.Position
	partylists map[string]entities.Partylist
	candidates map[string]entities.Candidate

	now func() time.Time
}

func NewStore(seed []entities.Candidate) *Store {
	store := &Store{
		voters:     make(map[string]entities.Voter),
		elections:  make(map[string]entities.Election),
		positions:  make(map[string]entities.Position),
		partylists: make(map[string]entities.Partylist),
		candidates: make(map[string]entities.Candidate, len(seed)),
	}
	for _, candidate := range seed {
		store.candidates[candidate.CandidateID] = candidate
	}
	return store
}

// SetNow overrides the clock for deterministic tests.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) SetVoter(voter entities.Voter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voters[strings.TrimSpace(voter.VoterID)] = voter
}

func (s *Store) SetElection(election entities.Election) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[strings.TrimSpace(election.ElectionID)] = election
}

func (s *Store) SetPosition(position entities.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[strings.TrimSpace(position.PositionID)] = position
}

func (s *Store) SetPartylist(partylist entities.Partylist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partylists[strings.TrimSpace(partylist.PartylistID)] = partylist
}

func (s *Store) GetVoter(_ context.Context, voterID string) (entities.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voter, ok := s.voters[strings.TrimSpace(voterID)]
	if !ok {
		return entities.Voter{}, domainerrors.ErrVoterNotFound
	}
	return voter, nil
}

func (s *Store) GetElection(_ context.Context, electionID string) (entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return election, nil
}

func (s *Store) GetPosition(_ context.Context, positionID string) (entities.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	position, ok := s.positions[strings.TrimSpace(positionID)]
	if !ok {
		return entities.Position{}, domainerrors.ErrPositionNotFound
	}
	return position, nil
}

func (s *Store) GetPartylist(_ context.Context, partylistID string) (entities.Partylist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	partylist, ok := s.partylists[strings.TrimSpace(partylistID)]
	if !ok {
		return entities.Partylist{}, domainerrors.ErrPartylistNotFound
	}
	return partylist, nil
}

func (s *Store) GetCandidate(_ context.Context, candidateID string) (entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	return candidate, nil
}

func (s *Store) ListCandidatesByPosition(_ context.Context, positionID string) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.positionCandidatesLocked(strings.TrimSpace(positionID)), nil
}

func (s *Store) ListCandidatesByElectionVoter(
	_ context.Context,
	electionID string,
	voterID string,
) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	electionID = strings.TrimSpace(electionID)
	voterID = strings.TrimSpace(voterID)
	items := make([]entities.Candidate, 0)
	for _, candidate := range s.candidates {
		if candidate.ElectionID == electionID && candidate.VoterID == voterID {
			items = append(items, candidate)
		}
	}
	sortCandidates(items)
	return items, nil
}

func (s *Store) InsertCandidateGuarded(
	_ context.Context,
	candidate entities.Candidate,
	limits ports.CapacityLimits,
) (entities.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.recheckLocked(candidate, limits); err != nil {
		return entities.Candidate{}, err
	}
	candidate.CandidateNumber = s.nextCandidateNumberLocked(candidate.PositionID)
	s.candidates[candidate.CandidateID] = candidate
	return candidate, nil
}

func (s *Store) UpdateCandidateGuarded(
	_ context.Context,
	candidate entities.Candidate,
	limits ports.CapacityLimits,
) (entities.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.candidates[strings.TrimSpace(candidate.CandidateID)]
	if !ok {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	if err := s.recheckLocked(candidate, limits); err != nil {
		return entities.Candidate{}, err
	}
	if candidate.PositionID != current.PositionID {
		candidate.CandidateNumber = s.nextCandidateNumberLocked(candidate.PositionID)
	} else {
		candidate.CandidateNumber = current.CandidateNumber
	}
	s.candidates[candidate.CandidateID] = candidate
	return candidate, nil
}

// recheckLocked repeats the occupancy rules under the store lock; the
// write-time verdicts must match what the rule engine concluded from its
// snapshot, except where a concurrent writer got there first.
func (s *Store) recheckLocked(candidate entities.Candidate, limits ports.CapacityLimits) error {
	positionCount := 0
	partylistCount := 0
	for _, existing := range s.candidates {
		if existing.CandidateID == candidate.CandidateID || !existing.IsActive {
			continue
		}
		if existing.ElectionID == candidate.ElectionID &&
			existing.VoterID == candidate.VoterID {
			if existing.PositionID == candidate.PositionID {
				return domainerrors.ErrDuplicateCandidacy
			}
			if existing.PartylistKey() != candidate.PartylistKey() {
				return domainerrors.ErrPartylistConflict
			}
		}
		if existing.PositionID == candidate.PositionID {
			positionCount++
			if existing.PartylistKey() == candidate.PartylistKey() {
				partylistCount++
			}
		}
	}
	if limits.MaxCandidates > 0 && positionCount+1 > limits.MaxCandidates {
		return domainerrors.ErrPositionCapacityExceeded
	}
	if limits.MaxCandidatesPerPartylist > 0 && partylistCount+1 > limits.MaxCandidatesPerPartylist {
		return domainerrors.ErrPartylistCapacityExceeded
	}
	return nil
}

func (s *Store) nextCandidateNumberLocked(positionID string) int {
	next := 1
	for _, candidate := range s.candidates {
		if candidate.PositionID == positionID && candidate.CandidateNumber >= next {
			next = candidate.CandidateNumber + 1
		}
	}
	return next
}

func (s *Store) positionCandidatesLocked(positionID string) []entities.Candidate {
	items := make([]entities.Candidate, 0)
	for _, candidate := range s.candidates {
		if candidate.PositionID == positionID {
			items = append(items, candidate)
		}
	}
	sortCandidates(items)
	return items
}

func sortCandidates(items []entities.Candidate) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CandidateNumber != items[j].CandidateNumber {
			return items[i].CandidateNumber < items[j].CandidateNumber
		}
		return items[i].CandidateID < items[j].CandidateID
	})
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	now := s.now
	s.mu.RUnlock()
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.SnapshotRepository = (*Store)(nil)
var _ ports.CandidateRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
