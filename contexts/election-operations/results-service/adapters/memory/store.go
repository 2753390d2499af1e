package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"campuselect/contexts/election-operations/results-service/domain/entities"
	domainerrors "campuselect/contexts/election-operations/results-service/domain/errors"
	"campuselect/contexts/election-operations/results-service/ports"
)

type dedupRecord struct {
	payloadHash string
	expiresAt   time.Time
}

// Store is the in-memory adapter used by tests and local wiring. It serves
// the read model, the result cache, and the event dedup store from one
// mutex-guarded state so worker tests see consistent snapshots.
type Store struct {
	mu sync.RWMutex

	positions  map[string]entities.Position
	candidates map[string][]entities.Candidate
	ballots    map[string][]entities.BallotRecord

	cache map[string]entities.PositionResult
	dedup map[string]dedupRecord

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		positions:  make(map[string]entities.Position),
		candidates: make(map[string][]entities.Candidate),
		ballots:    make(map[string][]entities.BallotRecord),
		cache:      make(map[string]entities.PositionResult),
		dedup:      make(map[string]dedupRecord),
	}
}

// SetNow overrides the clock for deterministic tests.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) SetPosition(position entities.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[strings.TrimSpace(position.PositionID)] = position
}

func (s *Store) SetCandidate(candidate entities.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	positionID := strings.TrimSpace(candidate.PositionID)
	for i, existing := range s.candidates[positionID] {
		if existing.CandidateID == candidate.CandidateID {
			s.candidates[positionID][i] = candidate
			return
		}
	}
	s.candidates[positionID] = append(s.candidates[positionID], candidate)
}

func (s *Store) AppendBallot(ballot entities.BallotRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	positionID := strings.TrimSpace(ballot.PositionID)
	s.ballots[positionID] = append(s.ballots[positionID], ballot)
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

func (s *Store) ListPositionsByElection(_ context.Context, electionID string) ([]entities.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	electionID = strings.TrimSpace(electionID)
	items := make([]entities.Position, 0)
	for _, position := range s.positions {
		if position.ElectionID == electionID {
			items = append(items, position)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Order != items[j].Order {
			return items[i].Order < items[j].Order
		}
		return items[i].PositionID < items[j].PositionID
	})
	return items, nil
}

func (s *Store) ListCandidatesByPosition(_ context.Context, positionID string) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := append([]entities.Candidate(nil), s.candidates[strings.TrimSpace(positionID)]...)
	sort.Slice(items, func(i, j int) bool {
		if items[i].CandidateNumber != items[j].CandidateNumber {
			return items[i].CandidateNumber < items[j].CandidateNumber
		}
		return items[i].CandidateID < items[j].CandidateID
	})
	return items, nil
}

func (s *Store) ListBallotsByPosition(_ context.Context, positionID string) ([]entities.BallotRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.BallotRecord(nil), s.ballots[strings.TrimSpace(positionID)]...), nil
}

func (s *Store) Get(_ context.Context, positionID string, scopeKey string) (entities.PositionResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.cache[cacheKey(positionID, scopeKey)]
	return result, ok, nil
}

func (s *Store) Put(_ context.Context, positionID string, scopeKey string, result entities.PositionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[cacheKey(positionID, scopeKey)] = result
	return nil
}

func (s *Store) InvalidatePosition(_ context.Context, positionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := strings.TrimSpace(positionID) + "|"
	for key := range s.cache {
		if strings.HasPrefix(key, prefix) {
			delete(s.cache, key)
		}
	}
	return nil
}

// CachedResultCount reports the live cache size; tests use it to assert
// invalidation actually dropped entries.
func (s *Store) CachedResultCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

func (s *Store) ReserveEvent(
	_ context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eventID = strings.TrimSpace(eventID)
	if record, ok := s.dedup[eventID]; ok && record.expiresAt.After(s.nowLocked()) {
		return true, nil
	}
	s.dedup[eventID] = dedupRecord{
		payloadHash: payloadHash,
		expiresAt:   expiresAt.UTC(),
	}
	return false, nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowLocked()
}

func (s *Store) nowLocked() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

func cacheKey(positionID string, scopeKey string) string {
	return strings.TrimSpace(positionID) + "|" + strings.TrimSpace(scopeKey)
}

var _ ports.ResultsReadModel = (*Store)(nil)
var _ ports.ResultCache = (*Store)(nil)
var _ ports.EventDedupStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
