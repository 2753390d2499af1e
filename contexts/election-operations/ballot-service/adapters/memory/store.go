package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"campuselect/contexts/election-operations/ballot-service/domain/entities"
	domainerrors "campuselect/contexts/election-operations/ballot-service/domain/errors"
	"campuselect/contexts/election-operations/ballot-service/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory adapter used by tests and local wiring. The mutex
// gives InsertBallot the same atomicity the postgres unique index provides.
type Store struct {
	mu sync.RWMutex

	voters     map[string]entities.Voter
	elections  map[string]entities.Election
	positions  map[string]entities.Position
	candidates map[string]ports.BallotCandidate

	ballots          map[string]entities.Ballot
	ballotByIdentity map[string]string
	participation    map[string]entities.ParticipationRecord
	outbox           map[string]outboxRecord

	now func() time.Time
}

func NewStore(seed []entities.Ballot) *Store {
	store := &Store{
		voters:           make(map[string]entities.Voter),
		elections:        make(map[string]entities.Election),
		positions:        make(map[string]entities.Position),
		candidates:       make(map[string]ports.BallotCandidate),
		ballots:          make(map[string]entities.Ballot, len(seed)),
		ballotByIdentity: make(map[string]string, len(seed)),
		participation:    make(map[string]entities.ParticipationRecord),
		outbox:           make(map[string]outboxRecord),
	}
	for _, ballot := range seed {
		store.ballots[ballot.BallotID] = ballot
		store.ballotByIdentity[ballotIdentity(ballot.VoterID, ballot.PositionID, ballot.ElectionID)] = ballot.BallotID
	}
	return store
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

func (s *Store) SetBallotCandidate(candidate ports.BallotCandidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[strings.TrimSpace(candidate.CandidateID)] = candidate
}

// SetNow overrides the store clock for deterministic tests.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
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

func (s *Store) ListPositionsByElection(_ context.Context, electionID string) ([]entities.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Position, 0)
	for _, position := range s.positions {
		if position.ElectionID == strings.TrimSpace(electionID) {
			items = append(items, position)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Order == items[j].Order {
			return items[i].PositionID < items[j].PositionID
		}
		return items[i].Order < items[j].Order
	})
	return items, nil
}

func (s *Store) GetBallotCandidate(
	_ context.Context,
	positionID string,
	candidateID string,
) (ports.BallotCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok || candidate.PositionID != strings.TrimSpace(positionID) {
		return ports.BallotCandidate{}, domainerrors.ErrCandidateNotOnBallot
	}
	return candidate, nil
}

func (s *Store) InsertBallot(_ context.Context, ballot entities.Ballot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity := ballotIdentity(ballot.VoterID, ballot.PositionID, ballot.ElectionID)
	if _, exists := s.ballotByIdentity[identity]; exists {
		return domainerrors.ErrAlreadyVoted
	}
	s.ballots[strings.TrimSpace(ballot.BallotID)] = ballot
	s.ballotByIdentity[identity] = strings.TrimSpace(ballot.BallotID)
	return nil
}

func (s *Store) GetBallotByIdentity(
	_ context.Context,
	voterID string,
	positionID string,
	electionID string,
) (entities.Ballot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ballotID, ok := s.ballotByIdentity[ballotIdentity(voterID, positionID, electionID)]
	if !ok {
		return entities.Ballot{}, false, nil
	}
	return s.ballots[ballotID], true, nil
}

func (s *Store) ListBallotsByVoterElection(
	_ context.Context,
	voterID string,
	electionID string,
) ([]entities.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Ballot, 0)
	for _, ballot := range s.ballots {
		if ballot.VoterID == strings.TrimSpace(voterID) && ballot.ElectionID == strings.TrimSpace(electionID) {
			items = append(items, ballot)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].SubmittedAt.Before(items[j].SubmittedAt)
	})
	return items, nil
}

func (s *Store) GetParticipation(
	_ context.Context,
	voterID string,
	electionID string,
) (entities.ParticipationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.participation[participationKey(voterID, electionID)]
	if !ok {
		return entities.ParticipationRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) PutParticipation(_ context.Context, record entities.ParticipationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := participationKey(record.VoterID, record.ElectionID)
	if _, exists := s.participation[key]; exists {
		return nil
	}
	s.participation[key] = record
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrInvalidBallotInput
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OutboxID < items[j].OutboxID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrInvalidBallotInput
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	clock := s.now
	s.mu.RUnlock()
	if clock != nil {
		return clock().UTC()
	}
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func ballotIdentity(voterID string, positionID string, electionID string) string {
	return strings.TrimSpace(voterID) + "|" + strings.TrimSpace(positionID) + "|" + strings.TrimSpace(electionID)
}

func participationKey(voterID string, electionID string) string {
	return strings.TrimSpace(voterID) + "|" + strings.TrimSpace(electionID)
}
