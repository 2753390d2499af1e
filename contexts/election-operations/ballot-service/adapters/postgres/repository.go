package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"campuselect/contexts/election-operations/ballot-service/domain/entities"
	domainerrors "campuselect/contexts/election-operations/ballot-service/domain/errors"
	"campuselect/contexts/election-operations/ballot-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// SystemClock satisfies the Clock port with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator satisfies the IDGenerator port.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (r *Repository) GetVoter(ctx context.Context, voterID string) (entities.Voter, error) {
	var row voterModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(voterID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Voter{}, domainerrors.ErrVoterNotFound
		}
		return entities.Voter{}, r.logError("ballot_repo_get_voter_failed", err, "voter_id", strings.TrimSpace(voterID))
	}
	return row.toEntity(), nil
}

func (r *Repository) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	var row electionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, domainerrors.ErrElectionNotFound
		}
		return entities.Election{}, r.logError("ballot_repo_get_election_failed", err, "election_id", strings.TrimSpace(electionID))
	}
	return row.toEntity(), nil
}

func (r *Repository) GetPosition(ctx context.Context, positionID string) (entities.Position, error) {
	var row positionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(positionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Position{}, domainerrors.ErrPositionNotFound
		}
		return entities.Position{}, r.logError("ballot_repo_get_position_failed", err, "position_id", strings.TrimSpace(positionID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListPositionsByElection(ctx context.Context, electionID string) ([]entities.Position, error) {
	var rows []positionModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Order("display_order ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_positions_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]entities.Position, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetBallotCandidate(
	ctx context.Context,
	positionID string,
	candidateID string,
) (ports.BallotCandidate, error) {
	var row ballotCandidateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(candidateID)).
		Where("position_id = ?", strings.TrimSpace(positionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.BallotCandidate{}, domainerrors.ErrCandidateNotOnBallot
		}
		return ports.BallotCandidate{}, r.logError("ballot_repo_get_candidate_failed", err,
			"position_id", strings.TrimSpace(positionID),
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	return ports.BallotCandidate{
		CandidateID:     row.ID,
		ElectionID:      row.ElectionID,
		PositionID:      row.PositionID,
		CandidateNumber: row.CandidateNumber,
		IsActive:        row.IsActive,
	}, nil
}

// InsertBallot is the single atomic write that enforces one ballot per
// (voter, position, election). The unique index decides races; a constraint
// rejection is reported as the domain truth, ErrAlreadyVoted.
func (r *Repository) InsertBallot(ctx context.Context, ballot entities.Ballot) error {
	row := ballotModelFromEntity(ballot)
	create := r.db.WithContext(ctx).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrAlreadyVoted
		}
		return r.logError("ballot_repo_insert_ballot_failed", create.Error,
			"ballot_id", strings.TrimSpace(ballot.BallotID),
			"voter_id", strings.TrimSpace(ballot.VoterID),
			"position_id", strings.TrimSpace(ballot.PositionID),
		)
	}
	return nil
}

func (r *Repository) GetBallotByIdentity(
	ctx context.Context,
	voterID string,
	positionID string,
	electionID string,
) (entities.Ballot, bool, error) {
	var row ballotModel
	err := r.db.WithContext(ctx).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Where("position_id = ?", strings.TrimSpace(positionID)).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, false, nil
		}
		return entities.Ballot{}, false, r.logError("ballot_repo_get_ballot_failed", err,
			"voter_id", strings.TrimSpace(voterID),
			"position_id", strings.TrimSpace(positionID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListBallotsByVoterElection(
	ctx context.Context,
	voterID string,
	electionID string,
) ([]entities.Ballot, error) {
	var rows []ballotModel
	if err := r.db.WithContext(ctx).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Order("submitted_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_ballots_failed", err,
			"voter_id", strings.TrimSpace(voterID),
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]entities.Ballot, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetParticipation(
	ctx context.Context,
	voterID string,
	electionID string,
) (entities.ParticipationRecord, bool, error) {
	var row participationModel
	err := r.db.WithContext(ctx).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ParticipationRecord{}, false, nil
		}
		return entities.ParticipationRecord{}, false, r.logError("ballot_repo_get_participation_failed", err,
			"voter_id", strings.TrimSpace(voterID),
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return row.toEntity(), true, nil
}

// PutParticipation is idempotent: a concurrent duplicate confirm resolves to
// the first record instead of an error.
func (r *Repository) PutParticipation(ctx context.Context, record entities.ParticipationRecord) error {
	row := participationModel{
		VoterID:     strings.TrimSpace(record.VoterID),
		ElectionID:  strings.TrimSpace(record.ElectionID),
		ConfirmedAt: record.ConfirmedAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "voter_id"}, {Name: "election_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ballot_repo_put_participation_failed", create.Error,
			"voter_id", row.VoterID,
			"election_id", row.ElectionID,
		)
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("ballot_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ballot_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("ballot_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidBallotInput
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-operations/ballot-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ballot repository operation failed", fields...)
	return err
}

type voterModel struct {
	ID             string `gorm:"column:id;primaryKey"`
	SchoolID       string `gorm:"column:school_id"`
	YearLevel      int    `gorm:"column:year_level"`
	DepartmentID   string `gorm:"column:department_id"`
	IsClassOfficer bool   `gorm:"column:is_class_officer"`
	IsActive       bool   `gorm:"column:is_active"`
}

func (voterModel) TableName() string {
	return "voters"
}

func (m voterModel) toEntity() entities.Voter {
	return entities.Voter{
		VoterID:        m.ID,
		SchoolID:       m.SchoolID,
		YearLevel:      m.YearLevel,
		DepartmentID:   m.DepartmentID,
		IsClassOfficer: m.IsClassOfficer,
		IsActive:       m.IsActive,
	}
}

type electionModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	ElectionType string    `gorm:"column:election_type"`
	DepartmentID *string   `gorm:"column:department_id"`
	Status       string    `gorm:"column:status"`
	ElectionDate time.Time `gorm:"column:election_date"`
}

func (electionModel) TableName() string {
	return "elections"
}

func (m electionModel) toEntity() entities.Election {
	departmentID := ""
	if m.DepartmentID != nil {
		departmentID = strings.TrimSpace(*m.DepartmentID)
	}
	return entities.Election{
		ElectionID:   m.ID,
		Type:         entities.ElectionType(m.ElectionType),
		DepartmentID: departmentID,
		Status:       entities.ElectionStatus(m.Status),
		ElectionDate: m.ElectionDate.UTC(),
	}
}

type positionModel struct {
	ID                        string    `gorm:"column:id;primaryKey"`
	ElectionID                string    `gorm:"column:election_id"`
	Name                      string    `gorm:"column:name"`
	DisplayOrder              int       `gorm:"column:display_order"`
	MaxVotes                  int       `gorm:"column:max_votes"`
	MaxCandidates             int       `gorm:"column:max_candidates"`
	MaxCandidatesPerPartylist int       `gorm:"column:max_candidates_per_partylist"`
	EligibleYearLevels        []int     `gorm:"column:eligible_year_levels;serializer:json"`
	BallotOpenAt              time.Time `gorm:"column:ballot_open_at"`
	BallotCloseAt             time.Time `gorm:"column:ballot_close_at"`
}

func (positionModel) TableName() string {
	return "positions"
}

func (m positionModel) toEntity() entities.Position {
	return entities.Position{
		PositionID:                m.ID,
		ElectionID:                m.ElectionID,
		Name:                      m.Name,
		Order:                     m.DisplayOrder,
		MaxVotes:                  m.MaxVotes,
		MaxCandidates:             m.MaxCandidates,
		MaxCandidatesPerPartylist: m.MaxCandidatesPerPartylist,
		EligibleYearLevels:        append([]int(nil), m.EligibleYearLevels...),
		BallotOpenAt:              m.BallotOpenAt.UTC(),
		BallotCloseAt:             m.BallotCloseAt.UTC(),
	}
}

type ballotCandidateModel struct {
	ID              string `gorm:"column:id;primaryKey"`
	ElectionID      string `gorm:"column:election_id"`
	PositionID      string `gorm:"column:position_id"`
	CandidateNumber int    `gorm:"column:candidate_number"`
	IsActive        bool   `gorm:"column:is_active"`
}

func (ballotCandidateModel) TableName() string {
	return "candidates"
}

type ballotModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	ElectionID  string    `gorm:"column:election_id;uniqueIndex:ux_ballots_voter_position_election"`
	PositionID  string    `gorm:"column:position_id;uniqueIndex:ux_ballots_voter_position_election"`
	VoterID     string    `gorm:"column:voter_id;uniqueIndex:ux_ballots_voter_position_election"`
	CandidateID string    `gorm:"column:candidate_id"`
	SubmittedAt time.Time `gorm:"column:submitted_at"`
}

func (ballotModel) TableName() string {
	return "ballots"
}

func ballotModelFromEntity(ballot entities.Ballot) ballotModel {
	row := ballotModel{
		ID:          strings.TrimSpace(ballot.BallotID),
		ElectionID:  strings.TrimSpace(ballot.ElectionID),
		PositionID:  strings.TrimSpace(ballot.PositionID),
		VoterID:     strings.TrimSpace(ballot.VoterID),
		CandidateID: strings.TrimSpace(ballot.CandidateID),
		SubmittedAt: ballot.SubmittedAt.UTC(),
	}
	if row.SubmittedAt.IsZero() {
		row.SubmittedAt = time.Now().UTC()
	}
	return row
}

func (m ballotModel) toEntity() entities.Ballot {
	return entities.Ballot{
		BallotID:    m.ID,
		ElectionID:  m.ElectionID,
		PositionID:  m.PositionID,
		VoterID:     m.VoterID,
		CandidateID: m.CandidateID,
		SubmittedAt: m.SubmittedAt.UTC(),
	}
}

type participationModel struct {
	VoterID     string    `gorm:"column:voter_id;primaryKey"`
	ElectionID  string    `gorm:"column:election_id;primaryKey"`
	ConfirmedAt time.Time `gorm:"column:confirmed_at"`
}

func (participationModel) TableName() string {
	return "participation_records"
}

func (m participationModel) toEntity() entities.ParticipationRecord {
	return entities.ParticipationRecord{
		VoterID:     m.VoterID,
		ElectionID:  m.ElectionID,
		ConfirmedAt: m.ConfirmedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "ballot_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.SnapshotRepository = (*Repository)(nil)
var _ ports.BallotRepository = (*Repository)(nil)
var _ ports.ParticipationStore = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
