package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"campuselect/contexts/election-operations/results-service/domain/entities"
	domainerrors "campuselect/contexts/election-operations/results-service/domain/errors"
	"campuselect/contexts/election-operations/results-service/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the results read model over the shared election schema plus
// the consumer's dedup table. Tallies read the ballot log; they never write
// it.
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
		return entities.Position{}, r.logError("results_repo_get_position_failed", err, "position_id", strings.TrimSpace(positionID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListPositionsByElection(ctx context.Context, electionID string) ([]entities.Position, error) {
	var rows []positionModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Order("display_order ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("results_repo_list_positions_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]entities.Position, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListCandidatesByPosition(ctx context.Context, positionID string) ([]entities.Candidate, error) {
	var rows []candidateRosterRow
	if err := r.db.WithContext(ctx).
		Table("candidates").
		Select(`candidates.id,
			candidates.position_id,
			candidates.candidate_number,
			candidates.partylist_id,
			candidates.is_active,
			COALESCE(voters.full_name, '') AS full_name,
			COALESCE(partylists.name, '') AS partylist_name`).
		Joins("LEFT JOIN voters ON voters.id = candidates.voter_id").
		Joins("LEFT JOIN partylists ON partylists.id = candidates.partylist_id").
		Where("candidates.position_id = ?", strings.TrimSpace(positionID)).
		Order("candidates.candidate_number ASC, candidates.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, r.logError("results_repo_list_candidates_failed", err,
			"position_id", strings.TrimSpace(positionID),
		)
	}
	items := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListBallotsByPosition(ctx context.Context, positionID string) ([]entities.BallotRecord, error) {
	var rows []ballotLogRow
	if err := r.db.WithContext(ctx).
		Table("ballots").
		Select(`ballots.id,
			ballots.election_id,
			ballots.position_id,
			ballots.candidate_id,
			ballots.voter_id,
			COALESCE(voters.department_id, '') AS voter_department_id,
			ballots.submitted_at`).
		Joins("LEFT JOIN voters ON voters.id = ballots.voter_id").
		Where("ballots.position_id = ?", strings.TrimSpace(positionID)).
		Order("ballots.submitted_at ASC, ballots.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, r.logError("results_repo_list_ballots_failed", err,
			"position_id", strings.TrimSpace(positionID),
		)
	}
	items := make([]entities.BallotRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// ReserveEvent inserts the event id; a conflict means a replay. A replay
// whose payload hash differs from the reserved one is reported as a data
// integrity failure.
func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	row := eventDedupModel{
		EventID:     strings.TrimSpace(eventID),
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, r.logError("results_repo_reserve_event_failed", create.Error,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if create.RowsAffected > 0 {
		return false, nil
	}

	var existing eventDedupModel
	if err := r.db.WithContext(ctx).
		Select("payload_hash").
		Where("event_id = ?", row.EventID).
		First(&existing).Error; err != nil {
		return false, r.logError("results_repo_reserve_event_load_existing_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if existing.PayloadHash != row.PayloadHash {
		return false, domainerrors.ErrDataIntegrity
	}
	return true, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-operations/results-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("results repository operation failed", fields...)
	return err
}

type positionModel struct {
	ID           string `gorm:"column:id;primaryKey"`
	ElectionID   string `gorm:"column:election_id"`
	Name         string `gorm:"column:name"`
	DisplayOrder int    `gorm:"column:display_order"`
	MaxVotes     int    `gorm:"column:max_votes"`
}

func (positionModel) TableName() string {
	return "positions"
}

func (m positionModel) toEntity() entities.Position {
	return entities.Position{
		PositionID: m.ID,
		ElectionID: m.ElectionID,
		Name:       m.Name,
		Order:      m.DisplayOrder,
		MaxVotes:   m.MaxVotes,
	}
}

type candidateRosterRow struct {
	ID              string  `gorm:"column:id"`
	PositionID      string  `gorm:"column:position_id"`
	CandidateNumber int     `gorm:"column:candidate_number"`
	PartylistID     *string `gorm:"column:partylist_id"`
	IsActive        bool    `gorm:"column:is_active"`
	FullName        string  `gorm:"column:full_name"`
	PartylistName   string  `gorm:"column:partylist_name"`
}

func (m candidateRosterRow) toEntity() entities.Candidate {
	label := strings.TrimSpace(m.PartylistName)
	return entities.Candidate{
		CandidateID:     m.ID,
		PositionID:      m.PositionID,
		CandidateNumber: m.CandidateNumber,
		FullName:        m.FullName,
		PartylistLabel:  label,
		IsActive:        m.IsActive,
	}
}

type ballotLogRow struct {
	ID                string    `gorm:"column:id"`
	ElectionID        string    `gorm:"column:election_id"`
	PositionID        string    `gorm:"column:position_id"`
	CandidateID       string    `gorm:"column:candidate_id"`
	VoterID           string    `gorm:"column:voter_id"`
	VoterDepartmentID string    `gorm:"column:voter_department_id"`
	SubmittedAt       time.Time `gorm:"column:submitted_at"`
}

func (m ballotLogRow) toEntity() entities.BallotRecord {
	return entities.BallotRecord{
		BallotID:          m.ID,
		ElectionID:        m.ElectionID,
		PositionID:        m.PositionID,
		CandidateID:       m.CandidateID,
		VoterID:           m.VoterID,
		VoterDepartmentID: m.VoterDepartmentID,
		SubmittedAt:       m.SubmittedAt.UTC(),
	}
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "results_event_dedup"
}

var _ ports.ResultsReadModel = (*Repository)(nil)
var _ ports.EventDedupStore = (*Repository)(nil)
