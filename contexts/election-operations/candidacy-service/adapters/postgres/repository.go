package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"campuselect/contexts/election-operations/candidacy-service/domain/entities"
	domainerrors "campuselect/contexts/election-operations/candidacy-service/domain/errors"
	"campuselect/contexts/election-operations/candidacy-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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
		return entities.Voter{}, r.logError("candidacy_repo_get_voter_failed", err, "voter_id", strings.TrimSpace(voterID))
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
		return entities.Election{}, r.logError("candidacy_repo_get_election_failed", err, "election_id", strings.TrimSpace(electionID))
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
		return entities.Position{}, r.logError("candidacy_repo_get_position_failed", err, "position_id", strings.TrimSpace(positionID))
	}
	return row.toEntity(), nil
}

func (r *Repository) GetPartylist(ctx context.Context, partylistID string) (entities.Partylist, error) {
	var row partylistModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(partylistID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Partylist{}, domainerrors.ErrPartylistNotFound
		}
		return entities.Partylist{}, r.logError("candidacy_repo_get_partylist_failed", err, "partylist_id", strings.TrimSpace(partylistID))
	}
	return row.toEntity(), nil
}

func (r *Repository) GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(candidateID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Candidate{}, domainerrors.ErrCandidateNotFound
		}
		return entities.Candidate{}, r.logError("candidacy_repo_get_candidate_failed", err, "candidate_id", strings.TrimSpace(candidateID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListCandidatesByPosition(ctx context.Context, positionID string) ([]entities.Candidate, error) {
	var rows []candidateModel
	if err := r.db.WithContext(ctx).
		Where("position_id = ?", strings.TrimSpace(positionID)).
		Order("candidate_number ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("candidacy_repo_list_by_position_failed", err,
			"position_id", strings.TrimSpace(positionID),
		)
	}
	return candidatesFromModels(rows), nil
}

func (r *Repository) ListCandidatesByElectionVoter(
	ctx context.Context,
	electionID string,
	voterID string,
) ([]entities.Candidate, error) {
	var rows []candidateModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Order("candidate_number ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("candidacy_repo_list_by_voter_failed", err,
			"election_id", strings.TrimSpace(electionID),
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return candidatesFromModels(rows), nil
}

// InsertCandidateGuarded re-validates occupancy inside one transaction that
// holds a row lock on the position, so two concurrent filings for the last
// seat serialize; the (election, voter, position) unique index is the
// backstop for duplicates and surfaces as ErrDuplicateCandidacy.
func (r *Repository) InsertCandidateGuarded(
	ctx context.Context,
	candidate entities.Candidate,
	limits ports.CapacityLimits,
) (entities.Candidate, error) {
	stored := candidate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPosition(tx, candidate.PositionID); err != nil {
			return err
		}
		if err := recheckOccupancy(tx, candidate, limits); err != nil {
			return err
		}
		number, err := nextCandidateNumber(tx, candidate.PositionID)
		if err != nil {
			return err
		}
		stored.CandidateNumber = number

		row := candidateModelFromEntity(stored)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicateCandidacy
			}
			return err
		}
		return nil
	})
	if err != nil {
		if isDomainRejection(err) {
			return entities.Candidate{}, err
		}
		return entities.Candidate{}, r.logError("candidacy_repo_insert_guarded_failed", err,
			"candidate_id", strings.TrimSpace(candidate.CandidateID),
			"position_id", strings.TrimSpace(candidate.PositionID),
		)
	}
	return stored, nil
}

func (r *Repository) UpdateCandidateGuarded(
	ctx context.Context,
	candidate entities.Candidate,
	limits ports.CapacityLimits,
) (entities.Candidate, error) {
	stored := candidate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPosition(tx, candidate.PositionID); err != nil {
			return err
		}

		var current candidateModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", strings.TrimSpace(candidate.CandidateID)).
			First(&current).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrCandidateNotFound
			}
			return err
		}
		if err := recheckOccupancy(tx, candidate, limits); err != nil {
			return err
		}
		if current.PositionID != strings.TrimSpace(candidate.PositionID) {
			number, err := nextCandidateNumber(tx, candidate.PositionID)
			if err != nil {
				return err
			}
			stored.CandidateNumber = number
		} else {
			stored.CandidateNumber = current.CandidateNumber
		}
		stored.FiledAt = current.FiledAt.UTC()

		row := candidateModelFromEntity(stored)
		if err := tx.Save(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicateCandidacy
			}
			return err
		}
		return nil
	})
	if err != nil {
		if isDomainRejection(err) {
			return entities.Candidate{}, err
		}
		return entities.Candidate{}, r.logError("candidacy_repo_update_guarded_failed", err,
			"candidate_id", strings.TrimSpace(candidate.CandidateID),
			"position_id", strings.TrimSpace(candidate.PositionID),
		)
	}
	return stored, nil
}

func lockPosition(tx *gorm.DB, positionID string) error {
	var row positionModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", strings.TrimSpace(positionID)).
		First(&row).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrPositionNotFound
		}
		return err
	}
	return nil
}

func recheckOccupancy(tx *gorm.DB, candidate entities.Candidate, limits ports.CapacityLimits) error {
	candidateID := strings.TrimSpace(candidate.CandidateID)
	positionID := strings.TrimSpace(candidate.PositionID)

	var voterRows []candidateModel
	if err := tx.
		Where("election_id = ?", strings.TrimSpace(candidate.ElectionID)).
		Where("voter_id = ?", strings.TrimSpace(candidate.VoterID)).
		Where("id <> ?", candidateID).
		Where("is_active = ?", true).
		Find(&voterRows).Error; err != nil {
		return err
	}
	for _, row := range voterRows {
		if row.PositionID == positionID {
			return domainerrors.ErrDuplicateCandidacy
		}
		if row.toEntity().PartylistKey() != candidate.PartylistKey() {
			return domainerrors.ErrPartylistConflict
		}
	}

	var positionRows []candidateModel
	if err := tx.
		Where("position_id = ?", positionID).
		Where("id <> ?", candidateID).
		Where("is_active = ?", true).
		Find(&positionRows).Error; err != nil {
		return err
	}
	partylistCount := 0
	for _, row := range positionRows {
		if row.toEntity().PartylistKey() == candidate.PartylistKey() {
			partylistCount++
		}
	}
	if limits.MaxCandidates > 0 && len(positionRows)+1 > limits.MaxCandidates {
		return domainerrors.ErrPositionCapacityExceeded
	}
	if limits.MaxCandidatesPerPartylist > 0 && partylistCount+1 > limits.MaxCandidatesPerPartylist {
		return domainerrors.ErrPartylistCapacityExceeded
	}
	return nil
}

func nextCandidateNumber(tx *gorm.DB, positionID string) (int, error) {
	var highest int
	if err := tx.Model(&candidateModel{}).
		Where("position_id = ?", strings.TrimSpace(positionID)).
		Select("COALESCE(MAX(candidate_number), 0)").
		Scan(&highest).Error; err != nil {
		return 0, err
	}
	return highest + 1, nil
}

func isDomainRejection(err error) bool {
	return errors.Is(err, domainerrors.ErrDuplicateCandidacy) ||
		errors.Is(err, domainerrors.ErrPositionCapacityExceeded) ||
		errors.Is(err, domainerrors.ErrPartylistCapacityExceeded) ||
		errors.Is(err, domainerrors.ErrPartylistConflict) ||
		errors.Is(err, domainerrors.ErrPositionNotFound) ||
		errors.Is(err, domainerrors.ErrCandidateNotFound)
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-operations/candidacy-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("candidacy repository operation failed", fields...)
	return err
}

type voterModel struct {
	ID             string `gorm:"column:id;primaryKey"`
	FullName       string `gorm:"column:full_name"`
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
		FullName:       m.FullName,
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
	ID                        string `gorm:"column:id;primaryKey"`
	ElectionID                string `gorm:"column:election_id"`
	Name                      string `gorm:"column:name"`
	DisplayOrder              int    `gorm:"column:display_order"`
	MaxCandidates             int    `gorm:"column:max_candidates"`
	MaxCandidatesPerPartylist int    `gorm:"column:max_candidates_per_partylist"`
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
		MaxCandidates:             m.MaxCandidates,
		MaxCandidatesPerPartylist: m.MaxCandidatesPerPartylist,
	}
}

type partylistModel struct {
	ID         string `gorm:"column:id;primaryKey"`
	ElectionID string `gorm:"column:election_id"`
	Name       string `gorm:"column:name"`
}

func (partylistModel) TableName() string {
	return "partylists"
}

func (m partylistModel) toEntity() entities.Partylist {
	return entities.Partylist{
		PartylistID: m.ID,
		ElectionID:  m.ElectionID,
		Name:        m.Name,
	}
}

type candidateModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	ElectionID      string    `gorm:"column:election_id;uniqueIndex:ux_candidates_election_voter_position"`
	VoterID         string    `gorm:"column:voter_id;uniqueIndex:ux_candidates_election_voter_position"`
	PositionID      string    `gorm:"column:position_id;uniqueIndex:ux_candidates_election_voter_position"`
	PartylistID     *string   `gorm:"column:partylist_id"`
	CandidateNumber int       `gorm:"column:candidate_number"`
	Platform        string    `gorm:"column:platform"`
	IsActive        bool      `gorm:"column:is_active"`
	FiledAt         time.Time `gorm:"column:filed_at"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

func candidateModelFromEntity(candidate entities.Candidate) candidateModel {
	row := candidateModel{
		ID:              strings.TrimSpace(candidate.CandidateID),
		ElectionID:      strings.TrimSpace(candidate.ElectionID),
		VoterID:         strings.TrimSpace(candidate.VoterID),
		PositionID:      strings.TrimSpace(candidate.PositionID),
		CandidateNumber: candidate.CandidateNumber,
		Platform:        strings.TrimSpace(candidate.Platform),
		IsActive:        candidate.IsActive,
		FiledAt:         candidate.FiledAt.UTC(),
	}
	if partylistID := strings.TrimSpace(candidate.PartylistID); partylistID != "" {
		row.PartylistID = &partylistID
	}
	return row
}

func (m candidateModel) toEntity() entities.Candidate {
	partylistID := ""
	if m.PartylistID != nil {
		partylistID = strings.TrimSpace(*m.PartylistID)
	}
	return entities.Candidate{
		CandidateID:     m.ID,
		ElectionID:      m.ElectionID,
		PositionID:      m.PositionID,
		VoterID:         m.VoterID,
		PartylistID:     partylistID,
		CandidateNumber: m.CandidateNumber,
		Platform:        m.Platform,
		IsActive:        m.IsActive,
		FiledAt:         m.FiledAt.UTC(),
	}
}

func candidatesFromModels(rows []candidateModel) []entities.Candidate {
	items := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.SnapshotRepository = (*Repository)(nil)
var _ ports.CandidateRepository = (*Repository)(nil)
