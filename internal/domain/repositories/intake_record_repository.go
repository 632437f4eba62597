package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"copd-intake-service/internal/domain/entities"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var _ IntakeRecordRepositoryContract = (*GormIntakeRecordRepository)(nil)

// GormIntakeRecordRepository stores intake records in PostgreSQL through gorm.
type GormIntakeRecordRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormIntakeRecordRepository creates the repository. Call Migrate once at startup.
func NewGormIntakeRecordRepository(db *gorm.DB, logger *zap.Logger) *GormIntakeRecordRepository {
	return &GormIntakeRecordRepository{db: db, logger: logger}
}

// Migrate creates or updates the intake_records table.
func (r *GormIntakeRecordRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&entities.IntakeRecord{}); err != nil {
		return fmt.Errorf("failed to migrate intake_records: %w", err)
	}
	return nil
}

func (r *GormIntakeRecordRepository) Append(ctx context.Context, record *entities.IntakeRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		r.logger.Error("failed to append intake record", zap.String("record_id", record.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to append intake record: %w", err)
	}
	return nil
}

func (r *GormIntakeRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.IntakeRecord, error) {
	var record entities.IntakeRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("record %s", id))
	}
	return &record, nil
}

func (r *GormIntakeRecordRepository) LatestByNationalID(ctx context.Context, nationalID string) (*entities.IntakeRecord, error) {
	var record entities.IntakeRecord
	err := r.db.WithContext(ctx).
		Where("national_id = ?", nationalID).
		// submitted_at is kept to the second; created_at breaks same-second ties.
		Order("submitted_at DESC, created_at DESC").
		Take(&record).Error
	if err != nil {
		return nil, notFoundOr(err, "latest record for patient")
	}
	return &record, nil
}

func (r *GormIntakeRecordRepository) Annotate(ctx context.Context, id uuid.UUID, status, notes string, reviewedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&entities.IntakeRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"review_status":  status,
			"reviewer_notes": notes,
			"reviewed_at":    reviewedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to annotate record %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("record %s: %w", id, ErrRecordNotFound)
	}
	return nil
}

func (r *GormIntakeRecordRepository) ListAll(ctx context.Context) ([]*entities.IntakeRecord, error) {
	var records []*entities.IntakeRecord
	if err := r.db.WithContext(ctx).Order("submitted_at ASC, created_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list intake records: %w", err)
	}
	return records, nil
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrRecordNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
