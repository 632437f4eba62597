package repositories

import (
	"context"
	"errors"
	"time"

	"copd-intake-service/internal/domain/entities"

	"github.com/google/uuid"
)

// ErrRecordNotFound is returned (wrapped) when no intake record matches a lookup.
var ErrRecordNotFound = errors.New("intake record not found")

// IntakeRecordRepositoryContract is the append-only tabular store for accepted intakes.
type IntakeRecordRepositoryContract interface {
	// Append stores one complete row. A failed append leaves no partial row behind.
	Append(ctx context.Context, record *entities.IntakeRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.IntakeRecord, error)
	// LatestByNationalID returns the most recently submitted record for a patient.
	LatestByNationalID(ctx context.Context, nationalID string) (*entities.IntakeRecord, error)
	// Annotate sets the review columns of an existing record; nothing else changes.
	Annotate(ctx context.Context, id uuid.UUID, status, notes string, reviewedAt time.Time) error
	ListAll(ctx context.Context) ([]*entities.IntakeRecord, error)
}
