package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"copd-intake-service/internal/adapters"
	"copd-intake-service/internal/domain/entities"
	"copd-intake-service/internal/domain/repositories"

	"github.com/google/uuid"
)

// --- MockIntakeRecordRepository ---
var _ repositories.IntakeRecordRepositoryContract = (*MockIntakeRecordRepository)(nil)

// MockIntakeRecordRepository is a mock implementation of IntakeRecordRepositoryContract.
type MockIntakeRecordRepository struct {
	AppendFunc             func(ctx context.Context, record *entities.IntakeRecord) error
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*entities.IntakeRecord, error)
	LatestByNationalIDFunc func(ctx context.Context, nationalID string) (*entities.IntakeRecord, error)
	AnnotateFunc           func(ctx context.Context, id uuid.UUID, status, notes string, reviewedAt time.Time) error
	ListAllFunc            func(ctx context.Context) ([]*entities.IntakeRecord, error)

	AppendFuncCallCount   int32
	AnnotateFuncCallCount int32
	ListAllFuncCallCount  int32
}

func (m *MockIntakeRecordRepository) Append(ctx context.Context, record *entities.IntakeRecord) error {
	atomic.AddInt32(&m.AppendFuncCallCount, 1)
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, record)
	}
	return nil
}

func (m *MockIntakeRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.IntakeRecord, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errors.New("GetByIDFunc not implemented in mock")
}

func (m *MockIntakeRecordRepository) LatestByNationalID(ctx context.Context, nationalID string) (*entities.IntakeRecord, error) {
	if m.LatestByNationalIDFunc != nil {
		return m.LatestByNationalIDFunc(ctx, nationalID)
	}
	return nil, errors.New("LatestByNationalIDFunc not implemented in mock")
}

func (m *MockIntakeRecordRepository) Annotate(ctx context.Context, id uuid.UUID, status, notes string, reviewedAt time.Time) error {
	atomic.AddInt32(&m.AnnotateFuncCallCount, 1)
	if m.AnnotateFunc != nil {
		return m.AnnotateFunc(ctx, id, status, notes, reviewedAt)
	}
	return nil
}

func (m *MockIntakeRecordRepository) ListAll(ctx context.Context) ([]*entities.IntakeRecord, error) {
	atomic.AddInt32(&m.ListAllFuncCallCount, 1)
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

// --- MockReviewQueue ---
var _ adapters.ReviewQueue = (*MockReviewQueue)(nil)

// MockReviewQueue is a mock implementation of adapters.ReviewQueue.
type MockReviewQueue struct {
	EnqueueFunc func(ctx context.Context, recordID uuid.UUID) error
	PendingFunc func(ctx context.Context) ([]uuid.UUID, error)
	ResolveFunc func(ctx context.Context, recordID uuid.UUID) error

	EnqueueFuncCallCount int32
	ResolveFuncCallCount int32
}

func (m *MockReviewQueue) Enqueue(ctx context.Context, recordID uuid.UUID) error {
	atomic.AddInt32(&m.EnqueueFuncCallCount, 1)
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, recordID)
	}
	return nil
}

func (m *MockReviewQueue) Pending(ctx context.Context) ([]uuid.UUID, error) {
	if m.PendingFunc != nil {
		return m.PendingFunc(ctx)
	}
	return nil, nil
}

func (m *MockReviewQueue) Resolve(ctx context.Context, recordID uuid.UUID) error {
	atomic.AddInt32(&m.ResolveFuncCallCount, 1)
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, recordID)
	}
	return nil
}
