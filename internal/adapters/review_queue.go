package adapters

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PendingReviewKey is the Redis list holding record ids awaiting a consultant.
const PendingReviewKey = "copd:review:pending"

// ReviewQueue tracks stored intakes that a consultant has not reviewed yet.
type ReviewQueue interface {
	// Enqueue adds a record to the end of the pending list.
	Enqueue(ctx context.Context, recordID uuid.UUID) error
	// Pending returns pending record ids, oldest first.
	Pending(ctx context.Context) ([]uuid.UUID, error)
	// Resolve removes a record from the pending list. Unknown ids are ignored.
	Resolve(ctx context.Context, recordID uuid.UUID) error
}

// InMemoryReviewQueue is a process-local ReviewQueue for development and single-instance use.
type InMemoryReviewQueue struct {
	mu      sync.Mutex
	pending []uuid.UUID
	logger  *zap.Logger
}

// NewInMemoryReviewQueue creates an empty in-memory queue.
func NewInMemoryReviewQueue(logger *zap.Logger) *InMemoryReviewQueue {
	return &InMemoryReviewQueue{logger: logger}
}

func (q *InMemoryReviewQueue) Enqueue(ctx context.Context, recordID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range q.pending {
		if id == recordID {
			return nil
		}
	}
	q.pending = append(q.pending, recordID)
	q.logger.Debug("record queued for review", zap.String("record_id", recordID.String()), zap.Int("pending", len(q.pending)))
	return nil
}

func (q *InMemoryReviewQueue) Pending(ctx context.Context) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]uuid.UUID, len(q.pending))
	copy(out, q.pending)
	return out, nil
}

func (q *InMemoryReviewQueue) Resolve(ctx context.Context, recordID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, id := range q.pending {
		if id == recordID {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			break
		}
	}
	return nil
}

// RedisReviewQueue keeps the pending list in Redis so several service instances share it.
type RedisReviewQueue struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisReviewQueue uses PendingReviewKey as the list key.
func NewRedisReviewQueue(client *redis.Client, logger *zap.Logger) *RedisReviewQueue {
	return &RedisReviewQueue{client: client, key: PendingReviewKey, logger: logger}
}

func (q *RedisReviewQueue) Enqueue(ctx context.Context, recordID uuid.UUID) error {
	id := recordID.String()
	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, q.key, 0, id)
	pipe.RPush(ctx, q.key, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to enqueue record %s for review: %w", id, err)
	}
	return nil
}

func (q *RedisReviewQueue) Pending(ctx context.Context) ([]uuid.UUID, error) {
	values, err := q.client.LRange(ctx, q.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read pending reviews: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			q.logger.Warn("skipping malformed id in review queue", zap.String("value", v), zap.Error(err))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (q *RedisReviewQueue) Resolve(ctx context.Context, recordID uuid.UUID) error {
	if err := q.client.LRem(ctx, q.key, 0, recordID.String()).Err(); err != nil {
		return fmt.Errorf("failed to resolve review for record %s: %w", recordID, err)
	}
	return nil
}
