package repository

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/amptron-th/testdoc-api/internal/models"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
)

const redisLedgerKey = "delivery:ledger"

// RedisLedger keeps delivery history in a capped Redis list, sharing history
// across instances.
type RedisLedger struct {
	client   *redis.Client
	capacity int
}

// NewRedisLedger constructs a Redis-backed ledger.
func NewRedisLedger(client *redis.Client, capacity int) *RedisLedger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RedisLedger{client: client, capacity: capacity}
}

// Record pushes the entry to the head of the list and trims to capacity.
func (l *RedisLedger) Record(ctx context.Context, rec models.EmailRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode ledger entry")
	}

	pipe := l.client.TxPipeline()
	pipe.LPush(ctx, redisLedgerKey, payload)
	pipe.LTrim(ctx, redisLedgerKey, 0, int64(l.capacity-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "record ledger entry")
	}
	return nil
}

// List reads a most-recent-first window; LPUSH already keeps newest at index 0.
func (l *RedisLedger) List(ctx context.Context, limit, offset int) ([]models.EmailRecord, int, error) {
	limit, offset = normalizeWindow(limit, offset)

	total, err := l.client.LLen(ctx, redisLedgerKey).Result()
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "count ledger entries")
	}

	raw, err := l.client.LRange(ctx, redisLedgerKey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "read ledger entries")
	}

	records := make([]models.EmailRecord, 0, len(raw))
	for _, item := range raw {
		var rec models.EmailRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "decode ledger entry")
		}
		records = append(records, rec)
	}
	return records, int(total), nil
}
