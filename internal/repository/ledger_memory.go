package repository

import (
	"context"
	"sync"

	"github.com/amptron-th/testdoc-api/internal/models"
)

// MemoryLedger keeps delivery history in process memory. Records are stored
// most-recent-first; history does not survive restarts.
type MemoryLedger struct {
	mu       sync.RWMutex
	records  []models.EmailRecord
	capacity int
}

// NewMemoryLedger constructs an in-memory ledger with the given capacity.
func NewMemoryLedger(capacity int) *MemoryLedger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryLedger{
		records:  make([]models.EmailRecord, 0, capacity),
		capacity: capacity,
	}
}

// Record prepends the entry and drops the oldest beyond capacity.
func (l *MemoryLedger) Record(_ context.Context, rec models.EmailRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append([]models.EmailRecord{rec}, l.records...)
	if len(l.records) > l.capacity {
		l.records = l.records[:l.capacity]
	}
	return nil
}

// List returns a most-recent-first window and the total retained count.
func (l *MemoryLedger) List(_ context.Context, limit, offset int) ([]models.EmailRecord, int, error) {
	limit, offset = normalizeWindow(limit, offset)

	l.mu.RLock()
	defer l.mu.RUnlock()

	total := len(l.records)
	if offset >= total {
		return []models.EmailRecord{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	out := make([]models.EmailRecord, end-offset)
	copy(out, l.records[offset:end])
	return out, total, nil
}
