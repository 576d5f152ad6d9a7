// Package repository holds the delivery ledger backends.
package repository

import (
	"context"

	"github.com/amptron-th/testdoc-api/internal/models"
)

// Ledger is the append-mostly record of notification attempts. Implementations
// cap retained history at a configured capacity, evicting oldest-first, and
// list most-recent-first.
type Ledger interface {
	Record(ctx context.Context, rec models.EmailRecord) error
	List(ctx context.Context, limit, offset int) ([]models.EmailRecord, int, error)
}

// DefaultCapacity applies when configuration supplies no positive capacity.
const DefaultCapacity = 100

func normalizeWindow(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
