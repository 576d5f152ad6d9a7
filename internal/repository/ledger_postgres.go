package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/amptron-th/testdoc-api/internal/models"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
)

// PostgresLedger keeps delivery history in a table, pruned to capacity on
// every insert.
type PostgresLedger struct {
	db       *sqlx.DB
	capacity int
}

// NewPostgresLedger constructs a Postgres-backed ledger.
func NewPostgresLedger(db *sqlx.DB, capacity int) *PostgresLedger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &PostgresLedger{db: db, capacity: capacity}
}

// Record inserts the entry, then prunes everything past capacity keeping the
// newest rows.
func (l *PostgresLedger) Record(ctx context.Context, rec models.EmailRecord) error {
	const insert = `
		INSERT INTO email_records (id, recipient, file_name, file_id, sent_at, status, message_id, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := l.db.ExecContext(ctx, insert,
		rec.ID, rec.Recipient, rec.FileName, rec.FileID, rec.SentAt, rec.Status, rec.MessageID, rec.Error); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "record ledger entry")
	}

	const prune = `
		DELETE FROM email_records
		WHERE id IN (
			SELECT id FROM email_records
			ORDER BY sent_at DESC, id DESC
			OFFSET $1
		)`
	if _, err := l.db.ExecContext(ctx, prune, l.capacity); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "prune ledger")
	}
	return nil
}

// List returns a most-recent-first window plus the total retained count.
func (l *PostgresLedger) List(ctx context.Context, limit, offset int) ([]models.EmailRecord, int, error) {
	limit, offset = normalizeWindow(limit, offset)

	var total int
	if err := l.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM email_records`); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "count ledger entries")
	}

	const query = `
		SELECT id, recipient, file_name, file_id, sent_at, status, message_id, error
		FROM email_records
		ORDER BY sent_at DESC, id DESC
		LIMIT $1 OFFSET $2`
	records := []models.EmailRecord{}
	if err := l.db.SelectContext(ctx, &records, query, limit, offset); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "read ledger entries")
	}
	return records, total, nil
}
