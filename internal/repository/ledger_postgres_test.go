package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newTestPostgresLedger(t *testing.T, capacity int) (*PostgresLedger, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresLedger(sqlx.NewDb(db, "postgres"), capacity), mock
}

func TestPostgresLedgerRecordInsertsAndPrunes(t *testing.T) {
	ledger, mock := newTestPostgresLedger(t, 100)
	rec := record(1)

	mock.ExpectExec("INSERT INTO email_records").
		WithArgs(rec.ID, rec.Recipient, rec.FileName, rec.FileID, rec.SentAt, rec.Status, rec.MessageID, rec.Error).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM email_records").
		WithArgs(100).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, ledger.Record(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedgerList(t *testing.T) {
	ledger, mock := newTestPostgresLedger(t, 100)
	first := record(2)
	second := record(1)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT id, recipient, file_name, file_id, sent_at, status, message_id, error").
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipient", "file_name", "file_id", "sent_at", "status", "message_id", "error"}).
			AddRow(first.ID, first.Recipient, first.FileName, first.FileID, first.SentAt, first.Status, first.MessageID, first.Error).
			AddRow(second.ID, second.Recipient, second.FileName, second.FileID, second.SentAt, second.Status, second.MessageID, second.Error))

	got, total, err := ledger.List(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, got, 2)
	require.Equal(t, first.ID, got[0].ID)
	require.Equal(t, second.ID, got[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedgerRecordError(t *testing.T) {
	ledger, mock := newTestPostgresLedger(t, 100)
	rec := record(1)

	mock.ExpectExec("INSERT INTO email_records").
		WillReturnError(context.DeadlineExceeded)

	err := ledger.Record(context.Background(), rec)
	require.Error(t, err)
}
