package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisLedger(t *testing.T, capacity int) *RedisLedger {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLedger(client, capacity)
}

func TestRedisLedgerRoundTrip(t *testing.T) {
	ledger := newTestRedisLedger(t, 10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, ledger.Record(ctx, record(i)))
	}

	got, total, err := ledger.List(ctx, 50, 0)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, got, 3)
	require.Equal(t, "rec-002", got[0].ID)
	require.Equal(t, "user2@example.com", got[0].Recipient)
	require.Equal(t, "rec-000", got[2].ID)
}

func TestRedisLedgerTrimsToCapacity(t *testing.T) {
	ledger := newTestRedisLedger(t, 4)
	ctx := context.Background()

	for i := 0; i < 9; i++ {
		require.NoError(t, ledger.Record(ctx, record(i)))
	}

	got, total, err := ledger.List(ctx, 50, 0)
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Equal(t, "rec-008", got[0].ID)
	require.Equal(t, "rec-005", got[3].ID)
}

func TestRedisLedgerWindowing(t *testing.T) {
	ledger := newTestRedisLedger(t, 100)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, ledger.Record(ctx, record(i)))
	}

	got, total, err := ledger.List(ctx, 2, 1)
	require.NoError(t, err)
	require.Equal(t, 6, total)
	require.Len(t, got, 2)
	require.Equal(t, "rec-004", got[0].ID)
	require.Equal(t, "rec-003", got[1].ID)
}
