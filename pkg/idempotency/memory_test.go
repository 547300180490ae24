package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	res, err := store.Reserve(ctx, "t-1", "key-1", "fp-a", now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, ReservationNew, res.State)
	assert.NotEmpty(t, res.Record.ID)

	res, err = store.Reserve(ctx, "t-1", "key-1", "fp-a", now.Add(time.Second), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, ReservationPending, res.State)

	_, err = store.Reserve(ctx, "t-1", "key-1", "fp-b", now.Add(time.Second), time.Hour)
	assert.ErrorIs(t, err, ErrFingerprintMismatch)

	require.NoError(t, store.Complete(ctx, "t-1", "key-1", "fp-a", []byte(`{"id":"o-1"}`), now.Add(2*time.Second), time.Hour))

	res, err = store.Reserve(ctx, "t-1", "key-1", "fp-a", now.Add(3*time.Second), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, ReservationCompleted, res.State)
	assert.JSONEq(t, `{"id":"o-1"}`, string(res.Record.Response))

	// same key in another tenant is independent
	res, err = store.Reserve(ctx, "t-2", "key-1", "fp-b", now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, ReservationNew, res.State)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	_, err := store.Reserve(ctx, "t-1", "key-1", "fp-a", now, 0)
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, "t-1", "key-1", "fp-a", []byte("x"), now, time.Minute))

	res, err := store.Reserve(ctx, "t-1", "key-1", "fp-b", now.Add(2*time.Minute), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, ReservationNew, res.State)

	removed, err := store.CleanupExpired(ctx, now.Add(10*time.Minute), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestMemoryStoreRelease(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	_, err := store.Reserve(ctx, "t-1", "k", "fp", now, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "t-1", "k", "other"))

	res, err := store.Reserve(ctx, "t-1", "k", "fp", now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, ReservationPending, res.State)

	require.NoError(t, store.Release(ctx, "t-1", "k", "fp"))
	res, err = store.Reserve(ctx, "t-1", "k", "fp", now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, ReservationNew, res.State)
}

func TestFingerprintAndKey(t *testing.T) {
	a, err := Fingerprint("createOrder", map[string]string{"client": "c-1"})
	require.NoError(t, err)
	b, err := Fingerprint("registerPayment", map[string]string{"client": "c-1"})
	require.NoError(t, err)
	c, err := Fingerprint("createOrder", map[string]string{"client": "c-1"})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, c)

	_, err = NormalizeKey("   ")
	assert.ErrorIs(t, err, ErrInvalidKey)
	k, err := NormalizeKey(" abc ")
	require.NoError(t, err)
	assert.Equal(t, "abc", k)
}
