package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hugohenrick/arte-ideas/pkg/idempotency"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
)

// IdempotencyStore implements idempotency.Store on the idempotency_keys table
type IdempotencyStore struct {
	db DBTX
}

// NewIdempotencyStore creates an IdempotencyStore
func NewIdempotencyStore(db DBTX) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

const idempotencyColumns = `id, tenant_id, key, fingerprint, status, response, created_at, updated_at, expires_at`

func scanRecord(row pgx.Row) (idempotency.Record, error) {
	var rec idempotency.Record
	err := row.Scan(&rec.ID, &rec.TenantID, &rec.Key, &rec.Fingerprint, &rec.Status,
		&rec.Response, &rec.CreatedAt, &rec.UpdatedAt, &rec.ExpiresAt)
	return rec, err
}

// Reserve implements idempotency.Store. An expired record is taken over by
// the new request.
func (s *IdempotencyStore) Reserve(ctx context.Context, tenantID, key, fingerprint string, now time.Time, ttl time.Duration) (idempotency.Reservation, error) {
	now = now.UTC()
	if ttl <= 0 {
		ttl = idempotency.DefaultTTL
	}

	rec, err := scanRecord(s.db.QueryRow(ctx,
		`INSERT INTO idempotency_keys (`+idempotencyColumns+`)
		VALUES ($1, $2, $3, $4, $5, NULL, $6, $6, $7)
		ON CONFLICT (tenant_id, key) DO UPDATE SET
			id = EXCLUDED.id, fingerprint = EXCLUDED.fingerprint, status = EXCLUDED.status,
			response = NULL, created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at,
			expires_at = EXCLUDED.expires_at
		WHERE idempotency_keys.expires_at <= $6
		RETURNING `+idempotencyColumns,
		ulid.Make().String(), tenantID, key, fingerprint, idempotency.StatusPending, now, now.Add(ttl)))
	if err == nil {
		return idempotency.Reservation{State: idempotency.ReservationNew, Record: rec}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return idempotency.Reservation{}, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}

	// the key is live: report what is stored
	rec, err = scanRecord(s.db.QueryRow(ctx,
		`SELECT `+idempotencyColumns+` FROM idempotency_keys WHERE tenant_id = $1 AND key = $2`, tenantID, key))
	if err != nil {
		return idempotency.Reservation{}, fmt.Errorf("failed to load idempotency key: %w", err)
	}
	if rec.Fingerprint != fingerprint {
		return idempotency.Reservation{}, idempotency.ErrFingerprintMismatch
	}
	if rec.Status == idempotency.StatusCompleted {
		return idempotency.Reservation{State: idempotency.ReservationCompleted, Record: rec}, nil
	}
	return idempotency.Reservation{State: idempotency.ReservationPending, Record: rec}, nil
}

// Complete implements idempotency.Store
func (s *IdempotencyStore) Complete(ctx context.Context, tenantID, key, fingerprint string, response []byte, now time.Time, ttl time.Duration) error {
	now = now.UTC()
	if ttl <= 0 {
		ttl = idempotency.DefaultTTL
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE idempotency_keys SET status = $4, response = $5, updated_at = $6, expires_at = $7
		WHERE tenant_id = $1 AND key = $2 AND fingerprint = $3`,
		tenantID, key, fingerprint, idempotency.StatusCompleted, response, now, now.Add(ttl))
	if err != nil {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return idempotency.ErrFingerprintMismatch
	}
	return nil
}

// Release implements idempotency.Store
func (s *IdempotencyStore) Release(ctx context.Context, tenantID, key, fingerprint string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM idempotency_keys WHERE tenant_id = $1 AND key = $2 AND fingerprint = $3 AND status = $4`,
		tenantID, key, fingerprint, idempotency.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// CleanupExpired implements idempotency.Store
func (s *IdempotencyStore) CleanupExpired(ctx context.Context, now time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = 1000
	}
	tag, err := s.db.Exec(ctx,
		`DELETE FROM idempotency_keys WHERE id IN (
			SELECT id FROM idempotency_keys WHERE expires_at <= $1 LIMIT $2
		)`, now.UTC(), limit)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up idempotency keys: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

var _ idempotency.Store = (*IdempotencyStore)(nil)
