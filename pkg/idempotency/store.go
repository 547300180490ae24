// Package idempotency deduplicates retried writes. A client-supplied key is
// reserved per tenant before the write runs and the produced response is
// stored for replay until the record expires.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTTL is how long completed records are replayed
const DefaultTTL = 24 * time.Hour

// MaxKeyLength bounds client-supplied keys
const MaxKeyLength = 255

// Status is the lifecycle state of a record
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ReservationState is the outcome of Reserve
type ReservationState int

const (
	// ReservationNew means the caller owns the key and must run the write
	ReservationNew ReservationState = iota
	// ReservationCompleted means a stored response must be replayed
	ReservationCompleted
	// ReservationPending means another request is still running the write
	ReservationPending
)

// Record is the stored state of one key
type Record struct {
	ID          string
	TenantID    string
	Key         string
	Fingerprint string
	Status      Status
	Response    []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ExpiresAt   time.Time
}

// Reservation couples the state with the record found or created
type Reservation struct {
	State  ReservationState
	Record Record
}

var (
	// ErrFingerprintMismatch is returned when a key is reused for a different request
	ErrFingerprintMismatch = errors.New("idempotency: key already used for a different request")
	// ErrInvalidKey is returned for empty or oversized keys
	ErrInvalidKey = errors.New("idempotency: invalid key")
)

// Store persists reservations and responses
type Store interface {
	Reserve(ctx context.Context, tenantID, key, fingerprint string, now time.Time, ttl time.Duration) (Reservation, error)
	Complete(ctx context.Context, tenantID, key, fingerprint string, response []byte, now time.Time, ttl time.Duration) error
	Release(ctx context.Context, tenantID, key, fingerprint string) error
	CleanupExpired(ctx context.Context, now time.Time, limit int) (int, error)
}

// NormalizeKey trims the key and validates its length
func NormalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || len(key) > MaxKeyLength {
		return "", ErrInvalidKey
	}
	return key, nil
}

// Fingerprint hashes the operation name together with the JSON form of the
// command so that a key reused for another payload is detected.
func Fingerprint(operation string, command any) (string, error) {
	payload, err := json.Marshal(command)
	if err != nil {
		return "", fmt.Errorf("idempotency: failed to encode command: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(operation))
	h.Write([]byte{0})
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func recordID(tenantID, key string) string {
	return tenantID + "\x00" + key
}
