package orders

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/hugohenrick/arte-ideas/pkg/idempotency"
)

// idempotent runs fn, which returns the id of the order it changed, at most
// once per (tenant, key) within the TTL. The first call stores the order as
// it was right after the change; a retry with the same payload gets that
// stored response redacted for the retrying caller.
func (s *Service) idempotent(ctx context.Context, scope *access.Scope, key, operation string, command any, fn func() (string, error)) (*OrderDTO, error) {
	if key == "" || s.idem == nil {
		id, err := fn()
		if err != nil {
			return nil, err
		}
		return s.orderView(ctx, scope, id)
	}

	key, err := idempotency.NormalizeKey(key)
	if err != nil {
		return nil, apperror.Validation(map[string]string{"idempotency_key": "must be 1 to 255 characters"})
	}
	fingerprint, err := idempotency.Fingerprint(operation, command)
	if err != nil {
		return nil, err
	}

	tenantID := scope.TenantID()
	res, err := s.idem.Reserve(ctx, tenantID, key, fingerprint, s.now(), s.opts.IdempotencyTTL)
	if err != nil {
		if errors.Is(err, idempotency.ErrFingerprintMismatch) {
			return nil, apperror.Conflict("idempotency key was already used with a different payload")
		}
		return nil, err
	}

	switch res.State {
	case idempotency.ReservationCompleted:
		var stored OrderDTO
		if err := json.Unmarshal(res.Record.Response, &stored); err != nil {
			return nil, err
		}
		s.log.Debug("idempotent replay", "operation", operation, "tenant_id", tenantID, "key", key)
		if stored.OrderNumber == "" {
			// only the id was kept
			return s.orderView(ctx, scope, stored.ID)
		}
		out := stored.redact(s.policy.VisibilityFor(scope))
		return &out, nil
	case idempotency.ReservationPending:
		return nil, apperror.Conflict("a request with the same idempotency key is still in progress")
	}

	id, err := fn()
	if err != nil {
		if relErr := s.idem.Release(context.WithoutCancel(ctx), tenantID, key, fingerprint); relErr != nil {
			s.log.Warn("failed to release idempotency key", "key", key, "error", relErr)
		}
		return nil, err
	}

	// the change is committed, so the key is completed even when the
	// snapshot cannot be read back
	var record any = OrderDTO{ID: id}
	snapshot, viewErr := s.render(ctx, scope, id, fullVisibility)
	if viewErr == nil {
		record = snapshot
	}
	payload, err := json.Marshal(record)
	if err == nil {
		err = s.idem.Complete(context.WithoutCancel(ctx), tenantID, key, fingerprint, payload, s.now(), s.opts.IdempotencyTTL)
	}
	if err != nil {
		s.log.Warn("failed to store idempotent response", "key", key, "error", err)
	}
	if viewErr != nil {
		return nil, viewErr
	}
	out := snapshot.redact(s.policy.VisibilityFor(scope))
	return &out, nil
}
