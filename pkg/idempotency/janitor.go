package idempotency

import (
	"context"
	"time"

	"github.com/hugohenrick/arte-ideas/pkg/logger"
)

// RunJanitor removes expired records every interval until ctx is done
func RunJanitor(ctx context.Context, store Store, interval time.Duration, log logger.Logger) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := store.CleanupExpired(ctx, now, 500)
			if err != nil {
				log.Warn("idempotency cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				log.Debug("idempotency records expired", "removed", removed)
			}
		}
	}
}
