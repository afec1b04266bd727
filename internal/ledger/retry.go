package ledger

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/walletfc/backend/internal/metrics"
)

// RetryPolicy bounds how often a unit of work is replayed after ErrConflict.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// Do runs fn, replaying it while it fails with a retryable error.
func (p RetryPolicy) Do(ctx context.Context, operation string, fn func() error) error {
	var err error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.LedgerConflictRetries.WithLabelValues(operation).Inc()
			timer := time.NewTimer(time.Duration(attempt) * p.Backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err = fn()
		if !IsRetryable(err) {
			return err
		}
		log.Printf("[LEDGER] %s conflict on attempt %d/%d: %v", operation, attempt+1, p.MaxRetries+1, err)
	}
	return fmt.Errorf("%s: retries exhausted: %w", operation, err)
}
