package prefs

import (
	"context"
	"time"

	"github.com/matzehuels/gridboard/pkg/config"
	errs "github.com/matzehuels/gridboard/pkg/errors"
)

// Retry executes fn up to attempts times with exponential backoff. Only
// backend failures (STORE_ERROR) are retried; any other error is returned
// immediately. The delay doubles after each failed attempt. It returns the
// last error if all attempts fail, or ctx.Err() if cancelled.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !errs.Is(err, errs.ErrCodeStore) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// OpenWithRetry is [Open] for backends that may still be starting: it
// retries connection failures 5 times, starting with a 500ms delay.
func OpenWithRetry(ctx context.Context, cfg config.Store) (Store, error) {
	var s Store
	err := Retry(ctx, 5, 500*time.Millisecond, func() error {
		var err error
		s, err = Open(ctx, cfg)
		return err
	})
	return s, err
}
