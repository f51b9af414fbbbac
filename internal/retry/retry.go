// Package retry wraps a single network call in bounded, jittered
// exponential backoff.
//
// Only network operations go through this package — listing page fetches
// and the manifest upload. Local file I/O is never retried. Errors whose
// kind marks them as caller mistakes (invalid input, not found, permission
// denied) short-circuit without further attempts.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/objstream/bucketfest/internal/errs"
	"github.com/objstream/bucketfest/internal/logger"
)

const (
	// DefaultInitialInterval is the first backoff delay.
	DefaultInitialInterval = 100 * time.Millisecond

	// DefaultMaxAttempts bounds the total number of tries, including the
	// first one.
	DefaultMaxAttempts = 3
)

// Policy configures the backoff schedule for one wrapped call.
type Policy struct {
	InitialInterval time.Duration
	MaxAttempts     int
}

// DefaultPolicy returns the schedule used for all network calls: three
// attempts, exponential backoff from 100ms with the backoff library's
// default jitter.
func DefaultPolicy() Policy {
	return Policy{
		InitialInterval: DefaultInitialInterval,
		MaxAttempts:     DefaultMaxAttempts,
	}
}

// Do runs fn under p's schedule, logging each failed attempt through log
// with the operation name op. It returns nil on the first success, the
// original error once attempts are exhausted or when the error is
// permanent, and ctx.Err() when the context ends between attempts.
func Do(ctx context.Context, log *logger.Logger, op string, p Policy, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0 // bounded by attempt count, not wall time

	maxRetries := uint64(0)
	if p.MaxAttempts > 1 {
		maxRetries = uint64(p.MaxAttempts - 1)
	}

	attempt := 0
	operation := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if permanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		log.WarnErr("operation failed, retrying", err, map[string]interface{}{
			"op":      op,
			"attempt": attempt,
			"backoff": next.String(),
		})
	}

	return backoff.RetryNotify(operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx),
		notify)
}

// permanent reports whether err should never be retried.
func permanent(err error) bool {
	switch errs.KindOf(err) {
	case errs.ErrKindInvalidInput, errs.ErrKindNotFound, errs.ErrKindPermissionDenied:
		return true
	}
	return false
}
