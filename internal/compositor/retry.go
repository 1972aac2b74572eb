package compositor

import (
	"context"
	"errors"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/util/retry"

	"github.com/lightbake/lbake/internal/output"
)

// Default retry settings.
const (
	DefaultMaxAttempts = 5
	DefaultRetryDelay  = 2 * time.Second
)

// RetryPolicy retries a unit of work a bounded number of times with a fixed
// delay while IsRetryable accepts the error.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	IsRetryable func(error) bool
}

// IsBusy reports whether err is ErrBusy.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

// DefaultRetryPolicy retries busy errors 5 times, 2 seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultRetryDelay,
		IsRetryable: IsBusy,
	}
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// attempts are used up. The last error is returned on exhaustion.
func (p RetryPolicy) Do(ctx context.Context, what string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := p.IsRetryable
	if retryable == nil {
		retryable = IsBusy
	}

	backoff := wait.Backoff{
		Steps:    attempts,
		Duration: p.Delay,
		Factor:   1.0,
	}

	// retry.OnError swaps any error matching a context error for the last
	// retryable one, which is nil when none came first. Report fn's own
	// error instead.
	var last error
	attempt := 0
	err := retry.OnError(backoff, retryable, func() error {
		if last = ctx.Err(); last != nil {
			return last
		}
		attempt++
		last = fn(ctx)
		if last != nil && retryable(last) && attempt < attempts {
			output.Warn("compositor busy, retrying", "operation", what, "attempt", attempt, "of", attempts)
		}
		return last
	})
	if last != nil {
		return last
	}
	return err
}
