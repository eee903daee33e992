package llm

import (
	"context"
	"errors"
	"time"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
)

// RetryingOracle retries transient oracle failures with exponential backoff.
type RetryingOracle struct {
	next ports.Oracle
	max  int
	base time.Duration
}

var _ ports.Oracle = (*RetryingOracle)(nil)

// Retrying makes up to attempts calls, waiting base, 2*base, 4*base... between them.
func Retrying(next ports.Oracle, attempts int, base time.Duration) *RetryingOracle {
	if attempts < 1 {
		attempts = 1
	}
	if base <= 0 {
		base = 300 * time.Millisecond
	}
	return &RetryingOracle{next: next, max: attempts, base: base}
}

func (r *RetryingOracle) Complete(ctx context.Context, prompt string) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		out, err := r.next.Complete(ctx, prompt)
		if err == nil {
			return out, nil
		}
		last = err
		if ctx.Err() != nil {
			return "", err
		}
		if !retryable(err) || i == r.max-1 {
			break
		}

		timer := time.NewTimer(r.base * time.Duration(1<<i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return "", last
}

func retryable(err error) bool {
	return errors.Is(err, domain.ErrOracleRateLimited) || errors.Is(err, domain.ErrOracleUnavailable)
}

// Close forwards to the wrapped oracle when it holds resources.
func (r *RetryingOracle) Close() error {
	if c, ok := r.next.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
