package llm

import (
	"context"
	"time"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
)

// rpsLimiter is a token bucket that allows at most rps calls per second
// with an initial burst.
type rpsLimiter struct {
	tokens chan struct{}
	stopCh chan struct{}
}

// newRPSLimiter returns nil when rps <= 0, which disables limiting.
func newRPSLimiter(rps float64, burst int) *rpsLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}

	l := &rpsLimiter{
		tokens: make(chan struct{}, burst),
		stopCh: make(chan struct{}),
	}
	for i := 0; i < burst; i++ {
		l.tokens <- struct{}{}
	}

	period := time.Duration(float64(time.Second) / rps)
	if period <= 0 {
		period = time.Millisecond
	}
	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case l.tokens <- struct{}{}:
				default:
				}
			case <-l.stopCh:
				return
			}
		}
	}()

	return l
}

// Acquire blocks until a token is available or ctx is done.
func (l *rpsLimiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopCh:
		return context.Canceled
	case <-l.tokens:
		return nil
	}
}

// Stop terminates the refill goroutine.
func (l *rpsLimiter) Stop() {
	if l == nil {
		return
	}
	close(l.stopCh)
}

// LimitedOracle throttles calls to the wrapped oracle.
type LimitedOracle struct {
	next ports.Oracle
	rl   *rpsLimiter
}

var _ ports.Oracle = (*LimitedOracle)(nil)

// RateLimited wraps next with a token bucket. With rps <= 0 calls pass through.
func RateLimited(next ports.Oracle, rps float64, burst int) *LimitedOracle {
	return &LimitedOracle{next: next, rl: newRPSLimiter(rps, burst)}
}

func (o *LimitedOracle) Complete(ctx context.Context, prompt string) (string, error) {
	if err := o.rl.Acquire(ctx); err != nil {
		return "", err
	}
	return o.next.Complete(ctx, prompt)
}

// Close stops the limiter.
func (o *LimitedOracle) Close() error {
	o.rl.Stop()
	return nil
}
