package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleRunReturnsJobError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	err := NewInterval(0).Run(context.Background(), func(context.Context, time.Time) error { return boom }, nil)
	assert.ErrorIs(t, err, boom)
}

func TestIntervalRepeatsUntilCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var runs, failures int32
	job := func(context.Context, time.Time) error {
		if atomic.AddInt32(&runs, 1) >= 3 {
			cancel()
		}
		return errors.New("transient")
	}

	done := make(chan error, 1)
	go func() {
		done <- NewInterval(5*time.Millisecond).Run(ctx, job, func(error) { atomic.AddInt32(&failures, 1) })
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.GreaterOrEqual(t, atomic.LoadInt32(&runs), int32(3))
	assert.Equal(t, atomic.LoadInt32(&runs), atomic.LoadInt32(&failures))
}
