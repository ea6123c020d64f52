package workers

import (
	"context"
	"math"
	"time"

	"github.com/valyala/fastrand"
)

// DelayFunc yields the pause a worker takes before each attempt.
type DelayFunc func() time.Duration

// RandomDelay draws delays uniformly from [0, max) in whole milliseconds.
func RandomDelay(max time.Duration) DelayFunc {
	steps := max / time.Millisecond
	if steps > math.MaxUint32 {
		steps = math.MaxUint32
	}
	bound := uint32(steps)
	return func() time.Duration {
		if bound == 0 {
			return 0
		}
		return time.Duration(fastrand.Uint32n(bound)) * time.Millisecond
	}
}

func FixedDelay(delay time.Duration) DelayFunc {
	return func() time.Duration {
		return delay
	}
}

// sleep waits for delay or until ctx ends, whichever comes first.
func sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
