package classify

import (
	"context"
	"time"
)

type pollState int

const (
	pollAgain pollState = iota
	pollDone
	pollFailed
)

// waitFor runs step up to attempts times, sleeping interval between tries,
// until step reports a terminal state. The whole wait is synchronous; the
// attempt budget is the only way out of a stuck remote job.
func waitFor(ctx context.Context, attempts int, interval time.Duration, step func(context.Context) pollState) pollState {
	for i := 0; i < attempts; i++ {
		st := step(ctx)
		if st != pollAgain {
			return st
		}

		select {
		case <-ctx.Done():
			return pollFailed
		case <-time.After(interval):
		}
	}
	return pollFailed
}
