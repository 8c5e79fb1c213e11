package checker

import (
    "context"
    "time"
)

// Clock abstracts waiting so the retry loop can run on a virtual clock.
type Clock interface {
    // Sleep waits for d or until ctx is done, returning ctx.Err() in the
    // latter case.
    Sleep(ctx context.Context, d time.Duration) error
}

// RealClock waits on wall-clock timers.
type RealClock struct{}

func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return ctx.Err()
    case <-t.C:
        return nil
    }
}
