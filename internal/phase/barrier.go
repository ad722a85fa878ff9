package phase

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// barrierCapacity bounds the number of unconsumed completion signals.
const barrierCapacity = 1 << 62

// barrier counts completion signals. Waiting for n signals consumes them.
// It is a counting semaphore that starts with zero permits.
type barrier struct {
	sem *semaphore.Weighted
}

func newBarrier() *barrier {
	sem := semaphore.NewWeighted(barrierCapacity)
	sem.TryAcquire(barrierCapacity)
	return &barrier{sem: sem}
}

// signal makes one more completion available.
func (b *barrier) signal() {
	b.sem.Release(1)
}

// wait blocks until n signals are available and consumes them. It consumes
// nothing if ctx is done first.
func (b *barrier) wait(ctx context.Context, n int64) error {
	if n == 0 {
		return nil
	}
	return b.sem.Acquire(ctx, n)
}
