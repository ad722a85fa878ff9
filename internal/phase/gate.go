package phase

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Transition describes a change of the active phase.
type Transition struct {
	From, To Phase
	// Drained is the number of operations of From the switch waited for.
	Drained int64
}

// Gate admits operations into phases. The zero value is not usable; create
// one with NewGate.
type Gate struct {
	lock    *semaphore.Weighted
	drained *barrier

	// Guarded by lock.
	active   Phase
	admitted int64

	inFlight atomic.Int64
	onSwitch func(Transition)
}

// NewGate returns a gate in the Read phase with nothing admitted. If
// onSwitch is not nil it is called, with the gate lock held, after every
// phase change.
func NewGate(onSwitch func(Transition)) *Gate {
	return &Gate{
		lock:     semaphore.NewWeighted(1),
		drained:  newBarrier(),
		active:   Read,
		onSwitch: onSwitch,
	}
}

// Enter admits the caller into phase p, waiting for the active phase to
// drain if it differs. On success the caller must call Leave exactly once.
// On error the caller was not admitted and must not call Leave.
func (g *Gate) Enter(ctx context.Context, p Phase) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := g.lock.Acquire(ctx, 1); err != nil {
		return err
	}
	// The lock stays held while draining so that later arrivals of the
	// outgoing phase queue behind this switch.
	defer g.lock.Release(1)

	if g.active == p {
		g.admitted++
		g.inFlight.Add(1)
		return nil
	}

	if err := g.drained.wait(ctx, g.admitted); err != nil {
		return err
	}

	t := Transition{From: g.active, To: p, Drained: g.admitted}
	g.active = p
	g.admitted = 1
	g.inFlight.Add(1)
	if g.onSwitch != nil {
		g.onSwitch(t)
	}
	return nil
}

// Leave reports that an admitted operation has finished.
func (g *Gate) Leave() {
	g.inFlight.Add(-1)
	g.drained.signal()
}

// InFlight returns the number of admitted operations that have not left.
func (g *Gate) InFlight() int64 {
	return g.inFlight.Load()
}

// Active returns the current phase. It waits for the gate lock, so it
// blocks while a switch is draining.
func (g *Gate) Active(ctx context.Context) (Phase, error) {
	if err := g.lock.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer g.lock.Release(1)
	return g.active, nil
}
