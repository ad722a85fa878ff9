package phase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/SeamusWaldron/concurrentcube/internal/grid"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// enterAsync starts Enter in a goroutine and reports its result on the
// returned channel.
func enterAsync(ctx context.Context, g *Gate, p Phase) <-chan error {
	done := make(chan error, 1)
	go func() { done <- g.Enter(ctx, p) }()
	return done
}

func requireBlocked(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		t.Fatalf("Enter returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
}

func requireAdmitted(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Enter did not return")
	}
}

func TestForAxis(t *testing.T) {
	assert.Equal(t, TopBottom, ForFace(grid.Top))
	assert.Equal(t, TopBottom, ForFace(grid.Bottom))
	assert.Equal(t, FrontBack, ForFace(grid.Front))
	assert.Equal(t, FrontBack, ForFace(grid.Back))
	assert.Equal(t, LeftRight, ForFace(grid.Left))
	assert.Equal(t, LeftRight, ForFace(grid.Right))
	assert.Equal(t, "read", Read.String())
}

func TestGateStartsInRead(t *testing.T) {
	g := NewGate(nil)
	p, err := g.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Read, p)
	assert.Zero(t, g.InFlight())
}

func TestSamePhaseDoesNotBlock(t *testing.T) {
	g := NewGate(nil)
	ctx := context.Background()

	require.NoError(t, g.Enter(ctx, TopBottom))
	for i := 0; i < 10; i++ {
		requireAdmitted(t, enterAsync(ctx, g, TopBottom))
	}
	assert.EqualValues(t, 11, g.InFlight())

	for i := 0; i < 11; i++ {
		g.Leave()
	}
	assert.Zero(t, g.InFlight())
}

func TestSwitchWaitsForDrain(t *testing.T) {
	g := NewGate(nil)
	ctx := context.Background()

	require.NoError(t, g.Enter(ctx, FrontBack))
	require.NoError(t, g.Enter(ctx, FrontBack))

	done := enterAsync(ctx, g, Read)
	requireBlocked(t, done)

	g.Leave()
	requireBlocked(t, done)

	g.Leave()
	requireAdmitted(t, done)

	p, err := g.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, Read, p)
	assert.EqualValues(t, 1, g.InFlight())
	g.Leave()
}

func TestArrivalsQueueBehindSwitch(t *testing.T) {
	g := NewGate(nil)
	ctx := context.Background()

	require.NoError(t, g.Enter(ctx, LeftRight))
	sw := enterAsync(ctx, g, TopBottom)
	requireBlocked(t, sw)

	// A same-phase arrival must not overtake the pending switch.
	late := enterAsync(ctx, g, LeftRight)
	requireBlocked(t, late)

	g.Leave()
	requireAdmitted(t, sw)
	requireBlocked(t, late)

	g.Leave()
	requireAdmitted(t, late)
	g.Leave()
}

func TestCancelledSwitchKeepsBookkeeping(t *testing.T) {
	g := NewGate(nil)
	ctx := context.Background()

	require.NoError(t, g.Enter(ctx, TopBottom))

	cctx, cancel := context.WithCancel(ctx)
	done := enterAsync(cctx, g, Read)
	requireBlocked(t, done)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled Enter did not return")
	}
	assert.EqualValues(t, 1, g.InFlight())

	// The gate is still usable by the outgoing phase and by other switches.
	require.NoError(t, g.Enter(ctx, TopBottom))
	g.Leave()
	g.Leave()

	requireAdmitted(t, enterAsync(ctx, g, FrontBack))
	assert.EqualValues(t, 1, g.InFlight())
	g.Leave()
}

func TestCancelledBeforeEnter(t *testing.T) {
	g := NewGate(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, g.Enter(ctx, Read), context.Canceled)
	require.ErrorIs(t, g.Enter(ctx, LeftRight), context.Canceled)
	assert.Zero(t, g.InFlight())

	requireAdmitted(t, enterAsync(context.Background(), g, LeftRight))
	g.Leave()
}

func TestSwitchObserver(t *testing.T) {
	var mu sync.Mutex
	var got []Transition
	g := NewGate(func(tr Transition) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, tr)
	})
	ctx := context.Background()

	require.NoError(t, g.Enter(ctx, Read))
	require.NoError(t, g.Enter(ctx, Read))
	g.Leave()
	g.Leave()
	require.NoError(t, g.Enter(ctx, FrontBack))
	g.Leave()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, Transition{From: Read, To: FrontBack, Drained: 2}, got[0])
}

func TestPhasesNeverOverlap(t *testing.T) {
	g := NewGate(nil)
	var active [len(All)]atomic.Int64
	var violations atomic.Int64

	eg, ctx := errgroup.WithContext(context.Background())
	for w := 0; w < 16; w++ {
		w := w
		eg.Go(func() error {
			for i := 0; i < 200; i++ {
				p := All[(w+i)%len(All)]
				if err := g.Enter(ctx, p); err != nil {
					return err
				}
				active[p].Add(1)
				for _, other := range All {
					if other != p && active[other].Load() != 0 {
						violations.Add(1)
					}
				}
				if i%17 == 0 {
					time.Sleep(time.Microsecond)
				}
				active[p].Add(-1)
				g.Leave()
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())
	assert.Zero(t, violations.Load())
	assert.Zero(t, g.InFlight())
}

func TestSwitchNotStarvedBySamePhaseStream(t *testing.T) {
	g := NewGate(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				if err := g.Enter(ctx, TopBottom); err != nil {
					return
				}
				time.Sleep(100 * time.Microsecond)
				g.Leave()
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	done := enterAsync(context.Background(), g, Read)
	requireAdmitted(t, done)
	g.Leave()

	cancel()
	wg.Wait()
}
