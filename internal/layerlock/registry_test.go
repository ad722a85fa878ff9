package layerlock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/SeamusWaldron/concurrentcube/internal/grid"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestOppositeFacesShareLock(t *testing.T) {
	r := New(4)
	for _, face := range grid.Faces {
		for layer := 0; layer < 4; layer++ {
			assert.Equal(t, r.For(face, layer), r.For(face.Opposite(), 3-layer),
				"%v layer %d", face, layer)
		}
	}

	s := r.For(grid.Top, 1)
	require.True(t, r.TryAcquire(s))
	assert.False(t, r.TryAcquire(r.For(grid.Bottom, 2)))
	r.Release(s)
	assert.True(t, r.TryAcquire(r.For(grid.Bottom, 2)))
}

func TestDistinctSlicesAreIndependent(t *testing.T) {
	r := New(3)
	ctx := context.Background()
	for axis := grid.Axis(0); axis < grid.NumAxes; axis++ {
		for depth := 0; depth < 3; depth++ {
			require.NoError(t, r.Acquire(ctx, Slice{Axis: axis, Depth: depth}))
		}
	}
	for axis := grid.Axis(0); axis < grid.NumAxes; axis++ {
		for depth := 0; depth < 3; depth++ {
			r.Release(Slice{Axis: axis, Depth: depth})
		}
	}
}

func TestAcquireBlocksUntilRelease(t *testing.T) {
	r := New(2)
	s := r.For(grid.Front, 0)
	ctx := context.Background()
	require.NoError(t, r.Acquire(ctx, s))

	done := make(chan error, 1)
	go func() { done <- r.Acquire(ctx, r.For(grid.Back, 1)) }()

	select {
	case <-done:
		t.Fatal("second Acquire of the same slice returned while held")
	case <-time.After(50 * time.Millisecond):
	}

	r.Release(s)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire did not return after Release")
	}
	r.Release(s)
}

func TestCancelledAcquireHoldsNothing(t *testing.T) {
	r := New(3)
	s := r.For(grid.Left, 1)
	require.NoError(t, r.Acquire(context.Background(), s))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, r.Acquire(ctx, s), context.DeadlineExceeded)

	r.Release(s)
	assert.True(t, r.TryAcquire(s), "lock leaked by cancelled waiter")
	r.Release(s)
}

func TestWaitersServedInOrder(t *testing.T) {
	r := New(1)
	s := r.For(grid.Top, 0)
	ctx := context.Background()
	require.NoError(t, r.Acquire(ctx, s))

	order := make(chan int, 3)
	for i := 0; i < 3; i++ {
		i := i
		go func() {
			if err := r.Acquire(ctx, s); err == nil {
				order <- i
				r.Release(s)
			}
		}()
		// Let each waiter queue before starting the next.
		time.Sleep(20 * time.Millisecond)
	}

	r.Release(s)
	for want := 0; want < 3; want++ {
		select {
		case got := <-order:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatal("waiter not served")
		}
	}
}

func TestSliceString(t *testing.T) {
	r := New(3)
	assert.Equal(t, "left-right/2", r.For(grid.Right, 0).String())
}
