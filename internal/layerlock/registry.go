// Package layerlock provides one mutual-exclusion lock per physical layer of
// each rotation axis.
package layerlock

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/SeamusWaldron/concurrentcube/internal/grid"
)

// Registry holds size locks per axis. Waiters are served in arrival order.
type Registry struct {
	size  int
	locks [grid.NumAxes][]*semaphore.Weighted
}

// New creates a registry for a cube of the given size.
func New(size int) *Registry {
	r := &Registry{size: size}
	for axis := range r.locks {
		r.locks[axis] = make([]*semaphore.Weighted, size)
		for depth := 0; depth < size; depth++ {
			r.locks[axis][depth] = semaphore.NewWeighted(1)
		}
	}
	return r
}

// Slice names one physical layer.
type Slice struct {
	Axis  grid.Axis
	Depth int
}

// For returns the physical slice a face-relative layer refers to.
func (r *Registry) For(face grid.Face, layer int) Slice {
	return Slice{Axis: face.Axis(), Depth: grid.Depth(face, layer, r.size)}
}

func (s Slice) String() string {
	return fmt.Sprintf("%v/%d", s.Axis, s.Depth)
}

// Acquire blocks until the slice lock is held or ctx is done. On error the
// lock is not held and must not be released.
func (r *Registry) Acquire(ctx context.Context, s Slice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.locks[s.Axis][s.Depth].Acquire(ctx, 1)
}

// TryAcquire takes the slice lock only if it is free.
func (r *Registry) TryAcquire(s Slice) bool {
	return r.locks[s.Axis][s.Depth].TryAcquire(1)
}

// Release gives up a lock obtained by Acquire or TryAcquire.
func (r *Registry) Release(s Slice) {
	r.locks[s.Axis][s.Depth].Release(1)
}
