// Package concurrentcube provides an N×N×N cube puzzle that many goroutines
// can rotate and inspect at the same time.
//
// # Guarantees
//
// Every result is equivalent to some sequential ordering of the calls that
// produced it:
//
//   - Rotations about the same axis run in parallel, one per physical layer.
//   - Rotations about different axes never overlap.
//   - Show never overlaps a rotation, but any number of Show calls may run
//     together.
//
// Callers asking for a different axis (or for Show) while others are active
// wait their turn in arrival order, so no caller is starved by a steady
// stream of work on the active axis.
//
// # Quick Start
//
//	cube, err := concurrentcube.New(3,
//	    concurrentcube.WithBeforeRotation(func(ctx context.Context, f concurrentcube.Face, layer int) error {
//	        fmt.Println("rotating", f, layer)
//	        return nil
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := cube.Rotate(ctx, concurrentcube.Top, 1); err != nil {
//	    log.Fatal(err)
//	}
//
//	snap, err := cube.Show(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(snap) // 54 digits, one per cell
//
// # Cancellation
//
// Every blocking call takes a context. A call whose context is done while it
// waits, or while its before-hook runs, fails with ErrOperationCancelled and
// leaves the cube untouched. Cancelled calls never block other callers.
//
// # Layers
//
// Layer 0 is the layer touching the named face. Rotate(Top, 0) and
// Rotate(Bottom, N-1) turn the same slice in opposite directions and
// contend for the same lock.
package concurrentcube
