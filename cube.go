package concurrentcube

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SeamusWaldron/concurrentcube/internal/grid"
	"github.com/SeamusWaldron/concurrentcube/internal/layerlock"
	"github.com/SeamusWaldron/concurrentcube/internal/phase"
)

// Face identifies a cube face. Faces double as colors: a solved face f shows
// color f everywhere.
type Face = grid.Face

const (
	Top    = grid.Top
	Left   = grid.Left
	Front  = grid.Front
	Right  = grid.Right
	Back   = grid.Back
	Bottom = grid.Bottom
)

// Faces lists every face in snapshot order.
var Faces = grid.Faces

// Color is the color of one cell.
type Color = grid.Color

// Snapshot is an immutable copy of the cube taken by Show.
// Its String form has one digit per cell, face by face in Faces order, each
// face row by row.
type Snapshot = grid.Snapshot

// ParseSnapshot decodes the String form of a snapshot of a size-n cube.
func ParseSnapshot(s string, n int) (Snapshot, bool) {
	return grid.ParseSnapshot(s, n)
}

// Cube is an N×N×N cube safe for concurrent use.
type Cube struct {
	id      string
	size    int
	grid    *grid.Grid
	gate    *phase.Gate
	layers  *layerlock.Registry
	hooks   Hooks
	logger  *zap.Logger
	metrics *metrics
}

// New creates a solved cube of the given size.
func New(size int, opts ...Option) (*Cube, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	c := &Cube{
		id:     uuid.NewString(),
		size:   size,
		grid:   grid.New(size),
		layers: layerlock.New(size),
		hooks:  cfg.hooks,
	}
	c.logger = cfg.logger.With(zap.String("cube", c.id), zap.Int("size", size))

	if cfg.registerer != nil {
		m, err := newMetrics(cfg.registerer, c.id)
		if err != nil {
			return nil, err
		}
		c.metrics = m
	}

	c.gate = phase.NewGate(c.onSwitch)
	return c, nil
}

// ID returns the unique identifier of this cube, used in logs and metrics.
func (c *Cube) ID() string {
	return c.id
}

// Size returns the number of cells along an edge.
func (c *Cube) Size() int {
	return c.size
}

func (c *Cube) onSwitch(t phase.Transition) {
	c.metrics.switched(t.To)
	c.logger.Debug("phase switch",
		zap.Stringer("from", t.From),
		zap.Stringer("to", t.To),
		zap.Int64("drained", t.Drained))
}

// operation records which shared resources a call currently holds, so that
// release gives back exactly those.
type operation struct {
	cube     *Cube
	slice    layerlock.Slice
	admitted bool
	locked   bool
}

func (op *operation) enter(ctx context.Context, p phase.Phase) error {
	if err := op.cube.gate.Enter(ctx, p); err != nil {
		return err
	}
	op.admitted = true
	op.cube.metrics.entered()
	return nil
}

func (op *operation) lock(ctx context.Context, s layerlock.Slice) error {
	if err := op.cube.layers.Acquire(ctx, s); err != nil {
		return err
	}
	op.slice = s
	op.locked = true
	return nil
}

func (op *operation) release() {
	if op.locked {
		op.cube.layers.Release(op.slice)
		op.locked = false
	}
	if op.admitted {
		op.cube.metrics.left()
		op.cube.gate.Leave()
		op.admitted = false
	}
}

// Rotate turns a layer of the cube a quarter turn clockwise as seen from
// face. Layer 0 is the layer adjacent to face.
//
// Rotate blocks while operations of another phase are active and while
// another rotation holds the same slice. If ctx is done before the
// before-rotation hook has returned, or the hook returns an error, the cube
// is left unchanged and the error wraps ErrOperationCancelled. If ctx is done
// after the hook returned, the rotation is skipped, the after-rotation hook
// still runs, and ErrOperationCancelled is returned.
func (c *Cube) Rotate(ctx context.Context, face Face, layer int) error {
	if !face.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidFace, int(face))
	}
	if layer < 0 || layer >= c.size {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidLayer, layer, c.size)
	}

	op := &operation{cube: c}
	defer op.release()

	if err := op.enter(ctx, phase.ForFace(face)); err != nil {
		return c.cancelled(stageAdmission, err, zap.Stringer("face", face), zap.Int("layer", layer))
	}
	if err := op.lock(ctx, c.layers.For(face, layer)); err != nil {
		return c.cancelled(stageLayerLock, err, zap.Stringer("face", face), zap.Int("layer", layer))
	}

	if fn := c.hooks.BeforeRotation; fn != nil {
		if err := fn(ctx, face, layer); err != nil {
			return c.cancelled(stageBeforeHook, err, zap.Stringer("face", face), zap.Int("layer", layer))
		}
	}

	// Committed: the after hook must pair with the before hook from here on.
	if err := ctx.Err(); err != nil {
		c.afterRotation(ctx, face, layer)
		return c.cancelled(stageCommitted, err, zap.Stringer("face", face), zap.Int("layer", layer))
	}

	c.grid.RotateLayer(face, layer)
	c.afterRotation(ctx, face, layer)
	c.metrics.rotated(face)
	return nil
}

func (c *Cube) afterRotation(ctx context.Context, face Face, layer int) {
	if fn := c.hooks.AfterRotation; fn != nil {
		fn(ctx, face, layer)
	}
}

// Show returns a snapshot of the whole cube. It waits until no rotation is
// in progress; concurrent Show calls run together. Cancellation follows the
// same rules as Rotate.
func (c *Cube) Show(ctx context.Context) (Snapshot, error) {
	op := &operation{cube: c}
	defer op.release()

	if err := op.enter(ctx, phase.Read); err != nil {
		return Snapshot{}, c.cancelled(stageAdmission, err)
	}

	if fn := c.hooks.BeforeShowing; fn != nil {
		if err := fn(ctx); err != nil {
			return Snapshot{}, c.cancelled(stageBeforeHook, err)
		}
	}

	if err := ctx.Err(); err != nil {
		c.afterShowing(ctx)
		return Snapshot{}, c.cancelled(stageCommitted, err)
	}

	snap := c.grid.Snapshot()
	c.afterShowing(ctx)
	c.metrics.showed()
	return snap, nil
}

func (c *Cube) afterShowing(ctx context.Context) {
	if fn := c.hooks.AfterShowing; fn != nil {
		fn(ctx)
	}
}

// cancelled logs and counts a cancelled operation and wraps its cause.
func (c *Cube) cancelled(stage string, cause error, fields ...zap.Field) error {
	c.metrics.cancelled(stage)
	c.logger.Debug("operation cancelled",
		append(fields, zap.String("stage", stage), zap.Error(cause))...)
	return fmt.Errorf("%w at %s: %w", ErrOperationCancelled, stage, cause)
}
