package concurrentcube

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Hooks are called on the calling goroutine around each operation. Any of
// them may be nil. Hooks may block; they should return promptly once ctx is
// done.
type Hooks struct {
	// BeforeRotation runs once the layer is locked. Returning an error
	// aborts the rotation: the cube is not changed and AfterRotation is not
	// called.
	BeforeRotation func(ctx context.Context, face Face, layer int) error
	// AfterRotation runs after every BeforeRotation that returned nil.
	AfterRotation func(ctx context.Context, face Face, layer int)

	// BeforeShowing and AfterShowing follow the same rules for Show.
	BeforeShowing func(ctx context.Context) error
	AfterShowing  func(ctx context.Context)
}

// Option configures a Cube.
type Option func(*config)

type config struct {
	hooks      Hooks
	logger     *zap.Logger
	registerer prometheus.Registerer
}

func defaultConfig() *config {
	return &config{
		logger: zap.NewNop(),
	}
}

// WithHooks replaces all four hooks.
func WithHooks(h Hooks) Option {
	return func(c *config) {
		c.hooks = h
	}
}

// WithBeforeRotation sets the hook run before each rotation.
func WithBeforeRotation(fn func(ctx context.Context, face Face, layer int) error) Option {
	return func(c *config) {
		c.hooks.BeforeRotation = fn
	}
}

// WithAfterRotation sets the hook run after each rotation.
func WithAfterRotation(fn func(ctx context.Context, face Face, layer int)) Option {
	return func(c *config) {
		c.hooks.AfterRotation = fn
	}
}

// WithBeforeShowing sets the hook run before each Show.
func WithBeforeShowing(fn func(ctx context.Context) error) Option {
	return func(c *config) {
		c.hooks.BeforeShowing = fn
	}
}

// WithAfterShowing sets the hook run after each Show.
func WithAfterShowing(fn func(ctx context.Context)) Option {
	return func(c *config) {
		c.hooks.AfterShowing = fn
	}
}

// WithLogger sets the logger used for phase switches and cancellations.
// A nil logger disables logging, which is also the default.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	}
}

// WithMetrics registers the cube's Prometheus collectors with reg.
// Collectors carry a "cube" label holding the cube ID, so several cubes can
// share one registry.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registerer = reg
	}
}
