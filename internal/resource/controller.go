package resource

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// FrameRate is the target number of frames per second.
	// If 0, frames are not paced.
	FrameRate float64

	// MaxWorkers is the maximum number of concurrent query workers.
	// If 0, defaults to 1.
	MaxWorkers int64
}

// Controller manages frame pacing and query concurrency.
type Controller struct {
	cfg Config

	workers *semaphore.Weighted
	active  atomic.Int64

	frames  *rate.Limiter // nil if unpaced
	elapsed atomic.Uint64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	c := &Controller{
		cfg:     cfg,
		workers: semaphore.NewWeighted(cfg.MaxWorkers),
	}

	if cfg.FrameRate > 0 {
		// Burst of one frame: a slow frame is never followed by a catch-up burst.
		c.frames = rate.NewLimiter(rate.Limit(cfg.FrameRate), 1)
	}

	return c
}

// MaxWorkers returns the configured worker limit.
func (c *Controller) MaxWorkers() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxWorkers)
}

// FrameRate returns the configured frame rate (0 if unpaced).
func (c *Controller) FrameRate() float64 {
	if c == nil {
		return 0
	}
	return c.cfg.FrameRate
}

// AcquireWorker reserves a query worker slot.
// Blocks if all slots are busy.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.workers.Acquire(ctx, 1); err != nil {
		return err
	}
	c.active.Add(1)
	return nil
}

// TryAcquireWorker attempts to reserve a worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	if !c.workers.TryAcquire(1) {
		return false
	}
	c.active.Add(1)
	return true
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.active.Add(-1)
	c.workers.Release(1)
}

// ActiveWorkers returns the number of reserved worker slots.
func (c *Controller) ActiveWorkers() int64 {
	if c == nil {
		return 0
	}
	return c.active.Load()
}

// WaitFrame blocks until the next frame is due.
func (c *Controller) WaitFrame(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.frames != nil {
		if err := c.frames.Wait(ctx); err != nil {
			return err
		}
	}
	c.elapsed.Add(1)
	return nil
}

// TryFrame reports whether a frame is due now, consuming it if so.
func (c *Controller) TryFrame() bool {
	if c == nil {
		return true
	}
	if c.frames != nil && !c.frames.AllowN(time.Now(), 1) {
		return false
	}
	c.elapsed.Add(1)
	return true
}

// Frames returns the number of frames granted so far.
func (c *Controller) Frames() uint64 {
	if c == nil {
		return 0
	}
	return c.elapsed.Load()
}
