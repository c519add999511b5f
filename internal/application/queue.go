package application

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/pocketcode/pocket-cli/internal/domain"
)

// queuedCall is a deferred operation captured while disconnected. It is run
// exactly once, in FIFO order, when connectivity returns, unless the caller
// gave up first.
type queuedCall struct {
	ctx       context.Context
	fn        func(context.Context) error
	done      chan error
	abandoned atomic.Bool
}

// execute runs fn immediately while connected, otherwise parks it on the
// offline queue; the caller blocks until the queued entry actually runs or
// its context is cancelled. While a drain is in progress new calls queue
// behind it, so drained entries always run before fresh ones.
func (c *Client) execute(ctx context.Context, fn func(context.Context) error) error {
	c.mu.Lock()
	if c.state.Status == domain.StatusConnected && !c.draining {
		c.mu.Unlock()
		return fn(ctx)
	}

	call := &queuedCall{ctx: ctx, fn: fn, done: make(chan error, 1)}
	c.queue = append(c.queue, call)
	queued := len(c.queue)
	c.mu.Unlock()

	c.logger.Debug("queued offline request", zap.Int("depth", queued))

	select {
	case err := <-call.done:
		return err
	case <-ctx.Done():
		call.abandoned.Store(true)
		return ctx.Err()
	}
}

// drainLoop flushes queued calls in arrival order. The caller must have set
// c.draining under the lock before spawning it. Each entry runs
// independently; one failure does not block the rest. The loop runs until
// the queue is empty or the connection drops, and calls arriving mid-drain
// keep queueing so ordering stays deterministic.
func (c *Client) drainLoop() {
	for {
		c.mu.Lock()
		if c.state.Status != domain.StatusConnected || len(c.queue) == 0 {
			c.draining = false
			c.mu.Unlock()
			return
		}
		batch := c.queue
		c.queue = nil
		c.mu.Unlock()

		c.logger.Debug("draining offline queue", zap.Int("count", len(batch)))

		for _, call := range batch {
			if call.abandoned.Load() {
				continue
			}
			if err := call.ctx.Err(); err != nil {
				call.done <- err
				continue
			}
			call.done <- call.fn(call.ctx)
		}
	}
}
