/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package collector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/sabouaram/hecclient/cancel"
	"github.com/sabouaram/hecclient/logging"
)

// dispatchFlush swaps out the queue and dispatches its contents, if any, as
// a new flush. Safe to call from the idle timer or from Flush.
func (c *Client) dispatchFlush() {
	c.mu.Lock()
	c.dispatchFlushLocked()
	c.mu.Unlock()
}

// dispatchFlushLocked implements flushInternal: cancel/clear the idle
// timer, swap the queue out, and hand the batch to a new flush. Must be
// called with c.mu held; never blocks on network I/O.
func (c *Client) dispatchFlushLocked() {
	if c.idleArmed {
		c.idleTimer.Stop()
		c.idleArmed = false
	}

	if len(c.q.messages) == 0 {
		return
	}

	batch := c.q.messages
	c.q = queue{}

	c.startFlush(batch)
}

// startFlush registers a flush handle in the active-flush set and starts
// the send in the background under the client's cancellation group, so
// shutdown(maxTime) can cancel it if it is still alive when maxTime elapses.
func (c *Client) startFlush(batch []message) {
	id := uuid.NewString()
	f := &flush{done: make(chan struct{})}
	c.activeFlushes.store(id, f)

	go func() {
		defer func() {
			close(f.done)
			c.activeFlushes.delete(id)
		}()

		f.err = c.cancelGroup.Run(context.Background(), func(ctx context.Context) error {
			return c.sendToHec(ctx, batch)
		})
	}()
}

// Flush triggers an immediate flush of whatever is currently queued, then
// waits for that flush and every flush already in flight to settle. It does
// not block concurrent pushes, which may start new flushes while Flush is
// waiting; those are not awaited.
func (c *Client) Flush() error {
	c.dispatchFlush()

	handles := c.activeFlushes.snapshot()

	var result *multierror.Error
	for _, f := range handles {
		<-f.done
		if f.err != nil {
			result = multierror.Append(result, f.err)
		}
	}

	return result.ErrorOrNil()
}

// activeFlushCount reports how many flushes are currently unresolved,
// mainly for FlushStats and tests.
func (c *Client) activeFlushCount() int {
	return c.activeFlushes.count()
}

// Shutdown flips the client inactive, so every subsequent push fails with
// ShutdownError. A positive maxTime races a single Flush against a sleep of
// maxTime, giving outstanding flushes a chance to settle; a zero maxTime
// cancels everything still outstanding immediately, without waiting.
// Either way, whatever is still in flight once the race (or the immediate
// path) resolves is cancelled — its serialized bytes are lost, by design.
// Shutdown logs but never fails.
func (c *Client) Shutdown(maxTime time.Duration) {
	c.active.Store(false)

	c.mu.Lock()
	if c.idleArmed {
		c.idleTimer.Stop()
		c.idleArmed = false
	}
	c.mu.Unlock()

	if maxTime > 0 {
		ctx, cancelFn := context.WithTimeout(context.Background(), maxTime)
		_, _ = cancel.Race(ctx, func() (struct{}, error) {
			return struct{}{}, c.Flush()
		})
		cancelFn()
	}

	c.cancelGroup.CancelAll()

	c.logger.Entry().FieldAdd("activeFlushes", c.activeFlushCount()).Log(logging.InfoLevel, "client shut down")
}
