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
	"github.com/sabouaram/hecclient/stats"
	"github.com/sabouaram/hecclient/transport"
)

// Stats is the pure, never-failing snapshot flushStats returns: the
// counters and aggregate summaries as they stand, plus the current queue
// depth, the number of flushes still in flight, and the shared transport's
// pool status.
type Stats struct {
	stats.Snapshot

	QueueDepth    int
	QueueBytes    int64
	ActiveFlushes int
	PoolStatus    transport.Status
}

// FlushStats snapshots and resets the running aggregates, and reports the
// queue, active-flush set, and transport pool as they stand at the moment
// of the call.
func (c *Client) FlushStats() Stats {
	snap := c.stats.Flush()

	c.mu.Lock()
	depth := len(c.q.messages)
	qbytes := c.q.size
	c.mu.Unlock()

	return Stats{
		Snapshot:      snap,
		QueueDepth:    depth,
		QueueBytes:    qbytes,
		ActiveFlushes: c.activeFlushCount(),
		PoolStatus:    transport.StatusFor(c.cfg.URL),
	}
}
