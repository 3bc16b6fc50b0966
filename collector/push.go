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
	"time"

	"github.com/sabouaram/hecclient/hecerr"
	"github.com/sabouaram/hecclient/hecformat"
)

func (c *Client) formatOptions() hecformat.Options {
	return hecformat.Options{
		DefaultMetadata:          c.cfg.DefaultMetadata,
		DefaultFields:            c.cfg.DefaultFields,
		MultiMetricFormatEnabled: c.cfg.MultipleMetricFormatEnabled,
	}
}

// Push dispatches rec to PushEvent, PushMetric, or PushMetrics by its
// concrete type — a type switch, per §9's "treat a record as a tagged
// variant", never by probing for a name-like attribute.
func (c *Client) Push(rec hecformat.Record) error {
	switch r := rec.(type) {
	case hecformat.Event:
		return c.PushEvent(r)
	case hecformat.Metric:
		return c.PushMetric(r)
	case hecformat.MultiMetric:
		return c.PushMetrics(r)
	default:
		return hecerr.Serialization("unsupported record type", nil)
	}
}

func (c *Client) PushEvent(e hecformat.Event) error {
	return c.pushRecord(e)
}

func (c *Client) PushMetric(m hecformat.Metric) error {
	return c.pushRecord(m)
}

func (c *Client) PushMetrics(mm hecformat.MultiMetric) error {
	return c.pushRecord(mm)
}

func (c *Client) pushRecord(rec hecformat.Record) error {
	msgs, err := hecformat.Serialize(rec, c.formatOptions())
	if err != nil {
		return err
	}

	for _, m := range msgs {
		if err := c.pushSerializedMsg(message{bytes: m.Bytes}); err != nil {
			return err
		}
	}

	return nil
}

// pushSerializedMsg enqueues one already-serialized message, following the
// enqueue protocol of §4.G exactly: shutdown check, counter bump, eager
// flush before append when the newcomer would cross the byte threshold,
// append, then schedule.
func (c *Client) pushSerializedMsg(m message) error {
	if !c.isActive() {
		return hecerr.Shutdown("push after shutdown")
	}

	c.stats.AddQueued(1, m.Len())

	c.mu.Lock()

	if c.cfg.MaxQueueSize > 0 && c.q.size+m.Len() > c.cfg.MaxQueueSize {
		c.dispatchFlushLocked()
	}

	c.q.messages = append(c.q.messages, m)
	c.q.size += m.Len()

	c.mu.Unlock()

	c.scheduleFlush()

	return nil
}

// scheduleFlush implements §4.G's scheduling rule: an entry-count
// threshold triggers immediately; otherwise an idle timer is armed (once)
// to trigger a flush after flushTime, floored at 1ms per §9's note that
// truly parallel runtimes need a small minimum to avoid busy looping.
func (c *Client) scheduleFlush() {
	c.mu.Lock()

	if c.cfg.MaxQueueEntries > 0 && len(c.q.messages) > c.cfg.MaxQueueEntries {
		c.dispatchFlushLocked()
		c.mu.Unlock()
		return
	}

	if !c.idleArmed {
		delay := c.cfg.FlushTime.Time()
		if delay <= 0 {
			delay = time.Millisecond
		}

		c.idleArmed = true
		c.idleTimer = time.AfterFunc(delay, func() {
			c.mu.Lock()
			c.idleArmed = false
			c.mu.Unlock()

			c.dispatchFlush()
		})
	}

	c.mu.Unlock()
}
