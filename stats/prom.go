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

package stats

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics are process-global counters, mirroring the shape every
// collector instance in the process contributes to — not per-instance
// gauges, since Prometheus scraping has no notion of "which client".
var (
	errorTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hec_client_errors_total",
		Help: "Total number of flush errors across all attempts.",
	})
	retryTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hec_client_retries_total",
		Help: "Total number of retry attempts across all flushes.",
	})
	queuedMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hec_client_queued_messages_total",
		Help: "Total number of messages ever enqueued.",
	})
	queuedBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hec_client_queued_bytes_total",
		Help: "Total number of bytes ever enqueued.",
	})
	sentMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hec_client_sent_messages_total",
		Help: "Total number of messages successfully sent.",
	})
	sentBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hec_client_sent_bytes_total",
		Help: "Total number of raw (uncompressed) bytes successfully sent.",
	})
	transferredBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hec_client_transferred_bytes_total",
		Help: "Total number of wire bytes successfully transferred.",
	})
)

var registerOnce sync.Once

func registerPromMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			errorTotal, retryTotal,
			queuedMessagesTotal, queuedBytesTotal,
			sentMessagesTotal, sentBytesTotal, transferredBytesTotal,
		)
	})
}

// promStats is a nil-safe handle: every method on a nil *promStats is a
// no-op, so stats.New(false) leaves the exposition disabled for free.
type promStats struct{}

func newPromStats() *promStats {
	registerPromMetrics()
	return &promStats{}
}

func (p *promStats) incError() {
	if p == nil {
		return
	}
	errorTotal.Inc()
}

func (p *promStats) incRetry() {
	if p == nil {
		return
	}
	retryTotal.Inc()
}

func (p *promStats) addQueued(messages, bytes int64) {
	if p == nil {
		return
	}
	queuedMessagesTotal.Add(float64(messages))
	queuedBytesTotal.Add(float64(bytes))
}

func (p *promStats) addSent(messages, rawBytes, wireBytes int64) {
	if p == nil {
		return
	}
	sentMessagesTotal.Add(float64(messages))
	sentBytesTotal.Add(float64(rawBytes))
	transferredBytesTotal.Add(float64(wireBytes))
}
