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

// Package stats holds the collector's integer counters and resettable
// numeric aggregates, plus an additive Prometheus exposition of the
// counters. The aggregates are not exposed to Prometheus.
package stats

import "sync"

// Counters is a plain snapshot of the integer counters.
type Counters struct {
	ErrorCount       int64
	RetryCount       int64
	QueuedMessages   int64
	SentMessages     int64
	QueuedBytes      int64
	SentBytes        int64
	TransferredBytes int64
}

// AggregateSnapshot is the {count, sum, min, max, avg} view returned by
// Aggregate.Flush.
type AggregateSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Avg   float64
}

// Aggregate observes numeric samples and yields a snapshot-and-reset summary
// on Flush.
type Aggregate struct {
	mu    sync.Mutex
	count int64
	sum   float64
	min   float64
	max   float64
}

// Observe records one sample.
func (a *Aggregate) Observe(v float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.count == 0 {
		a.min = v
		a.max = v
	} else {
		if v < a.min {
			a.min = v
		}
		if v > a.max {
			a.max = v
		}
	}

	a.count++
	a.sum += v
}

// Flush returns the current snapshot and resets the aggregate to empty.
func (a *Aggregate) Flush() AggregateSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := AggregateSnapshot{Count: a.count, Sum: a.sum, Min: a.min, Max: a.max}
	if a.count > 0 {
		snap.Avg = a.sum / float64(a.count)
	}

	a.count, a.sum, a.min, a.max = 0, 0, 0, 0

	return snap
}

// Stats bundles the counters and the named aggregates the collector
// maintains: requestDuration (ms), batchSize (messages), batchSizeBytes,
// batchSizeCompressed.
type Stats struct {
	mu sync.Mutex
	c  Counters

	RequestDuration     Aggregate
	BatchSize           Aggregate
	BatchSizeBytes      Aggregate
	BatchSizeCompressed Aggregate

	prom *promStats
}

// New returns an empty Stats. If promEnabled is true, the counters are
// additionally exposed as Prometheus counters; the aggregates are not
// exposed.
func New(promEnabled bool) *Stats {
	s := &Stats{}

	if promEnabled {
		s.prom = newPromStats()
	}

	return s
}

func (s *Stats) AddError() {
	s.mu.Lock()
	s.c.ErrorCount++
	s.mu.Unlock()

	s.prom.incError()
}

func (s *Stats) AddRetry() {
	s.mu.Lock()
	s.c.RetryCount++
	s.mu.Unlock()

	s.prom.incRetry()
}

func (s *Stats) AddQueued(messages, bytes int64) {
	s.mu.Lock()
	s.c.QueuedMessages += messages
	s.c.QueuedBytes += bytes
	s.mu.Unlock()

	s.prom.addQueued(messages, bytes)
}

func (s *Stats) AddSent(messages, rawBytes, wireBytes int64) {
	s.mu.Lock()
	s.c.SentMessages += messages
	s.c.SentBytes += rawBytes
	s.c.TransferredBytes += wireBytes
	s.mu.Unlock()

	s.prom.addSent(messages, rawBytes, wireBytes)
}

// Snapshot is the pure, non-failing view returned by flushStats: the
// counters as they stand, plus a snapshot-and-reset of each aggregate.
type Snapshot struct {
	Counters            Counters
	RequestDuration     AggregateSnapshot
	BatchSize           AggregateSnapshot
	BatchSizeBytes      AggregateSnapshot
	BatchSizeCompressed AggregateSnapshot
}

// Flush snapshots the counters and snapshot-and-resets every aggregate.
// Never fails.
func (s *Stats) Flush() Snapshot {
	s.mu.Lock()
	c := s.c
	s.mu.Unlock()

	return Snapshot{
		Counters:            c,
		RequestDuration:     s.RequestDuration.Flush(),
		BatchSize:           s.BatchSize.Flush(),
		BatchSizeBytes:      s.BatchSizeBytes.Flush(),
		BatchSizeCompressed: s.BatchSizeCompressed.Flush(),
	}
}
