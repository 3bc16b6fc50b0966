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
	"net/http"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sabouaram/hecclient/cancel"
	"github.com/sabouaram/hecclient/logging"
	"github.com/sabouaram/hecclient/stats"
	"github.com/sabouaram/hecclient/transport"
)

// queue is the in-memory batch of not-yet-flushed messages. Invariant: size
// always equals the sum of the lengths of the messages it holds.
type queue struct {
	messages []message
	size     int64
}

// message is one serialized wire envelope waiting in the queue.
type message struct {
	bytes []byte
}

func (m message) Len() int64 {
	return int64(len(m.bytes))
}

// flush is one in-flight send. It is in the client's active-flush set
// exactly as long as done is unresolved. Its lifetime is governed by a
// cancel.Group registration, not by a cancel func of its own.
type flush struct {
	done chan struct{}
	err  error
}

// Client is the batching, retrying, back-pressured HEC ingestion client. It
// exclusively owns its queue, its active-flush set, and its stats; the HTTP
// connection pool may be shared across clones at the same endpoint.
type Client struct {
	cfg Config

	mu        sync.Mutex
	q         queue
	idleTimer *time.Timer
	idleArmed bool

	active        atomic.Bool
	activeFlushes flushRegistry
	cancelGroup   *cancel.Group

	httpClient *http.Client

	stats  *stats.Stats
	logger logging.Logger
}

// New constructs a Client against url, applying opts on top of the
// implementation-defined defaults, and validates the resolved configuration.
func New(url string, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	cfg.URL = url

	for _, opt := range opts {
		opt(&cfg)
	}

	return newFromConfig(cfg)
}

func newFromConfig(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tr := transport.Acquire(cfg.URL, cfg.transportPolicy())

	c := &Client{
		cfg:         cfg,
		cancelGroup: cancel.NewGroup(),
		httpClient:  &http.Client{Transport: tr, Timeout: cfg.Timeout.Time()},
		stats:       stats.New(cfg.PrometheusStats),
		logger:      logging.New(logging.InfoLevel),
	}
	c.active.Store(true)

	return c, nil
}

// isActive reports whether the client has not yet been shut down.
func (c *Client) isActive() bool {
	return c.active.Load()
}

// Clone produces a new client from overrides. If overrides are empty after
// dropping zero values, Clone returns the same instance; otherwise it
// builds a new client whose config is overrides deep-merged onto this
// one's. A URL override acquires its own pool (or an existing shared one
// for that origin); an unchanged URL shares this client's pool by
// construction, since transport.Acquire is keyed by origin.
func (c *Client) Clone(overrides Config) (*Client, error) {
	if reflect.DeepEqual(overrides, Config{}) {
		return c, nil
	}

	merged, err := merge(c.cfg, overrides)
	if err != nil {
		return nil, err
	}

	return newFromConfig(merged)
}
