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

// Package transport builds the keep-alive-enabled, per-host-socket-capped
// HTTP transport the collector issues every request through, and keeps a
// process-wide registry so clones targeting the same endpoint share one
// connection pool instead of multiplying the TCP footprint.
package transport

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"sync"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
)

// Policy is the set of knobs a transport is built from.
type Policy struct {
	KeepAlive           bool
	MaxSockets          int
	ValidateCertificate bool
	IdleTimeout         time.Duration
}

// DefaultPolicy mirrors the configuration surface's implementation-defined
// defaults: keep-alive on, certificate verification on, a generous per-host
// socket cap.
func DefaultPolicy() Policy {
	return Policy{
		KeepAlive:           true,
		MaxSockets:          64,
		ValidateCertificate: true,
		IdleTimeout:         90 * time.Second,
	}
}

// registry is the process-wide per-endpoint pool table. Keyed by the
// endpoint's scheme+host, so clones pointing at the same origin share a
// *http.Transport regardless of pathname differences.
var (
	registryMu sync.Mutex
	registry   = map[string]*http.Transport{}
)

// Status is a point-in-time read of a pooled transport's configured
// capacity, for periodic stats reporting (collector.FlushStats). It
// reports configured limits, not a live connection count: net/http
// exposes no public counter of sockets currently open per host, so
// "how many of MaxSockets are in use right now" is not observable
// without wrapping every dial, which this module does not do.
type Status struct {
	MaxSockets  int
	IdleTimeout time.Duration
	KeepAlive   bool
}

// StatusFor reports the configured pool shape for endpoint's origin. The
// zero Status is returned if nothing has been acquired for that origin yet.
func StatusFor(endpoint string) Status {
	k := key(endpoint)

	registryMu.Lock()
	t, ok := registry[k]
	registryMu.Unlock()

	if !ok {
		return Status{}
	}

	return Status{
		MaxSockets:  t.MaxConnsPerHost,
		IdleTimeout: t.IdleConnTimeout,
		KeepAlive:   !t.DisableKeepAlives,
	}
}

// key normalizes an endpoint URL down to its scheme+host for pool sharing.
func key(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}

	return u.Scheme + "://" + u.Host
}

// Acquire returns the shared *http.Transport for endpoint's origin, building
// one from policy if none exists yet. Subsequent calls for the same origin
// ignore policy and return the already-built transport, matching "HTTP pool
// sharing across clones" — the first client to touch an origin decides its
// pool shape.
func Acquire(endpoint string, policy Policy) *http.Transport {
	k := key(endpoint)

	registryMu.Lock()
	defer registryMu.Unlock()

	if t, ok := registry[k]; ok {
		return t
	}

	t := build(policy)
	registry[k] = t

	return t
}

// Release drops the shared transport for endpoint's origin from the
// registry and closes its idle connections. Safe to call even if nothing
// was ever acquired for that origin.
func Release(endpoint string) {
	k := key(endpoint)

	registryMu.Lock()
	t, ok := registry[k]
	delete(registry, k)
	registryMu.Unlock()

	if ok {
		t.CloseIdleConnections()
	}
}

func build(policy Policy) *http.Transport {
	base := cleanhttp.DefaultPooledTransport()

	base.MaxIdleConnsPerHost = policy.MaxSockets
	base.MaxConnsPerHost = policy.MaxSockets
	base.IdleConnTimeout = policy.IdleTimeout
	base.DisableKeepAlives = !policy.KeepAlive

	base.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: !policy.ValidateCertificate,
	}

	return base
}
