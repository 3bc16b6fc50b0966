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

// Package retry implements the retry engine (attempt cap, overall timeout,
// wait-between strategy, on-error hook) and the wait-time strategies it is
// parameterised with.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Options configures a single Do call.
type Options struct {
	// MaxAttempts caps the number of attempts. Zero means unbounded.
	MaxAttempts int
	// Timeout bounds the overall time spent across all attempts. Zero
	// means no overall timeout.
	Timeout time.Duration
	// Wait computes the delay before the next attempt. Nil means no wait.
	Wait Backoff
	// OnError is invoked synchronously after each failed attempt, before
	// the wait. willRetry is false on the attempt that exhausts the cap or
	// timeout, true otherwise. A panicking hook is recovered and swallowed
	// (per the observed behaviour this engine follows).
	OnError func(attempt int, err error, willRetry bool)
	// Name is a human-readable task name used in the exhausted-retries
	// error message.
	Name string
}

// Do invokes op, retrying on error per opts, honouring ctx cancellation at
// every wait point. On permanent failure it returns the last error wrapped
// to indicate retries are exhausted.
func Do[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts Options) (T, error) {
	var (
		zero    T
		lastErr error
		start   = time.Time{}
	)

	if opts.Timeout > 0 {
		start = timeNow()
	}

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return zero, context.Canceled
		default:
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return zero, context.Canceled
		}

		exhaustedByAttempts := opts.MaxAttempts > 0 && attempt >= opts.MaxAttempts
		exhaustedByTimeout := opts.Timeout > 0 && timeNow().Sub(start) >= opts.Timeout
		exhausted := exhaustedByAttempts || exhaustedByTimeout

		callOnError(opts.OnError, attempt, err, !exhausted)

		if exhausted {
			name := opts.Name
			if name == "" {
				name = "operation"
			}

			return zero, fmt.Errorf("%s: retries exhausted: %w", name, lastErr)
		}

		wait := time.Duration(0)
		if opts.Wait != nil {
			wait = opts.Wait.Wait(attempt)
		}

		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, context.Canceled
			case <-timer.C:
			}
		}
	}
}

// callOnError invokes hook, recovering and discarding any panic so a
// misbehaving hook never aborts the retry loop.
func callOnError(hook func(attempt int, err error, willRetry bool), attempt int, err error, willRetry bool) {
	if hook == nil {
		return
	}

	defer func() {
		_ = recover()
	}()

	hook(attempt, err, willRetry)
}

var timeNow = time.Now
