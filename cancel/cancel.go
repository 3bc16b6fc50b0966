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

// Package cancel implements the cancellation primitive: a group of live
// child contexts derived from one parent, with a collective trigger. The
// cancellation sentinel is Go's own context.Canceled, checked with
// errors.Is rather than a custom type.
package cancel

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Group owns a set of currently-live cancellation tokens (context.CancelFunc
// values) and can trigger all of them together. Once CancelAll has run, the
// group is permanently triggered: subsequent Run calls fail immediately with
// context.Canceled.
type Group struct {
	mu        sync.Mutex
	live      map[string]context.CancelFunc
	triggered bool
}

// NewGroup returns an empty, untriggered cancellation group.
func NewGroup() *Group {
	return &Group{
		live: make(map[string]context.CancelFunc),
	}
}

// Run derives a child context from ctx, registers its cancel func in the
// group for the duration of fn, and guarantees de-registration on every exit
// path. If the group was already collectively triggered, fn is never called
// and Run returns context.Canceled immediately.
func (g *Group) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	g.mu.Lock()
	if g.triggered {
		g.mu.Unlock()
		return context.Canceled
	}

	child, cancel := context.WithCancel(ctx)
	id := uuid.NewString()
	g.live[id] = cancel
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.live, id)
		g.mu.Unlock()
		cancel()
	}()

	return fn(child)
}

// CancelAll fires every registered child token and marks the group
// triggered, so future Run calls fail fast. Idempotent.
func (g *Group) CancelAll() {
	g.mu.Lock()
	g.triggered = true
	live := g.live
	g.live = make(map[string]context.CancelFunc)
	g.mu.Unlock()

	for _, cancel := range live {
		cancel()
	}
}

// Len reports the number of currently-live tokens, mainly for tests.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.live)
}

// Race runs op in its own goroutine and returns whichever settles first:
// op's result, or context.Canceled if ctx fires first. op takes no context,
// so it is not stopped when ctx fires; its late result is discarded.
func Race[T any](ctx context.Context, op func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}

	done := make(chan result, 1)

	go func() {
		v, err := op()
		done <- result{val: v, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, context.Canceled
	case r := <-done:
		return r.val, r.err
	}
}

// RunAll runs every op concurrently, all under one shared child context
// derived from ctx. As soon as any op returns, that context is cancelled,
// which signals the others (best-effort cooperative stop). RunAll blocks until every op has
// returned and reports each op's error in call order.
func RunAll(ctx context.Context, ops ...func(ctx context.Context) error) []error {
	n := len(ops)
	errs := make([]error, n)

	if n == 0 {
		return errs
	}

	child, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(n)

	for i, op := range ops {
		go func(i int, op func(ctx context.Context) error) {
			defer wg.Done()
			errs[i] = op(child)
			cancel()
		}(i, op)
	}

	wg.Wait()

	return errs
}
