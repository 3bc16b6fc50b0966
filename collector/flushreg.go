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

import "sync"

// flushRegistry tracks every flush currently in flight, keyed by the id
// startFlush hands out. It exists so Flush and Shutdown can enumerate and
// wait on whatever is unresolved at the moment they are called; nothing
// here needs to be generic over key or value type, so it is a plain
// sync.Map wrapper scoped to *flush instead of a reusable container type.
type flushRegistry struct {
	m sync.Map // string -> *flush
}

func (r *flushRegistry) store(id string, f *flush) {
	r.m.Store(id, f)
}

func (r *flushRegistry) delete(id string) {
	r.m.Delete(id)
}

// snapshot returns every flush registered at the moment of the call.
func (r *flushRegistry) snapshot() []*flush {
	var out []*flush
	r.m.Range(func(_, v interface{}) bool {
		out = append(out, v.(*flush))
		return true
	})

	return out
}

// count reports how many flushes are currently registered.
func (r *flushRegistry) count() int {
	n := 0
	r.m.Range(func(_, _ interface{}) bool {
		n++
		return true
	})

	return n
}
