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

package retry

import "time"

// Backoff computes the wait duration before attempt n (1-based) of a retry
// loop. Implementations are pure functions of the attempt index.
type Backoff interface {
	Wait(attempt int) time.Duration
}

// Constant always waits the same duration.
type Constant time.Duration

func (c Constant) Wait(attempt int) time.Duration {
	return time.Duration(c)
}

// Linear waits min + (n-1)*step, clamped to [min, max].
type Linear struct {
	Min  time.Duration
	Step time.Duration
	Max  time.Duration
}

func (l Linear) Wait(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	w := l.Min + time.Duration(attempt-1)*l.Step

	if w < l.Min {
		w = l.Min
	}

	if l.Max > 0 && w > l.Max {
		w = l.Max
	}

	return w
}

// Exponential waits min * factor^(n-1), capped at max.
type Exponential struct {
	Min    time.Duration
	Factor float64
	Max    time.Duration
}

func (e Exponential) Wait(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	factor := e.Factor
	if factor <= 0 {
		factor = 1
	}

	w := float64(e.Min)
	for i := 1; i < attempt; i++ {
		w *= factor
	}

	d := time.Duration(w)
	if e.Max > 0 && d > e.Max {
		d = e.Max
	}

	return d
}

// Resolve accepts either a literal duration (treated as Constant) or a
// Backoff strategy and returns the wait for the given attempt.
func Resolve(strategy any, attempt int) time.Duration {
	switch v := strategy.(type) {
	case nil:
		return 0
	case time.Duration:
		return v
	case Backoff:
		return v.Wait(attempt)
	default:
		return 0
	}
}
