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

// Package hecformat serializes event, metric, and multi-metric records into
// the HEC wire envelope: newline-delimited JSON objects with a fixed field
// order, metric-injection rules, bit-exact time coercion, and deep-merged
// default fields.
package hecformat

import "time"

// Metadata carries the four HEC routing fields, each falling back to the
// client's configured defaults when empty.
type Metadata struct {
	Host       string
	Source     string
	SourceType string
	Index      string
}

// Record is the tagged-variant input to the serializer. Event, Metric and
// MultiMetric implement it as a sum type; dispatch is by type switch, never by probing
// for a "name" attribute.
type Record interface {
	isRecord()
}

// Event is a free-form body with optional timestamp, metadata, and fields.
type Event struct {
	Body     any
	Time     any
	Metadata Metadata
	Fields   map[string]any
}

func (Event) isRecord() {}

// Metric is a single named numeric measurement.
type Metric struct {
	Name     string
	Value    float64
	Time     any
	Metadata Metadata
	Fields   map[string]any
}

func (Metric) isRecord() {}

// MultiMetric shares one timestamp and metadata across several named
// measurements. A nil value for a measurement is dropped, not emitted as 0.
type MultiMetric struct {
	Measurements map[string]*float64
	Time         any
	Metadata     Metadata
	Fields       map[string]any
}

func (MultiMetric) isRecord() {}

// asMillis normalizes the accepted shapes for a timestamp: a
// millisecond-since-epoch int, int32 or int64, a float64 (truncated to a
// whole millisecond), or a time.Time/*time.Time. Anything else is
// unparseable.
func asMillis(v any) (int64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int64:
		return t, true
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case float64:
		return int64(t), true
	case time.Time:
		return t.UnixMilli(), true
	case *time.Time:
		if t == nil {
			return 0, false
		}
		return t.UnixMilli(), true
	default:
		return 0, false
	}
}
