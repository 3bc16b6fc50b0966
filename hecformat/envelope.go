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

package hecformat

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/imdario/mergo"
	"github.com/shopspring/decimal"

	"github.com/sabouaram/hecclient/hecerr"
)

// envelope is the wire object, field order fixed by declaration order so
// encoding/json's struct-field marshal order gives the required stable
// insertion order without a custom marshaller.
type envelope struct {
	Time       json.Number    `json:"time,omitempty"`
	Host       string         `json:"host,omitempty"`
	Source     string         `json:"source,omitempty"`
	SourceType string         `json:"sourcetype,omitempty"`
	Index      string         `json:"index,omitempty"`
	Fields     map[string]any `json:"fields"`
	Event      any            `json:"event,omitempty"`
}

// Message is an opaque, already newline-terminated wire payload.
type Message struct {
	Bytes []byte
}

// Len returns the message's byte length.
func (m Message) Len() int {
	return len(m.Bytes)
}

// Options configures default metadata/fields applied where a record omits
// them, and whether multi-metric records emit one combined envelope or one
// envelope per measurement.
type Options struct {
	DefaultMetadata          Metadata
	DefaultFields            map[string]any
	MultiMetricFormatEnabled bool
}

// Serialize converts one record into one or more wire messages. Event and
// Metric always yield exactly one message; MultiMetric yields one message
// when multi-measurement format is enabled, or one message per non-nil
// measurement otherwise.
func Serialize(rec Record, opts Options) ([]Message, error) {
	switch r := rec.(type) {
	case Event:
		return serializeEvent(r, opts)
	case Metric:
		return serializeMetric(r, opts)
	case MultiMetric:
		return serializeMultiMetric(r, opts)
	default:
		return nil, hecerr.Serialization(fmt.Sprintf("unsupported record type %T", rec), nil)
	}
}

func serializeEvent(e Event, opts Options) ([]Message, error) {
	fields, err := mergeFields(opts.DefaultFields, e.Fields)
	if err != nil {
		return nil, err
	}

	env := envelope{
		Time:       resolveTime(e.Time),
		Fields:     fields,
		Event:      e.Body,
	}
	resolveMetadata(&env, e.Metadata, opts.DefaultMetadata)

	msg, err := encode(env)
	if err != nil {
		return nil, err
	}

	return []Message{msg}, nil
}

func serializeMetric(m Metric, opts Options) ([]Message, error) {
	if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return nil, hecerr.Serialization(fmt.Sprintf("metric %q has a non-finite value", m.Name), nil)
	}

	fields, err := mergeFields(opts.DefaultFields, m.Fields)
	if err != nil {
		return nil, err
	}

	fields["metric_name"] = m.Name
	fields["_value"] = m.Value

	env := envelope{
		Time:   resolveTime(m.Time),
		Fields: fields,
	}
	resolveMetadata(&env, m.Metadata, opts.DefaultMetadata)

	msg, err := encode(env)
	if err != nil {
		return nil, err
	}

	return []Message{msg}, nil
}

func serializeMultiMetric(mm MultiMetric, opts Options) ([]Message, error) {
	for name, v := range mm.Measurements {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return nil, hecerr.Serialization(fmt.Sprintf("measurement %q has a non-finite value", name), nil)
		}
	}

	if opts.MultiMetricFormatEnabled {
		fields, err := mergeFields(opts.DefaultFields, mm.Fields)
		if err != nil {
			return nil, err
		}

		for name, v := range mm.Measurements {
			if v == nil {
				continue
			}
			fields["metric_name:"+name] = *v
		}

		env := envelope{
			Time:   resolveTime(mm.Time),
			Fields: fields,
		}
		resolveMetadata(&env, mm.Metadata, opts.DefaultMetadata)

		msg, err := encode(env)
		if err != nil {
			return nil, err
		}

		return []Message{msg}, nil
	}

	msgs := make([]Message, 0, len(mm.Measurements))
	for name, v := range mm.Measurements {
		if v == nil {
			continue
		}

		out, err := serializeMetric(Metric{
			Name:     name,
			Value:    *v,
			Time:     mm.Time,
			Metadata: mm.Metadata,
			Fields:   mm.Fields,
		}, opts)
		if err != nil {
			return nil, err
		}

		msgs = append(msgs, out...)
	}

	return msgs, nil
}

// resolveTime coerces a record's timestamp to ms/1000 rounded to three
// decimal places. An absent or unparseable value leaves env.Time empty, so
// the omitempty tag drops the field.
func resolveTime(v any) json.Number {
	ms, ok := asMillis(v)
	if !ok {
		return ""
	}

	sec := decimal.NewFromInt(ms).DivRound(decimal.NewFromInt(1000), 3)

	return json.Number(sec.StringFixed(3))
}

// resolveMetadata fills env's metadata fields from rec, falling back
// per-field to defaults, omitting whichever ends up empty.
func resolveMetadata(env *envelope, rec, defaults Metadata) {
	env.Host = firstNonEmpty(rec.Host, defaults.Host)
	env.Source = firstNonEmpty(rec.Source, defaults.Source)
	env.SourceType = firstNonEmpty(rec.SourceType, defaults.SourceType)
	env.Index = firstNonEmpty(rec.Index, defaults.Index)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}

	return b
}

// mergeFields deep-merges record fields on top of default fields: for
// nested maps it recurses, for scalar or array values the record's value
// replaces the default. Always returns a non-nil map, even if both inputs
// are empty, since the wire envelope's fields key is never omitted.
func mergeFields(defaults, record map[string]any) (map[string]any, error) {
	dst := map[string]any{}

	if err := mergo.Merge(&dst, defaults); err != nil {
		return nil, hecerr.Serialization("failed to merge default fields", err)
	}

	if err := mergo.Merge(&dst, record, mergo.WithOverride); err != nil {
		return nil, hecerr.Serialization("failed to merge record fields", err)
	}

	return dst, nil
}

func encode(env envelope) (Message, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return Message{}, hecerr.Serialization("failed to marshal envelope", err)
	}

	b = append(b, '\n')

	return Message{Bytes: b}, nil
}
