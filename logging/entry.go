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

package logging

import "github.com/sirupsen/logrus"

// Logger is the contract the collector takes as a dependency, satisfied by
// New below. Entry's fields are unexported, so only this package can build
// a usable *Entry.
type Logger interface {
	Entry() *Entry
}

// Entry is a fluent log-record builder: chain FieldAdd/ErrorAdd calls, then
// terminate with Log.
type Entry struct {
	log    *logrus.Logger
	fields logrus.Fields
}

type logger struct {
	log *logrus.Logger
}

// New returns a Logger that writes through a fresh logrus.Logger at the
// given level.
func New(level Level) Logger {
	l := logrus.New()
	l.SetLevel(level.Logrus())

	return &logger{log: l}
}

func (l *logger) Entry() *Entry {
	return &Entry{log: l.log, fields: logrus.Fields{}}
}

// FieldAdd sets a single field on the entry and returns it for chaining.
func (e *Entry) FieldAdd(key string, value any) *Entry {
	e.fields[key] = value
	return e
}

// FieldMerge merges a whole field set onto the entry.
func (e *Entry) FieldMerge(fields map[string]any) *Entry {
	for k, v := range fields {
		e.fields[k] = v
	}

	return e
}

// ErrorAdd attaches an error under the conventional "error" field. A nil
// error is a no-op so call sites can chain unconditionally.
func (e *Entry) ErrorAdd(err error) *Entry {
	if err == nil {
		return e
	}

	e.fields["error"] = err.Error()
	return e
}

// Log emits the entry at the given level with the given message.
func (e *Entry) Log(level Level, msg string) {
	e.log.WithFields(e.fields).Log(level.Logrus(), msg)
}
