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

// Package hecerr provides the handful of tagged error kinds the collector
// surfaces to callers. Cancellation is deliberately not one of them: it is
// represented natively by context.Canceled, so callers tell it apart from
// every kind here with a plain errors.Is check instead of a type assertion.
package hecerr

import (
	"errors"
	"fmt"
)

// Code tags an Error with one of the kinds named in the error handling design.
type Code uint8

const (
	// CodeConfig marks a ConfigError: an invalid URL or option, fatal to the
	// constructor caller.
	CodeConfig Code = iota + 1
	// CodeShutdown marks a ShutdownError: a push after the client shut down.
	CodeShutdown
	// CodeTransport marks a TransportError: a network failure, timeout, or
	// non-2xx response, retried up to the configured cap.
	CodeTransport
	// CodeSerialization marks a SerializationError: an input record whose
	// shape cannot be serialized (e.g. a non-finite metric value).
	CodeSerialization
	// CodeCompression marks a CompressionError surfaced by the compressor.
	CodeCompression
)

func (c Code) String() string {
	switch c {
	case CodeConfig:
		return "ConfigError"
	case CodeShutdown:
		return "ShutdownError"
	case CodeTransport:
		return "TransportError"
	case CodeSerialization:
		return "SerializationError"
	case CodeCompression:
		return "CompressionError"
	default:
		return "Error"
	}
}

// Error is the single error type carried by every hecerr code. It wraps an
// optional parent so the original cause survives errors.Unwrap/errors.Is.
type Error struct {
	code Code
	msg  string
	err  error
}

func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

func Wrap(code Code, msg string, err error) *Error {
	return &Error{code: code, msg: msg, err: err}
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %s", e.code, e.msg, e.err)
	}

	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the error kind this Error is tagged with.
func (e *Error) Code() Code {
	return e.code
}

// Is reports whether target is a *Error with the same code, so callers can
// write errors.Is(err, hecerr.New(hecerr.CodeTransport, "")) to classify an
// error without pulling the code out manually.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.code == e.code
}

// Config builds a ConfigError.
func Config(msg string, err error) *Error {
	return Wrap(CodeConfig, msg, err)
}

// Shutdown builds a ShutdownError.
func Shutdown(msg string) *Error {
	return New(CodeShutdown, msg)
}

// Transport builds a TransportError.
func Transport(msg string, err error) *Error {
	return Wrap(CodeTransport, msg, err)
}

// Serialization builds a SerializationError.
func Serialization(msg string, err error) *Error {
	return Wrap(CodeSerialization, msg, err)
}

// Compression builds a CompressionError.
func Compression(msg string, err error) *Error {
	return Wrap(CodeCompression, msg, err)
}

// IsCode reports whether err is a *Error tagged with code.
func IsCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	return e.code == code
}
