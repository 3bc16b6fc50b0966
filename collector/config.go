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

// Package collector implements the batching, retrying, back-pressured HEC
// ingestion client: the queue, the flush scheduler, the in-flight flush
// set, and orderly shutdown, wired on top of cancel/retry/hecformat/
// compress/transport/stats/logging/hecerr.
package collector

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/imdario/mergo"

	"github.com/sabouaram/hecclient/duration"
	"github.com/sabouaram/hecclient/hecerr"
	"github.com/sabouaram/hecclient/hecformat"
	"github.com/sabouaram/hecclient/retry"
	"github.com/sabouaram/hecclient/transport"
)

// Config is the client's configuration surface, resolved once at
// construction with every default applied.
type Config struct {
	URL       string `validate:"required,url" json:"url" yaml:"url"`
	Token     string `json:"token,omitempty" yaml:"token,omitempty"`
	UserAgent string `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`

	ValidateCertificate bool              `json:"validateCertificate" yaml:"validateCertificate"`
	Timeout             duration.Duration `json:"timeout" yaml:"timeout"`
	MaxSockets          int               `validate:"min=1" json:"maxSockets" yaml:"maxSockets"`
	RequestKeepAlive    bool              `json:"requestKeepAlive" yaml:"requestKeepAlive"`

	Gzip                        bool `json:"gzip" yaml:"gzip"`
	MultipleMetricFormatEnabled bool `json:"multipleMetricFormatEnabled" yaml:"multipleMetricFormatEnabled"`

	MaxQueueSize    int64             `validate:"min=1" json:"maxQueueSize" yaml:"maxQueueSize"`
	MaxQueueEntries int               `json:"maxQueueEntries" yaml:"maxQueueEntries"`
	FlushTime       duration.Duration `json:"flushTime" yaml:"flushTime"`

	MaxRetries    int           `validate:"min=0" json:"maxRetries" yaml:"maxRetries"`
	RetryWaitTime retry.Backoff `json:"-" yaml:"-"`

	DefaultMetadata hecformat.Metadata `json:"defaultMetadata,omitempty" yaml:"defaultMetadata,omitempty"`
	DefaultFields   map[string]any     `json:"defaultFields,omitempty" yaml:"defaultFields,omitempty"`

	PrometheusStats bool `json:"prometheusStats" yaml:"prometheusStats"`
}

// defaultConfig returns the implementation-defined defaults the
// configuration surface table names, before any caller overrides or
// functional options are applied.
func defaultConfig() Config {
	return Config{
		UserAgent:                   "hecclient",
		ValidateCertificate:         true,
		Timeout:                     duration.Seconds(30),
		MaxSockets:                  64,
		RequestKeepAlive:            true,
		Gzip:                        false,
		MultipleMetricFormatEnabled: false,
		MaxQueueSize:                1 << 20,
		MaxQueueEntries:             -1,
		FlushTime:                   0,
		MaxRetries:                  3,
		RetryWaitTime:               retry.Exponential{Min: 500 * time.Millisecond, Factor: 2, Max: 10 * time.Second},
		DefaultFields:               map[string]any{},
	}
}

var validate = validator.New()

// Validate checks the resolved configuration, returning a ConfigError
// naming the invalid field(s) on failure.
func (c Config) Validate() error {
	if _, err := url.Parse(c.URL); err != nil {
		return hecerr.Config("invalid url", err)
	}

	if err := validate.Struct(c); err != nil {
		return hecerr.Config(fmt.Sprintf("invalid configuration: %s", err), err)
	}

	return nil
}

// Option mutates a Config during construction.
type Option func(*Config)

func WithToken(token string) Option {
	return func(c *Config) { c.Token = token }
}

func WithUserAgent(ua string) Option {
	return func(c *Config) { c.UserAgent = ua }
}

func WithValidateCertificate(v bool) Option {
	return func(c *Config) { c.ValidateCertificate = v }
}

func WithTimeout(d duration.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

func WithMaxSockets(n int) Option {
	return func(c *Config) { c.MaxSockets = n }
}

func WithRequestKeepAlive(v bool) Option {
	return func(c *Config) { c.RequestKeepAlive = v }
}

func WithGzip(v bool) Option {
	return func(c *Config) { c.Gzip = v }
}

func WithMultipleMetricFormatEnabled(v bool) Option {
	return func(c *Config) { c.MultipleMetricFormatEnabled = v }
}

func WithMaxQueueSize(n int64) Option {
	return func(c *Config) { c.MaxQueueSize = n }
}

func WithMaxQueueEntries(n int) Option {
	return func(c *Config) { c.MaxQueueEntries = n }
}

func WithFlushTime(d duration.Duration) Option {
	return func(c *Config) { c.FlushTime = d }
}

func WithMaxRetries(n int) Option {
	return func(c *Config) { c.MaxRetries = n }
}

func WithRetryWaitTime(b retry.Backoff) Option {
	return func(c *Config) { c.RetryWaitTime = b }
}

func WithDefaultMetadata(m hecformat.Metadata) Option {
	return func(c *Config) { c.DefaultMetadata = m }
}

func WithDefaultFields(fields map[string]any) Option {
	return func(c *Config) { c.DefaultFields = fields }
}

func WithPrometheusStats(v bool) Option {
	return func(c *Config) { c.PrometheusStats = v }
}

// transportPolicy projects the relevant Config fields onto a
// transport.Policy.
func (c Config) transportPolicy() transport.Policy {
	return transport.Policy{
		KeepAlive:           c.RequestKeepAlive,
		MaxSockets:          c.MaxSockets,
		ValidateCertificate: c.ValidateCertificate,
	}
}

// merge deep-merges overrides onto a copy of base, overrides winning on
// conflict, matching clone()'s "deep merge of this one's config with
// overrides" semantics.
func merge(base Config, overrides Config) (Config, error) {
	out := base
	out.DefaultFields = make(map[string]any, len(base.DefaultFields))
	for k, v := range base.DefaultFields {
		out.DefaultFields[k] = v
	}

	if err := mergo.Merge(&out, overrides, mergo.WithOverride); err != nil {
		return Config{}, hecerr.Config("failed to merge configuration overrides", err)
	}

	return out, nil
}
