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

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sabouaram/hecclient/compress"
	"github.com/sabouaram/hecclient/hecerr"
	"github.com/sabouaram/hecclient/logging"
	"github.com/sabouaram/hecclient/retry"
)

// sendToHec concatenates batch into a single buffer, optionally gzips it,
// and POSTs it under the retry engine, honouring ctx at every suspension
// point. The body is rebuilt fresh for every attempt (a []byte, not a
// consumed reader), so a retried attempt always resends the full payload.
func (c *Client) sendToHec(ctx context.Context, batch []message) error {
	var buf bytes.Buffer
	for _, m := range batch {
		buf.Write(m.bytes)
	}
	raw := buf.Bytes()

	c.stats.BatchSize.Observe(float64(len(batch)))
	c.stats.BatchSizeBytes.Observe(float64(len(raw)))

	body := raw
	gzipped := false

	if c.cfg.Gzip {
		compressed, err := compress.Gzip(raw)
		if err != nil {
			return err
		}

		body = compressed
		gzipped = true
		c.stats.BatchSizeCompressed.Observe(float64(len(body)))
	}

	_, err := retry.Do(ctx, func(ctx context.Context) (struct{}, error) {
		start := time.Now()
		sendErr := c.postOnce(ctx, body, gzipped)
		c.stats.RequestDuration.Observe(float64(time.Since(start).Milliseconds()))

		if sendErr != nil {
			return struct{}{}, sendErr
		}

		c.stats.AddSent(int64(len(batch)), int64(len(raw)), int64(len(body)))

		return struct{}{}, nil
	}, retry.Options{
		MaxAttempts: c.cfg.MaxRetries + 1,
		Wait:        c.cfg.RetryWaitTime,
		Name:        "sendToHec",
		OnError:     c.onSendError,
	})

	return err
}

// onSendError implements the propagation policy: warn on the first
// failure, debug on subsequent transient failures, error once retries are
// exhausted. errorCount is bumped on every failure; retryCount only on the
// attempts that actually go on to retry.
func (c *Client) onSendError(attempt int, err error, willRetry bool) {
	c.stats.AddError()

	entry := c.logger.Entry().ErrorAdd(err).FieldAdd("attempt", attempt)

	switch {
	case !willRetry:
		entry.Log(logging.ErrorLevel, "hec send exhausted retries")
	case attempt == 1:
		c.stats.AddRetry()
		entry.Log(logging.WarnLevel, "hec send failed")
	default:
		c.stats.AddRetry()
		entry.Log(logging.DebugLevel, "hec send failed")
	}
}

// postOnce issues a single POST of body against the client's configured
// endpoint, returning a TransportError on any non-2xx response or
// transport-level failure.
func (c *Client) postOnce(ctx context.Context, body []byte, gzipped bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return hecerr.Transport("failed to build hec request", err)
	}

	req.ContentLength = int64(len(body))
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Splunk "+c.cfg.Token)
	}

	if gzipped {
		req.Header.Set("Content-Encoding", "gzip")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return hecerr.Transport("hec request failed", err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return hecerr.Transport(fmt.Sprintf("hec responded with status %d", resp.StatusCode), nil)
	}

	return nil
}
