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
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sabouaram/hecclient/hecerr"
	"github.com/sabouaram/hecclient/logging"
	"github.com/sabouaram/hecclient/retry"
)

// healthWaitPolicy is waitUntilAvailable's fixed linear backoff, per the
// configuration surface's implementation-defined health-check cadence.
var healthWaitPolicy = retry.Linear{Min: 500 * time.Millisecond, Step: 250 * time.Millisecond, Max: 2500 * time.Millisecond}

func (c *Client) healthURL() (string, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return "", hecerr.Config("invalid url", err)
	}

	u.Path = "/services/collector/health"
	u.RawQuery = ""

	return u.String(), nil
}

// CheckAvailable issues one GET against the endpoint's health path,
// succeeding iff the response is 2xx.
func (c *Client) CheckAvailable(ctx context.Context) error {
	target, err := c.healthURL()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return hecerr.Transport("failed to build health request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return hecerr.Transport("health check failed", err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return hecerr.Transport(fmt.Sprintf("health endpoint responded with status %d", resp.StatusCode), nil)
	}

	return nil
}

// WaitUntilAvailable retries CheckAvailable under a linear backoff until it
// succeeds or maxTime elapses, logging once on the first failure and once
// on eventual recovery.
func (c *Client) WaitUntilAvailable(ctx context.Context, maxTime time.Duration) error {
	loggedFailure := false

	_, err := retry.Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.CheckAvailable(ctx)
	}, retry.Options{
		Timeout: maxTime,
		Wait:    healthWaitPolicy,
		Name:    "waitUntilAvailable",
		OnError: func(attempt int, err error, willRetry bool) {
			if !loggedFailure {
				loggedFailure = true
				c.logger.Entry().ErrorAdd(err).Log(logging.WarnLevel, "hec endpoint unavailable")
			}
		},
	})

	if err == nil && loggedFailure {
		c.logger.Entry().Log(logging.InfoLevel, "hec endpoint became available")
	}

	return err
}
