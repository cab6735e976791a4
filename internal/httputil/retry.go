// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Backoff delays. Tests override these to avoid real sleeps.
var (
	// RateLimitBaseDelay is the base wait after an HTTP 429. The actual
	// wait grows linearly with the attempt number: base, 2×base, 3×base…
	RateLimitBaseDelay = 5 * time.Second

	// TransientDelay is the fixed wait after a 5xx response or a
	// network-level failure.
	TransientDelay = 2 * time.Second
)

const defaultMaxAttempts = 5

// ErrRetriesExhausted is returned when every attempt failed on a retryable
// condition. It is deliberately distinct from any HTTP response: callers
// must treat it as "operation never completed" (record stays pending), not
// as an authoritative "not found".
var ErrRetriesExhausted = errors.New("retries exhausted")

// DoWithRetry executes an HTTP request with bounded retry.
//
// Per attempt: HTTP 429 sleeps RateLimitBaseDelay × attempt and retries;
// HTTP 5xx and network errors sleep TransientDelay and retry; any other
// status is returned immediately for the caller to interpret. When
// maxAttempts is 0 the default (5) is used. Response bodies of retried
// attempts are drained and closed. If the context is cancelled during a
// backoff wait the function returns ctx.Err().
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxAttempts int) (*http.Response, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := client.Do(req.Clone(ctx))

		var delay time.Duration
		switch {
		case err != nil:
			lastErr = err
			delay = TransientDelay
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			delay = RateLimitBaseDelay * time.Duration(attempt)
		case resp.StatusCode >= 500 && resp.StatusCode < 600:
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			delay = TransientDelay
		default:
			// Success or a non-retryable status; hand it to the caller.
			return resp, nil
		}

		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, maxAttempts, lastErr)
}
