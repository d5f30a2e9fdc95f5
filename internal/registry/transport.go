// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// retryBaseDelay controls the base duration for exponential backoff on
// transient failures. The delay doubles each attempt and is capped at
// maxBackoff. Tests override this to avoid real sleeps.
var retryBaseDelay = 500 * time.Millisecond

const (
	defaultMaxRetries = 3
	maxBackoff        = 8 * time.Second
)

// RetrievalError is the terminal outcome of a fetch: the retry budget was
// exhausted, or the registry answered with a non-retryable status. It
// carries the last underlying cause.
type RetrievalError struct {
	// Attempts is the number of requests issued before giving up.
	Attempts int

	// Status is the last HTTP status received, or 0 for a network error.
	Status int

	// Err is the last underlying cause.
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Pacer sequences outgoing requests. *Limiter is the production
// implementation; tests substitute counting fakes.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Transport issues a single logical GET against the registry API, retrying
// transient failures (network errors, 5xx, 429) with exponential backoff.
// Non-transient failures (other 4xx, unreadable body) fail immediately.
// Every attempt, including retries, passes through the Pacer first.
type Transport struct {
	Client     *http.Client
	Limiter    Pacer
	MaxRetries int
	UserAgent  string
}

// Fetch performs the request and returns the raw response body. On
// exhausted retries or a non-retryable status it returns a *RetrievalError.
func (t *Transport) Fetch(ctx context.Context, url string) ([]byte, error) {
	maxRetries := t.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var lastErr error
	var lastStatus int

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, attempt-1); err != nil {
				return nil, err
			}
		}
		if err := t.Limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", t.UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := t.Client.Do(req)
		if err != nil {
			// Bail out instead of retrying when the context caused the failure.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			lastStatus = 0
			continue
		}

		if resp.StatusCode == http.StatusOK {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				return nil, &RetrievalError{
					Attempts: attempt + 1,
					Status:   resp.StatusCode,
					Err:      fmt.Errorf("reading response body: %w", readErr),
				}
			}
			return body, nil
		}

		// Drain and close before deciding whether to retry.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if !transientStatus(resp.StatusCode) {
			return nil, &RetrievalError{
				Attempts: attempt + 1,
				Status:   resp.StatusCode,
				Err:      fmt.Errorf("registry returned HTTP %d", resp.StatusCode),
			}
		}

		lastErr = fmt.Errorf("registry returned HTTP %d", resp.StatusCode)
		lastStatus = resp.StatusCode
	}

	return nil, &RetrievalError{Attempts: maxRetries + 1, Status: lastStatus, Err: lastErr}
}

// transientStatus reports whether the status warrants a retry: an explicit
// rate-limit signal or a server-side error.
func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// sleepBackoff waits retryBaseDelay doubled per prior retry, capped at
// maxBackoff. retries is the number of retries already performed.
func sleepBackoff(ctx context.Context, retries int) error {
	delay := retryBaseDelay << retries
	if delay > maxBackoff {
		delay = maxBackoff
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
