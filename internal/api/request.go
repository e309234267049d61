package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// FetchError represents a failed fetch: a network failure, an error
// status from the provider, or an unparseable response body.
type FetchError struct {
	Op         string // request path
	StatusCode int    // 0 when the failure is not an HTTP status
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RateLimited reports whether the provider rejected the request with
// HTTP 429. Rate-limited cycles are skipped, never retried.
func (e *FetchError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// retryable reports whether the request is worth one more attempt.
func (e *FetchError) retryable() bool {
	return e.StatusCode >= 500
}

// doRequest performs a single GET against the given path.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &FetchError{Op: path, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Op: path, Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Op: path, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return nil, &FetchError{
			Op:         path,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	return body, nil
}

// get performs a GET with fixed-delay retries and decodes the result.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"delay", c.retryDelay,
				"path", path,
			)

			select {
			case <-ctx.Done():
				return &FetchError{Op: path, Err: ctx.Err()}
			case <-time.After(c.retryDelay):
			}
		}

		body, err := c.doRequest(ctx, path, query)
		if err == nil {
			if err := json.Unmarshal(body, result); err != nil {
				return &FetchError{Op: path, Err: fmt.Errorf("unmarshal response: %w", err)}
			}
			return nil
		}

		lastErr = err

		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) || !fetchErr.retryable() {
			return err
		}
	}

	return lastErr
}
