package spotify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 500 * time.Millisecond
)

// doRequestWithRetry sends a bodiless request, retrying transport errors,
// 429 and 5xx with exponential backoff. Retry-After overrides the backoff.
// Exhausted retries wrap domain.ErrCatalogUnavailable.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	attempts := c.maxRetries
	if attempts <= 0 {
		attempts = defaultMaxRetries
	}
	backoff := c.baseBackoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	ctx := req.Context()
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("spotify adapter: request canceled: %w", err)
		}

		// #nosec G107 -- URL built from the configured API base URL
		resp, err := c.httpClient.Do(req)
		retryAfter, retry := shouldRetry(resp, err)
		if !retry {
			return resp, err
		}

		fields := []zap.Field{
			zap.String("path", req.URL.Path),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", attempts),
		}
		if err != nil {
			lastErr = err
			fields = append(fields, zap.Error(err))
		} else {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			fields = append(fields, zap.Int("status", resp.StatusCode))
			_ = resp.Body.Close()
		}
		if attempt == attempts-1 {
			break
		}
		c.log.Warn("spotify request failed, retrying", fields...)

		delay := backoff * time.Duration(1<<attempt)
		if retryAfter > 0 {
			delay = retryAfter
		}
		if err := sleepWithContext(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("spotify adapter: %s failed after %d attempts: %v: %w",
		req.URL.Path, attempts, lastErr, domain.ErrCatalogUnavailable)
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp.Header.Get("Retry-After")), true
	}
	return 0, false
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(v); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}
	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("spotify adapter: request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
