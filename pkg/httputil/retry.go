package httputil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/dsa110/skysearch/pkg/observability"
)

// randFloat returns a jitter draw in [0, 1). Replaced in tests for
// deterministic delay math.
var randFloat = rand.Float64

// RetryConfig controls retry behavior for [FetchWithRetry].
// Zero fields fall back to the corresponding [DefaultRetryConfig] value.
// A RetryConfig is not mutated after construction and may be shared
// between goroutines.
type RetryConfig struct {
	MaxRetries        int           // Retries after the first attempt (total tries = MaxRetries + 1)
	BaseDelay         time.Duration // Delay before the first retry
	MaxDelay          time.Duration // Cap on the computed backoff delay (before jitter)
	Multiplier        float64       // Backoff growth factor per attempt
	JitterFraction    float64       // Additive jitter as a fraction of the computed delay
	Timeout           time.Duration // Per-attempt timeout
	RetryableStatuses map[int]bool  // HTTP statuses that trigger a retry
}

// DefaultRetryConfig returns the standard retry preset: 3 retries with
// 1s base delay doubling up to 10s, 10% jitter, 30s per-attempt timeout.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		BaseDelay:      time.Second,
		MaxDelay:       10 * time.Second,
		Multiplier:     2,
		JitterFraction: 0.1,
		Timeout:        30 * time.Second,
		RetryableStatuses: map[int]bool{
			http.StatusRequestTimeout:      true,
			http.StatusTooManyRequests:     true,
			http.StatusInternalServerError: true,
			http.StatusBadGateway:          true,
			http.StatusServiceUnavailable:  true,
			http.StatusGatewayTimeout:      true,
		},
	}
}

// ConservativeRetryConfig returns a preset for services known to
// rate-limit aggressively: fewer retries, longer delays, more jitter.
func ConservativeRetryConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxRetries = 2
	cfg.BaseDelay = 2 * time.Second
	cfg.MaxDelay = 30 * time.Second
	cfg.JitterFraction = 0.25
	return cfg
}

// withDefaults fills zero fields from the default preset.
func (c RetryConfig) withDefaults() RetryConfig {
	def := DefaultRetryConfig()
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = def.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = def.MaxDelay
	}
	if c.Multiplier <= 0 {
		c.Multiplier = def.Multiplier
	}
	if c.JitterFraction < 0 {
		c.JitterFraction = def.JitterFraction
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.RetryableStatuses == nil {
		c.RetryableStatuses = def.RetryableStatuses
	}
	return c
}

// RequestOptions describes the request issued by [FetchWithRetry].
// The body is retained as a byte slice so the request can be rebuilt
// on every attempt.
type RequestOptions struct {
	Method string      // Defaults to GET
	Header http.Header // Applied to every attempt
	Body   []byte      // Request body (nil for no body)
}

// FetchWithRetry performs an HTTP request with a per-attempt timeout and
// exponential backoff for transient failures.
//
// Per attempt:
//   - The attempt runs under a context that fires on the caller's ctx or
//     on cfg.Timeout, whichever comes first. The timer is always released.
//   - A 2xx response, a non-retryable status, or the last allowed attempt
//     returns the response as-is; the caller inspects the status itself.
//   - A retryable status with attempts remaining drains the body, sleeps
//     the computed delay, and retries.
//   - A transport error retries if attempts remain; on exhaustion the
//     final error is returned wrapped.
//
// If the caller's ctx is cancelled at any point, FetchWithRetry returns
// ctx.Err() immediately; cancellation is never retried and remains
// checkable via errors.Is(err, context.Canceled).
//
// A Retry-After header carrying an integer number of seconds takes
// precedence over backoff math. Jitter only ever lengthens the delay, so
// for a fixed jitter draw the delay is monotonically non-decreasing in
// the attempt number up to MaxDelay.
//
// The caller must close the returned response's Body; closing it also
// releases the per-attempt timeout.
func FetchWithRetry(ctx context.Context, client *http.Client, url string, opts RequestOptions, cfg RetryConfig) (*http.Response, error) {
	cfg = cfg.withDefaults()
	if client == nil {
		client = http.DefaultClient
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		resp, err := doAttempt(ctx, client, method, url, opts, cfg.Timeout)
		if err != nil {
			// Caller-initiated cancellation is terminal, never a retry.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if attempt == cfg.MaxRetries {
				break
			}
			if err := sleep(ctx, retryDelay(cfg, attempt, "")); err != nil {
				return nil, err
			}
			continue
		}

		ok := resp.StatusCode >= 200 && resp.StatusCode < 300
		if ok || !cfg.RetryableStatuses[resp.StatusCode] || attempt == cfg.MaxRetries {
			return resp, nil
		}

		retryAfter := resp.Header.Get("Retry-After")
		drain(resp)
		if err := sleep(ctx, retryDelay(cfg, attempt, retryAfter)); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}

// doAttempt issues a single request under a per-attempt timeout stacked
// on the caller's context. The timeout is released when the response
// body is closed, or immediately on error.
func doAttempt(ctx context.Context, client *http.Client, method, url string, opts RequestOptions, timeout time.Duration) (*http.Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, url, body)
	if err != nil {
		cancel()
		return nil, err
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	observability.HTTP().OnRequest(ctx, method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		cancel()
		observability.HTTP().OnError(ctx, method, req.URL.Host, req.URL.Path, err)
		return nil, err
	}
	observability.HTTP().OnResponse(ctx, method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelBody releases the per-attempt timeout when the body is closed,
// so the timer cannot fire after the response has been consumed.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// retryDelay computes the pause before the next attempt. A parseable
// integer Retry-After header wins verbatim; otherwise exponential
// backoff capped at MaxDelay plus additive jitter.
func retryDelay(cfg RetryConfig, attempt int, retryAfter string) time.Duration {
	if retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	d := float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt))
	d = math.Min(d, float64(cfg.MaxDelay))
	d += d * cfg.JitterFraction * randFloat()
	return time.Duration(d)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// drain consumes and closes a response body so the underlying
// connection can be reused for the retry.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
