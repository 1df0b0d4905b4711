// Package httputil provides the HTTP transport used by catalog clients.
//
// # Retry
//
// [FetchWithRetry] wraps a single logical request with automatic retry
// for transient failures:
//
//   - Network errors and per-attempt timeouts
//   - 408/429/5xx responses listed in the config's retryable set
//
// It uses exponential backoff with additive jitter to avoid thundering
// herd, and honors Retry-After headers verbatim when present:
//
//	resp, err := httputil.FetchWithRetry(ctx, client, url,
//	    httputil.RequestOptions{Method: http.MethodPost, Body: form},
//	    httputil.ConservativeRetryConfig())
//
// # Configuration
//
// Two presets exist. [DefaultRetryConfig] suits most services;
// [ConservativeRetryConfig] backs off harder for services that are known
// to rate-limit (the VizieR TAP endpoint among them). Any zero field in
// a caller-supplied config falls back to the default preset.
package httputil
