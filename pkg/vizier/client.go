package vizier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/dsa110/skysearch/pkg/cache"
	"github.com/dsa110/skysearch/pkg/catalog"
	"github.com/dsa110/skysearch/pkg/httputil"
	"github.com/dsa110/skysearch/pkg/observability"
	"github.com/dsa110/skysearch/pkg/ratelimit"
)

const (
	// DefaultBaseURL is the VizieR TAP synchronous query endpoint.
	DefaultBaseURL = "https://tapvizier.cds.unistra.fr/TAPVizieR/tap/sync"

	// MaxResults is the hard per-query row cap. A result with exactly
	// this many rows is flagged truncated.
	MaxResults = 1000

	// DefaultCacheTTL is how long query results stay fresh.
	DefaultCacheTTL = 5 * time.Minute

	// cachePrefix namespaces this client's keys in shared backends.
	cachePrefix = "vizier:"
)

// Client queries astronomical catalogs through the VizieR TAP service.
//
// Every outbound request is serialized through one rate limiter, retried
// on transient failures, and (for the cached variants) stored under a
// quantized spatial key. A Client owns its cache and limiter rather than
// sharing module-level state, so tests and embedders can run isolated
// instances.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	http     *http.Client
	baseURL  string
	limiter  *ratelimit.Limiter
	cache    cache.Cache
	cacheTTL time.Duration
	retry    httputil.RetryConfig
	maxRows  int
	logger   *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithBaseURL points the client at a different TAP endpoint (tests,
// mirrors).
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithCache sets the cache backend. Pass cache.NewNullCache() to
// disable caching.
func WithCache(b cache.Cache) Option { return func(c *Client) { c.cache = b } }

// WithCacheTTL sets how long cached results stay fresh.
func WithCacheTTL(ttl time.Duration) Option { return func(c *Client) { c.cacheTTL = ttl } }

// WithRetryConfig overrides the retry preset.
func WithRetryConfig(cfg httputil.RetryConfig) Option { return func(c *Client) { c.retry = cfg } }

// WithSpacing sets the minimum gap between outbound requests.
func WithSpacing(d time.Duration) Option {
	return func(c *Client) { c.limiter = ratelimit.New(d) }
}

// WithLogger sets the logger used for parse warnings and query failures.
func WithLogger(l *log.Logger) Option { return func(c *Client) { c.logger = l } }

// NewClient creates a VizieR client with an in-memory cache, the
// conservative retry preset (VizieR throttles eager clients), and the
// default request spacing.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{},
		baseURL:  DefaultBaseURL,
		limiter:  ratelimit.New(ratelimit.DefaultSpacing),
		cache:    cache.NewMemoryCache(),
		cacheTTL: DefaultCacheTTL,
		retry:    httputil.ConservativeRetryConfig(),
		maxRows:  MaxResults,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryCatalog performs a cone search against one catalog.
//
// The radius is given in arcminutes and converted to degrees for the
// remote query. Any failure other than cancellation of ctx is folded
// into the result's Error field with empty sources, so a multi-catalog
// fan-out can never be torn down by one broken catalog. Cancellation
// of ctx propagates as a non-nil error and is never converted.
func (c *Client) QueryCatalog(ctx context.Context, def catalog.Definition, raDeg, decDeg, radiusArcmin float64) (*catalog.QueryResult, error) {
	observability.Query().OnQueryStart(ctx, def.ID)
	start := time.Now()

	res, err := c.query(ctx, def, raDeg, decDeg, radiusArcmin)
	if err != nil {
		if ctx.Err() != nil {
			observability.Query().OnQueryComplete(ctx, def.ID, 0, time.Since(start), ctx.Err())
			return nil, ctx.Err()
		}
		c.logger.Warn("catalog query failed", "catalog", def.ID, "err", err)
		observability.Query().OnQueryComplete(ctx, def.ID, 0, time.Since(start), err)
		return catalog.Failed(def.ID, err), nil
	}
	observability.Query().OnQueryComplete(ctx, def.ID, res.Count, time.Since(start), nil)
	return res, nil
}

// query performs the rate-limited transport call and parses the body.
func (c *Client) query(ctx context.Context, def catalog.Definition, raDeg, decDeg, radiusArcmin float64) (*catalog.QueryResult, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	radiusDeg := radiusArcmin / 60

	form := url.Values{
		"REQUEST": {"doQuery"},
		"LANG":    {"ADQL"},
		"FORMAT":  {"csv"},
		"QUERY":   {buildConeQuery(def, raDeg, decDeg, radiusDeg, c.maxRows)},
	}

	var resp *http.Response
	err := c.limiter.Do(ctx, func(ctx context.Context) error {
		r, err := httputil.FetchWithRetry(ctx, c.http, c.baseURL, httputil.RequestOptions{
			Method: http.MethodPost,
			Header: http.Header{
				"Content-Type": {"application/x-www-form-urlencoded"},
				"Accept":       {"text/csv"},
			},
			Body: []byte(form.Encode()),
		}, c.retry)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vizier returned status %d", resp.StatusCode)
	}

	sources, err := parseSources(resp.Body, def, c.logger)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &catalog.QueryResult{
		Catalog:   def.ID,
		Sources:   sources,
		Count:     len(sources),
		Truncated: len(sources) == c.maxRows,
	}, nil
}

// QueryCatalogCached is [Client.QueryCatalog] behind the cache layer.
//
// The cache key quantizes RA/Dec to 4 decimal places and the radius to
// 1, so pointings that differ below those thresholds share an entry.
// Only error-free results are stored; a failed query is always retried
// on the next call. Expired entries are detected lazily on read.
//
// Two concurrent calls for the same key can both miss and both hit the
// network; there is no single-flight de-duplication.
func (c *Client) QueryCatalogCached(ctx context.Context, def catalog.Definition, raDeg, decDeg, radiusArcmin float64) (*catalog.QueryResult, error) {
	key := cachePrefix + coneKey(def.ID, raDeg, decDeg, radiusArcmin)

	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		var res catalog.QueryResult
		if err := json.Unmarshal(data, &res); err == nil {
			observability.Cache().OnCacheHit(ctx, "vizier")
			return &res, nil
		}
		// Corrupt entry: drop it and fall through to a fresh query.
		_ = c.cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "vizier")

	res, err := c.QueryCatalog(ctx, def, raDeg, decDeg, radiusArcmin)
	if err != nil {
		return nil, err
	}
	if res.Error == "" {
		if data, err := json.Marshal(res); err == nil {
			if err := c.cache.Set(ctx, key, data, c.cacheTTL); err == nil {
				observability.Cache().OnCacheSet(ctx, "vizier", len(data))
			}
		}
	}
	return res, nil
}

// QueryMultipleCatalogs runs one cached cone search per definition and
// assembles the results by catalog ID.
//
// Per-catalog failures surface as that entry's Error field, never as a
// returned error, so one broken catalog cannot prevent the others from
// returning. All requests share the client's rate limiter, so the
// external service still sees them strictly spaced. The only returned
// error is cancellation of ctx.
func (c *Client) QueryMultipleCatalogs(ctx context.Context, defs []catalog.Definition, raDeg, decDeg, radiusArcmin float64) (map[string]*catalog.QueryResult, error) {
	results := make([]*catalog.QueryResult, len(defs))

	g, gctx := errgroup.WithContext(ctx)
	for i, def := range defs {
		g.Go(func() error {
			res, err := c.QueryCatalogCached(gctx, def, raDeg, decDeg, radiusArcmin)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*catalog.QueryResult, len(defs))
	for _, res := range results {
		out[res.Catalog] = res
	}
	return out, nil
}

// coneKey builds the quantized cache key for a cone search.
func coneKey(catalogID string, raDeg, decDeg, radiusArcmin float64) string {
	return fmt.Sprintf("%s:%.4f:%.4f:%.1f", catalogID, raDeg, decDeg, radiusArcmin)
}
