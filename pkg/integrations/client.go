package integrations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/routegraph/pkg/cache"
	rgerrors "github.com/matzehuels/routegraph/pkg/errors"
	"github.com/matzehuels/routegraph/pkg/httputil"
	"github.com/matzehuels/routegraph/pkg/observability"
)

// Options configures a Client. Zero values select the defaults noted on
// each field.
type Options struct {
	// BaseURLs are candidate API roots tried in order on every request.
	// Each is passed through NormalizeBaseURL.
	BaseURLs []string

	// Token is sent as a bearer token.
	Token string

	// Timeout bounds each individual HTTP request (default 10s).
	Timeout time.Duration

	// Retries is the number of full failover passes (default 2).
	Retries int

	// RetryDelay is the initial backoff between passes (default 500ms).
	RetryDelay time.Duration

	// RateLimit caps requests per second across all hosts; 0 disables it.
	RateLimit float64

	// Cache stores successful response bodies. Nil disables caching.
	Cache cache.Cache

	// CacheTTL is the lifetime of cached responses; 0 disables caching
	// even when Cache is set.
	CacheTTL time.Duration

	// Logger receives failover and status logging (default log.Default()).
	Logger *log.Logger

	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}

// Client performs GET requests against a list of candidate hosts with
// failover, retry, optional rate limiting and response caching.
type Client struct {
	http       *http.Client
	bases      []string
	headers    map[string]string
	retries    int
	retryDelay time.Duration
	limiter    *httputil.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
	keyer      cache.Keyer
	logger     *log.Logger

	mu    sync.Mutex
	stats map[string]int
	total int
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		http:       opts.HTTPClient,
		headers:    map[string]string{"Content-Type": "application/json"},
		retries:    opts.Retries,
		retryDelay: opts.RetryDelay,
		limiter:    httputil.NewLimiter(opts.RateLimit, 1),
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		logger:     opts.Logger,
		stats:      make(map[string]int),
	}
	if c.http == nil {
		c.http = NewHTTPClient(opts.Timeout)
	}
	if c.retries <= 0 {
		c.retries = DefaultRetries
	}
	if c.retryDelay <= 0 {
		c.retryDelay = 500 * time.Millisecond
	}
	if c.cache == nil {
		c.cache = cache.NewNullCache()
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if opts.Token != "" {
		c.headers["Authorization"] = "Bearer " + opts.Token
	}
	for _, raw := range opts.BaseURLs {
		if u := NormalizeBaseURL(raw); u != "" {
			c.bases = append(c.bases, u)
		}
	}
	if len(c.bases) == 0 {
		c.logger.Warn("no API URL configured")
	}
	primary := ""
	if len(c.bases) > 0 {
		primary = c.bases[0]
	}
	c.keyer = cache.NewScopedKeyer(nil, cache.Scope(primary, opts.Token))
	return c
}

// BaseURLs returns the normalized candidate hosts.
func (c *Client) BaseURLs() []string { return c.bases }

// Get fetches path (relative to the API root) with the given query and
// returns the raw response body.
//
// Errors:
//   - ErrNotFound on 404
//   - *errors.Error UPSTREAM_REJECTED for any other 4xx
//   - *errors.Error UPSTREAM_UNAVAILABLE when every host failed on every pass
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	c.record(path)

	key := c.keyer.ResponseKey(path, query.Encode())
	if c.cacheTTL > 0 {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, "response")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "response")
	}

	var body []byte
	err := httputil.Retry(ctx, c.retries, c.retryDelay, func() error {
		var err error
		body, err = c.failover(ctx, path, query)
		return err
	})
	if err != nil {
		var re *httputil.RetryableError
		if errors.As(err, &re) {
			err = re.Err
		}
		return nil, err
	}

	if c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "response", len(body))
		} else {
			c.logger.Debug("response cache write failed", "path", path, "err", err)
		}
	}
	return body, nil
}

// failover makes one pass over the candidate hosts.
func (c *Client) failover(ctx context.Context, path string, query url.Values) ([]byte, error) {
	var errs []error
	for _, base := range c.bases {
		body, err := c.doRequest(ctx, base, path, query)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, ErrNetwork) {
			return nil, err
		}
		c.logger.Warn("API failover triggered", "host", base, "err", err)
		observability.HTTP().OnFailover(ctx, hostOf(base))
		errs = append(errs, err)
	}

	c.logger.Error("all API endpoints failed", "path", path, "attempted", len(c.bases))
	return nil, httputil.Retryable(
		rgerrors.Wrap(rgerrors.ErrCodeUpstreamUnavailable, errors.Join(errs...), "Upstream PBX Unreachable"))
}

func (c *Client) doRequest(ctx context.Context, base, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host := hostOf(base)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	c.logger.Debug("API call", "method", http.MethodGet, "url", u)
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}

	if err := c.checkStatus(resp.StatusCode, u, body); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) checkStatus(code int, u string, body []byte) error {
	switch {
	case code >= 500:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	case code == http.StatusNotFound:
		c.logger.Info("resource not found (404)", "url", u)
		return ErrNotFound
	case code >= 400:
		c.logger.Error("API error", "status", code, "url", u, "body", string(body))
		return rgerrors.Rejected(code, string(body))
	default:
		return nil
	}
}

func (c *Client) record(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats[StatPath(path)]++
	c.total++
}

// CallStats reports how many requests were issued per endpoint template.
type CallStats struct {
	Total     int
	Endpoints map[string]int
}

// Stats returns a snapshot of the call counters.
func (c *Client) Stats() CallStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := CallStats{Total: c.total, Endpoints: make(map[string]int, len(c.stats))}
	for k, v := range c.stats {
		s.Endpoints[k] = v
	}
	return s
}

// LogStats writes the call counters at debug level.
func (c *Client) LogStats() {
	s := c.Stats()
	paths := make([]string, 0, len(s.Endpoints))
	for p := range s.Endpoints {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	c.logger.Debug("API call statistics", "total", s.Total)
	for _, p := range paths {
		c.logger.Debug("  endpoint", "path", p, "calls", s.Endpoints[p])
	}
}

func hostOf(base string) string {
	if u, err := url.Parse(base); err == nil && u.Host != "" {
		return u.Host
	}
	return base
}
