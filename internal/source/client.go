// Package source holds the provider adapters (TMDb, OMDb, Wikidata) and the
// shared HTTP client they use.
package source

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/manya9155/Hallucination-Detector/internal/cache"
	verrors "github.com/manya9155/Hallucination-Detector/internal/errors"
	"github.com/manya9155/Hallucination-Detector/internal/model"
	"github.com/manya9155/Hallucination-Detector/internal/util"
	"github.com/manya9155/Hallucination-Detector/internal/worker"
)

// retrySleepFunc waits between attempts (injectable for tests)
var retrySleepFunc = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Client performs provider GET requests with timeout, politeness and bounded
// retry. Responses are cached only when the request context carries a cache
// scope (see cache.WithScope). It holds no credentials; adapters add their
// own query parameters and headers.
type Client struct {
	httpClient *http.Client
	limiter    *worker.Limiter
	cacheTTL   time.Duration
	userAgent  string
	maxBytes   int64
	attempts   int
	baseDelay  time.Duration
	logger     *log.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLimiter shares a limiter between clients
func WithLimiter(l *worker.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithLogger sets the debug logger
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient builds a client from the HTTP, retry and rate limiting sections of cfg
func NewClient(cfg model.Config, opts ...Option) *Client {
	proxyFunc := util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, "")

	transport := &http.Transport{Proxy: proxyFunc}
	if cfg.HTTP.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in flag
	}

	attempts := cfg.Retry.Attempts
	if attempts < 1 {
		attempts = 1
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   cfg.HTTP.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		limiter:   worker.NewLimiterFromConfig(cfg.RateLimiting),
		cacheTTL:  cfg.Cache.TTL,
		userAgent: cfg.HTTP.UserAgent,
		maxBytes:  cfg.HTTP.MaxBodyBytes,
		attempts:  attempts,
		baseDelay: cfg.Retry.BaseDelay,
		logger:    log.New(io.Discard, "", 0),
	}
	if c.maxBytes <= 0 {
		c.maxBytes = 2_000_000
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON fetches rawURL and decodes the JSON body into out.
//
// found is false with a nil error for "no data" answers: 404 and other
// non-retryable 4xx statuses, or a body that is not valid JSON. Rejected
// credentials (401/403) return E_PROVIDER_AUTH. Transport failures, 429 and
// 5xx are retried with doubling delay; when attempts run out the error is
// E_PROVIDER_UNAVAILABLE.
func (c *Client) GetJSON(ctx context.Context, provider, rawURL string, headers map[string]string, out interface{}) (found bool, err error) {
	var store cache.Cache = cache.Nop{}
	if scoped, ok := cache.FromContext(ctx); ok {
		store = scoped
	}
	key := cache.Key(provider, rawURL)
	if body, ok := store.Get(key); ok {
		if err := json.Unmarshal(body, out); err == nil {
			c.logger.Printf("%s: cache hit %s", provider, redactURL(rawURL))
			return true, nil
		}
		_ = store.Delete(key)
	}

	var lastErr error
	delay := c.baseDelay
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err := c.limiter.Acquire(ctx, rawURL); err != nil {
			return false, err
		}

		body, status, err := c.do(ctx, rawURL, headers)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			lastErr = err
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return false, verrors.Newf(verrors.EProviderAuth, "%s rejected credentials (status %d)", provider, status)
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("status %d", status)
		case status < 200 || status >= 300:
			c.logger.Printf("%s: status %d for %s, treating as no data", provider, status, redactURL(rawURL))
			return false, nil
		default:
			if err := json.Unmarshal(body, out); err != nil {
				c.logger.Printf("%s: malformed JSON from %s: %v", provider, redactURL(rawURL), err)
				return false, nil
			}
			_ = store.Set(key, body, c.cacheTTL)
			return true, nil
		}

		c.logger.Printf("%s: attempt %d/%d failed: %v", provider, attempt, c.attempts, lastErr)
		if attempt < c.attempts {
			if err := retrySleepFunc(ctx, delay); err != nil {
				return false, err
			}
			delay *= 2
		}
	}

	return false, verrors.Wrap(verrors.EProviderUnavailable, provider, lastErr)
}

func (c *Client) do(ctx context.Context, rawURL string, headers map[string]string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// redactURL drops credential query parameters before a URL is logged
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	for _, k := range []string{"api_key", "apikey"} {
		if q.Has(k) {
			q.Set(k, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
