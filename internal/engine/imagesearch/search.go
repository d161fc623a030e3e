// Package imagesearch finds a product image from a title when the page
// itself offered none.
package imagesearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/law-makers/giftscrape/internal/cache"
	"github.com/law-makers/giftscrape/internal/engine"
	"github.com/law-makers/giftscrape/internal/ratelimit"
	"github.com/rs/zerolog"
)

// Defaults for the Custom Search JSON API
const (
	DefaultEndpoint = "https://www.googleapis.com/customsearch/v1"
	DefaultTimeout  = 5 * time.Second
	DefaultRPS      = 1.0
	MaxQueryTokens  = 6
	maxResponseSize = 1 << 20
)

// Resolver looks up an image URL for a title. Any failure is reported as
// not found.
type Resolver interface {
	Resolve(ctx context.Context, titleHint string) (string, bool)
}

// Config holds the search client settings. An empty APIKey disables it.
type Config struct {
	Endpoint string
	APIKey   string
	EngineID string
	RPS      float64
	Timeout  time.Duration

	// CacheSize bounds remembered queries; negative disables the cache
	CacheSize int
	CacheTTL  time.Duration
}

// Client is a Resolver backed by an image search HTTP API
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimit.RateLimiter
	results *cache.LRU[string, string]
}

// New creates a Client. A nil client uses http.DefaultClient.
func New(cfg Config, client *http.Client) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RPS <= 0 {
		cfg.RPS = DefaultRPS
	}
	if client == nil {
		client = http.DefaultClient
	}
	c := &Client{
		cfg:     cfg,
		client:  client,
		limiter: ratelimit.NewDomainLimiter(cfg.RPS, 1),
	}
	if cfg.CacheSize >= 0 {
		c.results = cache.NewLRU[string, string](cfg.CacheSize, cfg.CacheTTL)
	}
	return c
}

// Enabled reports whether the client has credentials
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.APIKey != ""
}

// Resolve implements Resolver
func (c *Client) Resolve(ctx context.Context, titleHint string) (string, bool) {
	logger := zerolog.Ctx(ctx)
	query := Query(titleHint)

	// An empty cached link records a query that had no results
	if c.results != nil {
		if link, ok := c.results.Get(query); ok {
			logger.Debug().Str("query", query).Bool("found", link != "").Msg("Image search cache hit")
			return link, link != ""
		}
	}

	link, err := c.Search(ctx, query)
	if err != nil {
		evt := logger.Warn()
		if engine.CodeOf(err) == engine.ErrCodeValidation {
			evt = logger.Debug()
		}
		evt.Err(err).Msg("Image search unavailable")
		if c.results != nil && errors.Is(err, engine.ErrNoResults) {
			c.results.Set(query, "")
		}
		return "", false
	}
	if c.results != nil {
		c.results.Set(query, link)
	}
	return link, true
}

// Search runs one query and returns the first image link
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	if !c.Enabled() {
		return "", engine.NewEngineError(engine.ErrCodeValidation, "image search has no API key", engine.ErrDisabled)
	}
	if query == "" {
		return "", engine.NewEngineError(engine.ErrCodeValidation, "empty query", engine.ErrNoResults)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx, c.cfg.Endpoint); err != nil {
		return "", engine.ClassifyTransportError("rate limiter", err)
	}

	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", engine.NewEngineError(engine.ErrCodeResolverFailure, "bad endpoint", engine.ErrInvalidURL)
	}
	params := u.Query()
	params.Set("key", c.cfg.APIKey)
	params.Set("cx", c.cfg.EngineID)
	params.Set("q", query)
	params.Set("searchType", "image")
	params.Set("num", "1")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", engine.NewEngineError(engine.ErrCodeResolverFailure, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", engine.ClassifyTransportError("image search request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", engine.NewEngineError(engine.ErrCodeResolverFailure,
			fmt.Sprintf("HTTP %d", resp.StatusCode), engine.ErrBadStatus).
			WithDetail("status", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", engine.ClassifyTransportError("failed to read search response", err)
	}

	link, err := jsonparser.GetString(body, "items", "[0]", "link")
	if err != nil {
		if _, typ, _, perr := jsonparser.Get(body); perr != nil || typ != jsonparser.Object {
			return "", engine.NewEngineError(engine.ErrCodeParseFailure, "malformed search response", engine.ErrParseError)
		}
		return "", engine.NewEngineError(engine.ErrCodeResolverFailure, "no image found", engine.ErrNoResults).
			WithDetail("query", query)
	}
	link = strings.TrimSpace(link)
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return "", engine.NewEngineError(engine.ErrCodeResolverFailure, "result is not an absolute URL", engine.ErrNoResults)
	}
	return link, nil
}

// Query keeps the first MaxQueryTokens words of title
func Query(title string) string {
	fields := strings.Fields(title)
	if len(fields) > MaxQueryTokens {
		fields = fields[:MaxQueryTokens]
	}
	return strings.Join(fields, " ")
}

var _ Resolver = (*Client)(nil)
