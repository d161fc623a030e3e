// internal/engine/fetch/fetcher.go
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/law-makers/giftscrape/internal/engine"
	"github.com/law-makers/giftscrape/internal/proxy"
	urlutil "github.com/law-makers/giftscrape/internal/utils/url"
	"github.com/rs/zerolog"
)

// Browser identity sent with every page request
const (
	DefaultUserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7"
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	DefaultMaxBodyBytes   = 10 * 1024 * 1024
	DefaultTimeout        = 10 * time.Second
)

// Page is the raw outcome of a successful fetch
type Page struct {
	URL          string
	FinalURL     string
	StatusCode   int
	ContentType  string
	Body         []byte
	FetchedAt    time.Time
	ResponseTime time.Duration
}

// Options configures the browser identity and bounds of a Fetcher
type Options struct {
	Timeout        time.Duration
	UserAgent      string
	AcceptLanguage string
	Headers        map[string]string
	MaxBodyBytes   int64
}

// Fetcher performs exactly one GET per call. It never parses content and
// never retries; callers treat any error as an empty page.
type Fetcher struct {
	client  *http.Client
	proxies *proxy.ProxyPool
	opts    Options
}

// New creates a Fetcher. proxies may be nil for direct connections.
func New(client *http.Client, proxies *proxy.ProxyPool, opts Options) *Fetcher {
	if client == nil {
		client = &http.Client{Transport: NewTransport(TransportOptions{})}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.AcceptLanguage == "" {
		opts.AcceptLanguage = DefaultAcceptLanguage
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Fetcher{
		client:  client,
		proxies: proxies,
		opts:    opts,
	}
}

// Name returns the name of this fetcher
func (f *Fetcher) Name() string {
	return "PageFetcher"
}

// Fetch retrieves rawURL within the configured timeout
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx)

	if err := urlutil.ValidateURL(rawURL); err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeFetchFailure, err.Error(), engine.ErrInvalidURL).
			WithDetail("url", rawURL)
	}
	u, _ := url.Parse(strings.TrimSpace(rawURL))

	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	var proxyURL string
	if f.proxies != nil {
		proxyURL = f.proxies.GetNext()
		ctx = WithProxy(ctx, proxyURL)
	}

	logger.Debug().
		Str("fetcher", f.Name()).
		Bool("proxied", proxyURL != "").
		Dur("timeout", f.opts.Timeout).
		Msg("Starting fetch")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeFetchFailure, "failed to create request", err)
	}

	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", DefaultAccept)
	req.Header.Set("Accept-Language", f.opts.AcceptLanguage)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Cache-Control", "no-cache")

	for key, value := range f.opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if proxyURL != "" {
			f.proxies.MarkFailed(proxyURL)
		}
		return nil, engine.ClassifyTransportError("failed to fetch URL", err)
	}
	defer resp.Body.Close()

	if proxyURL != "" {
		f.proxies.MarkHealthy(proxyURL)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, engine.NewEngineError(engine.ErrCodeFetchFailure,
			fmt.Sprintf("HTTP %d", resp.StatusCode), engine.ErrBadStatus).
			WithDetail("status", resp.StatusCode)
	}

	body, err := readBody(resp, f.opts.MaxBodyBytes)
	if err != nil {
		if engine.IsTimeout(err) {
			return nil, engine.ClassifyTransportError("failed to read body", err)
		}
		return nil, engine.NewEngineError(engine.ErrCodeFetchFailure, "failed to read body", err)
	}

	finalURL := u.String()
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	page := &Page{
		URL:          rawURL,
		FinalURL:     finalURL,
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		Body:         body,
		FetchedAt:    time.Now(),
		ResponseTime: time.Since(start),
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Int64("response_time_ms", page.ResponseTime.Milliseconds()).
		Msg("Fetch completed")

	return page, nil
}
