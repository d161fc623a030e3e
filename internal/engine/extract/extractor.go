// Package extract resolves product title, image and price from a single
// page fetch through ordered strategy chains.
package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/law-makers/giftscrape/internal/engine"
	"github.com/law-makers/giftscrape/internal/engine/fetch"
	"github.com/law-makers/giftscrape/internal/engine/imagesearch"
	"github.com/law-makers/giftscrape/internal/engine/markup"
	"github.com/law-makers/giftscrape/internal/reqctx"
	"github.com/law-makers/giftscrape/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PageFetcher retrieves one page per call
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Page, error)
}

// Extractor runs the full pipeline for a product URL. It is immutable after
// New and may be shared across goroutines.
type Extractor struct {
	fetcher  PageFetcher
	resolver imagesearch.Resolver
	registry *Registry
	hook     Hook
	logger   zerolog.Logger
	minTitle int

	titles Chain
	images Chain
	prices Chain
}

// Option configures an Extractor
type Option func(*Extractor)

// WithHook replaces the default logging hook
func WithHook(h Hook) Option {
	return func(e *Extractor) {
		e.hook = h
	}
}

// WithLogger sets the base logger enriched per extraction
func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) {
		e.logger = l
	}
}

// WithMinTitleLength sets the shortest acceptable title
func WithMinTitleLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.minTitle = n
		}
	}
}

// New creates an Extractor. resolver and registry may be nil.
func New(fetcher PageFetcher, resolver imagesearch.Resolver, registry *Registry, opts ...Option) *Extractor {
	e := &Extractor{
		fetcher:  fetcher,
		resolver: resolver,
		registry: registry,
		hook:     LogHook{},
		logger:   log.Logger,
		minTitle: DefaultMinTitleLength,
		titles:   TitleChain(),
		images:   ImageChain(),
		prices:   PriceChain(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the name of this extractor
func (e *Extractor) Name() string {
	return "ProductExtractor"
}

// Extract never fails: every problem degrades to an absent field or a
// terminal value. The returned URL is always rawURL.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (product models.Product) {
	ctx, rc := reqctx.Start(ctx, rawURL)
	logger := rc.Fields(e.logger.With()).Logger()
	ctx = logger.WithContext(ctx)

	product = models.Product{URL: rawURL, Sources: make(map[string]string, 3)}

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Err(reqctx.Wrap(ctx, fmt.Errorf("extraction panic: %v", r))).
				Msg("Extraction aborted")
			if product.Title == "" {
				product.Title = TitlePlaceholder
				product.Sources[models.FieldTitle] = SourcePlaceholder
			}
			if product.Price == "" {
				product.Price = PriceFree
				product.Sources[models.FieldPrice] = SourceDefault
			}
		}
	}()

	in := e.prepare(ctx, rawURL)

	if title, source, ok := e.titles.Resolve(ctx, in, e.hook); ok {
		product.Title = title
		product.Sources[models.FieldTitle] = source
	} else {
		product.Title = TitlePlaceholder
		product.Sources[models.FieldTitle] = SourcePlaceholder
	}

	if image, source, ok := e.images.Resolve(ctx, in, e.hook); ok {
		product.Image = image
		product.Sources[models.FieldImage] = source
	} else if image, ok := e.searchImage(ctx, product.Title); ok {
		product.Image = image
		product.Sources[models.FieldImage] = SourceExternalSearch
	}

	if price, source, ok := e.prices.Resolve(ctx, in, e.hook); ok {
		product.Price = price
		product.Sources[models.FieldPrice] = source
	} else {
		product.Price = PriceFree
		product.Sources[models.FieldPrice] = SourceDefault
	}

	logger.Info().
		Str("title_source", product.Sources[models.FieldTitle]).
		Str("image_source", product.Sources[models.FieldImage]).
		Str("price_source", product.Sources[models.FieldPrice]).
		Dur("duration", rc.Elapsed()).
		Msg("Extraction completed")

	return product
}

// prepare fetches and parses the page. Failures leave an empty document so
// URL-only strategies still run.
func (e *Extractor) prepare(ctx context.Context, rawURL string) *Input {
	logger := zerolog.Ctx(ctx)
	in := &Input{
		RawURL:   rawURL,
		Doc:      markup.Empty(),
		MinTitle: e.minTitle,
	}

	if u, err := url.Parse(strings.TrimSpace(rawURL)); err == nil {
		in.URL = u
		in.PageURL = u
		if o, ok := e.registry.Lookup(u.Hostname()); ok {
			in.Override = o
			logger.Debug().Str("override", o.Name).Msg("Site override applies")
		}
	}

	if e.fetcher == nil {
		return in
	}

	page, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		logger.Warn().
			Err(reqctx.Wrap(ctx, err)).
			Str("code", string(engine.CodeOf(err))).
			Msg("Fetch failed, continuing without page")
		return in
	}

	doc, err := markup.Parse(page.Body, page.ContentType)
	if err != nil {
		perr := engine.NewEngineError(engine.ErrCodeParseFailure, "failed to parse page", err)
		logger.Warn().Err(reqctx.Wrap(ctx, perr)).Msg("Parse failed, continuing without page")
		return in
	}
	in.Doc = doc

	if final, err := url.Parse(page.FinalURL); err == nil && final.IsAbs() {
		in.PageURL = final
	}
	return in
}

// searchImage consults the external resolver unless the title is the
// placeholder
func (e *Extractor) searchImage(ctx context.Context, title string) (string, bool) {
	if e.resolver == nil || title == "" || title == TitlePlaceholder {
		return "", false
	}
	start := time.Now()
	image, ok := e.resolver.Resolve(ctx, title)
	if e.hook == nil {
		return image, ok
	}
	e.hook.OnStrategy(ctx, Event{
		Field:    models.FieldImage,
		Strategy: SourceExternalSearch,
		Found:    ok,
		Value:    image,
		Duration: time.Since(start),
	})
	return image, ok
}

var _ engine.ProductExtractor = (*Extractor)(nil)
