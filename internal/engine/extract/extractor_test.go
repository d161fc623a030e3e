package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/law-makers/giftscrape/internal/engine"
	"github.com/law-makers/giftscrape/internal/engine/fetch"
	"github.com/law-makers/giftscrape/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher serves fixed bodies keyed by URL and fails everything else
type stubFetcher struct {
	pages map[string]string
	calls atomic.Int32
}

func (s *stubFetcher) Fetch(ctx context.Context, rawURL string) (*fetch.Page, error) {
	s.calls.Add(1)
	body, ok := s.pages[rawURL]
	if !ok {
		return nil, engine.NewEngineError(engine.ErrCodeFetchFailure, "HTTP 503", engine.ErrBadStatus)
	}
	return &fetch.Page{
		URL:         rawURL,
		FinalURL:    rawURL,
		StatusCode:  http.StatusOK,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(body),
	}, nil
}

type stubResolver struct {
	image string
	calls atomic.Int32
	hints []string
	mu    sync.Mutex
}

func (s *stubResolver) Resolve(ctx context.Context, titleHint string) (string, bool) {
	s.calls.Add(1)
	s.mu.Lock()
	s.hints = append(s.hints, titleHint)
	s.mu.Unlock()
	return s.image, s.image != ""
}

// recordingHook keeps every strategy evaluation
type recordingHook struct {
	mu     sync.Mutex
	events []Event
}

func (h *recordingHook) OnStrategy(_ context.Context, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}

func (h *recordingHook) evaluated(field string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var names []string
	for _, ev := range h.events {
		if ev.Field == field {
			names = append(names, ev.Strategy)
		}
	}
	return names
}

func newTestExtractor(t *testing.T, pages map[string]string, resolver *stubResolver, hook Hook) (*Extractor, *stubFetcher) {
	t.Helper()
	reg, err := NewRegistry(testOverrides)
	require.NoError(t, err)

	fetcher := &stubFetcher{pages: pages}
	opts := []Option{}
	if hook != nil {
		opts = append(opts, WithHook(hook))
	}
	if resolver == nil {
		return New(fetcher, nil, reg, opts...), fetcher
	}
	return New(fetcher, resolver, reg, opts...), fetcher
}

const widgetPage = `<html><head>
<meta property="og:title" content="Widget Pro">
<title>Widget Pro - Best Shop</title>
<script type="application/ld+json">{"@type":"Product","name":"Widget Pro","offers":{"@type":"Offer","price":"49.90"}}</script>
</head><body><p>No pictures here</p></body></html>`

func TestExtract_WidgetPro(t *testing.T) {
	const u = "https://shop.test/widget-pro"

	t.Run("with external image", func(t *testing.T) {
		resolver := &stubResolver{image: "https://img.test/widget.jpg"}
		ex, _ := newTestExtractor(t, map[string]string{u: widgetPage}, resolver, nil)

		p := ex.Extract(context.Background(), u)
		assert.Equal(t, u, p.URL)
		assert.Equal(t, "Widget Pro", p.Title)
		assert.Equal(t, "49.90 €", p.Price)
		assert.Equal(t, "https://img.test/widget.jpg", p.Image)
		assert.Equal(t, SourceExternalSearch, p.Sources[models.FieldImage])
		assert.Equal(t, StrategyStructuredData, p.Sources[models.FieldPrice])
		assert.Equal(t, []string{"Widget Pro"}, resolver.hints)
	})

	t.Run("without resolver", func(t *testing.T) {
		ex, _ := newTestExtractor(t, map[string]string{u: widgetPage}, nil, nil)

		p := ex.Extract(context.Background(), u)
		assert.Equal(t, "Widget Pro", p.Title)
		assert.Equal(t, "49.90 €", p.Price)
		assert.Empty(t, p.Image)
		_, hasSource := p.Sources[models.FieldImage]
		assert.False(t, hasSource)
	})
}

func TestExtract_TitleShortCircuit(t *testing.T) {
	const u = "https://shop.test/widget-pro"
	hook := &recordingHook{}
	ex, _ := newTestExtractor(t, map[string]string{u: widgetPage}, nil, hook)

	p := ex.Extract(context.Background(), u)
	assert.Equal(t, "Widget Pro", p.Title)
	assert.Equal(t, []string{StrategyOGTitle}, hook.evaluated(models.FieldTitle),
		"document title must not be consulted once og:title succeeds")
}

func TestExtract_NoExternalCallWithoutTitle(t *testing.T) {
	resolver := &stubResolver{image: "https://img.test/x.jpg"}
	ex, _ := newTestExtractor(t, nil, resolver, nil)

	for _, u := range []string{"https://shop.test/", "https://shop.test/p/42", "https://shop.test/p/SKU12345678", ""} {
		p := ex.Extract(context.Background(), u)
		assert.Equal(t, TitlePlaceholder, p.Title, u)
		assert.Empty(t, p.Image, u)
	}
	assert.Zero(t, resolver.calls.Load())
}

func TestExtract_NeverFails(t *testing.T) {
	resolver := &stubResolver{}
	ex, _ := newTestExtractor(t, map[string]string{
		"https://shop.test/garbage": "\x00\xff<<<<html>>><meta property=og:title",
		"https://shop.test/empty":   "",
	}, resolver, nil)

	inputs := []string{
		"",
		" ",
		"not a url",
		"http://",
		"ftp://files.test/product-name-here",
		"https://shop.test/garbage",
		"https://shop.test/empty",
		"https://[::1]:namedport/x",
		"https://shop.test/%zz",
		"javascript:alert(1)",
		"https://shop.test/élégant-fauteuil-velours",
	}

	for _, u := range inputs {
		t.Run(u, func(t *testing.T) {
			var p models.Product
			require.NotPanics(t, func() { p = ex.Extract(context.Background(), u) })
			assert.Equal(t, u, p.URL)
			assert.NotEmpty(t, p.Title)
			assert.NotEmpty(t, p.Price)
		})
	}
}

func TestExtract_RejectsChallengeTitle(t *testing.T) {
	const u = "https://shop.test/en/products/super-cool-gadget-12345.html"
	page := `<html><head>
<meta property="og:title" content="Please solve this CAPTCHA">
<title>Robot Check</title>
</head><body></body></html>`
	ex, _ := newTestExtractor(t, map[string]string{u: page}, nil, nil)

	p := ex.Extract(context.Background(), u)
	assert.Equal(t, "Super cool gadget", p.Title)
	assert.Equal(t, StrategyURLTitle, p.Sources[models.FieldTitle])
	assert.Equal(t, PriceFree, p.Price)
	assert.Equal(t, SourceDefault, p.Sources[models.FieldPrice])
}

func TestExtract_SiteOverride(t *testing.T) {
	const u = "https://www.amazon.fr/Widget-Pro-Noir/dp/B0ABCDEFGH?ref=x"
	page := `<html><head>
<title>Widget Pro Noir : Amazon.fr: High-Tech</title>
<meta property="og:image" content="https://m.media-amazon.test/og.jpg">
</head><body>
<img id="landingImage" data-old-hires="https://m.media-amazon.test/hires.jpg" src="/small.jpg">
<span class="a-price"><span class="a-offscreen">1 299,99 €</span></span>
</body></html>`
	hook := &recordingHook{}
	ex, _ := newTestExtractor(t, map[string]string{u: page}, nil, hook)

	p := ex.Extract(context.Background(), u)
	assert.Equal(t, "Widget Pro Noir", p.Title)
	assert.Equal(t, "https://images-na.ssl-images-amazon.com/images/P/B0ABCDEFGH.01.LZZZZZZZ.jpg", p.Image)
	assert.Equal(t, StrategySiteURLRule, p.Sources[models.FieldImage])
	assert.Equal(t, []string{StrategySiteURLRule}, hook.evaluated(models.FieldImage))
	assert.Equal(t, "1299.99 €", p.Price)
	assert.Equal(t, StrategySiteSelector, p.Sources[models.FieldPrice])
}

func TestExtract_BlockedAmazonFallsBackToURL(t *testing.T) {
	const u = "https://www.amazon.fr/Widget-Pro-Noir/dp/B0ABCDEFGH"
	resolver := &stubResolver{image: "https://img.test/x.jpg"}
	ex, fetcher := newTestExtractor(t, nil, resolver, nil)

	p := ex.Extract(context.Background(), u)
	assert.EqualValues(t, 1, fetcher.calls.Load())
	assert.Equal(t, "Widget pro noir", p.Title)
	assert.Equal(t, "https://images-na.ssl-images-amazon.com/images/P/B0ABCDEFGH.01.LZZZZZZZ.jpg", p.Image)
	assert.Equal(t, PriceFree, p.Price)
	assert.Zero(t, resolver.calls.Load(), "URL rule already produced an image")
}

func TestExtract_ImageChain(t *testing.T) {
	tests := []struct {
		name       string
		page       string
		wantImage  string
		wantSource string
	}{
		{
			name:       "relative og image",
			page:       `<meta property="og:image" content="/media/w.jpg"><title>Widget Pro</title>`,
			wantImage:  "https://shop.test/media/w.jpg",
			wantSource: StrategyOGImage,
		},
		{
			name:       "secure og image",
			page:       `<meta property="og:image:secure_url" content="https://cdn.test/s.jpg"><title>Widget Pro</title>`,
			wantImage:  "https://cdn.test/s.jpg",
			wantSource: StrategyOGImage,
		},
		{
			name:       "twitter image",
			page:       `<meta name="twitter:image:src" content="//cdn.test/t.jpg"><title>Widget Pro</title>`,
			wantImage:  "https://cdn.test/t.jpg",
			wantSource: StrategyTwitterImage,
		},
		{
			name:       "structured data array of objects",
			page:       `<script type="application/ld+json">{"image":[{"url":"https://cdn.test/ld.jpg"}]}</script><title>Widget Pro</title>`,
			wantImage:  "https://cdn.test/ld.jpg",
			wantSource: StrategyStructuredData,
		},
		{
			name:       "structured data string list",
			page:       `<script type="application/ld+json">[{"image":["img/a.jpg","img/b.jpg"]}]</script><title>Widget Pro</title>`,
			wantImage:  "https://shop.test/img/a.jpg",
			wantSource: StrategyStructuredData,
		},
		{
			name: "structured data skips unusable block",
			page: `<script type="application/ld+json">{"@type":"Organization","image":"javascript:void(0)"}</script>
<script type="application/ld+json">{"@type":"Product","image":"https://cdn.test/p.jpg"}</script><title>Widget Pro</title>`,
			wantImage:  "https://cdn.test/p.jpg",
			wantSource: StrategyStructuredData,
		},
		{
			name:       "structured data data uri then object",
			page:       `<script type="application/ld+json">{"@graph":[{"image":"data:image/png;base64,AAAA"},{"image":{"url":"/media/p.jpg"}}]}</script><title>Widget Pro</title>`,
			wantImage:  "https://shop.test/media/p.jpg",
			wantSource: StrategyStructuredData,
		},
		{
			name:       "page scan skips logos and relative",
			page:       `<title>Widget Pro</title><img src="https://cdn.test/LOGO.png"><img src="/rel.jpg"><img src="https://cdn.test/p.jpg">`,
			wantImage:  "https://cdn.test/p.jpg",
			wantSource: StrategyPageScan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const u = "https://shop.test/widget"
			ex, _ := newTestExtractor(t, map[string]string{u: tt.page}, nil, nil)
			p := ex.Extract(context.Background(), u)
			assert.Equal(t, tt.wantImage, p.Image)
			assert.Equal(t, tt.wantSource, p.Sources[models.FieldImage])
		})
	}
}

func TestExtract_PriceChain(t *testing.T) {
	tests := []struct {
		name       string
		page       string
		wantPrice  string
		wantSource string
	}{
		{
			name:       "offers array with currency",
			page:       `<script type="application/ld+json">{"offers":[{"price":19.5,"priceCurrency":"USD"},{"price":1}]}</script>`,
			wantPrice:  "19.5 $",
			wantSource: StrategyStructuredData,
		},
		{
			name:       "aggregate offer low price",
			page:       `<script type="application/ld+json">{"@graph":[{"@type":"WebSite"},{"offers":{"lowPrice":"12,00","priceCurrency":"EUR"}}]}</script>`,
			wantPrice:  "12.00 €",
			wantSource: StrategyStructuredData,
		},
		{
			name:       "split price",
			page:       `<span class="a-price-symbol">£</span><span class="a-price-whole">1,049<span class="a-price-decimal">.</span></span><span class="a-price-fraction">95</span>`,
			wantPrice:  "1049.95 £",
			wantSource: StrategySplitPrice,
		},
		{
			name:       "split price without fraction",
			page:       `<span class="a-price-whole">49</span>`,
			wantPrice:  "49.00 €",
			wantSource: StrategySplitPrice,
		},
		{
			name:       "text scan",
			page:       `<div class="header">Livraison 4,99 €</div><div class="product-Price">A partir de 1 299,00 €</div>`,
			wantPrice:  "1299.00 €",
			wantSource: StrategyTextScan,
		},
		{
			name:       "nothing",
			page:       `<div class="price">Sur devis</div>`,
			wantPrice:  PriceFree,
			wantSource: SourceDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const u = "https://shop.test/widget"
			ex, _ := newTestExtractor(t, map[string]string{u: "<html><body>" + tt.page + "</body></html>"}, nil, nil)
			p := ex.Extract(context.Background(), u)
			assert.Equal(t, tt.wantPrice, p.Price)
			assert.Equal(t, tt.wantSource, p.Sources[models.FieldPrice])
		})
	}
}

func TestExtract_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	u := server.URL + "/maison/lampe-de-bureau-design"
	resolver := &stubResolver{}
	ex := New(fetch.New(server.Client(), nil, fetch.Options{}), resolver, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	p := ex.Extract(ctx, u)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, u, p.URL)
	assert.Equal(t, "Lampe de bureau design", p.Title)
	assert.Equal(t, PriceFree, p.Price)
	assert.Empty(t, p.Image)
}

func TestExtract_EndToEndOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/catalog/item", http.StatusMovedPermanently)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><meta property="og:title" content="Widget Pro">
<meta property="og:image" content="../img/w.jpg"></head><body>
<span class="price">29,90 €</span></body></html>`))
	}))
	defer server.Close()

	ex := New(fetch.New(server.Client(), nil, fetch.Options{}), nil, nil)
	p := ex.Extract(context.Background(), server.URL+"/old")

	assert.Equal(t, server.URL+"/old", p.URL)
	assert.Equal(t, "Widget Pro", p.Title)
	assert.Equal(t, server.URL+"/img/w.jpg", p.Image, "relative image resolves against the final URL")
	assert.Equal(t, "29.90 €", p.Price)
}

func TestChain_Resolve(t *testing.T) {
	var calls []string
	mk := func(name string, ok bool) Strategy {
		return Strategy{Name: name, Fn: func(context.Context, *Input) (string, bool) {
			calls = append(calls, name)
			if ok {
				return name + "-value", true
			}
			return "", false
		}}
	}

	c := Chain{Field: "x", Strategies: []Strategy{mk("a", false), mk("b", true), mk("c", true)}}
	value, source, ok := c.Resolve(context.Background(), &Input{}, nil)
	assert.True(t, ok)
	assert.Equal(t, "b-value", value)
	assert.Equal(t, "b", source)
	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Equal(t, []string{"a", "b", "c"}, c.Names())

	calls = nil
	empty := Chain{Field: "x", Strategies: []Strategy{mk("a", false)}}
	_, _, ok = empty.Resolve(context.Background(), &Input{}, HookFunc(func(context.Context, Event) {}))
	assert.False(t, ok)
}

func TestExtract_Name(t *testing.T) {
	var ex engine.ProductExtractor = New(nil, nil, nil)
	assert.Equal(t, "ProductExtractor", ex.Name())
	assert.True(t, errors.Is(engine.ClassifyTransportError("x", context.DeadlineExceeded), engine.ErrTimeout))
}
