// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/law-makers/giftscrape/internal/config"
	"github.com/law-makers/giftscrape/internal/engine/batch"
	"github.com/law-makers/giftscrape/internal/engine/extract"
	"github.com/law-makers/giftscrape/internal/engine/fetch"
	"github.com/law-makers/giftscrape/internal/engine/imagesearch"
	"github.com/law-makers/giftscrape/internal/proxy"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	HTTPClient  *http.Client
	Proxies     *proxy.ProxyPool
	Fetcher     *fetch.Fetcher
	ImageSearch *imagesearch.Client
	Registry    *extract.Registry
	Extractor   *extract.Extractor
	Batch       *batch.Runner
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Builds the shared HTTP client and optional proxy pool
//   - Compiles the site override registry
//   - Wires the fetcher, image search client and extractor
//
// Any error here is a configuration error; extraction itself never fails.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := newLogger(cfg, os.Stderr)

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	transport := fetch.NewTransport(fetch.TransportOptions{ChromeTLS: cfg.ChromeTLS})
	httpClient := &http.Client{Transport: transport}
	logger.Debug().
		Bool("chrome_tls", cfg.ChromeTLS).
		Msg("HTTP client initialized")

	proxies := proxy.NewProxyPool(cfg.Proxies)
	if proxies != nil {
		logger.Debug().Int("proxies", proxies.Size()).Msg("Proxy pool initialized")
	}

	fetcher := fetch.New(httpClient, proxies, fetch.Options{
		Timeout:        cfg.FetchTimeout,
		UserAgent:      cfg.UserAgent,
		AcceptLanguage: cfg.AcceptLanguage,
		Headers:        cfg.ExtraHeaders,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	registry, err := extract.NewRegistry(cfg.Overrides)
	if err != nil {
		return nil, fmt.Errorf("site overrides: %w", err)
	}
	logger.Debug().Int("overrides", len(cfg.Overrides)).Msg("Site registry compiled")

	// The search API is reached directly, never through the page proxies
	search := imagesearch.New(imagesearch.Config{
		Endpoint:  cfg.ImageSearch.Endpoint,
		APIKey:    cfg.ImageSearch.APIKey,
		EngineID:  cfg.ImageSearch.EngineID,
		RPS:       cfg.ImageSearch.RPS,
		Timeout:   cfg.ExternalTimeout,
		CacheSize: cfg.ImageSearch.CacheSize,
		CacheTTL:  cfg.ImageSearch.CacheTTL,
	}, &http.Client{Transport: fetch.NewTransport(fetch.TransportOptions{})})
	if !search.Enabled() {
		logger.Debug().Msg("Image search disabled (no API key)")
	}

	extractor := extract.New(fetcher, search, registry,
		extract.WithLogger(logger),
		extract.WithMinTitleLength(cfg.MinTitleLength),
	)

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		HTTPClient:  httpClient,
		Proxies:     proxies,
		Fetcher:     fetcher,
		ImageSearch: search,
		Registry:    registry,
		Extractor:   extractor,
		Batch:       batch.New(extractor, cfg.Concurrency),
		startTime:   time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

// newLogger configures the global level and returns the base logger
func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	logLevel := zerolog.WarnLevel // default: keep stderr quiet unless -v is used
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info", "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = out
	} else {
		logWriter = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	logger := log.Output(logWriter).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// Close gracefully shuts down the application and all its resources.
// A context with a timeout should be provided to prevent indefinite blocking.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down application")

	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	uptime := time.Since(a.startTime)
	a.Logger.Debug().Dur("uptime", uptime).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
