package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/law-makers/giftscrape/internal/utils/headers"
	"github.com/law-makers/giftscrape/pkg/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Page fetch
	FetchTimeout   time.Duration
	UserAgent      string
	AcceptLanguage string
	ExtraHeaders   map[string]string
	Proxies        []string
	ChromeTLS      bool
	MaxBodyBytes   int64

	// Extraction
	MinTitleLength int
	Overrides      []models.SiteOverride

	// External image search
	ExternalTimeout time.Duration
	ImageSearch     ImageSearchConfig

	// Batch
	Concurrency int
}

// ImageSearchConfig configures the external image search client
type ImageSearchConfig struct {
	Endpoint string
	APIKey   string
	EngineID string
	RPS      float64

	// Remembered queries; 0 uses the client default, negative disables
	CacheSize int
	CacheTTL  time.Duration
}

// fileConfig is the YAML layout of --config files
type fileConfig struct {
	LogLevel string `yaml:"log_level"`
	JSONLog  *bool  `yaml:"json_log"`

	Fetch struct {
		Timeout        Duration          `yaml:"timeout"`
		UserAgent      string            `yaml:"user_agent"`
		AcceptLanguage string            `yaml:"accept_language"`
		Headers        map[string]string `yaml:"headers"`
		Proxies        []string          `yaml:"proxies"`
		ChromeTLS      *bool             `yaml:"chrome_tls"`
		MaxBodyBytes   int64             `yaml:"max_body_bytes"`
	} `yaml:"fetch"`

	ImageSearch struct {
		Endpoint string   `yaml:"endpoint"`
		APIKey   string   `yaml:"api_key"`
		EngineID string   `yaml:"engine_id"`
		RPS       float64  `yaml:"rps"`
		Timeout   Duration `yaml:"timeout"`
		CacheSize int      `yaml:"cache_size"`
		CacheTTL  Duration `yaml:"cache_ttl"`
	} `yaml:"image_search"`

	MinTitleLength int `yaml:"min_title_length"`
	Concurrency    int `yaml:"concurrency"`

	// Overrides are matched before the built-in ones unless
	// ReplaceOverrides drops the built-ins entirely.
	Overrides        []models.SiteOverride `yaml:"overrides"`
	ReplaceOverrides bool                  `yaml:"replace_default_overrides"`
}

// Defaults returns a Config populated with built-in values
func Defaults() *Config {
	return &Config{
		LogLevel:        DefaultLogLevel,
		JSONLog:         DefaultJSONLog,
		FetchTimeout:    DefaultFetchTimeout,
		UserAgent:       DefaultUserAgent,
		AcceptLanguage:  DefaultAcceptLanguage,
		ExtraHeaders:    map[string]string{},
		ChromeTLS:       DefaultChromeTLS,
		MaxBodyBytes:    DefaultMaxBodyBytes,
		MinTitleLength:  DefaultMinTitleLength,
		Overrides:       DefaultOverrides(),
		ExternalTimeout: DefaultExternalTimeout,
		ImageSearch: ImageSearchConfig{
			Endpoint: DefaultSearchEndpoint,
			RPS:      DefaultSearchRPS,
		},
	}
}

// Load builds a Config by combining defaults, an optional config file, environment variables, and CLI flags.
// Caller should pass the executing *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Defaults()

	path := os.Getenv(EnvPrefix + "CONFIG")
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			path = f.Value.String()
		}
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cmd != nil {
		if err := cfg.applyFlags(cmd); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadFile reads a YAML config file on top of the defaults
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()
	if err := cfg.applyFile(path); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.JSONLog != nil {
		c.JSONLog = *fc.JSONLog
	}
	if !fc.Fetch.Timeout.IsZero() {
		c.FetchTimeout = fc.Fetch.Timeout.Duration
	}
	if fc.Fetch.UserAgent != "" {
		c.UserAgent = fc.Fetch.UserAgent
	}
	if fc.Fetch.AcceptLanguage != "" {
		c.AcceptLanguage = fc.Fetch.AcceptLanguage
	}
	for k, v := range fc.Fetch.Headers {
		c.ExtraHeaders[k] = v
	}
	if len(fc.Fetch.Proxies) > 0 {
		c.Proxies = fc.Fetch.Proxies
	}
	if fc.Fetch.ChromeTLS != nil {
		c.ChromeTLS = *fc.Fetch.ChromeTLS
	}
	if fc.Fetch.MaxBodyBytes != 0 {
		c.MaxBodyBytes = fc.Fetch.MaxBodyBytes
	}

	if fc.ImageSearch.Endpoint != "" {
		c.ImageSearch.Endpoint = fc.ImageSearch.Endpoint
	}
	if fc.ImageSearch.APIKey != "" {
		c.ImageSearch.APIKey = fc.ImageSearch.APIKey
	}
	if fc.ImageSearch.EngineID != "" {
		c.ImageSearch.EngineID = fc.ImageSearch.EngineID
	}
	if fc.ImageSearch.RPS != 0 {
		c.ImageSearch.RPS = fc.ImageSearch.RPS
	}
	if !fc.ImageSearch.Timeout.IsZero() {
		c.ExternalTimeout = fc.ImageSearch.Timeout.Duration
	}
	if fc.ImageSearch.CacheSize != 0 {
		c.ImageSearch.CacheSize = fc.ImageSearch.CacheSize
	}
	if !fc.ImageSearch.CacheTTL.IsZero() {
		c.ImageSearch.CacheTTL = fc.ImageSearch.CacheTTL.Duration
	}

	if fc.MinTitleLength != 0 {
		c.MinTitleLength = fc.MinTitleLength
	}
	if fc.Concurrency != 0 {
		c.Concurrency = fc.Concurrency
	}

	if fc.ReplaceOverrides {
		c.Overrides = fc.Overrides
	} else if len(fc.Overrides) > 0 {
		c.Overrides = append(append([]models.SiteOverride{}, fc.Overrides...), c.Overrides...)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvPrefix + "USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv(EnvPrefix + "PROXY"); v != "" {
		c.Proxies = splitList(v)
	}
	if v := os.Getenv(EnvPrefix + "FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sFETCH_TIMEOUT: %w", EnvPrefix, err)
		}
		c.FetchTimeout = d
	}
	if v := os.Getenv(EnvPrefix + "SEARCH_ENDPOINT"); v != "" {
		c.ImageSearch.Endpoint = v
	}
	if v := os.Getenv(EnvPrefix + "SEARCH_API_KEY"); v != "" {
		c.ImageSearch.APIKey = v
	}
	if v := os.Getenv(EnvPrefix + "SEARCH_ENGINE_ID"); v != "" {
		c.ImageSearch.EngineID = v
	}
	if v := os.Getenv(EnvPrefix + "CHROME_TLS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sCHROME_TLS: %w", EnvPrefix, err)
		}
		c.ChromeTLS = b
	}
	return nil
}

func (c *Config) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()

	if f := flags.Lookup("user-agent"); f != nil && f.Changed {
		c.UserAgent = f.Value.String()
	}
	if f := flags.Lookup("proxy"); f != nil && f.Changed {
		c.Proxies = splitList(f.Value.String())
	}
	if f := flags.Lookup("timeout"); f != nil && f.Changed {
		d, err := time.ParseDuration(f.Value.String())
		if err != nil {
			return fmt.Errorf("--timeout: %w", err)
		}
		c.FetchTimeout = d
	}
	if f := flags.Lookup("search-timeout"); f != nil && f.Changed {
		d, err := time.ParseDuration(f.Value.String())
		if err != nil {
			return fmt.Errorf("--search-timeout: %w", err)
		}
		c.ExternalTimeout = d
	}
	if f := flags.Lookup("chrome-tls"); f != nil && f.Changed {
		c.ChromeTLS = f.Value.String() == "true"
	}
	if f := flags.Lookup("min-title-length"); f != nil && f.Changed {
		n, err := strconv.Atoi(f.Value.String())
		if err != nil {
			return fmt.Errorf("--min-title-length: %w", err)
		}
		c.MinTitleLength = n
	}
	if f := flags.Lookup("concurrency"); f != nil && f.Changed {
		n, err := strconv.Atoi(f.Value.String())
		if err != nil {
			return fmt.Errorf("--concurrency: %w", err)
		}
		c.Concurrency = n
	}
	if f := flags.Lookup("header"); f != nil && f.Changed {
		values, err := flags.GetStringArray("header")
		if err != nil {
			return fmt.Errorf("--header: %w", err)
		}
		extra, err := headers.ParseHeaders(values)
		if err != nil {
			return fmt.Errorf("--header: %w", err)
		}
		c.ExtraHeaders = headers.Merge(c.ExtraHeaders, extra)
	}
	if f := flags.Lookup("json"); f != nil && f.Value.String() == "true" {
		c.JSONLog = true
	}
	if f := flags.Lookup("quiet"); f != nil && f.Value.String() == "true" {
		c.LogLevel = "error"
	}
	if f := flags.Lookup("verbose"); f != nil && f.Value.String() == "true" {
		c.LogLevel = "debug"
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
