package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/law-makers/giftscrape/internal/engine/extract"
	"github.com/law-makers/giftscrape/pkg/models"
)

func validate(c *Config) error {
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be > 0")
	}
	if c.ExternalTimeout <= 0 {
		return fmt.Errorf("external timeout must be > 0")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be > 0")
	}
	if c.MinTitleLength <= 0 {
		return fmt.Errorf("min title length must be > 0")
	}
	if c.Concurrency < 0 || c.Concurrency > MaxConcurrency {
		return fmt.Errorf("concurrency must be between 0 (auto) and %d", MaxConcurrency)
	}
	if c.ImageSearch.RPS < 0 {
		return fmt.Errorf("image search rps must be >= 0")
	}
	if c.ImageSearch.APIKey != "" {
		if u, err := url.Parse(c.ImageSearch.Endpoint); err != nil || !u.IsAbs() {
			return fmt.Errorf("image search endpoint %q is not an absolute URL", c.ImageSearch.Endpoint)
		}
	}
	for _, p := range c.Proxies {
		u, err := url.Parse(p)
		if err != nil || u.Host == "" {
			return fmt.Errorf("invalid proxy %q", p)
		}
	}
	for i, o := range c.Overrides {
		if err := validateOverride(o); err != nil {
			return fmt.Errorf("override %d (%s): %w", i, o.Name, err)
		}
	}
	return nil
}

func validateOverride(o models.SiteOverride) error {
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(o.DomainPattern) == "" {
		return fmt.Errorf("domain_pattern is required")
	}
	if _, err := regexp.Compile(o.DomainPattern); err != nil {
		return fmt.Errorf("invalid domain_pattern: %w", err)
	}
	for field, sel := range map[string]string{"image_selector": o.ImageSelector, "price_selector": o.PriceSelector} {
		if sel == "" {
			continue
		}
		if _, err := cascadia.Compile(sel); err != nil {
			return fmt.Errorf("invalid %s %q: %w", field, sel, err)
		}
	}
	if o.ImageRule != "" {
		if _, ok := extract.ImageRules[strings.ToLower(o.ImageRule)]; !ok {
			return fmt.Errorf("unknown image_rule %q", o.ImageRule)
		}
	}
	return nil
}
