package config

import (
	"time"

	"github.com/law-makers/giftscrape/pkg/models"
)

// Default constants for application configuration
const (
	DefaultLogLevel        = "info"
	DefaultJSONLog         = false
	DefaultFetchTimeout    = 10 * time.Second
	DefaultExternalTimeout = 5 * time.Second
	DefaultUserAgent       = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	DefaultAcceptLanguage  = "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7"
	DefaultMaxBodyBytes    = 10 * 1024 * 1024 // 10MB
	DefaultMinTitleLength  = 5
	DefaultChromeTLS       = true
	DefaultSearchEndpoint  = "https://www.googleapis.com/customsearch/v1"
	DefaultSearchRPS       = 1.0
	MaxConcurrency         = 64
	EnvPrefix              = "GIFTSCRAPE_"
)

// DefaultOverrides is the built-in site registry, in match order
func DefaultOverrides() []models.SiteOverride {
	return []models.SiteOverride{
		{
			Name:           "amazon",
			DomainPattern:  `(^|\.)amazon\.[a-z.]+$`,
			ImageSelector:  "#landingImage",
			ImageRule:      "asin",
			PriceSelector:  ".a-price .a-offscreen",
			TitleSeparator: ":",
		},
		{
			Name:          "fnac",
			DomainPattern: `(^|\.)fnac\.com$`,
			ImageSelector: ".f-productVisuals__mainMedia img",
			PriceSelector: ".f-faPriceBox__price",
		},
	}
}
