package models

import "time"

// Field names used in Product.Sources and in strategy events
const (
	FieldTitle = "title"
	FieldImage = "image"
	FieldPrice = "price"
)

// Product is the best-effort result of analysing a product URL.
// Empty fields are absent; URL always equals the input.
type Product struct {
	URL     string            `json:"url"`
	Title   string            `json:"title,omitempty"`
	Image   string            `json:"image,omitempty"`
	Price   string            `json:"price,omitempty"`
	Sources map[string]string `json:"sources,omitempty"`
}

// SiteOverride describes extra strategies for one storefront family.
// DomainPattern is a regular expression matched against the lower-cased host.
type SiteOverride struct {
	Name           string `yaml:"name" json:"name"`
	DomainPattern  string `yaml:"domain_pattern" json:"domain_pattern"`
	ImageSelector  string `yaml:"image_selector,omitempty" json:"image_selector,omitempty"`
	ImageRule      string `yaml:"image_rule,omitempty" json:"image_rule,omitempty"`
	PriceSelector  string `yaml:"price_selector,omitempty" json:"price_selector,omitempty"`
	TitleSeparator string `yaml:"title_separator,omitempty" json:"title_separator,omitempty"`
}

// ExtractResult pairs a product with batch bookkeeping
type ExtractResult struct {
	Product  Product
	Index    int
	Duration time.Duration
}
