package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/law-makers/giftscrape/internal/engine/markup"
	"github.com/law-makers/giftscrape/pkg/models"
)

// ImageRule derives an image URL from the product URL alone
type ImageRule func(u *url.URL) (string, bool)

var asinPattern = regexp.MustCompile(`(?i)/(?:dp|gp/product|gp/aw/d)/([a-z0-9]{10})(?:[/?#]|$)`)

// ImageRules are the deterministic rules an override may name
var ImageRules = map[string]ImageRule{
	"asin": ASINImage,
}

// ASINImage builds the catalog image URL for an Amazon-style product path
func ASINImage(u *url.URL) (string, bool) {
	if u == nil {
		return "", false
	}
	m := asinPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return "", false
	}
	return "https://images-na.ssl-images-amazon.com/images/P/" + strings.ToUpper(m[1]) + ".01.LZZZZZZZ.jpg", true
}

// Override is a SiteOverride with its pattern compiled
type Override struct {
	models.SiteOverride
	pattern *regexp.Regexp
	rule    ImageRule
}

// Rule returns the override's image rule, nil when none is set
func (o *Override) Rule() ImageRule {
	if o == nil {
		return nil
	}
	return o.rule
}

// Registry maps hosts to at most one Override. It is immutable once built
// and safe for concurrent use.
type Registry struct {
	overrides []*Override
}

// NewRegistry compiles overrides in order. Any bad pattern, selector or
// unknown image rule fails the whole registry.
func NewRegistry(overrides []models.SiteOverride) (*Registry, error) {
	r := &Registry{overrides: make([]*Override, 0, len(overrides))}
	for i, so := range overrides {
		o, err := compileOverride(so)
		if err != nil {
			return nil, fmt.Errorf("override %d (%s): %w", i, so.Name, err)
		}
		r.overrides = append(r.overrides, o)
	}
	return r, nil
}

func compileOverride(so models.SiteOverride) (*Override, error) {
	if strings.TrimSpace(so.DomainPattern) == "" {
		return nil, fmt.Errorf("domain_pattern is required")
	}
	pattern, err := regexp.Compile(so.DomainPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid domain_pattern: %w", err)
	}

	o := &Override{SiteOverride: so, pattern: pattern}
	if so.ImageRule != "" {
		rule, ok := ImageRules[strings.ToLower(so.ImageRule)]
		if !ok {
			return nil, fmt.Errorf("unknown image_rule %q", so.ImageRule)
		}
		o.rule = rule
	}
	for field, sel := range map[string]string{"image_selector": so.ImageSelector, "price_selector": so.PriceSelector} {
		if sel == "" {
			continue
		}
		if err := markup.ValidSelector(sel); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", field, sel, err)
		}
	}
	return o, nil
}

// Lookup returns the first override whose pattern matches host
func (r *Registry) Lookup(host string) (*Override, bool) {
	if r == nil || host == "" {
		return nil, false
	}
	host = strings.ToLower(host)
	for _, o := range r.overrides {
		if o.pattern.MatchString(host) {
			return o, true
		}
	}
	return nil, false
}

// Overrides returns the registry entries in match order
func (r *Registry) Overrides() []models.SiteOverride {
	if r == nil {
		return nil
	}
	out := make([]models.SiteOverride, len(r.overrides))
	for i, o := range r.overrides {
		out[i] = o.SiteOverride
	}
	return out
}
