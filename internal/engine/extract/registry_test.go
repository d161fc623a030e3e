package extract

import (
	"net/url"
	"testing"

	"github.com/law-makers/giftscrape/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOverrides = []models.SiteOverride{
	{
		Name:           "amazon",
		DomainPattern:  `(^|\.)amazon\.`,
		ImageSelector:  "#landingImage",
		ImageRule:      "asin",
		PriceSelector:  ".a-price .a-offscreen",
		TitleSeparator: ":",
	},
	{
		Name:          "amazon-catchall",
		DomainPattern: `amazon`,
		PriceSelector: ".price",
	},
	{
		Name:          "fnac",
		DomainPattern: `(^|\.)fnac\.com$`,
		PriceSelector: ".f-faPriceBox__price",
	},
}

func TestRegistry_Lookup(t *testing.T) {
	reg, err := NewRegistry(testOverrides)
	require.NoError(t, err)

	tests := []struct {
		host string
		want string
	}{
		{"www.amazon.fr", "amazon"},
		{"WWW.AMAZON.DE", "amazon"},
		{"smile.amazon.com", "amazon"},
		{"amazonia.test", "amazon-catchall"},
		{"www.fnac.com", "fnac"},
		{"fnac.com.evil.test", ""},
		{"shop.test", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			o, ok := reg.Lookup(tt.host)
			if tt.want == "" {
				assert.False(t, ok)
				assert.Nil(t, o)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, o.Name)
		})
	}
}

func TestRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		override models.SiteOverride
	}{
		{"missing pattern", models.SiteOverride{Name: "x"}},
		{"bad pattern", models.SiteOverride{Name: "x", DomainPattern: "(["}},
		{"bad image selector", models.SiteOverride{Name: "x", DomainPattern: "x", ImageSelector: "div[["}},
		{"bad price selector", models.SiteOverride{Name: "x", DomainPattern: "x", PriceSelector: ">>>"}},
		{"unknown rule", models.SiteOverride{Name: "x", DomainPattern: "x", ImageRule: "isbn"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry([]models.SiteOverride{tt.override})
			assert.Error(t, err)
		})
	}
}

func TestRegistry_NilAndOrder(t *testing.T) {
	var reg *Registry
	_, ok := reg.Lookup("www.amazon.fr")
	assert.False(t, ok)
	assert.Nil(t, reg.Overrides())

	reg, err := NewRegistry(testOverrides)
	require.NoError(t, err)
	names := []string{}
	for _, o := range reg.Overrides() {
		names = append(names, o.Name)
	}
	assert.Equal(t, []string{"amazon", "amazon-catchall", "fnac"}, names)
}

func TestASINImage(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.amazon.fr/Widget-Pro/dp/B0ABCDEFGH", "https://images-na.ssl-images-amazon.com/images/P/B0ABCDEFGH.01.LZZZZZZZ.jpg"},
		{"https://www.amazon.fr/dp/b0abcdefgh?th=1", "https://images-na.ssl-images-amazon.com/images/P/B0ABCDEFGH.01.LZZZZZZZ.jpg"},
		{"https://www.amazon.com/gp/product/0123456789/ref=x", "https://images-na.ssl-images-amazon.com/images/P/0123456789.01.LZZZZZZZ.jpg"},
		{"https://www.amazon.com/gp/aw/d/B000000001", "https://images-na.ssl-images-amazon.com/images/P/B000000001.01.LZZZZZZZ.jpg"},
		{"https://www.amazon.fr/s?k=widget", ""},
		{"https://www.amazon.fr/dp/SHORT", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			u, err := url.Parse(tt.url)
			require.NoError(t, err)
			got, ok := ASINImage(u)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := ASINImage(nil)
	assert.False(t, ok)
}
