package app

import (
	"context"
	"testing"

	"github.com/law-makers/giftscrape/internal/config"
	"github.com/law-makers/giftscrape/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WiresDependencies(t *testing.T) {
	cfg := config.Defaults()
	cfg.Proxies = []string{"http://127.0.0.1:3128"}

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close(context.Background())

	assert.NotNil(t, a.Fetcher)
	assert.NotNil(t, a.Extractor)
	assert.NotNil(t, a.Batch)
	assert.Equal(t, 1, a.Proxies.Size())
	assert.False(t, a.ImageSearch.Enabled())
	assert.Len(t, a.Registry.Overrides(), len(config.DefaultOverrides()))
	assert.Positive(t, a.Batch.Concurrency())
}

func TestNew_RejectsBadOverride(t *testing.T) {
	cfg := config.Defaults()
	cfg.Overrides = []models.SiteOverride{{Name: "bad", DomainPattern: "(["}}

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.Error(t, err)
}
