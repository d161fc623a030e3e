package engine

import (
	"context"

	"github.com/law-makers/giftscrape/pkg/models"
)

// ProductExtractor is the interface the item-creation workflow depends on
type ProductExtractor interface {
	// Extract analyses the given URL. It never fails: missing data is
	// reported as empty fields on the returned product.
	Extract(ctx context.Context, rawURL string) models.Product

	// Name returns the name of the extractor implementation
	Name() string
}
