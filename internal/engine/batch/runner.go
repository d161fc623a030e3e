// internal/engine/batch/runner.go
package batch

import (
	"context"
	"time"

	"github.com/law-makers/giftscrape/internal/engine"
	"github.com/law-makers/giftscrape/pkg/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Runner extracts many URLs in parallel
type Runner struct {
	extractor   engine.ProductExtractor
	concurrency int
}

// New creates a Runner.
// If concurrency <= 0, it auto-tunes based on system resources
func New(extractor engine.ProductExtractor, concurrency int) *Runner {
	if concurrency <= 0 {
		concurrency = OptimalConcurrency()
	}
	return &Runner{
		extractor:   extractor,
		concurrency: concurrency,
	}
}

// Concurrency returns the parallelism limit
func (r *Runner) Concurrency() int {
	return r.concurrency
}

// Run extracts every URL and returns one result per input, in input order.
// onDone, when set, is called from worker goroutines as each URL finishes.
func (r *Runner) Run(ctx context.Context, urls []string, onDone func(models.ExtractResult)) []models.ExtractResult {
	results := make([]models.ExtractResult, len(urls))
	if len(urls) == 0 {
		return results
	}

	zerolog.Ctx(ctx).Debug().
		Int("urls", len(urls)).
		Int("concurrency", r.concurrency).
		Str("extractor", r.extractor.Name()).
		Msg("Starting batch")

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for _, i := range Interleave(urls) {
		g.Go(func() error {
			start := time.Now()
			product := r.extractor.Extract(ctx, urls[i])
			res := models.ExtractResult{
				Product:  product,
				Index:    i,
				Duration: time.Since(start),
			}
			results[i] = res
			if onDone != nil {
				onDone(res)
			}
			return nil
		})
	}

	// Extract never fails, so Wait only synchronizes
	_ = g.Wait()
	return results
}
