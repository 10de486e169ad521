// Package runner extracts many posts concurrently and merges the results.
package runner

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"redditdl/internal/extract"
	"redditdl/internal/media"
)

// Options controls a batch run.
type Options struct {
	Workers  int
	Logger   *zap.Logger
	Progress func(done, total int) // called after every request; may be nil
}

// Summary merges the results of a batch in request order.
type Summary struct {
	Content     []media.Content
	Failures    []string
	Retry       []media.Post
	Unsupported []string // links no extractor handles
	Errors      []error  // extractor errors other than unsupported links
}

// Run extracts every request with at most opts.Workers in flight. Failed
// extractions never stop the batch; only ctx cancellation does.
func Run(ctx context.Context, x extract.Extractor, reqs []media.Request, opts Options) (*Summary, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	results := make([]*media.Result, len(reqs))
	errs := make([]error, len(reqs))

	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := x.Extract(gctx, req)
			results[i], errs[i] = res, err
			if err != nil && !errors.Is(err, extract.ErrUnsupported) {
				log.Warn("extract failed", zap.String("url", req.URL), zap.Error(err))
			}

			if opts.Progress != nil {
				mu.Lock()
				done++
				opts.Progress(done, len(reqs))
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum := &Summary{}
	for i, res := range results {
		if err := errs[i]; err != nil {
			if errors.Is(err, extract.ErrUnsupported) {
				sum.Unsupported = append(sum.Unsupported, reqs[i].URL)
			} else {
				sum.Errors = append(sum.Errors, err)
			}
		}
		if res == nil {
			continue
		}
		sum.Content = append(sum.Content, res.Content...)
		sum.Failures = append(sum.Failures, res.Failures...)
		sum.Retry = append(sum.Retry, res.Retry...)
	}

	log.Info("batch complete",
		zap.Int("requests", len(reqs)),
		zap.Int("content", len(sum.Content)),
		zap.Int("failures", len(sum.Failures)),
		zap.Int("retry", len(sum.Retry)),
		zap.Int("unsupported", len(sum.Unsupported)))

	return sum, nil
}
