package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"redditdl/internal/config"
	"redditdl/internal/download"
	"redditdl/internal/extract"
	"redditdl/internal/httputil"
	"redditdl/internal/imgur"
	"redditdl/internal/media"
	"redditdl/internal/provider"
	"redditdl/internal/retry"
	"redditdl/internal/runner"
	"redditdl/internal/ui"
)

// downloadTimeout bounds a single file download; videos can be large.
const downloadTimeout = 10 * time.Minute

// imgurOptions returns client options derived from config.
func imgurOptions() []imgur.Option {
	var opts []imgur.Option
	if cfg.ImgurAPI != "" {
		opts = append(opts, imgur.WithBaseURL(cfg.ImgurAPI))
	}
	return opts
}

// newRegistry builds the extractor registry from config.
func newRegistry() *extract.Registry {
	env := extract.Env{HTTP: httputil.NewClient(), Logger: logger}
	return extract.NewDefault(env, extract.Options{
		Settings:     cfg,
		GfycatAPI:    cfg.GfycatAPI,
		VidbleBase:   cfg.VidbleBase,
		ImgurOptions: imgurOptions(),
	})
}

// policy returns the naming and save settings copied onto every request.
func policy() (provider.Policy, error) {
	savePath, err := cfg.ExpandSavePath()
	if err != nil {
		return provider.Policy{}, err
	}
	return provider.Policy{
		NameBy:      cfg.NamingPolicy(),
		SaveMethod:  cfg.SaveMethod(),
		SavePath:    savePath,
		DisplayOnly: flagDisplayOnly,
	}, nil
}

// openRetryStore opens the retry database at its default location.
func openRetryStore(ctx context.Context) (*retry.Store, error) {
	path, err := config.RetryDBPath()
	if err != nil {
		return nil, err
	}
	return retry.Open(ctx, path)
}

// result is the JSON form of a batch.
type result struct {
	Content     []media.Content `json:"content"`
	Failures    []string        `json:"failures,omitempty"`
	Retry       []media.Post    `json:"retry,omitempty"`
	Unsupported []string        `json:"unsupported,omitempty"`
	Saved       []string        `json:"saved,omitempty"`
}

// process extracts reqs, stores retryable failures, optionally downloads
// the content and prints the outcome.
func process(ctx context.Context, reqs []media.Request) (*runner.Summary, error) {
	if len(reqs) == 0 {
		fmt.Fprintln(os.Stderr, "No posts to extract.")
		return &runner.Summary{}, nil
	}

	progress := ui.NewProgress(os.Stderr, "extracting", len(reqs))
	sum, err := runner.Run(ctx, newRegistry(), reqs, runner.Options{
		Workers:  cfg.Workers,
		Logger:   logger,
		Progress: progress.Update,
	})
	progress.Stop()
	if err != nil {
		return nil, fmt.Errorf("extracting: %w", err)
	}

	if len(sum.Retry) > 0 {
		if err := saveForRetry(ctx, sum.Retry); err != nil {
			logger.Warn("could not save posts for retry", zap.Error(err))
		}
	}

	var saved []string
	var skipped int
	if flagDownload {
		saved, skipped, err = downloadAll(ctx, sum.Content)
		if err != nil {
			return nil, err
		}
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return sum, enc.Encode(result{
			Content:     sum.Content,
			Failures:    sum.Failures,
			Retry:       sum.Retry,
			Unsupported: sum.Unsupported,
			Saved:       saved,
		})
	}

	ui.RenderContent(os.Stdout, sum.Content)
	ui.RenderFailures(os.Stderr, sum.Failures)
	ui.RenderSummary(os.Stderr, ui.Summary{
		Content:     len(sum.Content),
		Saved:       len(saved),
		Skipped:     skipped,
		Failures:    len(sum.Failures),
		Retry:       len(sum.Retry),
		Unsupported: len(sum.Unsupported),
	})
	return sum, nil
}

func saveForRetry(ctx context.Context, posts []media.Post) error {
	store, err := openRetryStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Save(ctx, posts)
}

// downloadAll saves every item with at most cfg.Workers downloads in
// flight. Individual failures are logged and do not stop the rest.
func downloadAll(ctx context.Context, items []media.Content) (saved []string, skipped int, err error) {
	client := httputil.NewClient()
	client.Timeout = downloadTimeout

	paths := make([]string, len(items))
	var skips atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for i, c := range items {
		g.Go(func() error {
			path, err := download.Download(gctx, client, c)
			switch {
			case err == nil:
				paths[i] = path
				logger.Debug("saved", zap.String("url", c.URL), zap.String("path", path))
			case errors.Is(err, download.ErrDisplayOnly), errors.Is(err, download.ErrExists):
				skips.Add(1)
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				logger.Error("download failed", zap.String("url", c.URL), zap.Error(err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("downloading: %w", err)
	}

	for _, p := range paths {
		if p != "" {
			saved = append(saved, p)
		}
	}
	return saved, int(skips.Load()), nil
}
