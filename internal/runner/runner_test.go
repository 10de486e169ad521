package runner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redditdl/internal/extract"
	"redditdl/internal/media"
)

// scripted answers by URL prefix and tracks concurrency.
type scripted struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (s *scripted) Extract(ctx context.Context, req media.Request) (*media.Result, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(s.delay)

	switch req.URL[:4] {
	case "ok:/":
		return &media.Result{Content: []media.Content{{URL: req.URL}}}, nil
	case "bad:":
		return &media.Result{Failures: []string{"failed " + req.URL}, Retry: []media.Post{req.Post()}}, nil
	case "mal:":
		return &media.Result{}, &extract.MalformedURLError{URL: req.URL, Reason: "test"}
	default:
		return &media.Result{}, fmt.Errorf("%w: %s", extract.ErrUnsupported, req.URL)
	}
}

func requests(urls ...string) []media.Request {
	reqs := make([]media.Request, len(urls))
	for i, u := range urls {
		reqs[i] = media.Request{URL: u}
	}
	return reqs
}

func TestRunMergesInOrder(t *testing.T) {
	x := &scripted{delay: time.Millisecond}
	reqs := requests("ok:/1", "bad:2", "ok:/3", "zzz:4", "mal:5", "ok:/6")

	sum, err := Run(context.Background(), x, reqs, Options{Workers: 3})
	require.NoError(t, err)

	require.Len(t, sum.Content, 3)
	assert.Equal(t, "ok:/1", sum.Content[0].URL)
	assert.Equal(t, "ok:/3", sum.Content[1].URL)
	assert.Equal(t, "ok:/6", sum.Content[2].URL)
	assert.Equal(t, []string{"failed bad:2"}, sum.Failures)
	require.Len(t, sum.Retry, 1)
	assert.Equal(t, "bad:2", sum.Retry[0].URL)
	assert.Equal(t, []string{"zzz:4"}, sum.Unsupported)
	require.Len(t, sum.Errors, 1)
	assert.True(t, errors.Is(sum.Errors[0], extract.ErrMalformedURL))
}

func TestRunRespectsWorkerLimit(t *testing.T) {
	x := &scripted{delay: 5 * time.Millisecond}
	urls := make([]string, 20)
	for i := range urls {
		urls[i] = fmt.Sprintf("ok:/%d", i)
	}

	sum, err := Run(context.Background(), x, requests(urls...), Options{Workers: 2})
	require.NoError(t, err)
	assert.Len(t, sum.Content, 20)
	assert.LessOrEqual(t, x.peak.Load(), int32(2))
}

func TestRunProgress(t *testing.T) {
	var calls []int
	total := 0
	_, err := Run(context.Background(), &scripted{}, requests("ok:/1", "ok:/2", "bad:3"), Options{
		Workers: 2,
		Progress: func(done, n int) {
			calls = append(calls, done)
			total = n
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, calls)
	assert.Equal(t, 3, total)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, &scripted{}, requests("ok:/1", "ok:/2"), Options{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmpty(t *testing.T) {
	sum, err := Run(context.Background(), &scripted{}, nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, sum.Content)
}
