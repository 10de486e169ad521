package extract

import (
	"context"

	"go.uber.org/zap"

	"redditdl/internal/media"
)

// DirectExtractor handles links that already point at a raw file.
type DirectExtractor struct {
	env Env
}

// NewDirect creates a DirectExtractor.
func NewDirect(env Env) *DirectExtractor {
	return &DirectExtractor{env: env.withDefaults()}
}

// Extract emits the link itself. A link without an extension-bearing last
// segment returns a *MalformedURLError and an empty result.
func (d *DirectExtractor) Extract(ctx context.Context, req media.Request) (*media.Result, error) {
	j := newJob(ctx, d.env, req)

	id, ext, err := idAndExt(req.URL)
	if err != nil {
		j.log.Warn("Failed direct extract: Malformed URL", zap.Error(err), j.logData())
		return j.result, err
	}

	j.emit(req.URL, j.fileName(id), 0, ext, req.Created)
	return j.result, nil
}

// RedditUploadsExtractor handles reddit's own upload host. There is no API
// for it, so ".jpg" is appended to the link and the file named after the post.
type RedditUploadsExtractor struct {
	env Env
}

// NewRedditUploads creates a RedditUploadsExtractor.
func NewRedditUploads(env Env) *RedditUploadsExtractor {
	return &RedditUploadsExtractor{env: env.withDefaults()}
}

// Extract emits the link with a ".jpg" suffix.
func (r *RedditUploadsExtractor) Extract(ctx context.Context, req media.Request) (res *media.Result, _ error) {
	j := newJob(ctx, r.env, req)
	res = j.result
	defer j.catch()

	if req.URL == "" {
		j.failedToLocate(&MalformedURLError{URL: req.URL, Reason: "empty"})
		return res, nil
	}

	j.emit(req.URL+".jpg", req.PostTitle, 0, "jpg", req.Created)
	return res, nil
}
