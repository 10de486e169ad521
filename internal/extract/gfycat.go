package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"redditdl/internal/httputil"
	"redditdl/internal/media"
)

// DefaultGfycatAPI is the endpoint returning a gfy's metadata by id.
const DefaultGfycatAPI = "https://gfycat.com/cajax/get"

// gfycatDirectExts are suffixes served as-is without an API lookup.
var gfycatDirectExts = []string{".webm", ".gif", ".gifv"}

// GfycatExtractor handles gfycat links.
type GfycatExtractor struct {
	env Env
	api string
}

// NewGfycat creates a GfycatExtractor querying api (DefaultGfycatAPI when empty).
func NewGfycat(env Env, api string) *GfycatExtractor {
	if api == "" {
		api = DefaultGfycatAPI
	}
	return &GfycatExtractor{env: env.withDefaults(), api: api}
}

type gfyResponse struct {
	GfyItem *struct {
		WebmURL string `json:"webmUrl"`
	} `json:"gfyItem"`
}

// Extract emits a direct link unchanged or resolves a gfy id to its webm.
func (g *GfycatExtractor) Extract(ctx context.Context, req media.Request) (res *media.Result, _ error) {
	j := newJob(ctx, g.env, req)
	res = j.result
	defer j.catch()

	var err error
	if hasSuffixFold(req.URL, gfycatDirectExts...) {
		err = g.direct(j)
	} else {
		err = g.single(j)
	}
	if err != nil {
		j.failedToLocate(err)
	}
	return res, nil
}

// direct keeps the source extension verbatim, including "gifv".
func (g *GfycatExtractor) direct(j *job) error {
	id, ext, err := idAndExt(j.req.URL)
	if err != nil {
		return err
	}
	j.emit(j.req.URL, j.fileName(id), 0, ext, j.req.Created)
	return nil
}

func (g *GfycatExtractor) single(j *job) error {
	id, err := lastSegment(j.req.URL)
	if err != nil {
		return err
	}

	body, ok := j.fetchJSON(httputil.BuildURL(g.api, id))
	if !ok {
		return nil
	}

	var gfy gfyResponse
	if err := json.Unmarshal(body, &gfy); err != nil {
		return fmt.Errorf("parsing gfycat response: %w", err)
	}
	if gfy.GfyItem == nil || gfy.GfyItem.WebmURL == "" {
		return fmt.Errorf("gfycat response for %q has no webm url", id)
	}

	j.emit(gfy.GfyItem.WebmURL, j.fileName(id), 0, "webm", j.req.Created)
	return nil
}
