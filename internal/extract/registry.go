package extract

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"redditdl/internal/imgur"
	"redditdl/internal/media"
)

// Route sends links containing Marker to Extractor.
type Route struct {
	Marker    string
	Extractor Extractor
}

// Registry dispatches a link to the extractor of the first route whose
// marker the link contains.
type Registry struct {
	routes   []Route
	fallback Extractor // raw file links on hosts without a route
}

// NewRegistry creates a Registry from an ordered route table. fallback may be nil.
func NewRegistry(fallback Extractor, routes ...Route) *Registry {
	return &Registry{routes: routes, fallback: fallback}
}

// Options configures the default extractors.
type Options struct {
	Settings     Settings
	GfycatAPI    string
	VidbleBase   string
	ImgurOptions []imgur.Option
}

// NewDefault builds the Registry covering every supported host.
func NewDefault(env Env, opts Options) *Registry {
	env = env.withDefaults()
	direct := NewDirect(env)

	return NewRegistry(direct,
		Route{Marker: "imgur.com", Extractor: NewImgur(env, opts.Settings, opts.ImgurOptions...)},
		Route{Marker: "gfycat.com", Extractor: NewGfycat(env, opts.GfycatAPI)},
		Route{Marker: "vidble.com", Extractor: NewVidble(env, opts.VidbleBase)},
		Route{Marker: "reddituploads.com", Extractor: NewRedditUploads(env)},
		Route{Marker: "i.redd.it", Extractor: direct},
	)
}

// Match returns the extractor responsible for rawURL.
func (r *Registry) Match(rawURL string) (Extractor, bool) {
	for _, route := range r.routes {
		if strings.Contains(rawURL, route.Marker) {
			return route.Extractor, true
		}
	}

	if r.fallback != nil && isDirectFile(rawURL) {
		return r.fallback, true
	}
	return nil, false
}

// Extract dispatches req to the matching extractor. Links no extractor
// handles return ErrUnsupported.
func (r *Registry) Extract(ctx context.Context, req media.Request) (*media.Result, error) {
	e, ok := r.Match(req.URL)
	if !ok {
		return &media.Result{}, fmt.Errorf("%w: %s", ErrUnsupported, req.URL)
	}
	return e.Extract(ctx, req)
}

// isDirectFile reports whether the link's path ends in a media extension.
func isDirectFile(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	for _, known := range mediaExtensions {
		if ext == known {
			return true
		}
	}
	return false
}
