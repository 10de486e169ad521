package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"redditdl/internal/media"
)

// DefaultVidbleBase is prefixed to the site-relative image sources on vidble pages.
const DefaultVidbleBase = "https://vidble.com"

// vidbleImageClass is the first class token of full-size images on a vidble page.
const vidbleImageClass = "img2"

type vidblePath int

const (
	vidbleSingle vidblePath = iota
	vidbleAlbum
	vidbleDirect
	vidbleFallback // unrecognized shape, scraped as an album
)

// classifyVidble decides how a vidble link is extracted from its shape alone.
func classifyVidble(u string) vidblePath {
	switch {
	case strings.Contains(u, "/show/") || strings.Contains(u, "/explore/"):
		return vidbleSingle
	case strings.Contains(u, "/album/"):
		return vidbleAlbum
	case hasSuffixFold(u, mediaExtensions...):
		return vidbleDirect
	default:
		return vidbleFallback
	}
}

// VidbleExtractor scrapes vidble pages for their images.
type VidbleExtractor struct {
	env  Env
	base string
}

// NewVidble creates a VidbleExtractor; base defaults to DefaultVidbleBase.
func NewVidble(env Env, base string) *VidbleExtractor {
	if base == "" {
		base = DefaultVidbleBase
	}
	return &VidbleExtractor{env: env.withDefaults(), base: strings.TrimRight(base, "/")}
}

// Extract classifies the link and emits every image found.
func (v *VidbleExtractor) Extract(ctx context.Context, req media.Request) (res *media.Result, _ error) {
	j := newJob(ctx, v.env, req)
	res = j.result
	defer j.catch()

	var err error
	switch classifyVidble(req.URL) {
	case vidbleSingle:
		err = v.single(j)
	case vidbleAlbum, vidbleFallback:
		err = v.album(j)
	case vidbleDirect:
		err = v.direct(j)
	}
	if err != nil {
		j.failedToLocate(err)
	}
	return res, nil
}

// single handles /show/ and /explore/ pages. Every matched image is emitted
// under the page id without an ordinal.
func (v *VidbleExtractor) single(j *job) error {
	id, err := lastSegment(j.req.URL)
	if err != nil {
		return err
	}
	if i := strings.LastIndex(id, "."); i >= 0 {
		id = id[:i]
	}

	sources, ok, err := v.imageSources(j)
	if err != nil || !ok {
		return err
	}

	for _, src := range sources {
		ext, err := extOf(src)
		if err != nil {
			return err
		}
		j.emit(v.base+src, j.fileName(id), 0, ext, j.req.Created)
	}
	return nil
}

// album emits each matched image with an ordinal starting at 1.
func (v *VidbleExtractor) album(j *job) error {
	id, err := lastSegment(j.req.URL)
	if err != nil {
		return err
	}

	sources, ok, err := v.imageSources(j)
	if err != nil || !ok {
		return err
	}

	for i, src := range sources {
		ext, err := extOf(src)
		if err != nil {
			return err
		}
		j.emit(v.base+src, j.fileName(id), i+1, ext, j.req.Created)
	}
	return nil
}

func (v *VidbleExtractor) direct(j *job) error {
	id, ext, err := idAndExt(j.req.URL)
	if err != nil {
		return err
	}
	j.emit(j.req.URL, j.fileName(id), 0, ext, j.req.Created)
	return nil
}

// imageSources fetches the page and returns the src of every full-size
// image. ok is false when the fetch failed and was already recorded.
func (v *VidbleExtractor) imageSources(j *job) (sources []string, ok bool, err error) {
	page, ok := j.fetchText(j.req.URL)
	if !ok {
		return nil, false, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, false, fmt.Errorf("parsing HTML: %w", err)
	}
	return parseVidbleImages(doc), true, nil
}

// parseVidbleImages selects every img whose first class token marks it as a
// full-size image and returns their src attributes in document order.
func parseVidbleImages(doc *goquery.Document) []string {
	var sources []string

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		class, exists := s.Attr("class")
		if !exists {
			return
		}
		tokens := strings.Fields(class)
		if len(tokens) == 0 || tokens[0] != vidbleImageClass {
			return
		}
		if src, exists := s.Attr("src"); exists {
			sources = append(sources, src)
		}
	})

	return sources
}
