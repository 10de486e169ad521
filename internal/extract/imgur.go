package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"redditdl/internal/imgur"
	"redditdl/internal/media"
)

// imgurDirectHost is where mislinked direct links are rewritten to.
const imgurDirectHost = "https://i.imgur.com/"

// ImgurAPI is the part of the Imgur API extraction needs.
type ImgurAPI interface {
	Image(ctx context.Context, id string) (*imgur.Image, error)
	AlbumImages(ctx context.Context, id string) ([]imgur.Image, error)
	// ClientRemaining reports the client credits left; false when unknown.
	ClientRemaining() (int, bool)
}

type imgurPath int

const (
	imgurDirect imgurPath = iota
	imgurAlbum
	imgurGallery
	imgurMislinked
	imgurSingle
)

// classifyImgur decides how an imgur link is extracted. The first matching
// shape wins: direct host, album, gallery, media extension, single image.
func classifyImgur(u string) imgurPath {
	switch {
	case strings.Contains(u, "i.imgur"):
		return imgurDirect
	case strings.Contains(u, "/a/"):
		return imgurAlbum
	case strings.Contains(u, "/gallery/"):
		return imgurGallery
	case hasSuffixFold(u, mediaExtensions...):
		return imgurMislinked
	default:
		return imgurSingle
	}
}

// ImgurExtractor resolves imgur links through the Imgur API.
type ImgurExtractor struct {
	env Env
	api ImgurAPI // nil when no client credentials are configured
}

// NewImgur creates an ImgurExtractor from the configured credentials. With
// missing credentials every Extract records a configuration failure.
func NewImgur(env Env, settings Settings, opts ...imgur.Option) *ImgurExtractor {
	env = env.withDefaults()
	x := &ImgurExtractor{env: env}

	if settings == nil || settings.ImgurClientID() == "" || settings.ImgurClientSecret() == "" {
		return x
	}

	opts = append([]imgur.Option{imgur.WithHTTPClient(env.HTTP)}, opts...)
	client, err := imgur.New(settings.ImgurClientID(), settings.ImgurClientSecret(), opts...)
	if err != nil {
		env.Logger.Warn("Imgur client setup failed", zap.Error(err))
		return x
	}
	x.api = client
	return x
}

// NewImgurWithAPI creates an ImgurExtractor over an existing API client.
func NewImgurWithAPI(env Env, api ImgurAPI) *ImgurExtractor {
	return &ImgurExtractor{env: env.withDefaults(), api: api}
}

// Extract classifies the link, resolves it and maps API failures onto
// failure messages and retry records.
func (x *ImgurExtractor) Extract(ctx context.Context, req media.Request) (res *media.Result, _ error) {
	j := newJob(ctx, x.env, req)
	res = j.result

	if x.api == nil {
		x.notConfigured(j)
		return res, nil
	}

	defer j.catch()

	var err error
	switch classifyImgur(req.URL) {
	case imgurDirect:
		err = x.direct(j, false)
	case imgurAlbum:
		err = x.album(j)
	case imgurGallery:
		// Gallery detection is unreliable; a failed gallery is dropped
		// without a failure record, unlike a failed album.
		if gerr := x.album(j); gerr != nil {
			j.log.Debug("Imgur gallery extract ignored", zap.Error(gerr), j.logData())
		}
	case imgurMislinked:
		err = x.direct(j, true)
	default:
		err = x.single(j)
	}

	if err != nil {
		x.handleError(j, err)
	}
	return res, nil
}

// direct handles i.imgur.com links and, when mislinked is set, links that end
// in a media extension but point elsewhere on imgur. Only gif/gifv links are
// looked up, to swap animated gifs for their mp4.
func (x *ImgurExtractor) direct(j *job, mislinked bool) error {
	url, ok := trimAfterExtension(j.req.URL)
	if !ok {
		event := "Failed direct extract: Unrecognized extension"
		if mislinked {
			event = "Failed direct mislinked extract: Unrecognized extension"
		}
		j.log.Error(event, j.logData())
		j.fail(fmt.Sprintf("Failed: Unrecognized file extension: %s\nUser: %s  Subreddit: %s  Title: %s",
			j.req.URL, j.req.User, j.req.Subreddit, j.req.PostTitle))
		return nil
	}

	if mislinked {
		tail, err := lastSegment(url)
		if err != nil {
			return err
		}
		url = imgurDirectHost + tail
	}

	id, ext, err := idAndExt(url)
	if err != nil {
		return err
	}

	if strings.HasSuffix(url, "gifv") || strings.HasSuffix(url, "gif") {
		pic, err := x.api.Image(j.ctx, id)
		if err != nil {
			return err
		}
		if pic.AnimatedGIF() {
			url, ext = pic.MP4, "mp4"
		}
	}

	j.emit(url, j.fileName(id), 0, ext, j.req.Created)
	return nil
}

// album emits every image of the album in order with ordinals from 1. Items
// are named after the album id, not the image id, under NameByID.
func (x *ImgurExtractor) album(j *job) error {
	albumID, err := lastSegment(j.req.URL)
	if err != nil {
		return err
	}

	pics, err := x.api.AlbumImages(j.ctx, albumID)
	if err != nil {
		return err
	}

	for i, pic := range pics {
		url, ext, err := resolveImage(pic)
		if err != nil {
			return err
		}
		j.emit(url, j.fileName(albumID), i+1, ext, j.req.Created)
	}
	return nil
}

func (x *ImgurExtractor) single(j *job) error {
	id, err := lastSegment(j.req.URL)
	if err != nil {
		return err
	}

	pic, err := x.api.Image(j.ctx, id)
	if err != nil {
		return err
	}

	url, ext, err := resolveImage(*pic)
	if err != nil {
		return err
	}
	j.emit(url, j.fileName(id), 0, ext, j.req.Created)
	return nil
}

// resolveImage picks the download URL and extension of an API image record.
func resolveImage(pic imgur.Image) (url, ext string, err error) {
	if pic.AnimatedGIF() {
		return pic.MP4, "mp4", nil
	}
	ext, err = extOf(pic.Link)
	if err != nil {
		return "", "", err
	}
	return pic.Link, ext, nil
}

// trimAfterExtension cuts the link right after the last listed media
// extension it contains, dropping query strings and trailing junk.
// e.g. "https://i.imgur.com/abc.jpg?1" -> "https://i.imgur.com/abc.jpg"
func trimAfterExtension(u string) (string, bool) {
	trimmed, found := "", false
	for _, ext := range mediaExtensions {
		if i := strings.Index(u, ext); i >= 0 {
			trimmed, found = u[:i]+ext, true
		}
	}
	return trimmed, found
}

// handleError maps an API failure onto its outcome.
func (x *ImgurExtractor) handleError(j *job, err error) {
	var rateErr *imgur.RateLimitError
	if errors.As(err, &rateErr) {
		x.rateLimitExceeded(j)
		return
	}

	var apiErr *imgur.Error
	if !errors.As(err, &apiErr) {
		j.failedToLocate(err)
		return
	}

	switch apiErr.StatusCode {
	case http.StatusForbidden:
		remaining, known := x.api.ClientRemaining()
		if known && remaining <= 0 {
			x.noCredits(j)
		} else {
			j.failedToLocate(err)
		}
	case http.StatusTooManyRequests:
		x.rateLimitExceeded(j)
	case http.StatusInternalServerError:
		x.overCapacity(j)
	case http.StatusNotFound:
		x.doesNotExist(j)
	default:
		j.failedToLocate(err)
	}
}

func (x *ImgurExtractor) notConfigured(j *job) {
	j.log.Warn("Imgur extract failed: No imgur client setup",
		zap.String("url", j.req.URL),
		zap.String("user", j.req.User),
		zap.String("subreddit", j.req.Subreddit),
		zap.String("post_title", j.req.PostTitle),
		zap.Time("creation_date", j.req.Created))
	j.fail(fmt.Sprintf("Failed: No valid Imgur client is detected. In order to download content from imgur.com "+
		"you must have a valid Imgur client. Please see the settings.\nTitle: %s,  User: %s,  Subreddit: %s,  URL: %s",
		j.req.PostTitle, j.req.User, j.req.Subreddit, j.req.URL))
}

func (x *ImgurExtractor) rateLimitExceeded(j *job) {
	j.saveForRetry()
	j.fail(fmt.Sprintf("Failed: Imgur rate limit exceeded. This post has been saved and will be downloaded "+
		"the next time the application is run. Please make sure you have adequate user credits upon the next run."+
		"\nTitle: %s,  User: %s,  Subreddit: %s", j.req.PostTitle, j.req.User, j.req.Subreddit))
	j.log.Error("Failed extract: Rate limit exceeded", j.logData())
}

func (x *ImgurExtractor) noCredits(j *job) {
	j.saveForRetry()
	j.fail(fmt.Sprintf("Failed: You do not have enough imgur credits left to extract this content. This post "+
		"will be saved and extraction attempted the next time the program is run. Please make sure that you have "+
		"adequate credits upon next run.\nTitle: %s,  User: %s,  Subreddit: %s",
		j.req.PostTitle, j.req.User, j.req.Subreddit))
	j.log.Error("Failed extract: Out of credits", j.logData())
}

func (x *ImgurExtractor) overCapacity(j *job) {
	j.saveForRetry()
	j.fail(fmt.Sprintf("Failed: Imgur is currently over capacity. This post has been saved and extraction "+
		"will be attempted the next time the program is run.\nTitle: %s,  User: %s,  Subreddit: %s",
		j.req.PostTitle, j.req.User, j.req.Subreddit))
	j.log.Error("Failed extract: Imgur over capacity", j.logData())
}

func (x *ImgurExtractor) doesNotExist(j *job) {
	j.fail(fmt.Sprintf("Failed: The content no longer exists. This most likely means the image has been "+
		"deleted on Imgur, but the post still remains on reddit\nUrl: %s,  User: %s,  Subreddit: %s,  Title: %s",
		j.req.URL, j.req.User, j.req.Subreddit, j.req.PostTitle))
	j.log.Warn("Failed extract: Content no longer exists", j.logData())
}
