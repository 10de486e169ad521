package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"redditdl/internal/httputil"
	"redditdl/internal/media"
)

// job is the state of one Extract call: the request, the result being
// accumulated and the collaborators it may use.
type job struct {
	ctx    context.Context
	req    media.Request
	client *http.Client
	log    *zap.Logger
	result *media.Result
}

func newJob(ctx context.Context, env Env, req media.Request) *job {
	return &job{
		ctx:    ctx,
		req:    req,
		client: env.HTTP,
		log:    env.Logger,
		result: &media.Result{},
	}
}

// fetchJSON returns the body of url if it answered 200 with a JSON content
// type. Otherwise the failure is logged and recorded and ok is false.
func (j *job) fetchJSON(url string) (body []byte, ok bool) {
	return j.fetch(url, "json", "Failed to retrieve json data for link")
}

// fetchText is fetchJSON for text responses (HTML pages).
func (j *job) fetchText(url string) (string, bool) {
	body, ok := j.fetch(url, "text", "Failed to retrieve data for link")
	return string(body), ok
}

func (j *job) fetch(url, contentType, message string) ([]byte, bool) {
	resp, err := httputil.Get(j.ctx, j.client, url)
	if err != nil {
		j.log.Error("Failed connection: Request error",
			zap.Error(err),
			j.logData())
		j.fail(fmt.Sprintf("%s %s\nUser: %s  Subreddit: %s  Title: %s",
			message, url, j.req.User, j.req.Subreddit, j.req.PostTitle))
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || !strings.Contains(resp.Header.Get("Content-Type"), contentType) {
		j.log.Error("Failed connection: Bad response",
			zap.Int("response_code", resp.StatusCode),
			j.logData())
		j.fail(fmt.Sprintf("%s %s\nUser: %s  Subreddit: %s  Title: %s",
			message, url, j.req.User, j.req.Subreddit, j.req.PostTitle))
		return nil, false
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		j.log.Error("Failed connection: Unreadable body", zap.Error(err), j.logData())
		j.fail(fmt.Sprintf("%s %s\nUser: %s  Subreddit: %s  Title: %s",
			message, url, j.req.User, j.req.Subreddit, j.req.PostTitle))
		return nil, false
	}
	return body, true
}

// emit appends one content item. ext has no leading dot. A non-zero ordinal
// is appended to the name as " <n>".
func (j *job) emit(url, name string, ordinal int, ext string, created time.Time) {
	if ordinal > 0 {
		name = fmt.Sprintf("%s %d", name, ordinal)
	}
	j.result.Content = append(j.result.Content, media.Content{
		URL:         url,
		User:        j.req.User,
		PostTitle:   j.req.PostTitle,
		Subreddit:   j.req.Subreddit,
		Name:        name,
		Extension:   "." + ext,
		SavePath:    j.req.SavePath,
		SaveMethod:  j.req.SaveMethod,
		Created:     created,
		DisplayOnly: j.req.DisplayOnly,
	})
}

// fileName applies the naming policy, falling back to the given site id.
func (j *job) fileName(id string) string {
	if j.req.NameBy == media.NameByTitle {
		return j.req.PostTitle
	}
	return id
}

func (j *job) fail(message string) {
	j.result.Failures = append(j.result.Failures, message)
}

// saveForRetry records the post as worth re-attempting on a later run.
func (j *job) saveForRetry() {
	j.result.Retry = append(j.result.Retry, j.req.Post())
}

// failedToLocate records the generic failure outcome.
func (j *job) failedToLocate(err error) {
	j.fail(fmt.Sprintf("Failed to locate the content at %s\nUser: %s  Subreddit: %s  Title: %s",
		j.req.URL, j.req.User, j.req.Subreddit, j.req.PostTitle))
	j.log.Error("Failed extract: Failed to locate content", zap.Error(err), j.logData())
}

// catch converts a panic raised while extracting into the generic failure
// outcome. It must be deferred directly.
func (j *job) catch() {
	if r := recover(); r != nil {
		j.failedToLocate(fmt.Errorf("panic: %v", r))
	}
}

// logData describes the request and the output so far.
func (j *job) logData() zap.Field {
	return zap.Dict("extractor_data",
		zap.String("url", j.req.URL),
		zap.String("user", j.req.User),
		zap.String("subreddit", j.req.Subreddit),
		zap.String("post_title", j.req.PostTitle),
		zap.Time("creation_date", j.req.Created),
		zap.String("save_path", j.req.SavePath),
		zap.Bool("content_display_only", j.req.DisplayOnly),
		zap.String("subreddit_save_method", string(j.req.SaveMethod)),
		zap.String("name_downloads_by", j.req.NameBy.String()),
		zap.Int("extracted_content_count", len(j.result.Content)),
		zap.Int("failed_extract_message_count", len(j.result.Failures)),
		zap.Int("failed_extracts_to_save_count", len(j.result.Retry)),
	)
}
