package extract

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"redditdl/internal/media"
)

var testCreated = time.Date(2017, 6, 1, 12, 0, 0, 0, time.UTC)

// failTransport fails the test on any outbound request.
type failTransport struct {
	t *testing.T
}

func (f failTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	f.t.Errorf("unexpected request to %s", r.URL)
	return nil, errors.New("network disabled in test")
}

// offlineEnv returns an Env whose HTTP client refuses to make requests and
// whose logger records every entry.
func offlineEnv(t *testing.T) (Env, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return Env{
		HTTP:   &http.Client{Transport: failTransport{t: t}},
		Logger: zap.New(core),
	}, logs
}

// onlineEnv returns an Env using the default client and an observed logger.
func onlineEnv() (Env, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return Env{HTTP: http.DefaultClient, Logger: zap.New(core)}, logs
}

func testRequest(url string, nameBy media.NamingPolicy) media.Request {
	return media.Request{
		URL:        url,
		User:       "some_user",
		PostTitle:  "Post Title",
		Subreddit:  "pics",
		Created:    testCreated,
		SaveMethod: media.SaveBySubreddit,
		NameBy:     nameBy,
		SavePath:   "/downloads",
	}
}
