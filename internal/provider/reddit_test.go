package provider

import (
	"testing"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redditdl/internal/config"
	"redditdl/internal/media"
)

var testPolicy = Policy{
	NameBy:     media.NameByID,
	SaveMethod: media.SaveByUser,
	SavePath:   "/downloads",
}

func TestPolicyRequests(t *testing.T) {
	created := time.Date(2017, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := []*reddit.Post{
		{URL: "https://i.redd.it/a.png", Author: "u1", Title: "first", SubredditName: "pics",
			Created: &reddit.Timestamp{Time: created}},
		{URL: "https://www.reddit.com/r/pics/comments/x/", Author: "u2", Title: "text", IsSelfPost: true},
		nil,
		{URL: " ", Author: "u3", Title: "no link"},
		{URL: "https://imgur.com/abc", Author: "u4", Title: "second", SubredditName: "aww"},
	}

	got := testPolicy.requests(posts)
	require.Len(t, got, 2)

	assert.Equal(t, media.Request{
		URL:        "https://i.redd.it/a.png",
		User:       "u1",
		PostTitle:  "first",
		Subreddit:  "pics",
		Created:    created,
		SaveMethod: media.SaveByUser,
		NameBy:     media.NameByID,
		SavePath:   "/downloads",
	}, got[0])

	assert.Equal(t, "https://imgur.com/abc", got[1].URL)
	assert.True(t, got[1].Created.IsZero())
}

func TestPolicyRequestFromRetryPost(t *testing.T) {
	p := testPolicy
	p.DisplayOnly = true
	post := media.Post{URL: "https://imgur.com/abc", User: "u", PostTitle: "t", Subreddit: "s",
		Created: time.Unix(1500000000, 0).UTC()}

	req := p.Request(post)
	assert.Equal(t, post, req.Post())
	assert.True(t, req.DisplayOnly)
	assert.Equal(t, media.NameByID, req.NameBy)
}

func TestNewRedditReadonly(t *testing.T) {
	r, err := NewReddit(config.RedditConfig{}, "redditdl-test/1.0", testPolicy)
	require.NoError(t, err)
	assert.NotNil(t, r.client)
	assert.NotNil(t, r.limiter)
}

func TestProviderInterface(t *testing.T) {
	var _ Provider = (*Reddit)(nil)
}
