package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redditdl/internal/media"
)

func TestDirectExtract(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		nameBy   media.NamingPolicy
		wantName string
		wantExt  string
	}{
		{"by title", "https://i.redd.it/x1y2z3.png", media.NameByTitle, "Post Title", ".png"},
		{"by id", "https://i.redd.it/x1y2z3.png", media.NameByID, "x1y2z3", ".png"},
		{"query string", "https://example.com/media/clip.mp4?s=abc", media.NameByID, "clip", ".mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _ := offlineEnv(t)
			res, err := NewDirect(env).Extract(context.Background(), testRequest(tt.url, tt.nameBy))
			require.NoError(t, err)
			require.Len(t, res.Content, 1)

			c := res.Content[0]
			assert.Equal(t, tt.url, c.URL)
			assert.Equal(t, tt.wantName, c.Name)
			assert.Equal(t, tt.wantExt, c.Extension)
			assert.Equal(t, "some_user", c.User)
			assert.Equal(t, "pics", c.Subreddit)
			assert.Equal(t, "/downloads", c.SavePath)
			assert.Equal(t, media.SaveBySubreddit, c.SaveMethod)
			assert.Equal(t, testCreated, c.Created)
			assert.Empty(t, res.Failures)
		})
	}
}

func TestDirectExtractMalformed(t *testing.T) {
	for _, url := range []string{"https://i.redd.it/noextension", "nothing-here"} {
		t.Run(url, func(t *testing.T) {
			env, logs := offlineEnv(t)
			res, err := NewDirect(env).Extract(context.Background(), testRequest(url, media.NameByID))

			var malformed *MalformedURLError
			require.True(t, errors.As(err, &malformed))
			assert.True(t, errors.Is(err, ErrMalformedURL))
			assert.Equal(t, url, malformed.URL)
			require.NotNil(t, res)
			assert.Empty(t, res.Content)
			assert.Equal(t, 1, logs.FilterMessage("Failed direct extract: Malformed URL").Len())
		})
	}
}

func TestDirectDisplayOnlyIsCarried(t *testing.T) {
	env, _ := offlineEnv(t)
	req := testRequest("https://i.redd.it/x1y2z3.jpg", media.NameByTitle)
	req.DisplayOnly = true

	res, err := NewDirect(env).Extract(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	assert.True(t, res.Content[0].DisplayOnly)
}

func TestRedditUploadsExtract(t *testing.T) {
	for _, nameBy := range []media.NamingPolicy{media.NameByTitle, media.NameByID} {
		t.Run(nameBy.String(), func(t *testing.T) {
			env, _ := offlineEnv(t)
			url := "https://i.reddituploads.com/0a1b2c3d4e?fit=max&h=1536"

			res, err := NewRedditUploads(env).Extract(context.Background(), testRequest(url, nameBy))
			require.NoError(t, err)
			require.Len(t, res.Content, 1)
			assert.Equal(t, url+".jpg", res.Content[0].URL)
			assert.Equal(t, "Post Title", res.Content[0].Name)
			assert.Equal(t, ".jpg", res.Content[0].Extension)
		})
	}
}

func TestRedditUploadsEmptyURL(t *testing.T) {
	env, logs := offlineEnv(t)

	res, err := NewRedditUploads(env).Extract(context.Background(), testRequest("", media.NameByTitle))
	require.NoError(t, err)
	assert.Empty(t, res.Content)
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[0], "Failed to locate the content")
	assert.Equal(t, 1, logs.FilterMessage("Failed extract: Failed to locate content").Len())
}
