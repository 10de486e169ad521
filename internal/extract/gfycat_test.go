package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redditdl/internal/media"
)

func TestGfycatDirectLink(t *testing.T) {
	tests := []struct {
		url     string
		nameBy  media.NamingPolicy
		name    string
		wantExt string
	}{
		{"https://giant.gfycat.com/abc123.gif", media.NameByID, "abc123", ".gif"},
		{"https://giant.gfycat.com/abc123.webm", media.NameByTitle, "Post Title", ".webm"},
		// gifv is kept as-is rather than normalized to webm
		{"https://gfycat.com/abc123.gifv", media.NameByID, "abc123", ".gifv"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			env, _ := offlineEnv(t)
			res, err := NewGfycat(env, "").Extract(context.Background(), testRequest(tt.url, tt.nameBy))
			require.NoError(t, err)
			require.Len(t, res.Content, 1)
			assert.Equal(t, tt.url, res.Content[0].URL)
			assert.Equal(t, tt.name, res.Content[0].Name)
			assert.Equal(t, tt.wantExt, res.Content[0].Extension)
			assert.Empty(t, res.Failures)
		})
	}
}

func TestGfycatAPILookup(t *testing.T) {
	var requested string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`{"gfyItem":{"gfyName":"abc123","webmUrl":"https://x/abc123.webm"}}`))
	}))
	defer srv.Close()

	env, _ := onlineEnv()
	res, err := NewGfycat(env, srv.URL+"/cajax/get").
		Extract(context.Background(), testRequest("https://gfycat.com/abc123", media.NameByID))
	require.NoError(t, err)

	assert.Equal(t, "/cajax/get/abc123", requested)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "https://x/abc123.webm", res.Content[0].URL)
	assert.Equal(t, ".webm", res.Content[0].Extension)
	assert.Equal(t, "abc123", res.Content[0].Name)
	assert.Empty(t, res.Failures)
	assert.Empty(t, res.Retry)
}

func TestGfycatBadResponse(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
		wantEvent   string
	}{
		{"server error", http.StatusInternalServerError, "application/json", `{}`,
			"Failed to retrieve json data", "Failed connection: Bad response"},
		{"html error page", http.StatusOK, "text/html", `<html>oops</html>`,
			"Failed to retrieve json data", "Failed connection: Bad response"},
		{"missing gfyItem", http.StatusOK, "application/json", `{"error":"not found"}`,
			"Failed to locate the content", "Failed extract: Failed to locate content"},
		{"invalid json", http.StatusOK, "application/json", `{"gfyItem":`,
			"Failed to locate the content", "Failed extract: Failed to locate content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			env, logs := onlineEnv()
			res, err := NewGfycat(env, srv.URL).
				Extract(context.Background(), testRequest("https://gfycat.com/abc123", media.NameByID))
			require.NoError(t, err)

			assert.Empty(t, res.Content)
			assert.Empty(t, res.Retry)
			require.Len(t, res.Failures, 1)
			assert.Contains(t, res.Failures[0], tt.wantMessage)
			assert.Equal(t, 1, logs.FilterMessage(tt.wantEvent).Len())
		})
	}
}

func TestGfycatLogsResponseCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	env, logs := onlineEnv()
	_, err := NewGfycat(env, srv.URL).
		Extract(context.Background(), testRequest("https://gfycat.com/abc123", media.NameByID))
	require.NoError(t, err)

	entries := logs.FilterMessage("Failed connection: Bad response").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, http.StatusNotFound, fields["response_code"])

	data, ok := fields["extractor_data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "https://gfycat.com/abc123", data["url"])
	assert.Equal(t, "some_user", data["user"])
}
