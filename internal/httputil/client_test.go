package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSendsDefaultHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept"))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := Get(context.Background(), NewClient(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := ReadBody(resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestGetWithOverridesHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "custom/2.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "Client-ID abc", r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	header := http.Header{}
	header.Set("User-Agent", "custom/2.0")
	header.Set("Authorization", "Client-ID abc")

	resp, err := GetWith(context.Background(), NewClient(), srv.URL, header)
	require.NoError(t, err)
	resp.Body.Close()
}

func TestGetRejectsInvalidURL(t *testing.T) {
	_, err := Get(context.Background(), NewClient(), "ftp://example.com/file")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid URL")
}
