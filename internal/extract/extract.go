// Package extract resolves links posted to reddit into downloadable content.
// Each hosting site family has its own Extractor; a Registry picks one by the
// domain found in the link.
package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"redditdl/internal/httputil"
	"redditdl/internal/media"
)

// Extractor turns one posted link into content items and failure records.
// Implementations never return an error for a failed extraction; failures
// are recorded in the returned Result. DirectExtractor is the exception: a
// link it cannot split into a name and an extension yields a *MalformedURLError.
type Extractor interface {
	Extract(ctx context.Context, req media.Request) (*media.Result, error)
}

// Settings is the read-only source of API credentials. An empty value means
// the credential is not configured.
type Settings interface {
	ImgurClientID() string
	ImgurClientSecret() string
}

// Env holds the collaborators shared by every extractor. They are read-only
// once built, so one Env can back extractors running on many goroutines.
type Env struct {
	HTTP   *http.Client
	Logger *zap.Logger
}

func (e Env) withDefaults() Env {
	if e.HTTP == nil {
		e.HTTP = httputil.NewClient()
	}
	if e.Logger == nil {
		e.Logger = zap.NewNop()
	}
	return e
}

var (
	// ErrMalformedURL is wrapped by every *MalformedURLError.
	ErrMalformedURL = errors.New("malformed URL")

	// ErrUnsupported is returned by a Registry for links no extractor handles.
	ErrUnsupported = errors.New("unsupported host")
)

// MalformedURLError reports a link whose shape could not be parsed.
type MalformedURLError struct {
	URL    string
	Reason string
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("malformed URL %q: %s", e.URL, e.Reason)
}

func (e *MalformedURLError) Unwrap() error {
	return ErrMalformedURL
}
