// Package imgur is a small client for the Imgur v3 API covering the image,
// album and credits endpoints used during extraction.
package imgur

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"redditdl/internal/httputil"
)

// DefaultAPI is the Imgur v3 API root.
const DefaultAPI = "https://api.imgur.com/3"

// Image is the subset of an Imgur image record extraction relies on.
type Image struct {
	ID       string `json:"id"`
	Type     string `json:"type"` // MIME type, e.g. "image/gif"
	Animated bool   `json:"animated"`
	Link     string `json:"link"`
	MP4      string `json:"mp4"`
}

// AnimatedGIF reports whether the image should be fetched as its MP4 variant.
func (i Image) AnimatedGIF() bool {
	return i.Type == "image/gif" && i.Animated
}

// Credits mirrors the /credits endpoint.
type Credits struct {
	UserLimit       int   `json:"UserLimit"`
	UserRemaining   int   `json:"UserRemaining"`
	UserReset       int64 `json:"UserReset"`
	ClientLimit     int   `json:"ClientLimit"`
	ClientRemaining int   `json:"ClientRemaining"`
}

// ResetTime is when the user credits are replenished.
func (c Credits) ResetTime() time.Time {
	return time.Unix(c.UserReset, 0)
}

// Client talks to the Imgur API with an application client ID.
type Client struct {
	clientID     string
	clientSecret string
	base         string
	http         *http.Client
	limiter      *rate.Limiter

	mu              sync.Mutex
	clientRemaining *int
	userRemaining   *int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.base = base }
}

// WithHTTPClient replaces the default hardened HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLimiter replaces the default request pacing.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// New creates a Client. Both credentials are required.
func New(clientID, clientSecret string, opts ...Option) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("imgur client id and secret are required")
	}

	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		base:         DefaultAPI,
		http:         httputil.NewClient(),
		// Client credits are 12,500/day; 5 req/s keeps bursts well inside that
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Image returns a single image record.
func (c *Client) Image(ctx context.Context, id string) (*Image, error) {
	if err := httputil.ValidateID(id); err != nil {
		return nil, fmt.Errorf("invalid image ID: %w", err)
	}

	var img Image
	if err := c.get(ctx, &img, "image", id); err != nil {
		return nil, err
	}
	return &img, nil
}

// AlbumImages returns every image of an album in album order.
func (c *Client) AlbumImages(ctx context.Context, id string) ([]Image, error) {
	if err := httputil.ValidateID(id); err != nil {
		return nil, fmt.Errorf("invalid album ID: %w", err)
	}

	var imgs []Image
	if err := c.get(ctx, &imgs, "album", id, "images"); err != nil {
		return nil, err
	}
	return imgs, nil
}

// Credits queries the remaining rate-limit credits.
func (c *Client) Credits(ctx context.Context) (*Credits, error) {
	var cr Credits
	if err := c.get(ctx, &cr, "credits"); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.clientRemaining = &cr.ClientRemaining
	c.userRemaining = &cr.UserRemaining
	c.mu.Unlock()

	return &cr, nil
}

// ClientRemaining returns the last seen client credit count. The second
// value is false until a response has reported it.
func (c *Client) ClientRemaining() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clientRemaining == nil {
		return 0, false
	}
	return *c.clientRemaining, true
}

// UserRemaining returns the last seen user credit count.
func (c *Client) UserRemaining() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userRemaining == nil {
		return 0, false
	}
	return *c.userRemaining, true
}

// envelope is the wrapper every v3 endpoint responds with.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Status  int             `json:"status"`
}

// errorData is the data payload of a failed request.
type errorData struct {
	Error json.RawMessage `json:"error"`
}

func (c *Client) get(ctx context.Context, out any, path ...string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Authorization", "Client-ID "+c.clientID)
	header.Set("Accept", "application/json")

	resp, err := httputil.GetWith(ctx, c.http, httputil.BuildURL(c.base, path...), header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.updateCredits(resp.Header)

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{Message: "rate limit exceeded"}
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: "JSON decoding of response failed"}
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		status := resp.StatusCode
		if status < http.StatusBadRequest && env.Status != 0 {
			status = env.Status
		}
		return &Error{StatusCode: status, Message: errorMessage(env.Data)}
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("parsing imgur data: %w", err)
	}
	return nil
}

// updateCredits records the credit counters Imgur attaches to every response.
func (c *Client) updateCredits(h http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, err := strconv.Atoi(h.Get("X-RateLimit-ClientRemaining")); err == nil {
		c.clientRemaining = &n
	}
	if n, err := strconv.Atoi(h.Get("X-RateLimit-UserRemaining")); err == nil {
		c.userRemaining = &n
	}
}

// errorMessage pulls a readable message out of an error payload, which Imgur
// sends either as a string or as an object with a message field.
func errorMessage(data json.RawMessage) string {
	var ed errorData
	if err := json.Unmarshal(data, &ed); err != nil || len(ed.Error) == 0 {
		return "unknown imgur error"
	}

	var s string
	if err := json.Unmarshal(ed.Error, &s); err == nil {
		return s
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(ed.Error, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(ed.Error)
}
