package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"golang.org/x/time/rate"

	"redditdl/internal/config"
	"redditdl/internal/media"
)

// Reddit implements the Provider interface over the reddit API.
type Reddit struct {
	client  *reddit.Client
	limiter *rate.Limiter
	policy  Policy
}

// NewReddit creates a Reddit provider. Without a full set of credentials the
// client is read-only.
func NewReddit(creds config.RedditConfig, userAgent string, policy Policy, opts ...reddit.Opt) (*Reddit, error) {
	opts = append([]reddit.Opt{reddit.WithUserAgent(userAgent)}, opts...)

	var (
		client *reddit.Client
		err    error
	)
	if creds.Authenticated() {
		client, err = reddit.NewClient(reddit.Credentials{
			ID:       creds.ClientID,
			Secret:   creds.ClientSecret,
			Username: creds.Username,
			Password: creds.Password,
		}, opts...)
	} else {
		client, err = reddit.NewReadonlyClient(opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("creating reddit client: %w", err)
	}

	return &Reddit{
		client: client,
		// ~60 requests per minute
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		policy:  policy,
	}, nil
}

// UserPosts returns the newest link posts submitted by user.
func (r *Reddit) UserPosts(ctx context.Context, user string, limit int) ([]media.Request, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	posts, _, err := r.client.User.PostsOf(ctx, user, &reddit.ListUserOverviewOptions{
		ListOptions: reddit.ListOptions{Limit: limit},
		Sort:        "new",
	})
	if err != nil {
		return nil, fmt.Errorf("listing posts of u/%s: %w", user, err)
	}
	return r.policy.requests(posts), nil
}

// SubredditPosts returns the newest link posts in subreddit.
func (r *Reddit) SubredditPosts(ctx context.Context, subreddit string, limit int) ([]media.Request, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	posts, _, err := r.client.Subreddit.NewPosts(ctx, subreddit, &reddit.ListOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("listing posts of r/%s: %w", subreddit, err)
	}
	return r.policy.requests(posts), nil
}

// requests converts listing posts, skipping self posts and posts without a link.
func (p Policy) requests(posts []*reddit.Post) []media.Request {
	var out []media.Request
	for _, post := range posts {
		if post == nil || post.IsSelfPost || strings.TrimSpace(post.URL) == "" {
			continue
		}

		var created time.Time
		if post.Created != nil {
			created = post.Created.Time
		}

		out = append(out, p.Request(media.Post{
			URL:       post.URL,
			User:      post.Author,
			PostTitle: post.Title,
			Subreddit: post.SubredditName,
			Created:   created,
		}))
	}
	return out
}
