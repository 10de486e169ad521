// Package provider lists reddit posts and turns them into extraction
// requests.
package provider

import (
	"context"

	"redditdl/internal/media"
)

// Provider is the interface that post sources must implement.
type Provider interface {
	// UserPosts returns the newest link posts submitted by user.
	UserPosts(ctx context.Context, user string, limit int) ([]media.Request, error)

	// SubredditPosts returns the newest link posts in subreddit.
	SubredditPosts(ctx context.Context, subreddit string, limit int) ([]media.Request, error)
}

// Policy is copied onto every request a Provider builds.
type Policy struct {
	NameBy      media.NamingPolicy
	SaveMethod  media.SaveMethod
	SavePath    string
	DisplayOnly bool
}

// Request builds the request for one post. It also rebuilds requests for
// posts loaded from the retry store.
func (p Policy) Request(post media.Post) media.Request {
	return media.Request{
		URL:         post.URL,
		User:        post.User,
		PostTitle:   post.PostTitle,
		Subreddit:   post.Subreddit,
		Created:     post.Created,
		SaveMethod:  p.SaveMethod,
		NameBy:      p.NameBy,
		SavePath:    p.SavePath,
		DisplayOnly: p.DisplayOnly,
	}
}
