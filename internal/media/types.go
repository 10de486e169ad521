// Package media defines shared types for the redditdl application.
package media

import (
	"fmt"
	"strings"
	"time"
)

// NamingPolicy selects the base file name of extracted content.
type NamingPolicy int

const (
	NameByTitle NamingPolicy = iota
	NameByID
)

func (n NamingPolicy) String() string {
	switch n {
	case NameByTitle:
		return "title"
	case NameByID:
		return "id"
	default:
		return "unknown"
	}
}

// ParseNamingPolicy maps a config value onto a NamingPolicy.
func ParseNamingPolicy(s string) (NamingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title", "post title":
		return NameByTitle, nil
	case "id", "image/album id":
		return NameByID, nil
	default:
		return NameByTitle, fmt.Errorf("unknown naming policy %q (valid: title, id)", s)
	}
}

// SaveMethod controls the directory layout under the save path.
type SaveMethod string

const (
	SaveFlat              SaveMethod = "flat"
	SaveBySubreddit       SaveMethod = "subreddit"
	SaveByUser            SaveMethod = "user"
	SaveBySubredditByUser SaveMethod = "subreddit/user"
	SaveByUserBySubreddit SaveMethod = "user/subreddit"
)

// Valid reports whether m is a known save method.
func (m SaveMethod) Valid() bool {
	switch m {
	case SaveFlat, SaveBySubreddit, SaveByUser, SaveBySubredditByUser, SaveByUserBySubreddit:
		return true
	}
	return false
}

// Request carries one posted link and the post metadata needed to name its content.
type Request struct {
	URL         string
	User        string
	PostTitle   string
	Subreddit   string
	Created     time.Time
	SaveMethod  SaveMethod
	NameBy      NamingPolicy
	SavePath    string
	DisplayOnly bool // preview only, never written to disk
}

// Post returns the identifiers needed to re-attempt the request later.
func (r Request) Post() Post {
	return Post{
		URL:       r.URL,
		User:      r.User,
		PostTitle: r.PostTitle,
		Subreddit: r.Subreddit,
		Created:   r.Created,
	}
}

// Content is a resolved, ready-to-download media reference.
type Content struct {
	URL         string     `json:"url"`
	User        string     `json:"user"`
	PostTitle   string     `json:"post_title"`
	Subreddit   string     `json:"subreddit"`
	Name        string     `json:"file_name"` // base name plus optional " <n>" ordinal
	Extension   string     `json:"extension"` // leading dot, e.g. ".jpg"
	SavePath    string     `json:"save_path"`
	SaveMethod  SaveMethod `json:"save_method"`
	Created     time.Time  `json:"created"`
	DisplayOnly bool       `json:"display_only"`
}

// FileName returns the full file name including extension.
func (c Content) FileName() string {
	return c.Name + c.Extension
}

// Dir returns the directory the content belongs in, relative to SavePath.
func (c Content) Dir() []string {
	switch c.SaveMethod {
	case SaveBySubreddit:
		return []string{c.Subreddit}
	case SaveByUser:
		return []string{c.User}
	case SaveBySubredditByUser:
		return []string{c.Subreddit, c.User}
	case SaveByUserBySubreddit:
		return []string{c.User, c.Subreddit}
	default:
		return nil
	}
}

// Post holds the original identifiers of a post whose extraction failed
// transiently and should be attempted again on a later run.
type Post struct {
	URL       string    `json:"url"`
	User      string    `json:"user"`
	PostTitle string    `json:"post_title"`
	Subreddit string    `json:"subreddit"`
	Created   time.Time `json:"created"`
}

// Result is everything a single extraction produced.
type Result struct {
	Content  []Content `json:"content"`
	Failures []string  `json:"failures,omitempty"`
	Retry    []Post    `json:"retry,omitempty"`
}

// OK reports whether the extraction produced content and no failures.
func (r *Result) OK() bool {
	return len(r.Content) > 0 && len(r.Failures) == 0 && len(r.Retry) == 0
}
