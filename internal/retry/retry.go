// Package retry persists posts whose extraction failed for a transient
// reason (rate limits, exhausted credits, host over capacity) so a later
// run can attempt them again.
package retry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"redditdl/internal/media"
)

// Store is a sqlite-backed set of posts keyed by URL.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS failed_posts (
	url       TEXT PRIMARY KEY,
	user      TEXT NOT NULL,
	title     TEXT NOT NULL,
	subreddit TEXT NOT NULL,
	created   INTEGER NOT NULL
);
`

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating retry dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening retry store: %w", err)
	}
	for _, stmt := range []string{
		"PRAGMA busy_timeout=5000",
		schema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing retry store: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records posts, replacing the details of any URL already stored.
// A replaced post keeps its original position.
func (s *Store) Save(ctx context.Context, posts []media.Post) error {
	if len(posts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning retry save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO failed_posts (url, user, title, subreddit, created) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			user = excluded.user,
			title = excluded.title,
			subreddit = excluded.subreddit,
			created = excluded.created`)
	if err != nil {
		return fmt.Errorf("preparing retry save: %w", err)
	}
	defer stmt.Close()

	for _, p := range posts {
		if _, err := stmt.ExecContext(ctx, p.URL, p.User, p.PostTitle, p.Subreddit, p.Created.Unix()); err != nil {
			return fmt.Errorf("saving %s for retry: %w", p.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing retry save: %w", err)
	}
	return nil
}

// List returns every stored post in the order it was first saved.
func (s *Store) List(ctx context.Context) ([]media.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, user, title, subreddit, created FROM failed_posts ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing retry posts: %w", err)
	}
	defer rows.Close()

	var posts []media.Post
	for rows.Next() {
		var (
			p       media.Post
			created int64
		)
		if err := rows.Scan(&p.URL, &p.User, &p.PostTitle, &p.Subreddit, &created); err != nil {
			return nil, fmt.Errorf("scanning retry post: %w", err)
		}
		p.Created = time.Unix(created, 0).UTC()
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading retry posts: %w", err)
	}
	return posts, nil
}

// Delete removes the post with url. Deleting an unknown URL is not an error.
func (s *Store) Delete(ctx context.Context, url string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM failed_posts WHERE url = ?`, url); err != nil {
		return fmt.Errorf("deleting retry post %s: %w", url, err)
	}
	return nil
}
