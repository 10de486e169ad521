// Package download saves extracted content to disk.
// Output paths are validated against directory traversal and files are
// written to a temp file first, then renamed into place.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"redditdl/internal/httputil"
	"redditdl/internal/media"
)

var (
	// ErrDisplayOnly is returned for content that is only previewed.
	ErrDisplayOnly = errors.New("display-only content is not saved")

	// ErrExists is returned when the target file is already present.
	ErrExists = errors.New("file already exists")
)

// Target returns the path content is saved to: SavePath, then the
// directories chosen by SaveMethod, then the sanitized file name.
func Target(c media.Content) (string, error) {
	if c.SavePath == "" {
		return "", fmt.Errorf("no save path for %s", c.URL)
	}

	dir := c.SavePath
	for _, part := range c.Dir() {
		dir = filepath.Join(dir, httputil.SanitizeFilename(part))
	}
	return httputil.SafeDownloadPath(dir, c.FileName())
}

// Download fetches c into its target path and returns that path. Existing
// files are left untouched and reported with ErrExists.
func Download(ctx context.Context, client *http.Client, c media.Content) (string, error) {
	if c.DisplayOnly {
		return "", ErrDisplayOnly
	}

	path, err := Target(c)
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return path, ErrExists
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	resp, err := httputil.GetWith(ctx, client, c.URL, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: status %d", c.URL, resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp(dir, ".redditdl-*.part")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if !c.Created.IsZero() {
		os.Chtimes(tmpPath, c.Created, c.Created)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming download: %w", err)
	}

	return path, nil
}
