package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"redditdl/internal/media"
)

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Re-attempt posts saved after a rate limit or outage",
	Args:  cobra.NoArgs,
	RunE:  retryRun,
}

func retryRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openRetryStore(ctx)
	if err != nil {
		return fmt.Errorf("opening retry store: %w", err)
	}
	defer store.Close()

	posts, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		fmt.Fprintln(os.Stderr, "No saved posts to retry.")
		return nil
	}

	p, err := policy()
	if err != nil {
		return fmt.Errorf("resolving save path: %w", err)
	}

	reqs := make([]media.Request, len(posts))
	for i, post := range posts {
		reqs[i] = p.Request(post)
	}

	sum, err := process(ctx, reqs)
	if err != nil {
		return err
	}

	// Posts that failed transiently again were re-saved; the rest are done.
	again := make(map[string]bool, len(sum.Retry))
	for _, post := range sum.Retry {
		again[post.URL] = true
	}
	for _, post := range posts {
		if again[post.URL] {
			continue
		}
		if err := store.Delete(ctx, post.URL); err != nil {
			logger.Warn("could not remove retried post", zap.String("url", post.URL), zap.Error(err))
		}
	}
	return nil
}
