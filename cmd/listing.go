package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"redditdl/internal/media"
	"redditdl/internal/provider"
)

var flagLimit int

var userCmd = &cobra.Command{
	Use:   "user <name>...",
	Short: "Extract content from a user's newest posts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listingRun(cmd.Context(), args, provider.Provider.UserPosts)
	},
}

var subredditCmd = &cobra.Command{
	Use:   "subreddit <name>...",
	Short: "Extract content from a subreddit's newest posts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listingRun(cmd.Context(), args, provider.Provider.SubredditPosts)
	},
}

func init() {
	for _, c := range []*cobra.Command{userCmd, subredditCmd} {
		c.Flags().IntVarP(&flagLimit, "limit", "n", 0, "Posts to fetch per name (default from config)")
	}
}

type listFunc func(p provider.Provider, ctx context.Context, name string, limit int) ([]media.Request, error)

// listingRun collects the newest posts of every name and extracts them.
// A name that cannot be listed is logged and skipped.
func listingRun(ctx context.Context, names []string, list listFunc) error {
	pol, err := policy()
	if err != nil {
		return fmt.Errorf("resolving save path: %w", err)
	}

	src, err := provider.NewReddit(cfg.Reddit, cfg.UserAgent, pol)
	if err != nil {
		return err
	}

	limit := cfg.PostLimit
	if flagLimit > 0 {
		limit = flagLimit
	}

	var reqs []media.Request
	for _, name := range names {
		posts, err := list(src, ctx, name, limit)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("listing failed", zap.String("name", name), zap.Error(err))
			continue
		}
		logger.Debug("listed posts", zap.String("name", name), zap.Int("count", len(posts)))
		reqs = append(reqs, posts...)
	}

	_, err = process(ctx, reqs)
	return err
}
