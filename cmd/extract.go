package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"redditdl/internal/media"
)

var (
	flagUser      string
	flagTitle     string
	flagSubreddit string
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>...",
	Short: "Extract content from links",
	Args:  cobra.MinimumNArgs(1),
	RunE:  extractRun,
}

func init() {
	extractCmd.Flags().StringVar(&flagUser, "user", "", "Author of the post the links come from")
	extractCmd.Flags().StringVar(&flagTitle, "title", "", "Title of the post the links come from")
	extractCmd.Flags().StringVar(&flagSubreddit, "subreddit", "", "Subreddit of the post the links come from")
}

func extractRun(cmd *cobra.Command, args []string) error {
	p, err := policy()
	if err != nil {
		return fmt.Errorf("resolving save path: %w", err)
	}

	now := time.Now()
	reqs := make([]media.Request, len(args))
	for i, url := range args {
		title := flagTitle
		if title == "" {
			// keeps title-named files from colliding
			title = fmt.Sprintf("%s %d", now.Format("2006-01-02 150405"), i+1)
		}
		reqs[i] = p.Request(media.Post{
			URL:       url,
			User:      flagUser,
			PostTitle: title,
			Subreddit: flagSubreddit,
			Created:   now,
		})
	}

	_, err = process(cmd.Context(), reqs)
	return err
}
