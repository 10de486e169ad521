package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"redditdl/internal/httputil"
	"redditdl/internal/imgur"
	"redditdl/internal/ui"
)

var creditsCmd = &cobra.Command{
	Use:   "credits",
	Short: "Show the remaining Imgur API credits",
	Args:  cobra.NoArgs,
	RunE:  creditsRun,
}

func creditsRun(cmd *cobra.Command, args []string) error {
	opts := append([]imgur.Option{imgur.WithHTTPClient(httputil.NewClient())}, imgurOptions()...)
	client, err := imgur.New(cfg.ImgurClientID(), cfg.ImgurClientSecret(), opts...)
	if err != nil {
		return fmt.Errorf("imgur client: %w", err)
	}

	credits, err := client.Credits(cmd.Context())
	if err != nil {
		return fmt.Errorf("getting credits: %w", err)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(credits)
	}

	ui.RenderCredits(os.Stdout, credits)
	return nil
}
