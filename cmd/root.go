// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"redditdl/internal/config"
	"redditdl/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagDownload    bool
	flagDisplayOnly bool
	flagJSON        bool
	flagDebug       bool
	flagWorkers     int
	flagSavePath    string
	flagNameBy      string
	flagSaveMethod  string
)

// cfg holds the loaded configuration (merged: defaults < config file < env < flags).
var cfg *config.Config

// logger is built from cfg once it is loaded.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "redditdl [url...]",
	Short: "Extract and download media linked from reddit posts",
	Long: `redditdl resolves links posted to reddit (imgur, gfycat, vidble,
i.redd.it, i.reddituploads.com and direct media files) into downloadable
content, and optionally saves it to disk.`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) { logger.Sync() },
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return extractRun(cmd, args)
	},
}

// Execute runs the root command. An interrupt cancels in-flight work.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagDownload, "download", "d", false, "Save extracted content to disk")
	rootCmd.PersistentFlags().BoolVar(&flagDisplayOnly, "display-only", false, "Preview content without saving it")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().IntVarP(&flagWorkers, "workers", "w", 0, "Concurrent extractions (default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagSavePath, "save-path", "o", "", "Directory to save content under")
	rootCmd.PersistentFlags().StringVar(&flagNameBy, "name-by", "", "Name files by: title | id")
	rootCmd.PersistentFlags().StringVar(&flagSaveMethod, "save-method", "",
		"Directory layout: subreddit | user | subreddit/user | user/subreddit | flat")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(subredditCmd)
	rootCmd.AddCommand(retryCmd)
	rootCmd.AddCommand(creditsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration, then builds the logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagWorkers > 0 {
		cfg.Workers = flagWorkers
	}
	if flagSavePath != "" {
		cfg.SavePath = flagSavePath
	}
	if flagNameBy != "" {
		cfg.NameDownloadsBy = flagNameBy
	}
	if flagSaveMethod != "" {
		cfg.SubredditSaveMethod = flagSaveMethod
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err = logging.New(cfg.Log, flagDebug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	logger.Debug("config loaded",
		zap.Int("workers", cfg.Workers),
		zap.String("save_path", cfg.SavePath),
		zap.String("name_downloads_by", cfg.NameDownloadsBy),
		zap.String("subreddit_save_method", cfg.SubredditSaveMethod),
		zap.Bool("imgur_configured", cfg.ImgurClientID() != "" && cfg.ImgurClientSecret() != ""),
		zap.Bool("reddit_authenticated", cfg.Reddit.Authenticated()))

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	// config is not needed to print the version
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "redditdl %s\n", Version)
	},
}
