// Package config handles TOML-based configuration loading and validation.
// Credentials may also come from the environment or a .env file, which take
// precedence over the config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"redditdl/internal/media"
)

// Config holds all application configuration.
type Config struct {
	ImgurID             string `toml:"imgur_client_id"`
	ImgurSecret         string `toml:"imgur_client_secret"`
	NameDownloadsBy     string `toml:"name_downloads_by"`
	SubredditSaveMethod string `toml:"subreddit_save_method"`
	SavePath            string `toml:"save_path"`
	Workers             int    `toml:"workers"`
	PostLimit           int    `toml:"post_limit"`
	UserAgent           string `toml:"user_agent"`
	ImgurAPI            string `toml:"imgur_api"`
	GfycatAPI           string `toml:"gfycat_api"`
	VidbleBase          string `toml:"vidble_base"`

	Reddit RedditConfig `toml:"reddit"`
	Log    LogConfig    `toml:"log"`
}

// RedditConfig holds script-app credentials. Without them the Reddit source
// runs read-only.
type RedditConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	Username     string `toml:"username"`
	Password     string `toml:"password"`
}

// Authenticated reports whether every credential is present.
func (r RedditConfig) Authenticated() bool {
	return r.ClientID != "" && r.ClientSecret != "" && r.Username != "" && r.Password != ""
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		NameDownloadsBy:     "title",
		SubredditSaveMethod: string(media.SaveBySubreddit),
		SavePath:            "~/Downloads/redditdl",
		Workers:             4,
		PostLimit:           25,
		UserAgent:           "redditdl/1.0",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "redditdl"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "redditdl"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// loadEnvFiles loads ./.env and then the .env next to the config file.
// Variables already set in the environment are never replaced.
func loadEnvFiles() error {
	files := []string{".env"}
	if dir, err := configDir(); err == nil {
		files = append(files, filepath.Join(dir, ".env"))
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the config file and merges with defaults, then applies
// environment overrides. If the config file doesn't exist, defaults are used.
func Load() (*Config, error) {
	cfg := Default()

	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	path, err := ConfigPath()
	if err == nil {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides credentials with any non-empty environment variable.
func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"IMGUR_CLIENT_ID":      &c.ImgurID,
		"IMGUR_CLIENT_SECRET":  &c.ImgurSecret,
		"REDDIT_CLIENT_ID":     &c.Reddit.ClientID,
		"REDDIT_CLIENT_SECRET": &c.Reddit.ClientSecret,
		"REDDIT_USERNAME":      &c.Reddit.Username,
		"REDDIT_PASSWORD":      &c.Reddit.Password,
		"REDDIT_USER_AGENT":    &c.UserAgent,
	}
	for key, field := range overrides {
		if v := os.Getenv(key); v != "" {
			*field = v
		}
	}
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if _, err := media.ParseNamingPolicy(c.NameDownloadsBy); err != nil {
		return err
	}

	if !media.SaveMethod(c.SubredditSaveMethod).Valid() {
		return fmt.Errorf("unsupported save method %q (valid: subreddit, user, subreddit/user, user/subreddit, flat)",
			c.SubredditSaveMethod)
	}

	if c.Workers < 1 || c.Workers > 32 {
		return fmt.Errorf("workers must be between 1 and 32, got %d", c.Workers)
	}

	if c.PostLimit < 1 || c.PostLimit > 100 {
		return fmt.Errorf("post_limit must be between 1 and 100, got %d", c.PostLimit)
	}

	if c.SavePath == "" {
		return fmt.Errorf("save path cannot be empty")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("unsupported log level %q (valid: debug, info, warn, error)", c.Log.Level)
	}

	if f := strings.ToLower(c.Log.Format); f != "json" && f != "console" {
		return fmt.Errorf("unsupported log format %q (valid: json, console)", c.Log.Format)
	}

	return nil
}

// ImgurClientID returns the Imgur client id, empty when not configured.
func (c *Config) ImgurClientID() string { return c.ImgurID }

// ImgurClientSecret returns the Imgur client secret, empty when not configured.
func (c *Config) ImgurClientSecret() string { return c.ImgurSecret }

// NamingPolicy returns the parsed name_downloads_by value.
func (c *Config) NamingPolicy() media.NamingPolicy {
	p, _ := media.ParseNamingPolicy(c.NameDownloadsBy)
	return p
}

// SaveMethod returns the configured directory layout.
func (c *Config) SaveMethod() media.SaveMethod {
	return media.SaveMethod(c.SubredditSaveMethod)
}

// ExpandSavePath resolves ~ in the save path.
func (c *Config) ExpandSavePath() (string, error) {
	dir := c.SavePath
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	return filepath.Abs(dir)
}

// RetryDBPath returns the path to the retry database.
func RetryDBPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "redditdl", "retry.db"), nil
}
