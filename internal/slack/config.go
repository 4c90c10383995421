package slack

import (
	"fmt"
	"os"
)

// Config holds the Slack connection settings. Tokens come from the
// environment only, never from the config file.
type Config struct {
	BotToken  string
	AppToken  string
	BotUserID string
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{}

	cfg.BotToken = os.Getenv("SLACK_BOT_TOKEN")
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("SLACK_BOT_TOKEN is required")
	}

	cfg.AppToken = os.Getenv("SLACK_APP_TOKEN")
	if cfg.AppToken == "" {
		return nil, fmt.Errorf("SLACK_APP_TOKEN is required for socket mode")
	}

	return cfg, nil
}
