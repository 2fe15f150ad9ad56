package config

import (
	"github.com/m-mizutani/hotfixer/pkg/domain/interfaces"
	slackinfra "github.com/m-mizutani/hotfixer/pkg/infra/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds conflict notification configuration
type Slack struct {
	Token   string `masq:"secret"`
	Channel string
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-token",
			Usage:       "Slack bot token for conflict notifications",
			Destination: &c.Token,
			Sources:     cli.EnvVars("HOTFIXER_SLACK_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID for conflict notifications",
			Destination: &c.Channel,
			Sources:     cli.EnvVars("HOTFIXER_SLACK_CHANNEL"),
		},
	}
}

// NewNotifier returns nil, nil when Slack is not configured.
func (c *Slack) NewNotifier() (interfaces.ConflictNotifier, error) {
	if c.Token == "" && c.Channel == "" {
		return nil, nil
	}
	return slackinfra.NewNotifier(c.Token, c.Channel)
}
