package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for operator alerts
type Slack struct {
	botToken  string
	channelID string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Category:    "Slack",
			Usage:       "Slack Bot User OAuth Token for operator alerts",
			Sources:     cli.EnvVars("STOREVOICE_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Category:    "Slack",
			Usage:       "Slack channel receiving quota alerts",
			Sources:     cli.EnvVars("STOREVOICE_SLACK_CHANNEL_ID"),
			Destination: &x.channelID,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("bot_token.set", x.botToken != ""),
		slog.String("channel_id", x.channelID),
	)
}

// IsConfigured reports whether both the token and the channel are set
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.channelID != ""
}

// ChannelID returns the alert channel
func (x *Slack) ChannelID() string {
	return x.channelID
}

// Configure creates the Slack service, or nil when alerts are not configured
func (x *Slack) Configure() (slack.Service, error) {
	if !x.IsConfigured() {
		return nil, nil
	}
	svc, err := slack.New(x.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	return svc, nil
}
