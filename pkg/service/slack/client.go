package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// maxTextBytes is the fallback text limit enforced by chat.postMessage
const maxTextBytes = 3000

// client implements Service interface
type client struct {
	api *slack.Client
}

type options struct {
	apiURL string
}

// Option is a functional option for client configuration
type Option func(*options)

// WithAPIURL points the client at a different Slack API endpoint
func WithAPIURL(url string) Option {
	return func(o *options) {
		o.apiURL = url
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var slackOpts []slack.Option
	if o.apiURL != "" {
		slackOpts = append(slackOpts, slack.OptionAPIURL(o.apiURL))
	}

	return &client{api: slack.New(token, slackOpts...)}, nil
}

func (c *client) PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(truncateToMaxBytes(text, maxTextBytes), false),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post message", goerr.V("channelID", channelID))
	}
	return ts, nil
}

// truncateToMaxBytes cuts s to at most n bytes on a rune boundary
func truncateToMaxBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && (s[n]&0xC0) == 0x80 {
		n--
	}
	return s[:n]
}
