package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/mendez671/asteria-mobile-luxury-sub002/pkg/logging"
)

// ChatOpsChannel posts concierge alerts to the team's chat-ops surface.
type ChatOpsChannel interface {
	PostTicket(ctx context.Context, n Notification) error
	PostBatch(ctx context.Context, scope string, items []Notification) error
}

// SlackChannel posts alerts to a Slack incoming webhook.
type SlackChannel struct {
	webhookURL string
	logger     *logging.Logger
}

// NewSlackChannel creates a Slack channel. An empty webhook URL returns nil,
// which the dispatcher treats as the channel being disabled.
func NewSlackChannel(webhookURL string, logger *logging.Logger) *SlackChannel {
	if webhookURL == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SlackChannel{webhookURL: webhookURL, logger: logger}
}

// PostTicket sends the full Block Kit alert for a single ticket.
func (c *SlackChannel) PostTicket(ctx context.Context, n Notification) error {
	text, blocks := FormatChatOps(n)
	return c.post(ctx, text, blocks)
}

// PostBatch sends one combined alert for a released batch.
func (c *SlackChannel) PostBatch(ctx context.Context, scope string, items []Notification) error {
	text, blocks := FormatBatch(scope, items)
	return c.post(ctx, text, blocks)
}

func (c *SlackChannel) post(ctx context.Context, text string, blocks []slack.Block) error {
	msg := &slack.WebhookMessage{
		Text:   text,
		Blocks: &slack.Blocks{BlockSet: blocks},
	}
	if err := slack.PostWebhookContext(ctx, c.webhookURL, msg); err != nil {
		return fmt.Errorf("notify: slack webhook: %w", err)
	}
	return nil
}
