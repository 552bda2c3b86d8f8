package concierge

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/journey"
	"github.com/mendez671/asteria-mobile-luxury-sub002/pkg/logging"
)

var llmTracer = otel.Tracer("asteria.internal.concierge.llm")

// Completer produces the assistant's reply for one chat turn. The service
// falls back to a canned reply when the completer is nil or errors, so a
// model outage never blocks ticket creation.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []journey.Entry, message string) (string, error)
}

// AnthropicCompleter generates replies with the Anthropic Messages API.
type AnthropicCompleter struct {
	client anthropic.Client
	model  string
	logger *logging.Logger
}

// NewAnthropicCompleter builds a completer. An empty API key returns nil,
// which the service treats as the model being disabled.
func NewAnthropicCompleter(apiKey, model string, logger *logging.Logger) *AnthropicCompleter {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AnthropicCompleter{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger,
	}
}

// Complete sends the conversation so far plus the new message and returns
// the model's text reply.
func (c *AnthropicCompleter) Complete(ctx context.Context, systemPrompt string, history []journey.Entry, message string) (string, error) {
	ctx, span := llmTracer.Start(ctx, "concierge.llm.complete")
	defer span.End()

	msgs := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, turn := range history {
		switch turn.Role {
		case "assistant":
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		}
	}
	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(message)))

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: msgs,
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("concierge: anthropic: %w", err)
	}
	span.SetAttributes(
		attribute.Int64("llm.input_tokens", resp.Usage.InputTokens),
		attribute.Int64("llm.output_tokens", resp.Usage.OutputTokens),
	)

	for _, block := range resp.Content {
		if block.Type == "text" {
			c.logger.Debug("model reply generated",
				"tokens_in", resp.Usage.InputTokens,
				"tokens_out", resp.Usage.OutputTokens,
			)
			return block.Text, nil
		}
	}
	return "", errors.New("concierge: no text content in model response")
}
