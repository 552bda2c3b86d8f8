package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mendez671/asteria-mobile-luxury-sub002/pkg/logging"
)

var smsTracer = otel.Tracer("asteria.internal.notify.sms")

// SMSChannel delivers the short-form alert to concierge on-call phones.
type SMSChannel interface {
	SendSMS(ctx context.Context, to, body string) error
}

// TwilioChannel posts SMS messages using Twilio's REST API. Delivery is a
// single attempt; a failed alert is recorded in the dispatch result rather
// than retried, since the chat-ops channel carries the same ticket.
type TwilioChannel struct {
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewTwilioChannel builds a sender. Missing credentials return nil, which
// the dispatcher treats as the channel being disabled.
func NewTwilioChannel(accountSID, authToken, from string, logger *logging.Logger) *TwilioChannel {
	if accountSID == "" || authToken == "" || from == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TwilioChannel{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// SendSMS dispatches a single SMS.
func (c *TwilioChannel) SendSMS(ctx context.Context, to, body string) error {
	if to == "" {
		return errors.New("notify: sms to required")
	}
	if strings.TrimSpace(body) == "" {
		return errors.New("notify: sms body required")
	}

	ctx, span := smsTracer.Start(ctx, "notify.sms.send")
	defer span.End()
	span.SetAttributes(attribute.String("sms.to", to))

	payload := url.Values{}
	payload.Set("To", to)
	payload.Set("From", c.from)
	payload.Set("Body", body)

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		return fmt.Errorf("notify: build sms request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("notify: sms send: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("notify: sms send failed: %s", formatProviderError(resp.StatusCode, respBody))
		span.RecordError(err)
		return err
	}

	c.logger.Info("concierge sms sent", "to", to)
	return nil
}

type providerError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func formatProviderError(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fmt.Sprintf("status %d", status)
	}
	var parsed providerError
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil && parsed.Message != "" {
		if parsed.Code != 0 {
			return fmt.Sprintf("status %d code %d: %s", status, parsed.Code, parsed.Message)
		}
		return fmt.Sprintf("status %d: %s", status, parsed.Message)
	}
	return fmt.Sprintf("status %d: %s", status, trimmed)
}
