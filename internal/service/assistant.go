package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"school-inventory/internal/domain"
)

// AssistantClient forwards chat messages to the external assistant webhook
// and relays the answer.
type AssistantClient struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

type assistantRequest struct {
	InputMessage string `json:"inputMessage"`
}

type assistantResponse struct {
	Response string `json:"response"`
}

func NewAssistantClient(url string, timeout time.Duration, logger *zap.Logger) *AssistantClient {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &AssistantClient{
		client: client,
		url:    url,
		logger: logger,
	}
}

// Enabled reports whether a webhook URL is configured.
func (c *AssistantClient) Enabled() bool { return c.url != "" }

// Ask sends message to the webhook and returns its reply.
func (c *AssistantClient) Ask(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", domain.NewValidationError("message", "is required")
	}
	if !c.Enabled() {
		return "", fmt.Errorf("assistant webhook is not configured")
	}

	var out assistantResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(assistantRequest{InputMessage: message}).
		SetResult(&out).
		Post(c.url)
	if err != nil {
		return "", fmt.Errorf("failed to call assistant webhook: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("assistant webhook returned status %d", resp.StatusCode())
	}

	c.logger.Debug("assistant replied",
		zap.Int("status", resp.StatusCode()),
		zap.Int("reply_len", len(out.Response)))

	return out.Response, nil
}
