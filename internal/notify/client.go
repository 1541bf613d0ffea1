package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crewsched/backend/config"
)

// Client calls the send-schedule-sms function over HTTP. The caller's bearer
// token is forwarded so the function can authorize the request itself.
type Client struct {
	url    string
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a notify client from config.
func NewClient(cfg config.NotifyConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:    cfg.FunctionURL,
		http:   &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
		logger: logger,
	}
}

type triggerRequest struct {
	EventID uuid.UUID `json:"event_id"`
}

// Trigger posts the event id to the SMS function. Any non-2xx status is an
// error; the response body is included for diagnosis.
func (c *Client) Trigger(ctx context.Context, eventID uuid.UUID, bearer string) error {
	body, err := json.Marshal(triggerRequest{EventID: eventID})
	if err != nil {
		return fmt.Errorf("marshal trigger request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build trigger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call sms function: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms function returned %d: %s", resp.StatusCode, string(msg))
	}

	c.logger.Debug("sms function triggered", zap.String("event_id", eventID.String()))
	return nil
}
