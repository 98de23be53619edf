package notify

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// DefaultResendBaseURL is the public Resend API.
const DefaultResendBaseURL = "https://api.resend.com"

// ResendSender posts messages to the Resend HTTP API.
type ResendSender struct {
	client *resty.Client
}

// NewResend returns a Resend sender. An empty baseURL uses the public API.
func NewResend(apiKey, baseURL string) *ResendSender {
	if baseURL == "" {
		baseURL = DefaultResendBaseURL
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	return &ResendSender{client: c}
}

func (s *ResendSender) Name() string { return "resend" }

// Send posts msg to /emails. A non-2xx reply is an error carrying the body.
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("notify: resend request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("notify: resend returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
