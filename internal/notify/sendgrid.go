package notify

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const defaultSendGridHost = "https://api.sendgrid.com"

// SendGridSender sends emails via the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
}

// NewSendGrid returns a SendGrid sender. An empty host uses the public API.
func NewSendGrid(apiKey, host string) *SendGridSender {
	if host == "" {
		host = defaultSendGridHost
	}
	req := sendgrid.GetRequest(apiKey, "/v3/mail/send", host)
	req.Method = "POST"
	return &SendGridSender{client: &sendgrid.Client{Request: req}}
}

func (s *SendGridSender) Name() string { return "sendgrid" }

// Send delivers msg to every recipient in one personalization.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgEmail(msg.From))
	m.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(sgEmail(to))
	}
	m.AddPersonalizations(p)

	m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("notify: sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// sgEmail splits "Name <addr>" into SendGrid's name/address pair.
func sgEmail(s string) *sgmail.Email {
	if a, err := mail.ParseAddress(s); err == nil {
		return sgmail.NewEmail(a.Name, a.Address)
	}
	return sgmail.NewEmail("", s)
}
