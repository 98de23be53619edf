package notify

import (
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunSender is a thin wrapper around the Mailgun SDK.
type MailgunSender struct {
	client *mailgun.MailgunImpl
}

// NewMailgun returns a Mailgun sender for domain. apiBase overrides the SDK
// default (e.g. mailgun.APIBaseEU) when non-empty.
func NewMailgun(domain, apiKey, apiBase string) *MailgunSender {
	mg := mailgun.NewMailgun(domain, apiKey)
	if apiBase != "" {
		mg.SetAPIBase(apiBase)
	}
	return &MailgunSender{client: mg}
}

func (s *MailgunSender) Name() string { return "mailgun" }

func (s *MailgunSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	m := s.client.NewMessage(msg.From, msg.Subject, msg.Text, msg.To...)
	if msg.HTML != "" {
		m.SetHtml(msg.HTML)
	}
	if _, _, err := s.client.Send(ctx, m); err != nil {
		return fmt.Errorf("notify: mailgun send failed: %w", err)
	}
	return nil
}
