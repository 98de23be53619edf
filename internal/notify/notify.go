// Package notify sends the operator email that accompanies every stored lead.
// Delivery is best-effort: callers log and count failures but never fail the
// submission because of them.
//
// Senders are swappable (Resend, SendGrid, Mailgun, SES) behind one
// interface; New picks the one named by EMAIL_PROVIDER.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tbourn/go-lead-backend/internal/config"
	"github.com/tbourn/go-lead-backend/internal/domain"
)

// Message is the provider-neutral email payload.
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html,omitempty"`
}

// Sender delivers one Message through a provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

var (
	// ErrNoRecipients is returned when a message has no To address.
	ErrNoRecipients = errors.New("notify: no recipients")

	// ErrDisabled is returned by a nil or sender-less Notifier.
	ErrDisabled = errors.New("notify: email disabled")
)

// Notifier renders the lead notification and hands it to a Sender under a
// per-send deadline.
type Notifier struct {
	Sender   Sender
	From     string
	To       []string
	Brand    string
	Location *time.Location
	Timeout  time.Duration
}

// NewNotifier builds a Notifier from configuration. It returns (nil, nil)
// when email is disabled or not configured, which callers treat as
// "notification skipped".
func NewNotifier(ctx context.Context, cfg config.EmailConfig) (*Notifier, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	sender, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Notifier{
		Sender:   sender,
		From:     Address(cfg.FromName, cfg.From),
		To:       cfg.To,
		Brand:    cfg.Brand,
		Location: loc,
		Timeout:  cfg.Timeout,
	}, nil
}

// Provider names the underlying sender, for metrics and logs.
func (n *Notifier) Provider() string {
	if n == nil || n.Sender == nil {
		return "none"
	}
	return n.Sender.Name()
}

// NotifyLead renders and sends the notification for lead.
func (n *Notifier) NotifyLead(ctx context.Context, lead *domain.Lead) error {
	if n == nil || n.Sender == nil {
		return ErrDisabled
	}
	msg, err := BuildLeadNotification(lead, n.Brand, n.Location)
	if err != nil {
		return err
	}
	msg.From = n.From
	msg.To = n.To
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}
	return n.Sender.Send(ctx, msg)
}

// New constructs the Sender named by cfg.Provider.
func New(ctx context.Context, cfg config.EmailConfig) (Sender, error) {
	switch cfg.Provider {
	case "resend", "":
		return NewResend(cfg.APIKey, cfg.BaseURL), nil
	case "sendgrid":
		return NewSendGrid(cfg.APIKey, cfg.BaseURL), nil
	case "mailgun":
		return NewMailgun(cfg.Domain, cfg.APIKey, cfg.BaseURL), nil
	case "ses":
		return NewSESFromEnv(ctx)
	default:
		return nil, fmt.Errorf("notify: unknown provider %q", cfg.Provider)
	}
}

// Address formats a display name and email as "Name <email>".
func Address(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
