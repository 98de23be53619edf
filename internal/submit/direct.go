package submit

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-lead-backend/internal/domain"
)

// DirectStrategy inserts straight into the leads table. Without a FollowUp
// no email is ever sent for leads stored this way.
type DirectStrategy struct {
	Handle   TableHandle
	FollowUp *FollowUp
}

func (s *DirectStrategy) Name() string { return ViaDirect }

// Submit waits for the handle, inserts the row and, when configured, asks the
// server to send the notification for it.
func (s *DirectStrategy) Submit(ctx context.Context, in domain.LeadInput, key string) (*Receipt, error) {
	if s.Handle == nil {
		return nil, ErrHandleUnavailable
	}
	if !s.Handle.Ready() {
		if err := s.Handle.AwaitReady(ctx); err != nil {
			return nil, classified("table api", err)
		}
	}

	lead, err := s.Handle.InsertLead(ctx, in, key)
	if err != nil {
		return nil, classified("table api", err)
	}

	rc := &Receipt{LeadID: lead.ID, Via: ViaDirect}
	if s.FollowUp != nil {
		rc.EmailSent = s.FollowUp.Notify(ctx, lead.ID)
	}
	return rc, nil
}

// DefaultFollowUpTimeout bounds one notify call.
const DefaultFollowUpTimeout = 15 * time.Second

// FollowUp asks the ingestion service to email an already stored lead.
type FollowUp struct {
	client *resty.Client
}

// NewFollowUp returns a follow-up client for the API mounted at baseURL
// (e.g. "https://leads.example.com/api/v1").
func NewFollowUp(baseURL, token string, timeout time.Duration) *FollowUp {
	if timeout <= 0 {
		timeout = DefaultFollowUpTimeout
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &FollowUp{client: c}
}

// Notify reports whether the email went out. Failures are logged and
// swallowed; the lead is already stored.
func (f *FollowUp) Notify(ctx context.Context, leadID string) bool {
	var body leadResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetResult(&body).
		Post(fmt.Sprintf("/leads/%s/notify", url.PathEscape(leadID)))

	switch {
	case err != nil:
		zerolog.Ctx(ctx).Warn().Err(err).Str("lead_id", leadID).Msg("notify follow-up failed")
		return false
	case resp.IsError():
		zerolog.Ctx(ctx).Warn().Int("status", resp.StatusCode()).Str("lead_id", leadID).Msg("notify follow-up rejected")
		return false
	}
	return body.EmailSent
}
