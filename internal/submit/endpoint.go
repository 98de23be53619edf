package submit

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tbourn/go-lead-backend/internal/domain"
)

// FunctionsPath is the ingestion endpoint's legacy route.
const FunctionsPath = "/functions/v1/send-lead-notification"

// DefaultEndpointTimeout bounds one endpoint call.
const DefaultEndpointTimeout = 30 * time.Second

// leadResponse is the endpoint's success body.
type leadResponse struct {
	Success   bool   `json:"success"`
	LeadID    string `json:"leadId"`
	EmailSent bool   `json:"emailSent"`
	Message   string `json:"message"`
}

// errorResponse is the endpoint's error body.
type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
	Field string `json:"field"`
}

// EndpointStrategy posts the lead to the ingestion endpoint, which stores it
// and sends the email in one call.
type EndpointStrategy struct {
	client *resty.Client
	path   string
}

// NewEndpointStrategy returns a strategy posting to baseURL+path. An empty
// path uses FunctionsPath.
func NewEndpointStrategy(baseURL, path, token string, timeout time.Duration) *EndpointStrategy {
	if path == "" {
		path = FunctionsPath
	}
	if timeout <= 0 {
		timeout = DefaultEndpointTimeout
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &EndpointStrategy{client: c, path: path}
}

func (s *EndpointStrategy) Name() string { return ViaEndpoint }

func (s *EndpointStrategy) Submit(ctx context.Context, in domain.LeadInput, key string) (*Receipt, error) {
	var ok leadResponse
	var fail errorResponse

	req := s.client.R().
		SetContext(ctx).
		SetBody(in).
		SetResult(&ok).
		SetError(&fail)
	if key != "" {
		req.SetHeader("Idempotency-Key", key)
	}

	resp, err := req.Post(s.path)
	if err != nil {
		return nil, transportError("endpoint", err)
	}
	if resp.IsError() {
		return nil, statusError("endpoint", resp.StatusCode(), fail.Code, fail.Error, fail.Field)
	}
	if !ok.Success || ok.LeadID == "" {
		return nil, domain.Wrap(domain.KindServer, "endpoint did not confirm the lead", nil)
	}
	return &Receipt{LeadID: ok.LeadID, EmailSent: ok.EmailSent, Via: ViaEndpoint}, nil
}
