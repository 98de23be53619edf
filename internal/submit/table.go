package submit

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-resty/resty/v2"

	"github.com/tbourn/go-lead-backend/internal/domain"
)

// TablePath is the table API route the direct strategy inserts into.
const TablePath = "/rest/v1/leads"

// DefaultTableTimeout bounds one table insert when the caller passes zero.
const DefaultTableTimeout = 30 * time.Second

// ErrHandleUnavailable is returned when the table handle never became ready.
var ErrHandleUnavailable = &domain.Error{Kind: domain.KindServer, Msg: "table client unavailable"}

// TableHandle is a client for the leads table.
type TableHandle interface {
	// Ready reports whether InsertLead can be called right now.
	Ready() bool
	// AwaitReady blocks until the handle is ready or gives up.
	AwaitReady(ctx context.Context) error
	// InsertLead stores one row and returns it as stored.
	InsertLead(ctx context.Context, in domain.LeadInput, key string) (*domain.Lead, error)
}

// tableError is the table API's error body.
type tableError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// RESTTable talks to the table API over HTTP. It is ready as soon as it is
// constructed.
type RESTTable struct {
	client *resty.Client
}

// NewRESTTable returns a table client for baseURL. apiKey is sent both as the
// apikey header and as the bearer token. A zero timeout means
// DefaultTableTimeout.
func NewRESTTable(baseURL, apiKey string, timeout time.Duration) *RESTTable {
	if timeout <= 0 {
		timeout = DefaultTableTimeout
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=representation")
	if apiKey != "" {
		c.SetHeader("apikey", apiKey).SetAuthToken(apiKey)
	}
	return &RESTTable{client: c}
}

func (t *RESTTable) Ready() bool                          { return true }
func (t *RESTTable) AwaitReady(ctx context.Context) error { return nil }

// InsertLead posts in to the table API and returns the stored row.
func (t *RESTTable) InsertLead(ctx context.Context, in domain.LeadInput, key string) (*domain.Lead, error) {
	var rows []domain.Lead
	var te tableError

	req := t.client.R().
		SetContext(ctx).
		SetBody(in).
		SetResult(&rows).
		SetError(&te)
	if key != "" {
		req.SetHeader("Idempotency-Key", key)
	}

	resp, err := req.Post(TablePath)
	if err != nil {
		return nil, transportError("table api", err)
	}
	if resp.IsError() {
		field := ""
		if resp.StatusCode() == http.StatusBadRequest {
			field = te.Details
		}
		return nil, statusError("table api", resp.StatusCode(), te.Code, te.Message, field)
	}
	if len(rows) == 0 || rows[0].ID == "" {
		return nil, domain.Wrap(domain.KindServer, "table api returned no row", nil)
	}
	return &rows[0], nil
}

// LazyHandle wraps a handle that is built in the background, e.g. a client
// that must fetch its credentials first. Until the build finishes it is not
// ready; AwaitReady polls at a fixed delay for a capped number of tries.
type LazyHandle struct {
	delay time.Duration
	tries uint

	mu     sync.RWMutex
	handle TableHandle
	err    error
	done   bool
}

// NewLazyHandle starts build in a new goroutine and returns immediately.
// delay and tries bound AwaitReady; non-positive values default to 100ms and
// 30 tries.
func NewLazyHandle(ctx context.Context, build func(context.Context) (TableHandle, error), delay time.Duration, tries uint) *LazyHandle {
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	if tries == 0 {
		tries = 30
	}
	h := &LazyHandle{delay: delay, tries: tries}
	go func() {
		th, err := build(ctx)
		h.mu.Lock()
		h.handle, h.err, h.done = th, err, true
		h.mu.Unlock()
	}()
	return h
}

func (h *LazyHandle) current() (th TableHandle, done bool, err error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.handle, h.done, h.err
}

// Ready reports whether the background build produced a ready handle.
func (h *LazyHandle) Ready() bool {
	th, _, _ := h.current()
	return th != nil && th.Ready()
}

var errNotReady = errors.New("table handle not ready")

// AwaitReady waits for the build. A failed build or an exhausted retry budget
// returns ErrHandleUnavailable.
func (h *LazyHandle) AwaitReady(ctx context.Context) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		th, done, buildErr := h.current()
		switch {
		case done && buildErr != nil:
			return struct{}{}, backoff.Permanent(buildErr)
		case done && th == nil:
			return struct{}{}, backoff.Permanent(errNotReady)
		case th != nil && th.Ready():
			return struct{}{}, nil
		}
		return struct{}{}, errNotReady
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(h.delay)),
		backoff.WithMaxTries(h.tries),
	)
	if err != nil {
		return domain.Wrap(domain.KindServer, ErrHandleUnavailable.Msg, err)
	}
	return nil
}

// InsertLead delegates to the built handle, or fails when it is not ready.
func (h *LazyHandle) InsertLead(ctx context.Context, in domain.LeadInput, key string) (*domain.Lead, error) {
	th, _, _ := h.current()
	if th == nil || !th.Ready() {
		return nil, ErrHandleUnavailable
	}
	return th.InsertLead(ctx, in, key)
}
