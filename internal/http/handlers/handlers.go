// Package handlers provides HTTP handler implementations for the lead API.
//
// Handlers are transport-thin: they decode the payload, call LeadService and
// translate *domain.Error kinds into status codes. Idempotent replays are
// answered here from the ReplayStore without touching the service.
package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-lead-backend/internal/domain"
	"github.com/tbourn/go-lead-backend/internal/http/middleware"
	"github.com/tbourn/go-lead-backend/internal/services"
)

// LeadService is the application contract consumed by the handlers.
// Implementations must honor ctx for cancellation.
type LeadService interface {
	// Ready reports whether the service can store leads at all.
	Ready() error
	// Ingest validates, stores and announces one submission.
	Ingest(ctx context.Context, in domain.LeadInput) (*services.IngestResult, error)
	// Insert stores one submission without notifying anyone.
	Insert(ctx context.Context, in domain.LeadInput) (*domain.Lead, error)
	// Notify sends the operator email for a stored lead.
	Notify(ctx context.Context, leadID string) (bool, error)
	// Get loads a stored lead.
	Get(ctx context.Context, leadID string) (*domain.Lead, error)
}

// Handlers groups the lead endpoints.
type Handlers struct {
	svc       LeadService
	replays   services.ReplayStore // nil disables replays
	replayTTL time.Duration
}

// New constructs Handlers. replays may be nil.
func New(svc LeadService, replays services.ReplayStore, replayTTL time.Duration) *Handlers {
	if replayTTL <= 0 {
		replayTTL = 24 * time.Hour
	}
	return &Handlers{svc: svc, replays: replays, replayTTL: replayTTL}
}

// loadReplay returns the stored outcome for this request's Idempotency-Key,
// or nil when the request is not a replay or the store has nothing usable.
func (h *Handlers) loadReplay(c *gin.Context) *services.Replay {
	if h.replays == nil || !middleware.IsReplay(c) {
		return nil
	}
	key, _ := middleware.GetIdempotencyKey(c)
	rep, err := h.replays.Get(c.Request.Context(), middleware.IdempotencyScope(c), key)
	if err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("replay lookup failed")
		return nil
	}
	if rep != nil {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
	}
	return rep
}

// saveReplay records a completed request under its Idempotency-Key. A
// concurrent twin that stored first wins; other store failures only log.
func (h *Handlers) saveReplay(c *gin.Context, rep services.Replay) {
	key, ok := middleware.GetIdempotencyKey(c)
	if h.replays == nil || !ok {
		return
	}
	err := h.replays.Put(c.Request.Context(), middleware.IdempotencyScope(c), key, rep, h.replayTTL)
	if err != nil && !errors.Is(err, services.ErrReplayExists) {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("replay store failed")
	}
}
