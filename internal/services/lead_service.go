// Package services – LeadService
//
// This file implements LeadService, the application-level component behind
// the ingestion endpoint and the table API. A submission moves through
// received → validated → persisted → notify attempted → responded; only the
// first three can fail the request. The operator email is best-effort and its
// outcome is reported as EmailSent.
//
// Observability: public methods are OpenTelemetry-instrumented and every
// ingestion increments leads_ingested_total{result}.
package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-lead-backend/internal/domain"
	"github.com/tbourn/go-lead-backend/internal/notify"
	"github.com/tbourn/go-lead-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LeadNotifier sends the operator email for a stored lead.
type LeadNotifier interface {
	NotifyLead(ctx context.Context, lead *domain.Lead) error
	Provider() string
}

// LeadService validates, persists and announces leads.
type LeadService struct {
	DB       *gorm.DB
	Notifier LeadNotifier // nil disables email
	Rules    domain.Rules // server-side validation for Ingest
}

// IngestResult is the successful outcome of Ingest.
type IngestResult struct {
	Lead      *domain.Lead
	EmailSent bool
	Message   string
}

// Ready reports ErrServerConfig when the service cannot store leads.
func (s *LeadService) Ready() error {
	if s.DB == nil {
		return ErrServerConfig
	}
	return nil
}

// Ingest runs the full endpoint flow for one submission. Errors are
// *domain.Error values: validation, conflict (ErrDuplicateLead) or server
// (ErrServerConfig, or a wrapped persistence failure).
func (s *LeadService) Ingest(ctx context.Context, in domain.LeadInput) (*IngestResult, error) {
	tr := otel.Tracer("services/LeadService")
	ctx, span := tr.Start(ctx, "Ingest")
	defer span.End()

	lead, err := s.persist(ctx, span, in, s.Rules)
	if err != nil {
		leadsIngested.WithLabelValues(domain.KindOf(err).String()).Inc()
		return nil, err
	}
	leadsIngested.WithLabelValues("ok").Inc()

	sent := s.notify(ctx, lead)
	span.SetAttributes(attribute.Bool("lead.email_sent", sent))

	msg := MsgSavedNotNotified
	if sent {
		msg = MsgSavedAndNotified
	}
	return &IngestResult{Lead: lead, EmailSent: sent, Message: msg}, nil
}

// Insert stores a lead without notifying anyone. It backs the table API used
// by the client's direct-insert strategy, so only presence and email shape
// are checked here.
func (s *LeadService) Insert(ctx context.Context, in domain.LeadInput) (*domain.Lead, error) {
	tr := otel.Tracer("services/LeadService")
	ctx, span := tr.Start(ctx, "Insert")
	defer span.End()

	return s.persist(ctx, span, in, domain.BasicRules)
}

// Notify sends the operator email for an existing lead. It reports whether
// the email went out; only an unknown lead is an error.
func (s *LeadService) Notify(ctx context.Context, leadID string) (bool, error) {
	tr := otel.Tracer("services/LeadService")
	ctx, span := tr.Start(ctx, "Notify",
		trace.WithAttributes(attribute.String("lead.id", leadID)),
	)
	defer span.End()

	if s.DB == nil {
		return false, ErrServerConfig
	}
	lead, err := repo.GetLead(ctx, s.DB, leadID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, ErrLeadNotFound
	}
	if err != nil {
		span.RecordError(err)
		return false, domain.Wrap(domain.KindServer, "lead lookup failed", err)
	}
	return s.notify(ctx, lead), nil
}

// Get returns a stored lead. Replays of the table API are answered with it.
func (s *LeadService) Get(ctx context.Context, leadID string) (*domain.Lead, error) {
	if s.DB == nil {
		return nil, ErrServerConfig
	}
	lead, err := repo.GetLead(ctx, s.DB, leadID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, domain.Wrap(domain.KindServer, "lead lookup failed", err)
	}
	return lead, nil
}

func (s *LeadService) persist(ctx context.Context, span trace.Span, in domain.LeadInput, rules domain.Rules) (*domain.Lead, error) {
	if s.DB == nil {
		zerolog.Ctx(ctx).Error().Msg("lead service has no database configured")
		span.SetStatus(codes.Error, "server configuration")
		return nil, ErrServerConfig
	}

	in = in.Normalize()
	if err := in.Validate(rules); err != nil {
		return nil, err
	}

	lead, err := repo.CreateLead(ctx, s.DB, domain.NewLead(in))
	switch {
	case errors.Is(err, repo.ErrDuplicate):
		return nil, ErrDuplicateLead
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Msg("lead insert failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist")
		return nil, domain.Wrap(domain.KindServer, MsgSaveFailed, err)
	}
	span.SetAttributes(attribute.String("lead.id", lead.ID))
	return lead, nil
}

// notify attempts the operator email. It never fails the caller; the send is
// detached from request cancellation and bounded by the notifier's timeout.
func (s *LeadService) notify(ctx context.Context, lead *domain.Lead) bool {
	if s.Notifier == nil {
		leadNotifications.WithLabelValues("none", "skipped").Inc()
		return false
	}
	provider := s.Notifier.Provider()

	err := s.Notifier.NotifyLead(context.WithoutCancel(ctx), lead)
	switch {
	case errors.Is(err, notify.ErrDisabled):
		leadNotifications.WithLabelValues(provider, "skipped").Inc()
		return false
	case err != nil:
		zerolog.Ctx(ctx).Warn().Err(err).Str("lead_id", lead.ID).Str("provider", provider).
			Msg("lead notification failed")
		leadNotifications.WithLabelValues(provider, "failed").Inc()
		return false
	}
	leadNotifications.WithLabelValues(provider, "sent").Inc()
	return true
}
