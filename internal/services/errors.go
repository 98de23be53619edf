// Package services defines the business logic for lead ingestion.
// This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Each value is a *domain.Error so the kind survives wrapping and is visible
// to both the HTTP layer and the submission client. Translation into status
// codes happens at the handler layer.
package services

import "github.com/tbourn/go-lead-backend/internal/domain"

var (
	// ErrServerConfig is returned when the service was built without a
	// database handle. No input is read in that case.
	ErrServerConfig = &domain.Error{Kind: domain.KindServer, Msg: "Server configuration error"}

	// ErrDuplicateLead is returned when the leads table rejects the insert on
	// its unique email index.
	ErrDuplicateLead = &domain.Error{Kind: domain.KindConflict, Msg: "A lead with this email address already exists"}

	// ErrLeadNotFound is returned by Notify for an unknown lead ID.
	ErrLeadNotFound = &domain.Error{Kind: domain.KindValidation, Field: "id", Msg: "lead not found"}
)

// MsgSaveFailed is the client-facing message for persistence failures.
const MsgSaveFailed = "Failed to save lead information"

// Outcome messages returned on success.
const (
	MsgSavedAndNotified = "Lead saved successfully and notification sent"
	MsgSavedNotNotified = "Lead saved successfully but email notification failed"
)

// Outcome messages of a notify-only follow-up.
const (
	MsgNotificationSent   = "Notification sent"
	MsgNotificationFailed = "Email notification failed"
)
