// Package handlers provides HTTP handler implementations for the lead API.
//
// This file defines the response envelopes and the helpers that write them.
// fail() is the only place error bodies are built; 5xx responses are logged
// there with the request-scoped logger.
//
// Example error response:
//
//	HTTP/1.1 400 Bad Request
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "validation_failed",
//	  "error": "Please enter a valid email address.",
//	  "field": "email"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-lead-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope of the ingestion and notify routes.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"validation_failed"`
	// Human-readable message, safe to show to the submitter
	Error string `json:"error" example:"Please enter a valid email address."`
	// Form field the message belongs to, for validation errors
	Field string `json:"field,omitempty" example:"email"`
	// Diagnostic detail for persistence failures
	Details string `json:"details,omitempty" example:"database is locked"`
}

// TableError is the error body of the table API, shaped like a hosted table
// gateway's so the same client code can read either.
type TableError struct {
	Code    string `json:"code" example:"23505"`
	Message string `json:"message" example:"duplicate key value violates unique constraint"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// LeadResponse is the success body of the ingestion and notify routes.
type LeadResponse struct {
	Success   bool   `json:"success" example:"true"`
	LeadID    string `json:"leadId" example:"0b6f8a52-0a4e-4b7c-9a0e-5c1f2f0f2d11"`
	EmailSent bool   `json:"emailSent" example:"true"`
	Message   string `json:"message" example:"Lead saved successfully and notification sent"`
}

// fail aborts the request with the standard envelope.
func fail(c *gin.Context, status int, code, msg string) {
	failWith(c, status, ErrorResponse{Code: code, Error: msg})
}

// failWith aborts with a pre-filled envelope; the request ID is added here.
func failWith(c *gin.Context, status int, resp ErrorResponse) {
	resp.RequestID = c.Writer.Header().Get("X-Request-ID")

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", resp.Code).
			Str("message", resp.Error).
			Str("details", middleware.Redact(resp.Details)).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
