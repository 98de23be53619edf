// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them instead
// of on the human-readable message. Every error response carries one.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "conflict",
//	  "error": "A lead with this email address already exists"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Lead-specific:
	ErrCodeInvalidJSON  = "invalid_json"
	ErrCodeValidation   = "validation_failed"
	ErrCodeSaveFailed   = "save_failed"
	ErrCodeServerConfig = "server_config"
)

// Table API error codes follow the SQLSTATE values a hosted table gateway
// reports, so the direct-insert client classifies both the same way.
const (
	TableCodeUniqueViolation = "23505"
	TableCodeCheckViolation  = "23514"
	TableCodeInternal        = "XX000"
	TableCodeInvalidJSON     = "PGRST102"
)
