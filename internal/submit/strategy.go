package submit

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tbourn/go-lead-backend/internal/domain"
)

// Strategy names, reported in Receipt.Via.
const (
	ViaDirect   = "direct"
	ViaEndpoint = "endpoint"
)

// Receipt describes a stored lead.
type Receipt struct {
	LeadID    string
	EmailSent bool
	Via       string
}

// Strategy is one way of getting a lead stored. Submit returns a classified
// *domain.Error on failure. key is the idempotency key of the submit action
// and is the same for every strategy tried.
type Strategy interface {
	Name() string
	Submit(ctx context.Context, in domain.LeadInput, key string) (*Receipt, error)
}

// Codes the table API and the endpoint use for duplicates.
const (
	codeUniqueViolation = "23505"
	codeConflict        = "conflict"
)

// transportError classifies a failure that never produced an HTTP response.
func transportError(op string, err error) *domain.Error {
	return domain.Wrap(domain.KindNetwork, op+" unreachable", err)
}

// statusError classifies an HTTP error reply.
func statusError(op string, status int, code, msg, field string) *domain.Error {
	if msg == "" {
		msg = fmt.Sprintf("%s returned status %d", op, status)
	}
	cause := fmt.Errorf("%s: status %d code %q", op, status, code)

	switch {
	case status == http.StatusConflict || code == codeUniqueViolation || code == codeConflict:
		return &domain.Error{Kind: domain.KindConflict, Msg: msg, Err: cause}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return &domain.Error{Kind: domain.KindValidation, Field: field, Msg: msg, Err: cause}
	default:
		return &domain.Error{Kind: domain.KindServer, Msg: msg, Err: cause}
	}
}

// classified returns err as a *domain.Error, treating anything unclassified
// as a server failure.
func classified(op string, err error) *domain.Error {
	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}
	return domain.Wrap(domain.KindServer, op+" failed", err)
}
