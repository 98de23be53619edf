// Lead HTTP handlers.
//
// This file exposes the ingestion endpoint and the notify follow-up:
//   - POST {base}/leads                          (ingest)
//   - POST /functions/v1/send-lead-notification  (ingest, legacy path)
//   - POST {base}/leads/{id}/notify              (email only)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-lead-backend/internal/domain"
	"github.com/tbourn/go-lead-backend/internal/services"
)

// MsgInvalidJSON is returned when the body is not a JSON object.
const MsgInvalidJSON = "Invalid JSON body"

// IngestLead godoc
// @ID          ingestLead
// @Summary     Submit a lead
// @Description Validates and stores a contact-form submission, then attempts the operator email. Email failure never fails the request; see emailSent. A retried Idempotency-Key is answered from the stored outcome.
// @Tags        Leads
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header  string            false  "Client-generated key, reused for retries of one submit"
// @Param       body             body    domain.LeadInput  true   "Lead payload"
// @Success     200  {object}  handlers.LeadResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid JSON or validation error"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     405  {object}  handlers.ErrorResponse  "Method not allowed"
// @Failure     409  {object}  handlers.ErrorResponse  "Duplicate lead"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Server configuration or persistence failure"
// @Router      /api/v1/leads [post]
// @Router      /functions/v1/send-lead-notification [post]
func (h *Handlers) IngestLead(c *gin.Context) {
	if err := h.svc.Ready(); err != nil {
		leadError(c, err)
		return
	}
	if rep := h.loadReplay(c); rep != nil {
		ok(c, http.StatusOK, LeadResponse{
			Success:   true,
			LeadID:    rep.LeadID,
			EmailSent: rep.EmailSent,
			Message:   ingestMessage(rep.EmailSent),
		})
		return
	}

	var in domain.LeadInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidJSON, MsgInvalidJSON)
		return
	}

	res, err := h.svc.Ingest(c.Request.Context(), in)
	if err != nil {
		leadError(c, err)
		return
	}

	h.saveReplay(c, services.Replay{LeadID: res.Lead.ID, EmailSent: res.EmailSent, Status: http.StatusOK})
	ok(c, http.StatusOK, LeadResponse{
		Success:   true,
		LeadID:    res.Lead.ID,
		EmailSent: res.EmailSent,
		Message:   res.Message,
	})
}

// NotifyLead godoc
// @ID          notifyLead
// @Summary     Send the operator email for a stored lead
// @Description Used by clients that stored the lead through the table API. Reports whether the email went out.
// @Tags        Leads
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Lead ID"  format(uuid)
// @Success     200  {object}  handlers.LeadResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown lead"
// @Failure     500  {object}  handlers.ErrorResponse  "Server configuration error"
// @Router      /api/v1/leads/{id}/notify [post]
func (h *Handlers) NotifyLead(c *gin.Context) {
	if err := h.svc.Ready(); err != nil {
		leadError(c, err)
		return
	}
	id := c.Param("id")
	sent, err := h.svc.Notify(c.Request.Context(), id)
	if err != nil {
		leadError(c, err)
		return
	}
	msg := services.MsgNotificationFailed
	if sent {
		msg = services.MsgNotificationSent
	}
	ok(c, http.StatusOK, LeadResponse{Success: true, LeadID: id, EmailSent: sent, Message: msg})
}

func ingestMessage(sent bool) string {
	if sent {
		return services.MsgSavedAndNotified
	}
	return services.MsgSavedNotNotified
}

// leadError maps a service error onto the standard envelope.
func leadError(c *gin.Context, err error) {
	var de *domain.Error
	switch {
	case errors.Is(err, services.ErrLeadNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, domain.MessageOf(err))
	case errors.Is(err, services.ErrServerConfig):
		fail(c, http.StatusInternalServerError, ErrCodeServerConfig, domain.MessageOf(err))
	case !errors.As(err, &de):
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "Internal server error")
	case de.Kind == domain.KindValidation:
		failWith(c, http.StatusBadRequest, ErrorResponse{Code: ErrCodeValidation, Error: de.Msg, Field: de.Field})
	case de.Kind == domain.KindConflict:
		fail(c, http.StatusConflict, ErrCodeConflict, de.Msg)
	default:
		resp := ErrorResponse{Code: ErrCodeInternal, Error: de.Msg}
		if de.Msg == services.MsgSaveFailed {
			resp.Code = ErrCodeSaveFailed
		}
		if de.Err != nil {
			resp.Details = de.Err.Error()
		}
		failWith(c, http.StatusInternalServerError, resp)
	}
}
