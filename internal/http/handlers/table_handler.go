// Table API handler.
//
// POST /rest/v1/leads inserts one row and returns it, the way a hosted table
// gateway does for "Prefer: return=representation". It is the target of the
// submission client's direct-insert strategy and never sends email.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-lead-backend/internal/domain"
	"github.com/tbourn/go-lead-backend/internal/http/middleware"
	"github.com/tbourn/go-lead-backend/internal/services"
)

// InsertLeadRow godoc
// @ID          insertLeadRow
// @Summary     Insert a lead row
// @Description Stores a lead without notification and returns the stored row as a one-element array. With "Prefer: return=minimal" the body is empty.
// @Tags        Table
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Security    APIKey
// @Param       Prefer  header  string            false  "return=representation (default) or return=minimal"
// @Param       body    body    domain.LeadInput  true   "Lead row"
// @Success     201  {array}   domain.Lead
// @Failure     400  {object}  handlers.TableError  "Invalid JSON (PGRST102) or check violation (23514)"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     409  {object}  handlers.TableError  "Unique violation (23505)"
// @Failure     500  {object}  handlers.TableError  "Internal error (XX000)"
// @Router      /rest/v1/leads [post]
func (h *Handlers) InsertLeadRow(c *gin.Context) {
	if err := h.svc.Ready(); err != nil {
		tableError(c, err)
		return
	}
	if rep := h.loadReplay(c); rep != nil {
		lead, err := h.svc.Get(c.Request.Context(), rep.LeadID)
		if err == nil {
			writeRow(c, http.StatusCreated, lead)
			return
		}
		middleware.LoggerFrom(c).Warn().Err(err).Str("lead_id", rep.LeadID).Msg("replayed lead not loadable")
	}

	var in domain.LeadInput
	if err := c.ShouldBindJSON(&in); err != nil {
		tableFail(c, http.StatusBadRequest, TableError{Code: TableCodeInvalidJSON, Message: MsgInvalidJSON})
		return
	}

	lead, err := h.svc.Insert(c.Request.Context(), in)
	if err != nil {
		tableError(c, err)
		return
	}

	h.saveReplay(c, services.Replay{LeadID: lead.ID, Status: http.StatusCreated})
	writeRow(c, http.StatusCreated, lead)
}

func writeRow(c *gin.Context, status int, lead *domain.Lead) {
	if strings.Contains(c.GetHeader("Prefer"), "return=minimal") {
		c.Status(status)
		return
	}
	ok(c, status, []domain.Lead{*lead})
}

func tableError(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		tableFail(c, http.StatusInternalServerError, TableError{Code: TableCodeInternal, Message: "Internal server error"})
		return
	}
	switch de.Kind {
	case domain.KindValidation:
		tableFail(c, http.StatusBadRequest, TableError{Code: TableCodeCheckViolation, Message: de.Msg, Details: de.Field})
	case domain.KindConflict:
		tableFail(c, http.StatusConflict, TableError{
			Code:    TableCodeUniqueViolation,
			Message: `duplicate key value violates unique constraint "ux_leads_email"`,
			Details: de.Msg,
		})
	default:
		te := TableError{Code: TableCodeInternal, Message: de.Msg}
		if de.Err != nil {
			te.Details = de.Err.Error()
		}
		tableFail(c, http.StatusInternalServerError, te)
	}
}

func tableFail(c *gin.Context, status int, te TableError) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", te.Code).
			Str("message", te.Message).
			Msg("table api error")
	}
	c.AbortWithStatusJSON(status, te)
}
